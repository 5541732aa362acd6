package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/store"
	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
)

// persistedLine is the slot layout of a line. The catalog item is stored by
// id only and re-resolved on load.
type persistedLine struct {
	LineID          string           `json:"lineId"`
	CatalogItemID   string           `json:"catalogItemId"`
	Quantity        int              `json:"quantity"`
	SelectedOptions persistedOptions `json:"selectedOptions"`
}

type persistedOptions struct {
	GiftBag bool `json:"giftBag,omitempty"`
	GiftBox bool `json:"giftBox,omitempty"`
}

type persistedCart struct {
	Items []persistedLine `json:"items"`
	Step  string          `json:"step"`
}

// Codec converts carts to the slot layout and back, resolving item ids
// against a catalog.
type Codec struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewCodec creates a cart codec that resolves items through c.
func NewCodec(c catalog.Catalog, logger *slog.Logger) Codec {
	return Codec{catalog: c, logger: logger}
}

func (Codec) Empty() State { return Empty() }

func (Codec) Encode(s State) ([]byte, error) {
	doc := persistedCart{Items: make([]persistedLine, 0, len(s.Items)), Step: string(s.Step)}
	for _, l := range s.Items {
		doc.Items = append(doc.Items, persistedLine{
			LineID:          l.LineID,
			CatalogItemID:   l.Item.ID,
			Quantity:        l.Quantity,
			SelectedOptions: persistedOptions(l.Options),
		})
	}
	return json.Marshal(doc)
}

// Decode rebuilds a cart. Lines whose item has left the catalog, lines with
// a non-positive quantity and repeated line ids are dropped, and lines for an
// item already in the cart are merged into the first one. An unknown step
// falls back to StepCart. Catalog failures other than not-found abort the
// decode with store.ErrUnresolved.
func (c Codec) Decode(ctx context.Context, data []byte) (State, error) {
	var doc persistedCart
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, fmt.Errorf("unmarshal cart: %w", err)
	}

	s := Empty()
	if st, ok := ParseStep(doc.Step); ok {
		s.Step = st
	}

	seen := make(map[string]struct{}, len(doc.Items))
	byItem := make(map[string]int, len(doc.Items))
	for _, pl := range doc.Items {
		if pl.Quantity <= 0 || pl.LineID == "" {
			continue
		}
		if _, dup := seen[pl.LineID]; dup {
			continue
		}
		if i, ok := byItem[pl.CatalogItemID]; ok {
			c.logger.WarnContext(ctx, "merging cart lines for the same catalog item",
				slog.String("line_id", pl.LineID),
				slog.String("into_line_id", s.Items[i].LineID),
			)
			seen[pl.LineID] = struct{}{}
			s.Items[i].Quantity += pl.Quantity
			continue
		}
		item, err := c.catalog.Get(ctx, pl.CatalogItemID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.logger.WarnContext(ctx, "dropping cart line for unknown catalog item",
					slog.String("line_id", pl.LineID),
					slog.String("catalog_item_id", pl.CatalogItemID),
				)
				continue
			}
			return State{}, fmt.Errorf("resolve catalog item %s: %w: %w", pl.CatalogItemID, store.ErrUnresolved, err)
		}
		seen[pl.LineID] = struct{}{}
		byItem[pl.CatalogItemID] = len(s.Items)
		s.Items = append(s.Items, LineItem{
			LineID:   pl.LineID,
			Item:     *item,
			Quantity: pl.Quantity,
			Options:  Options(pl.SelectedOptions),
		})
	}
	return s, nil
}
