package wishlist

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

type persistedWishlist struct {
	Items []string `json:"items"`
}

// Codec stores the wishlist as a list of catalog ids.
type Codec struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

func NewCodec(c catalog.Catalog, logger *slog.Logger) Codec {
	return Codec{catalog: c, logger: logger}
}

func (Codec) Empty() State { return Empty() }

func (Codec) Encode(s State) ([]byte, error) {
	ids := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		ids = append(ids, it.ID)
	}
	return json.Marshal(persistedWishlist{Items: ids})
}

// Decode resolves stored ids. Unknown and repeated ids are dropped; any other
// catalog failure yields store.ErrUnresolved.
func (c Codec) Decode(ctx context.Context, data []byte) (State, error) {
	var doc persistedWishlist
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, fmt.Errorf("unmarshal wishlist: %w", err)
	}

	s := Empty()
	for _, id := range doc.Items {
		if id == "" || s.Contains(id) {
			continue
		}
		item, err := c.catalog.Get(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.logger.WarnContext(ctx, "dropping wishlist entry for unknown catalog item",
					slog.String("catalog_item_id", id),
				)
				continue
			}
			return State{}, fmt.Errorf("resolve catalog item %s: %w: %w", id, store.ErrUnresolved, err)
		}
		s.Items = append(s.Items, *item)
	}
	return s, nil
}
