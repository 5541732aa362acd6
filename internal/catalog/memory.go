package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/slug"
)

//go:embed products.json
var fixture []byte

// MemoryCatalog serves a fixed item set held in memory. Items are returned
// by value so callers cannot mutate the catalog.
type MemoryCatalog struct {
	items []Item
	byID  map[string]int
}

// NewMemoryCatalog builds a catalog over items, filling in missing slugs and
// currencies. Duplicate ids are rejected.
func NewMemoryCatalog(items []Item) (*MemoryCatalog, error) {
	c := &MemoryCatalog{
		items: make([]Item, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, it := range items {
		if it.ID == "" {
			return nil, apperrors.InvalidInput("catalog item without id")
		}
		if it.Price < 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("catalog item %s has negative price", it.ID))
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, apperrors.AlreadyExists("catalog item", "id", it.ID)
		}
		if it.Slug == "" {
			it.Slug = slug.Generate(it.Name)
		}
		if it.Currency == "" {
			it.Currency = DefaultCurrency
		}
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// NewFixtureCatalog loads the embedded crystal assortment.
func NewFixtureCatalog() (*MemoryCatalog, error) {
	var items []Item
	if err := json.Unmarshal(fixture, &items); err != nil {
		return nil, fmt.Errorf("decode catalog fixture: %w", err)
	}
	return NewMemoryCatalog(items)
}

// Get returns the item with the given id.
func (c *MemoryCatalog) Get(_ context.Context, id string) (*Item, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, apperrors.NotFound("catalog item", id)
	}
	it := c.items[i]
	return &it, nil
}

// List returns items matching f in fixture order, plus the total match count
// before paging.
func (c *MemoryCatalog) List(_ context.Context, f Filter) ([]Item, int, error) {
	matched := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.InStockOnly && !it.InStock {
			continue
		}
		matched = append(matched, it)
	}

	total := len(matched)
	if f.Offset >= total {
		return []Item{}, total, nil
	}
	matched = matched[max(f.Offset, 0):]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}
