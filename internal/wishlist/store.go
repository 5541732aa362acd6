package wishlist

import (
	"context"
	"log/slog"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/cart"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/slot"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/store"
	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
)

// Store is the persisted wishlist.
type Store struct {
	inner   *store.Store[State]
	catalog catalog.Catalog
	logger  *slog.Logger
}

// Open rehydrates the wishlist stored under key.
func Open(ctx context.Context, sl slot.Slot, key string, cat catalog.Catalog, logger *slog.Logger) *Store {
	return &Store{
		inner:   store.Open[State](ctx, "wishlist", sl, key, NewCodec(cat, logger), logger),
		catalog: cat,
		logger:  logger,
	}
}

func (s *Store) AddToWishlist(ctx context.Context, item catalog.Item) State {
	return s.inner.Apply(ctx, func(st State) State { return st.Add(item) })
}

func (s *Store) RemoveFromWishlist(ctx context.Context, itemID string) State {
	return s.inner.Apply(ctx, func(st State) State { return st.Remove(itemID) })
}

// Toggle adds or removes item and reports whether it is now on the list.
func (s *Store) Toggle(ctx context.Context, item catalog.Item) (State, bool) {
	st := s.inner.Apply(ctx, func(st State) State { return st.Toggle(item) })
	return st, st.Contains(item.ID)
}

func (s *Store) ClearWishlist(ctx context.Context) State {
	return s.inner.Apply(ctx, func(st State) State { return st.Clear() })
}

func (s *Store) IsInWishlist(itemID string) bool {
	return s.inner.Snapshot().Contains(itemID)
}

func (s *Store) TotalItems() int {
	return len(s.inner.Snapshot().Items)
}

// Items returns a copy of the wishlist items.
func (s *Store) Items() []catalog.Item {
	return append([]catalog.Item(nil), s.inner.Snapshot().Items...)
}

func (s *Store) State() State { return s.inner.Snapshot() }

func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.inner.Subscribe(fn)
}

func (s *Store) Key() string { return s.inner.Key() }

func (s *Store) Refresh(ctx context.Context) { s.inner.Refresh(ctx) }

func (s *Store) Resolved() bool { return s.inner.Resolved() }

// MoveToCart adds the wishlisted item to c with quantity 1 and removes it
// from the wishlist. Stock is checked against the catalog at call time.
func (s *Store) MoveToCart(ctx context.Context, itemID string, c *cart.Store) (cart.State, error) {
	if !s.IsInWishlist(itemID) {
		return cart.State{}, apperrors.NotFound("wishlist item", itemID)
	}

	item, err := s.catalog.Get(ctx, itemID)
	if err != nil {
		return cart.State{}, err
	}
	if !item.InStock {
		return cart.State{}, catalog.OutOfStock(itemID)
	}

	cs := c.AddItem(ctx, *item, 1)
	s.RemoveFromWishlist(ctx, itemID)
	s.logger.DebugContext(ctx, "moved wishlist item to cart", slog.String("catalog_item_id", itemID))
	return cs, nil
}
