package cart

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/slot"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/store"
)

// Store is the persisted cart. All mutations go through Dispatch, which runs
// the reducer and writes the result to the slot.
type Store struct {
	inner  *store.Store[State]
	newID  func() string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLineIDs replaces the line id generator.
func WithLineIDs(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Open rehydrates the cart stored under key, resolving items through cat.
func Open(ctx context.Context, sl slot.Slot, key string, cat catalog.Catalog, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		newID:  func() string { return uuid.NewString() },
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.inner = store.Open[State](ctx, "cart", sl, key, NewCodec(cat, logger), logger)
	return s
}

// Dispatch applies cmd and returns the resulting state.
func (s *Store) Dispatch(ctx context.Context, cmd Command) State {
	if add, ok := cmd.(AddItem); ok && add.LineID == "" {
		add.LineID = s.newID()
		cmd = add
	}
	return s.inner.Apply(ctx, func(st State) State { return Reduce(st, cmd) })
}

// AddItem adds item to the cart. Quantity defaults to 1; values below 1 are
// treated as 1.
func (s *Store) AddItem(ctx context.Context, item catalog.Item, quantity ...int) State {
	qty := 1
	if len(quantity) > 0 && quantity[0] > 0 {
		qty = quantity[0]
	}
	return s.Dispatch(ctx, AddItem{Item: item, Quantity: qty})
}

func (s *Store) RemoveItem(ctx context.Context, lineID string) State {
	return s.Dispatch(ctx, RemoveItem{LineID: lineID})
}

func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) State {
	return s.Dispatch(ctx, UpdateQuantity{LineID: lineID, Quantity: quantity})
}

func (s *Store) UpdateOptions(ctx context.Context, lineID string, patch OptionsPatch) State {
	return s.Dispatch(ctx, UpdateOptions{LineID: lineID, Patch: patch})
}

func (s *Store) ClearCart(ctx context.Context) State {
	return s.Dispatch(ctx, Clear{})
}

func (s *Store) SetStep(ctx context.Context, step Step) State {
	return s.Dispatch(ctx, SetStep{Step: step})
}

func (s *Store) ToggleOpen(ctx context.Context) State {
	return s.Dispatch(ctx, ToggleOpen{})
}

// State returns the current cart.
func (s *Store) State() State { return s.inner.Snapshot() }

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []LineItem {
	items := s.inner.Snapshot().Items
	return append([]LineItem(nil), items...)
}

func (s *Store) Step() Step        { return s.inner.Snapshot().Step }
func (s *Store) IsOpen() bool      { return s.inner.Snapshot().IsOpen }
func (s *Store) TotalItems() int   { return s.inner.Snapshot().TotalItems() }
func (s *Store) TotalPrice() int64 { return s.inner.Snapshot().TotalPrice() }

// Contains reports whether a line for the catalog item exists.
func (s *Store) Contains(itemID string) bool {
	_, ok := s.inner.Snapshot().FindByItem(itemID)
	return ok
}

// Subscribe calls fn with every new cart state.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.inner.Subscribe(fn)
}

// Key returns the slot key the cart persists to.
func (s *Store) Key() string { return s.inner.Key() }

// Refresh retries loading a stored cart that could not be resolved against
// the catalog when the store was opened.
func (s *Store) Refresh(ctx context.Context) { s.inner.Refresh(ctx) }

func (s *Store) Resolved() bool { return s.inner.Resolved() }
