// Package session maps client ids to their persisted cart and wishlist.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/cart"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/slot"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/wishlist"
)

// DefaultIdleTTL is used when Config.IdleTTL is zero.
const DefaultIdleTTL = 30 * time.Minute

// Session is the pair of stores belonging to one client.
type Session struct {
	ClientID string
	Cart     *cart.Store
	Wishlist *wishlist.Store
}

// Notifier receives store changes. *event.Producer satisfies it.
type Notifier interface {
	CartSubscriber(clientID string) func(cart.State)
	WishlistSubscriber(clientID string) func(wishlist.State)
}

// Config holds the slot key prefixes and how long an unused session stays
// open.
type Config struct {
	CartKey     string
	WishlistKey string
	IdleTTL     time.Duration
}

type entry struct {
	session     *Session
	lastSeen    time.Time
	unsubscribe []func()
}

// Registry opens stores lazily on first use and hands out the same instances
// while the client stays active. Sessions idle for longer than the TTL are
// closed by EvictLoop; their collections are already persisted and are
// rehydrated on the next request.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	opening  singleflight.Group
	now      func() time.Time

	slot     slot.Slot
	catalog  catalog.Catalog
	cfg      Config
	notifier Notifier
	cartOpts []cart.Option
	logger   *slog.Logger
}

// NewRegistry creates a registry. notifier may be nil.
func NewRegistry(sl slot.Slot, cat catalog.Catalog, cfg Config, notifier Notifier, logger *slog.Logger, cartOpts ...cart.Option) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Registry{
		sessions: make(map[string]*entry),
		now:      time.Now,
		slot:     sl,
		catalog:  cat,
		cfg:      cfg,
		notifier: notifier,
		cartOpts: cartOpts,
		logger:   logger,
	}
}

// Get returns the session for clientID, opening it if needed. Opening does
// slot and catalog I/O outside the registry lock; concurrent first requests
// for the same client share one open, which is not cut short when the
// caller that started it goes away.
func (r *Registry) Get(ctx context.Context, clientID string) *Session {
	if s := r.touch(clientID); s != nil {
		s.Cart.Refresh(ctx)
		s.Wishlist.Refresh(ctx)
		return s
	}

	v, _, _ := r.opening.Do(clientID, func() (any, error) {
		if s := r.touch(clientID); s != nil {
			return s, nil
		}
		e := r.open(context.WithoutCancel(ctx), clientID)
		r.mu.Lock()
		r.sessions[clientID] = e
		r.mu.Unlock()
		return e.session, nil
	})
	return v.(*Session)
}

func (r *Registry) touch(clientID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[clientID]
	if !ok {
		return nil
	}
	e.lastSeen = r.now()
	return e.session
}

func (r *Registry) open(ctx context.Context, clientID string) *entry {
	log := r.logger.With(slog.String("client_id", clientID))
	e := &entry{
		session: &Session{
			ClientID: clientID,
			Cart:     cart.Open(ctx, r.slot, r.cfg.CartKey+":"+clientID, r.catalog, log, r.cartOpts...),
			Wishlist: wishlist.Open(ctx, r.slot, r.cfg.WishlistKey+":"+clientID, r.catalog, log),
		},
		lastSeen: r.now(),
	}
	if r.notifier != nil {
		e.unsubscribe = append(e.unsubscribe,
			e.session.Cart.Subscribe(r.notifier.CartSubscriber(clientID)),
			e.session.Wishlist.Subscribe(r.notifier.WishlistSubscriber(clientID)),
		)
	}

	log.DebugContext(ctx, "session opened",
		slog.Int("cart_items", e.session.Cart.TotalItems()),
		slog.Int("wishlist_items", e.session.Wishlist.TotalItems()),
	)
	return e
}

// Evict closes sessions idle for longer than the TTL and returns how many
// were closed.
func (r *Registry) Evict() int {
	r.mu.Lock()
	now := r.now()
	var idle []*entry
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.cfg.IdleTTL {
			idle = append(idle, e)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, e := range idle {
		for _, unsubscribe := range e.unsubscribe {
			unsubscribe()
		}
	}
	if len(idle) > 0 {
		r.logger.Debug("idle sessions closed", slog.Int("closed", len(idle)))
	}
	return len(idle)
}

// EvictLoop runs Evict every TTL until ctx is cancelled.
func (r *Registry) EvictLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.IdleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
