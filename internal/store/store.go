// Package store mirrors an in-memory collection into a durable slot.
//
// A Store is rehydrated exactly once when opened and writes the whole
// collection back after every mutation. Persistence problems are logged and
// never surfaced: a failed read starts from the empty collection, a failed
// write leaves the in-memory state as the source of truth.
//
// A document that cannot be rebuilt because a collaborator is unavailable
// (Decode returns ErrUnresolved) is not treated as malformed. The store keeps
// it, defers writes, and retries the decode; mutations made in the meantime
// are replayed on top of the stored collection once it resolves.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/slot"
)

// ErrUnresolved marks a decode that failed for a transient reason, such as
// an unreachable catalog, rather than because the document is bad.
var ErrUnresolved = errors.New("collection unresolved")

// RetryInterval is the minimum time between Refresh attempts on an
// unresolved collection.
const RetryInterval = 5 * time.Second

// Codec converts a collection to and from its persisted document.
type Codec[S any] interface {
	// Empty returns the collection used when nothing usable is stored.
	Empty() S
	Encode(state S) ([]byte, error)
	Decode(ctx context.Context, data []byte) (S, error)
}

// Store holds one collection and its slot binding.
type Store[S any] struct {
	name   string
	key    string
	slot   slot.Slot
	codec  Codec[S]
	logger *slog.Logger

	mu    sync.Mutex
	state S

	// pending is the stored document while it is unresolved; deferred holds
	// the mutations applied since.
	pending  []byte
	deferred []func(S) S
	lastTry  time.Time
	now      func() time.Time

	subMu   sync.RWMutex
	subs    map[int]func(S)
	nextSub int
}

// Open rehydrates the collection stored under key. name labels log lines and
// metrics (for example "cart" or "wishlist").
func Open[S any](ctx context.Context, name string, sl slot.Slot, key string, codec Codec[S], logger *slog.Logger) *Store[S] {
	s := &Store[S]{
		name:   name,
		key:    key,
		slot:   sl,
		codec:  codec,
		logger: logger.With(slog.String("collection", name), slog.String("slot_key", key)),
		subs:   make(map[int]func(S)),
		now:    time.Now,
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store[S]) rehydrate(ctx context.Context) {
	s.state = s.codec.Empty()

	data, err := s.slot.Load(ctx, s.key)
	switch {
	case errors.Is(err, slot.ErrEmpty):
		slotLoads.WithLabelValues(s.name, "empty").Inc()
		return
	case err != nil:
		slotLoads.WithLabelValues(s.name, "unreadable").Inc()
		s.logger.WarnContext(ctx, "slot unreadable, starting empty", slog.String("error", err.Error()))
		return
	}

	state, err := s.codec.Decode(ctx, data)
	switch {
	case errors.Is(err, ErrUnresolved):
		slotLoads.WithLabelValues(s.name, "unresolved").Inc()
		s.logger.WarnContext(ctx, "slot content unresolved, keeping stored copy", slog.String("error", err.Error()))
		s.pending = data
		s.lastTry = s.now()
	case err != nil:
		slotLoads.WithLabelValues(s.name, "undecodable").Inc()
		s.logger.WarnContext(ctx, "slot content malformed, starting empty", slog.String("error", err.Error()))
	default:
		slotLoads.WithLabelValues(s.name, "ok").Inc()
		s.state = state
	}
}

// resolveLocked retries decoding the pending document and reports whether the
// store is resolved afterwards. On success the deferred mutations are
// replayed over the decoded collection. s.mu must be held.
func (s *Store[S]) resolveLocked(ctx context.Context) bool {
	if s.pending == nil {
		return true
	}
	s.lastTry = s.now()

	state, err := s.codec.Decode(ctx, s.pending)
	switch {
	case errors.Is(err, ErrUnresolved):
		s.logger.WarnContext(ctx, "slot content still unresolved", slog.String("error", err.Error()))
		return false
	case err != nil:
		slotLoads.WithLabelValues(s.name, "undecodable").Inc()
		s.logger.WarnContext(ctx, "slot content malformed, dropping stored copy", slog.String("error", err.Error()))
		s.pending, s.deferred = nil, nil
		return true
	}

	for _, fn := range s.deferred {
		state = fn(state)
	}
	slotLoads.WithLabelValues(s.name, "ok").Inc()
	s.logger.InfoContext(ctx, "slot content resolved", slog.Int("replayed", len(s.deferred)))
	s.state = state
	s.pending, s.deferred = nil, nil
	return true
}

// Apply replaces the state with fn(state), writes it to the slot and notifies
// subscribers. fn must not mutate its argument. The new state is kept even
// when the write fails. While the stored document is unresolved the write is
// deferred and fn is kept for replay.
func (s *Store[S]) Apply(ctx context.Context, fn func(S) S) S {
	s.mu.Lock()
	resolved := s.resolveLocked(ctx)
	next := fn(s.state)
	s.state = next
	if resolved {
		s.persist(ctx, next)
	} else {
		s.deferred = append(s.deferred, fn)
		s.logger.WarnContext(ctx, "write deferred until slot content resolves",
			slog.Int("deferred", len(s.deferred)),
		)
	}
	s.mu.Unlock()

	s.notify(next)
	return next
}

// Refresh retries an unresolved rehydration, at most once per RetryInterval.
// When it succeeds the collection is persisted and subscribers are notified.
func (s *Store[S]) Refresh(ctx context.Context) {
	s.mu.Lock()
	if s.pending == nil || s.now().Sub(s.lastTry) < RetryInterval || !s.resolveLocked(ctx) {
		s.mu.Unlock()
		return
	}
	state := s.state
	s.persist(ctx, state)
	s.mu.Unlock()

	s.notify(state)
}

// Resolved reports whether the stored collection has been rebuilt.
func (s *Store[S]) Resolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending == nil
}

// Snapshot returns the current state.
func (s *Store[S]) Snapshot() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Key returns the slot key the store persists to.
func (s *Store[S]) Key() string {
	return s.key
}

// Subscribe registers fn to receive every state produced by Apply or a
// successful Refresh. The returned function removes the subscription.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store[S]) persist(ctx context.Context, state S) {
	data, err := s.codec.Encode(state)
	if err != nil {
		slotWrites.WithLabelValues(s.name, "error").Inc()
		s.logger.ErrorContext(ctx, "encode collection failed", slog.String("error", err.Error()))
		return
	}
	if err := s.slot.Store(ctx, s.key, data); err != nil {
		slotWrites.WithLabelValues(s.name, "error").Inc()
		s.logger.ErrorContext(ctx, "persist collection failed", slog.String("error", err.Error()))
		return
	}
	slotWrites.WithLabelValues(s.name, "ok").Inc()
	s.logger.DebugContext(ctx, "collection persisted", slog.Int("bytes", len(data)))
}

func (s *Store[S]) notify(state S) {
	s.subMu.RLock()
	fns := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(state)
	}
}
