package slot

import (
	"context"
	"sync"
)

// MemorySlot keeps documents in process memory. It backs local development
// and tests; FailWrites simulates a full or unavailable store.
type MemorySlot struct {
	mu       sync.RWMutex
	data     map[string][]byte
	writeErr error
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

// FailWrites makes every subsequent Store and Delete return err. Passing nil
// restores normal behaviour.
func (s *MemorySlot) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *MemorySlot) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrEmpty
	}
	return append([]byte(nil), data...), nil
}

func (s *MemorySlot) Store(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemorySlot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	delete(s.data, key)
	return nil
}

func (s *MemorySlot) Ping(context.Context) error { return nil }
