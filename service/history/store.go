package history

import (
	"context"
	"sync"
)

// SlotKey is the fixed name of the key-value slot holding the serialized
// history blob. It mirrors the storage key the browser client used.
const SlotKey = "transaction"

// Store is the persistence capability for the payment history. The history
// lives in a single key-value slot as a serialized blob: Load deserializes it
// (absence and corruption both yield an empty history), Save overwrites it in
// full. No concurrent-writer coordination is provided; there is a single
// logical writer per slot.
type Store interface {
	Load(ctx context.Context) (History, error)
	Save(ctx context.Context, h History) error
}

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu sync.Mutex
	h  History
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the held history.
func (s *MemoryStore) Load(_ context.Context) (History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(History, len(s.h))
	copy(out, s.h)
	return out, nil
}

// Save replaces the held history with a copy of h.
func (s *MemoryStore) Save(_ context.Context, h History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h = make(History, len(h))
	copy(s.h, h)
	return nil
}
