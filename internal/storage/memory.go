package storage

import (
	"context"
	"sync"
)

// MemorySlot keeps the value in process memory. Nothing survives the process.
type MemorySlot struct {
	mu    sync.Mutex
	key   string
	value []byte
	set   bool
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot(key string) *MemorySlot {
	return &MemorySlot{key: key}
}

// Key returns the slot key.
func (s *MemorySlot) Key() string { return s.key }

// Location returns "memory:<key>".
func (s *MemorySlot) Location() string { return "memory:" + s.key }

// Close is a no-op; the value stays readable.
func (s *MemorySlot) Close() error { return nil }

// Get returns a copy of the stored value, or ErrAbsent before the first Put.
func (s *MemorySlot) Get(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrAbsent
	}
	return append([]byte(nil), s.value...), nil
}

// Put replaces the stored value with a copy of value.
func (s *MemorySlot) Put(ctx context.Context, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = append([]byte(nil), value...)
	s.set = true
	return nil
}
