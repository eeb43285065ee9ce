// Package persistence loads and saves the whole work item collection to a single durable slot.
package persistence

import (
	"context"
	"sync"
)

// Slot is a single named location holding the entire serialized collection.
// Read returns nil data and no error when nothing has been stored yet.
// Write replaces the whole document; readers never observe a partial write.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// MemorySlot keeps the document in process memory
type MemorySlot struct {
	mu     sync.RWMutex
	data   []byte
	writes int
}

// NewMemorySlot returns a slot pre-filled with data (which may be nil)
func NewMemorySlot(data []byte) *MemorySlot {
	return &MemorySlot{data: append([]byte(nil), data...)}
}

// Read returns a copy of the stored document
func (s *MemorySlot) Read(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

// Write replaces the stored document
func (s *MemorySlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.writes++
	return nil
}

// Writes returns how many times the slot was written
func (s *MemorySlot) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
