// Package storage provides the durable key-value slots the stores snapshot
// their state into, plus the envelope and hydrate helpers shared by them.
package storage

import (
	"context"
	"errors"
	"sync"
)

// Fixed slot names, one per store.
const (
	LedgerSlot        = "finance-storage"
	NotificationsSlot = "notifications-storage"
)

// ErrNotFound is returned by Load when nothing was ever saved under a name.
var ErrNotFound = errors.New("snapshot not found")

// Slot is a durable key-value location holding one serialized snapshot per name.
type Slot interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// MemorySlot keeps snapshots in process memory.
type MemorySlot struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (m *MemorySlot) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemorySlot) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves reports how many writes the slot has accepted.
func (m *MemorySlot) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
