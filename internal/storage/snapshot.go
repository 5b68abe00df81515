package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"kepngern/internal/log"
)

// SchemaVersion is written into every envelope.
const SchemaVersion = 0

// Envelope is the on-disk shape of a snapshot: {"state": ..., "version": N}.
type Envelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// Hydrate loads the named snapshot. found is false when the slot has never
// been written; a snapshot that cannot be decoded is an error.
func Hydrate[T any](ctx context.Context, slot Slot, name string) (state T, found bool, err error) {
	data, err := slot.Load(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return state, false, nil
	}
	if err != nil {
		return state, false, err
	}
	var env Envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return state, false, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	if env.Version > SchemaVersion {
		return state, false, fmt.Errorf("snapshot %s has unsupported version %d", name, env.Version)
	}
	return env.State, true, nil
}

// SnapshotWriter serializes a store's state into its named slot. Writes are
// serialized so that two mutations never interleave their saves.
type SnapshotWriter[T any] struct {
	mu     sync.Mutex
	slot   Slot
	name   string
	logger *log.Logger
}

func NewSnapshotWriter[T any](slot Slot, name string, logger *log.Logger) *SnapshotWriter[T] {
	if logger == nil {
		logger = log.Discard()
	}
	return &SnapshotWriter[T]{
		slot:   slot,
		name:   name,
		logger: logger.WithComponent(log.ComponentStorage),
	}
}

// Sync captures the state with snapshot and saves it while holding the
// writer lock, so concurrent mutations land in the slot in capture order.
func (w *SnapshotWriter[T]) Sync(ctx context.Context, snapshot func() T) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.Marshal(Envelope[T]{State: snapshot(), Version: SchemaVersion})
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to encode snapshot", log.FieldSlot, w.name, log.FieldError, err)
		return fmt.Errorf("encode snapshot %s: %w", w.name, err)
	}
	if err := w.slot.Save(ctx, w.name, data); err != nil {
		w.logger.ErrorContext(ctx, "Failed to save snapshot", log.FieldSlot, w.name, log.FieldError, err)
		return err
	}
	w.logger.DebugContext(ctx, "Snapshot saved", log.FieldSlot, w.name, log.FieldBytes, len(data))
	return nil
}
