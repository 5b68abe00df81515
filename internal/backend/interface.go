// Package backend selects where the stores keep their snapshots.
package backend

import (
	"context"

	"kepngern/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the slot and an optional cleanup function
type BackendResult struct {
	Slot    storage.Slot
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates slots based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for slot creation
type Config struct {
	Type BackendType

	// File backend
	DataDirectory string

	// SQLite backend
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
