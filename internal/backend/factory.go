package backend

import (
	"context"
	"fmt"

	"kepngern/internal/log"
	"kepngern/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case FileBackend:
		return f.createFileBackend(ctx, config)
	case MemoryBackend:
		f.logger.WarnContext(ctx, "Using memory backend; data is lost on restart")
		return &BackendResult{Slot: storage.NewMemorySlot()}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	slot, err := storage.NewSQLiteSlot(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite slot: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Slot: slot, Cleanup: slot.Close}, nil
}

func (f *DefaultFactory) createFileBackend(ctx context.Context, config Config) (*BackendResult, error) {
	slot, err := storage.NewFileSlot(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file slot: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized file backend", "data_directory", config.DataDirectory)
	return &BackendResult{Slot: slot}, nil
}
