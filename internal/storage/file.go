package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot stores each snapshot as <dir>/<name>.json.
type FileSlot struct {
	dir string
}

func NewFileSlot(dir string) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileSlot{dir: dir}, nil
}

func (f *FileSlot) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

// Load reads the snapshot file. A missing file yields ErrNotFound.
func (f *FileSlot) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot %s: %w", name, err)
	}
	return data, nil
}

// Save writes to a temp file in the same directory and renames it over the
// previous snapshot, so readers never observe a partial write.
func (f *FileSlot) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path(name)); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", name, err)
	}
	return nil
}
