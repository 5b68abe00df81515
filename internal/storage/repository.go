package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSlot stores snapshots as rows of the snapshots table.
type SQLiteSlot struct {
	db *sql.DB
}

func NewSQLiteSlot(dbPath string) (*SQLiteSlot, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; sqlite serializes anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteSlot{db: db}, nil
}

func (s *SQLiteSlot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteSlot) Load(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	return data, nil
}

func (s *SQLiteSlot) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	return nil
}

// updatedAt reports when the named snapshot was last written.
func (s *SQLiteSlot) updatedAt(ctx context.Context, name string) (time.Time, error) {
	var ts time.Time
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM snapshots WHERE name = ?`, name).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read snapshot time %s: %w", name, err)
	}
	return ts, nil
}
