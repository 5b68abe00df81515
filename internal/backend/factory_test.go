package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kepngern/internal/config"
	"kepngern/internal/storage"
)

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name   string
		config Config
		want   any
	}{
		{"memory", Config{Type: MemoryBackend}, &storage.MemorySlot{}},
		{"file", Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "data")}, &storage.FileSlot{}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "kepngern.db")}, &storage.SQLiteSlot{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			require.NoError(t, err)
			defer func() { require.NoError(t, res.Close()) }()

			require.IsType(t, tt.want, res.Slot)

			require.NoError(t, res.Slot.Save(ctx, "probe", []byte(`{"ok":true}`)))
			data, err := res.Slot.Load(ctx, "probe")
			require.NoError(t, err)
			require.JSONEq(t, `{"ok":true}`, string(data))
		})
	}
}

func TestCreateBackendRejectsBadConfig(t *testing.T) {
	f := NewFactory(nil)
	for _, cfg := range []Config{
		{Type: "postgres"},
		{Type: SQLiteBackend},
		{Type: FileBackend},
	} {
		_, err := f.CreateBackend(context.Background(), cfg)
		require.Error(t, err, "%+v", cfg)
	}
}

func TestFromAppConfig(t *testing.T) {
	app := config.Defaults()
	app.DataBackend = "sqlite"
	app.SQLiteDBPath = "/tmp/x.db"

	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	require.Equal(t, SQLiteBackend, cfg.Type)
	require.Equal(t, "/tmp/x.db", cfg.SQLiteDBPath)
	require.Equal(t, app.DataDir, cfg.DataDirectory)

	app.DataBackend = "postgres"
	_, err = FromAppConfig(app)
	require.Error(t, err)

	_, err = FromAppConfig(nil)
	require.Error(t, err)
}

func TestBackendTypeStrings(t *testing.T) {
	require.Equal(t, []string{"memory", "file", "sqlite"}, GetBackendTypeStrings())
	require.Equal(t, config.ValidBackends, GetBackendTypeStrings())
}

func TestNilResultClose(t *testing.T) {
	var res *BackendResult
	require.NoError(t, res.Close())
}
