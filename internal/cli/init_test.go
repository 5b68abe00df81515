package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"kepngern/internal/config"
)

func TestSetupLoggerJSON(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"

	var buf bytes.Buffer
	logger, err := SetupLogger(cfg, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "shown", record["msg"])
	require.Equal(t, "v", record["k"])
	require.Equal(t, "app", record["component"])
}

func TestSetupLoggerRejectsBadLevel(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogLevel = "loud"
	_, err := SetupLogger(cfg, &bytes.Buffer{})
	require.Error(t, err)
}

func TestLoadConfigFromPath(t *testing.T) {
	path := t.TempDir() + "/kepngern.yaml"
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\ndata_backend: memory\n"), 0o600))
	t.Setenv(ConfigPathEnv, path)
	t.Setenv("PORT", "")
	t.Setenv("DATA_BACKEND", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.DataBackend)
	require.Equal(t, "9090", cfg.Port)
}

func TestBootstrapValidation(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	want := errors.New("nope")
	_, _, err := Bootstrap(func(*config.Config) error { return want })
	require.ErrorIs(t, err, want)
}

func TestSignalContextStopsWithParent(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := SignalContext(parent, nil)
	defer cancel()

	cancelParent()
	<-ctx.Done()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}
