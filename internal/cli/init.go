// Package cli holds the startup steps shared by the kepngern binaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kepngern/internal/config"
	"kepngern/internal/log"
)

// ConfigPathEnv names the optional YAML config file.
const ConfigPathEnv = "CONFIG_PATH"

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads the YAML file named by CONFIG_PATH (if any) and the
// environment.
func LoadConfig() (*config.Config, error) {
	return config.Load(os.Getenv(ConfigPathEnv))
}

// SetupLogger builds the process logger from the configured level and format
// and installs it as the slog default.
func SetupLogger(cfg *config.Config, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logConfig := log.DefaultConfig()
	logConfig.Level = level
	logConfig.Format = cfg.LogFormat
	if out != nil {
		logConfig.Output = out
	}

	logger := log.New(logConfig)
	log.SetDefault(logger)
	return logger, nil
}

// Bootstrap runs the common startup sequence: .env, config, validation and
// logger. validate is the check the binary needs, e.g. (*config.Config).Validate.
func Bootstrap(validate func(*config.Config) error) (*config.Config, *log.Logger, error) {
	LoadEnvFile()

	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if validate != nil {
		if err := validate(cfg); err != nil {
			return nil, nil, err
		}
	}

	logger, err := SetupLogger(cfg, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}
	return cfg, logger, nil
}

// SignalContext returns a context cancelled on SIGINT, SIGTERM or when
// parent is done.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	if logger == nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	} else {
		logger.Error(msg, log.FieldError, err)
	}
	os.Exit(1)
}
