package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"kepngern/internal/amqp"
	"kepngern/internal/auth"
	"kepngern/internal/backend"
	"kepngern/internal/cli"
	"kepngern/internal/config"
	apphttp "kepngern/internal/http"
	"kepngern/internal/log"
	"kepngern/internal/middleware/ratelimit"
	"kepngern/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, logger, err := cli.Bootstrap((*config.Config).Validate)
	if err != nil {
		cli.Fatal(nil, "Startup failed", err)
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		cli.Fatal(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	store, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	trackerConfig := services.Config{
		Seed:      cfg.Seed,
		Logger:    logger,
		Forwarder: services.DefaultForwarderConfig(),
	}
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// The API stays usable without fan-out.
			logger.Warn("AMQP unavailable, notifications stay local", log.FieldError, err)
		} else {
			defer client.Close()
			trackerConfig.Publisher = client
		}
	}

	tracker, err := services.Open(ctx, store.Slot, trackerConfig)
	if err != nil {
		return err
	}
	defer tracker.Close()

	authenticator := auth.New(auth.Config{
		Username:     cfg.AuthUsername,
		PasswordHash: cfg.AuthPasswordHash,
		Secret:       cfg.JWTSecret,
		TTL:          cfg.SessionTTL,
	}, logger)

	srv := apphttp.NewServer(net.JoinHostPort("", cfg.Port), apphttp.Deps{
		Ledger:        tracker.Ledger,
		Notifications: tracker.Notifications,
		Auth:          authenticator,
		Alerts:        tracker.Alerts,
		LoginLimit:    ratelimit.DefaultConfig(),
		Logger:        logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting kepngern server",
			"port", cfg.Port,
			"backend", backendConfig.Type.String(),
			"amqp", trackerConfig.Publisher != nil,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return tracker.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
