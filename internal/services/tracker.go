// Package services assembles the ledger, the notification store and the
// alert bridge into one running finance tracker.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kepngern/internal/alerts"
	"kepngern/internal/ledger"
	"kepngern/internal/log"
	"kepngern/internal/notify"
	"kepngern/internal/storage"
)

// Config controls how a Tracker is opened.
type Config struct {
	// Seed fills an empty ledger slot with the sample data.
	Seed bool

	// Now is the clock for seed dates and notification timestamps (default: time.Now)
	Now func() time.Time

	// Publisher receives every new notification. Nil disables forwarding.
	Publisher Publisher
	Forwarder ForwarderConfig

	Logger        *log.Logger
	LedgerOptions []ledger.Option
	NotifyOptions []notify.Option
}

// Tracker owns the persisted stores and the observers wired between them.
type Tracker struct {
	Ledger        *ledger.Persisted
	Notifications *notify.Persisted

	bridge    *alerts.Bridge
	forwarder *Forwarder
	logger    *log.Logger

	closeOnce sync.Once
	stops     []func()
}

// Open hydrates both stores from slot, subscribes the forwarder, and starts
// the alert bridge, which evaluates the hydrated budgets once right away.
func Open(ctx context.Context, slot storage.Slot, cfg Config) (*Tracker, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	notifications, err := notify.Open(ctx, slot, logger, append([]notify.Option{notify.WithClock(now)}, cfg.NotifyOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("open notifications: %w", err)
	}

	l, err := ledger.Open(ctx, slot, ledger.OpenOptions{
		Seed:   cfg.Seed,
		Now:    now,
		Logger: logger,
		Store:  cfg.LedgerOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	t := &Tracker{
		Ledger:        l,
		Notifications: notifications,
		logger:        logger.WithComponent(log.ComponentApp),
	}

	// Subscribed before the bridge starts so startup alerts are forwarded too.
	if cfg.Publisher != nil {
		t.forwarder = NewForwarder(cfg.Publisher, cfg.Forwarder, logger)
		t.stops = append(t.stops, notifications.Subscribe(t.forwarder.Listen))
	}

	t.bridge = alerts.New(l, notifications, logger)
	t.stops = append(t.stops, t.bridge.Start(ctx))

	t.logger.InfoContext(ctx, "Tracker ready",
		log.FieldOperation, log.OpStartup,
		"forwarding", t.forwarder != nil,
		"unread", notifications.UnreadCount())
	return t, nil
}

// Alerts renders the dashboard alert lines for the current budgets.
func (t *Tracker) Alerts() []string {
	return alerts.Messages(t.Ledger.BudgetStatus())
}

// Run forwards notifications until ctx is done. Without a publisher it just
// waits for ctx.
func (t *Tracker) Run(ctx context.Context) error {
	if t.forwarder == nil {
		<-ctx.Done()
		return nil
	}
	return t.forwarder.Run(ctx)
}

// Close detaches every observer. Stores stay readable.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		for i := len(t.stops) - 1; i >= 0; i-- {
			t.stops[i]()
		}
		t.logger.Info("Tracker closed", log.FieldOperation, log.OpShutdown)
	})
}
