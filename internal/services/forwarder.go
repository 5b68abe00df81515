package services

import (
	"context"
	"sync/atomic"
	"time"

	"kepngern/internal/core"
	"kepngern/internal/log"
	"kepngern/internal/notify"
)

// Publisher sends a stored notification to the delivery pipeline.
type Publisher interface {
	PublishNotification(ctx context.Context, n core.Notification) error
}

// ForwarderConfig holds configuration for the notification forwarder
type ForwarderConfig struct {
	// QueueSize bounds the notifications waiting to be published (default: 64)
	QueueSize int

	// PublishTimeout caps a single publish attempt (default: 5s)
	PublishTimeout time.Duration
}

// DefaultForwarderConfig returns sensible defaults
func DefaultForwarderConfig() ForwarderConfig {
	return ForwarderConfig{
		QueueSize:      64,
		PublishTimeout: 5 * time.Second,
	}
}

// Forwarder hands every newly stored notification to a Publisher from its
// own goroutine, so store listeners never wait on the broker.
type Forwarder struct {
	publisher Publisher
	config    ForwarderConfig
	logger    *log.Logger
	queue     chan core.Notification

	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func NewForwarder(publisher Publisher, config ForwarderConfig, logger *log.Logger) *Forwarder {
	defaults := DefaultForwarderConfig()
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = defaults.PublishTimeout
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Forwarder{
		publisher: publisher,
		config:    config,
		logger:    logger.WithComponent(log.ComponentAMQP),
		queue:     make(chan core.Notification, config.QueueSize),
	}
}

// Listen is a notify.Event listener. Only additions are forwarded; a full
// queue drops the notification, which stays in the store regardless.
func (f *Forwarder) Listen(ctx context.Context, ev notify.Event) {
	if ev.Kind != notify.Added {
		return
	}
	select {
	case f.queue <- ev.Notification:
	default:
		f.dropped.Add(1)
		f.logger.WarnContext(ctx, "Forward queue full, notification not published",
			log.NewFields().WithNotification(ev.Notification.ID, string(ev.Notification.Type)).ToSlice()...)
	}
}

// Run publishes queued notifications until ctx is done.
func (f *Forwarder) Run(ctx context.Context) error {
	f.logger.InfoContext(ctx, "Notification forwarder started", "queue_size", f.config.QueueSize)
	for {
		select {
		case <-ctx.Done():
			f.logger.InfoContext(ctx, "Notification forwarder stopped",
				"pending", len(f.queue),
				"published", f.published.Load(),
				"failed", f.failed.Load(),
				"dropped", f.dropped.Load())
			return nil
		case n := <-f.queue:
			f.publish(ctx, n)
		}
	}
}

func (f *Forwarder) publish(ctx context.Context, n core.Notification) {
	ctx, cancel := context.WithTimeout(ctx, f.config.PublishTimeout)
	defer cancel()

	if err := f.publisher.PublishNotification(ctx, n); err != nil {
		f.failed.Add(1)
		// The notification is already stored; delivery is best effort.
		f.logger.ErrorContext(ctx, "Failed to publish notification",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithNotification(n.ID, string(n.Type)).
				WithError(err).
				ToSlice()...)
		return
	}
	f.published.Add(1)
}

// Stats reports published, failed and dropped counts.
func (f *Forwarder) Stats() (published, failed, dropped int64) {
	return f.published.Load(), f.failed.Load(), f.dropped.Load()
}
