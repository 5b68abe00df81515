// Package delivery forwards notification messages from the queue to a chat.
package delivery

import (
	"context"
	"time"

	"kepngern/internal/amqp"
	"kepngern/internal/cache"
	"kepngern/internal/log"
)

// Sender pushes rendered text somewhere a person will read it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// LogSender writes messages to the log. It stands in for Telegram when no
// bot is configured.
type LogSender struct {
	logger *log.Logger
}

func NewLogSender(logger *log.Logger) *LogSender {
	if logger == nil {
		logger = log.Discard()
	}
	return &LogSender{logger: logger.WithComponent(log.ComponentDelivery)}
}

func (s *LogSender) SendWithRetry(ctx context.Context, text string, _ int) error {
	s.logger.InfoContext(ctx, "Notification delivered to log", "text", text)
	return nil
}

// Config holds configuration for the delivery handler
type Config struct {
	// MaxRetries is the number of extra send attempts per message (default: 3, negative for none)
	MaxRetries int

	// RememberSent is how many delivered ids are kept to skip redeliveries (default: 1024)
	RememberSent int

	// RememberFor bounds how long a delivered id is remembered (default: 24h)
	RememberFor time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		RememberSent: 1024,
		RememberFor:  24 * time.Hour,
	}
}

// Handler delivers queued notification messages through a Sender.
type Handler struct {
	sender Sender
	config Config
	sent   *cache.LRU[struct{}]
	logger *log.Logger
}

func NewHandler(sender Sender, config Config, logger *log.Logger) *Handler {
	defaults := DefaultConfig()
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	} else if config.MaxRetries == 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.RememberSent <= 0 {
		config.RememberSent = defaults.RememberSent
	}
	if config.RememberFor <= 0 {
		config.RememberFor = defaults.RememberFor
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Handler{
		sender: sender,
		config: config,
		sent:   cache.NewLRU[struct{}](config.RememberSent, config.RememberFor),
		logger: logger.WithComponent(log.ComponentDelivery),
	}
}

// Handle delivers msg. An error makes the consumer requeue the message.
func (h *Handler) Handle(ctx context.Context, msg *amqp.NotificationMessage) error {
	fields := log.NewFields().WithOperation(log.OpDeliver).WithNotification(msg.ID, msg.Type)

	if msg.ID != "" {
		if _, dup := h.sent.Get(msg.ID); dup {
			h.logger.DebugContext(ctx, "Notification already delivered", fields.ToSlice()...)
			return nil
		}
	}

	if err := h.sender.SendWithRetry(ctx, FormatNotification(msg), h.config.MaxRetries); err != nil {
		h.logger.ErrorContext(ctx, "Notification delivery failed", fields.WithError(err).ToSlice()...)
		return err
	}

	if msg.ID != "" {
		h.sent.Set(msg.ID, struct{}{})
	}
	h.logger.InfoContext(ctx, "Notification delivered", fields.ToSlice()...)
	return nil
}
