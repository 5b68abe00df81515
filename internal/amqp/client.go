package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"kepngern/internal/core"
	"kepngern/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxDialRetries = 5
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Discard()
	}
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}

	if err := client.connect(context.Background()); err != nil {
		return nil, err
	}
	return client, nil
}

// connect dials the broker, retrying connection errors with exponential backoff.
func (c *Client) connect(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < maxDialRetries; attempt++ {
		if attempt > 0 {
			wait := exponentialBackoff(attempt - 1)
			c.logger.WarnContext(ctx, "Retrying AMQP connection", log.FieldAttempt, attempt, "wait", wait, log.FieldError, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		lastErr = c.dial()
		if lastErr == nil {
			return nil
		}
		if !isConnectionError(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("connect to AMQP after %d attempts: %w", maxDialRetries, lastErr)
}

func (c *Client) dial() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.conn, c.channel = conn, channel
	c.mu.Unlock()
	return nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	// Declare exchange
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Declare queue
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key is the queue name on a direct exchange
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

func (c *Client) currentChannel(ctx context.Context) (*amqp091.Channel, error) {
	c.mu.Lock()
	ch, conn := c.channel, c.conn
	c.mu.Unlock()

	if ch != nil && conn != nil && !conn.IsClosed() && !ch.IsClosed() {
		return ch, nil
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel, nil
}

// PublishNotification publishes n to the notifications queue.
func (c *Client) PublishNotification(ctx context.Context, n core.Notification) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish notification %s: %w", n.ID, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := NewNotificationMessage(n).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.currentChannel(ctx)
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			MessageId:    n.ID,
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.logger.InfoContext(ctx, "Published notification message",
		log.FieldOperation, log.OpPublish,
		log.FieldNotificationID, n.ID,
		log.FieldNotifType, string(n.Type),
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// ConsumeNotifications hands every queued message to handler until ctx is
// done. Messages that fail to decode are dropped; handler errors requeue.
func (c *Client) ConsumeNotifications(ctx context.Context, handler func(context.Context, *NotificationMessage) error) error {
	ch, err := c.currentChannel(ctx)
	if err != nil {
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming notification messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.handleDelivery(ctx, delivery, handler)
		}
	}
}

// acknowledger is the subset of amqp091.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler func(context.Context, *NotificationMessage) error) {
	settle(ctx, c.logger, delivery.Body, delivery, handler)
}

func settle(ctx context.Context, logger *log.Logger, body []byte, ack acknowledger, handler func(context.Context, *NotificationMessage) error) {
	msg, err := NotificationMessageFromJSON(body)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to unmarshal message", log.FieldError, err)
		_ = ack.Nack(false, false) // reject and don't requeue
		return
	}

	if err := handler(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to handle message",
			log.FieldError, err,
			log.FieldNotificationID, msg.ID)
		_ = ack.Nack(false, true) // reject and requeue
		return
	}

	_ = ack.Ack(false)
	logger.DebugContext(ctx, "Processed notification message", log.FieldNotificationID, msg.ID)
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()

	failures := atomic.AddInt64(&c.failureCount, 1)
	if failures >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			if c.logger != nil {
				c.logger.Warn("AMQP circuit breaker opened", "failures", failures)
			}
		}
	}
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection closed", "eof", "broken pipe", "closed network connection", "connection reset"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
