package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"kepngern/internal/alerts"
	"kepngern/internal/core"
	"kepngern/internal/notify"
	"kepngern/internal/storage"
)

type fakePublisher struct {
	mu   sync.Mutex
	sent []core.Notification
	err  error
}

func (f *fakePublisher) PublishNotification(_ context.Context, n core.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakePublisher) Sent() []core.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Notification(nil), f.sent...)
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
}

func TestOpenSeededTrackerRaisesStartupAlerts(t *testing.T) {
	ctx := context.Background()
	tr, err := Open(ctx, storage.NewMemorySlot(), Config{Seed: true, Now: fixedNow})
	require.NoError(t, err)
	defer tr.Close()

	list := tr.Notifications.List()
	require.Len(t, list, 2)
	for _, n := range list {
		require.Equal(t, core.NotificationAlert, n.Type)
		require.Equal(t, alerts.NearTitle, n.Title)
	}
	require.Equal(t, 2, tr.Notifications.UnreadCount())

	lines := tr.Alerts()
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "ค่าเช่า")
	require.Contains(t, lines[1], "บิล")
}

func TestTrackerReactsToLedgerChanges(t *testing.T) {
	ctx := context.Background()
	tr, err := Open(ctx, storage.NewMemorySlot(), Config{Now: fixedNow})
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, tr.Ledger.SetBudget(ctx, "อาหาร", decimal.NewFromInt(3000)))
	_, err = tr.Ledger.AddTransaction(ctx, core.TransactionInput{
		Type: core.Expense, Category: "อาหาร", Amount: decimal.NewFromInt(3500), Date: "2024-06-15",
	})
	require.NoError(t, err)

	list := tr.Notifications.List()
	require.Len(t, list, 1)
	require.Equal(t, core.NotificationBudget, list[0].Type)
	require.Equal(t, fixedNow(), list[0].CreatedAt)
}

func TestTrackerStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()

	first, err := Open(ctx, slot, Config{Seed: true, Now: fixedNow})
	require.NoError(t, err)
	first.Notifications.MarkAllAsRead(ctx)
	first.Close()

	second, err := Open(ctx, slot, Config{Seed: true, Now: fixedNow})
	require.NoError(t, err)
	defer second.Close()

	// Same alerts already exist, so nothing new is raised.
	require.Len(t, second.Notifications.List(), 2)
	require.Zero(t, second.Notifications.UnreadCount())
	require.Len(t, second.Ledger.Transactions(), 5)
}

func TestCloseDetachesBridge(t *testing.T) {
	ctx := context.Background()
	tr, err := Open(ctx, storage.NewMemorySlot(), Config{Now: fixedNow})
	require.NoError(t, err)
	tr.Close()
	tr.Close()

	require.NoError(t, tr.Ledger.SetBudget(ctx, "บิล", decimal.NewFromInt(100)))
	_, err = tr.Ledger.AddTransaction(ctx, core.TransactionInput{
		Type: core.Expense, Category: "บิล", Amount: decimal.NewFromInt(500), Date: "2024-06-15",
	})
	require.NoError(t, err)
	require.Empty(t, tr.Notifications.List())
}

func TestTrackerForwardsNotifications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := &fakePublisher{}
	tr, err := Open(ctx, storage.NewMemorySlot(), Config{Seed: true, Now: fixedNow, Publisher: pub})
	require.NoError(t, err)
	defer tr.Close()

	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	require.Eventually(t, func() bool { return len(pub.Sent()) == 2 }, time.Second, 5*time.Millisecond)

	// Read state changes are not forwarded.
	tr.Notifications.MarkAllAsRead(ctx)
	tr.Notifications.Add(ctx, core.NotificationInput{Type: core.NotificationSuccess, Title: "ok", Message: "saved"})
	require.Eventually(t, func() bool { return len(pub.Sent()) == 3 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "saved", pub.Sent()[2].Message)

	cancel()
	require.NoError(t, <-done)
}

func TestRunWithoutPublisherWaitsForContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr, err := Open(ctx, storage.NewMemorySlot(), Config{Now: fixedNow})
	require.NoError(t, err)
	defer tr.Close()

	cancel()
	require.NoError(t, tr.Run(ctx))
}

func TestForwarderDropsWhenQueueFull(t *testing.T) {
	pub := &fakePublisher{}
	f := NewForwarder(pub, ForwarderConfig{QueueSize: 1}, nil)
	ctx := context.Background()

	f.Listen(ctx, notify.Event{Kind: notify.Added, Notification: core.Notification{ID: "a"}})
	f.Listen(ctx, notify.Event{Kind: notify.Added, Notification: core.Notification{ID: "b"}})
	f.Listen(ctx, notify.Event{Kind: notify.Deleted, Notification: core.Notification{ID: "c"}})

	_, _, dropped := f.Stats()
	require.EqualValues(t, 1, dropped)
	require.Len(t, f.queue, 1)
}

func TestForwarderCountsFailures(t *testing.T) {
	pub := &fakePublisher{err: errors.New("circuit breaker is open")}
	f := NewForwarder(pub, ForwarderConfig{}, nil)

	f.publish(context.Background(), core.Notification{ID: "a"})

	published, failed, _ := f.Stats()
	require.Zero(t, published)
	require.EqualValues(t, 1, failed)
}
