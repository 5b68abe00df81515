package notify

import (
	"context"
	"fmt"

	"kepngern/internal/core"
	"kepngern/internal/log"
	"kepngern/internal/storage"
)

// Persisted decorates a Store with a snapshot write after every mutation.
type Persisted struct {
	*Store
	writer *storage.SnapshotWriter[State]
}

var _ Notifications = (*Persisted)(nil)

// Open hydrates the store from slot, starting empty when nothing was saved.
func Open(ctx context.Context, slot storage.Slot, logger *log.Logger, opts ...Option) (*Persisted, error) {
	if logger == nil {
		logger = log.Discard()
	}
	state, found, err := storage.Hydrate[State](ctx, slot, storage.NotificationsSlot)
	if err != nil {
		return nil, fmt.Errorf("hydrate notifications: %w", err)
	}

	p := &Persisted{
		Store:  New(state, append([]Option{WithLogger(logger)}, opts...)...),
		writer: storage.NewSnapshotWriter[State](slot, storage.NotificationsSlot, logger),
	}
	logger.WithComponent(log.ComponentNotifications).InfoContext(ctx, "Notifications hydrated",
		log.FieldOperation, log.OpHydrate,
		"from_snapshot", found,
		"notifications", len(state.Notifications),
		"unread", p.UnreadCount())
	return p, nil
}

func (p *Persisted) save(ctx context.Context) {
	_ = p.writer.Sync(ctx, p.Store.Snapshot)
}

func (p *Persisted) Add(ctx context.Context, in core.NotificationInput) (core.Notification, bool) {
	n, added := p.Store.Add(ctx, in)
	if added {
		p.save(ctx)
	}
	return n, added
}

func (p *Persisted) MarkAsRead(ctx context.Context, id string) {
	p.Store.MarkAsRead(ctx, id)
	p.save(ctx)
}

func (p *Persisted) MarkAllAsRead(ctx context.Context) {
	p.Store.MarkAllAsRead(ctx)
	p.save(ctx)
}

func (p *Persisted) Delete(ctx context.Context, id string) {
	p.Store.Delete(ctx, id)
	p.save(ctx)
}

func (p *Persisted) ClearAll(ctx context.Context) {
	p.Store.ClearAll(ctx)
	p.save(ctx)
}
