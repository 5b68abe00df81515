// Package notify holds the user-visible notification list and its unread
// counter, dropping duplicates on insert.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"kepngern/internal/core"
	"kepngern/internal/event"
	"kepngern/internal/log"
)

type EventKind string

const (
	Added      EventKind = "added"
	MarkedRead EventKind = "marked_read"
	AllRead    EventKind = "all_read"
	Deleted    EventKind = "deleted"
	Cleared    EventKind = "cleared"
)

// Event is published after every mutation that changed the list. Added
// events carry the stored notification.
type Event struct {
	Kind         EventKind
	Notification core.Notification
}

// State is the persisted shape of the notification list, newest first.
type State struct {
	Notifications []core.Notification `json:"notifications"`
	UnreadCount   int                 `json:"unreadCount"`
}

// Notifications is the surface shared by the store and its persisting decorator.
type Notifications interface {
	Add(ctx context.Context, in core.NotificationInput) (core.Notification, bool)
	MarkAsRead(ctx context.Context, id string)
	MarkAllAsRead(ctx context.Context)
	Delete(ctx context.Context, id string)
	ClearAll(ctx context.Context)
	List() []core.Notification
	UnreadCount() int
	Subscribe(fn event.Listener[Event]) (cancel func())
}

type Store struct {
	mu     sync.Mutex
	items  []core.Notification
	unread int

	hub    event.Hub[Event]
	newID  func() string
	now    func() time.Time
	logger *log.Logger
}

var _ Notifications = (*Store)(nil)

type Option func(*Store)

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store holding state. The unread counter is recomputed from
// the entries rather than trusted from the snapshot.
func New(state State, opts ...Option) *Store {
	s := &Store{
		items:  append([]core.Notification(nil), state.Notifications...),
		newID:  uuid.NewString,
		now:    time.Now,
		logger: log.Discard(),
	}
	for _, n := range s.items {
		if !n.Read {
			s.unread++
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentNotifications)
	return s
}

func (s *Store) Subscribe(fn event.Listener[Event]) func() {
	return s.hub.Subscribe(fn)
}

// Snapshot copies the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Notifications: append([]core.Notification{}, s.items...),
		UnreadCount:   s.unread,
	}
}

// Add stores a new unread notification at the front of the list. It reports
// false and stores nothing when the type is unknown or when an entry with the
// same id, or the same type and message, already exists.
func (s *Store) Add(ctx context.Context, in core.NotificationInput) (core.Notification, bool) {
	if !in.Type.IsValid() {
		s.logger.WarnContext(ctx, "Notification with unknown type dropped", log.FieldNotifType, string(in.Type))
		return core.Notification{}, false
	}

	s.mu.Lock()
	for _, n := range s.items {
		if (in.ID != "" && n.ID == in.ID) || (n.Type == in.Type && n.Message == in.Message) {
			s.mu.Unlock()
			s.logger.DebugContext(ctx, "Duplicate notification dropped",
				log.NewFields().WithNotification(n.ID, string(in.Type)).ToSlice()...)
			return n, false
		}
	}

	id := in.ID
	if id == "" {
		id = s.newID()
	}
	n := core.Notification{
		ID:        id,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Read:      false,
		CreatedAt: s.now(),
		Link:      in.Link,
	}
	s.items = append([]core.Notification{n}, s.items...)
	s.unread++
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Notification added",
		log.NewFields().WithNotification(n.ID, string(n.Type)).ToSlice()...)
	s.hub.Publish(ctx, Event{Kind: Added, Notification: n})
	return n, true
}

// MarkAsRead flips one unread entry to read. Missing or already read
// entries are left alone.
func (s *Store) MarkAsRead(ctx context.Context, id string) {
	s.mu.Lock()
	var changed *core.Notification
	for i := range s.items {
		if s.items[i].ID == id {
			if !s.items[i].Read {
				s.items[i].Read = true
				s.unread = max(s.unread-1, 0)
				n := s.items[i]
				changed = &n
			}
			break
		}
	}
	s.mu.Unlock()

	if changed != nil {
		s.hub.Publish(ctx, Event{Kind: MarkedRead, Notification: *changed})
	}
}

func (s *Store) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.unread = 0
	s.mu.Unlock()

	s.hub.Publish(ctx, Event{Kind: AllRead})
}

func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	var removed *core.Notification
	for i := range s.items {
		if s.items[i].ID == id {
			n := s.items[i]
			removed = &n
			s.items = append(s.items[:i], s.items[i+1:]...)
			if !n.Read {
				s.unread = max(s.unread-1, 0)
			}
			break
		}
	}
	s.mu.Unlock()

	if removed != nil {
		s.hub.Publish(ctx, Event{Kind: Deleted, Notification: *removed})
	}
}

func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.unread = 0
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Notifications cleared", log.FieldOperation, log.OpClear)
	s.hub.Publish(ctx, Event{Kind: Cleared})
}

// List returns the notifications newest first.
func (s *Store) List() []core.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Notification{}, s.items...)
}

func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}
