package amqp

import (
	"encoding/json"
	"time"

	"kepngern/internal/core"
)

// NotificationMessage carries one stored notification to the delivery worker.
type NotificationMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage wraps n for publishing.
func NewNotificationMessage(n core.Notification) *NotificationMessage {
	return &NotificationMessage{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
