package delivery

import (
	"fmt"
	"html"
	"strings"
	"time"

	"kepngern/internal/amqp"
)

// bangkok is the display zone for timestamps.
var bangkok = time.FixedZone("ICT", 7*60*60)

var typeIcons = map[string]string{
	"budget":   "💸",
	"alert":    "📊",
	"reminder": "⏰",
	"success":  "✅",
}

// FormatNotification renders msg as a Telegram HTML message.
func FormatNotification(msg *amqp.NotificationMessage) string {
	var b strings.Builder

	icon := typeIcons[msg.Type]
	if icon == "" {
		icon = "🔔"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b>\n\n", icon, html.EscapeString(msg.Title)))
	b.WriteString(html.EscapeString(msg.Message))
	b.WriteString("\n")

	if !msg.CreatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("\n<i>%s</i>", msg.CreatedAt.In(bangkok).Format("2006-01-02 15:04")))
	}
	if msg.Link != "" {
		b.WriteString(fmt.Sprintf("\n%s", html.EscapeString(msg.Link)))
	}
	return b.String()
}
