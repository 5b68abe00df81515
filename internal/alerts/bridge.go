// Package alerts turns budget status into notifications. It re-evaluates
// every budget after each ledger change and relies on the notification
// store to drop repeats.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"kepngern/internal/core"
	"kepngern/internal/event"
	"kepngern/internal/ledger"
	"kepngern/internal/log"
)

const (
	OverTitle = "⚠️ เกินงบประมาณ"
	NearTitle = "🔔 ใกล้เกินงบประมาณ"

	// BudgetLink points the client at the budget page.
	BudgetLink = "/budget"
)

// nearRatio is the share of a limit above which a budget counts as nearly spent.
var nearRatio = decimal.RequireFromString("0.8")

// Source is the part of the ledger the bridge watches.
type Source interface {
	BudgetStatus() []core.BudgetStatus
	Subscribe(fn event.Listener[ledger.Event]) (cancel func())
}

// Sink is the part of the notification store the bridge writes to.
type Sink interface {
	Add(ctx context.Context, in core.NotificationInput) (core.Notification, bool)
	List() []core.Notification
}

type Bridge struct {
	mu     sync.Mutex
	source Source
	sink   Sink
	logger *log.Logger
}

func New(source Source, sink Sink, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Discard()
	}
	return &Bridge{
		source: source,
		sink:   sink,
		logger: logger.WithComponent(log.ComponentAlerts),
	}
}

// Start evaluates once and then after every transaction or budget change.
// The returned function stops observing.
func (b *Bridge) Start(ctx context.Context) (stop func()) {
	cancel := b.source.Subscribe(func(ctx context.Context, e ledger.Event) {
		if e.Kind == ledger.ProfileUpdated {
			return
		}
		b.Evaluate(ctx)
	})
	b.Evaluate(ctx)
	return cancel
}

// Evaluate checks every budget in order and emits at most one notification
// per budget. It returns how many notifications were stored.
func (b *Bridge) Evaluate(ctx context.Context) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Notifications stored during this pass must not suppress later budgets.
	existing := b.sink.List()
	emitted := 0
	for _, st := range b.source.BudgetStatus() {
		if hasBudgetAlert(existing, st.Category) {
			continue
		}
		in, ok := Notification(st)
		if !ok {
			continue
		}
		if n, added := b.sink.Add(ctx, in); added {
			emitted++
			b.logger.InfoContext(ctx, "Budget alert emitted",
				log.FieldOperation, log.OpEvaluate,
				log.FieldCategory, st.Category,
				log.FieldNotificationID, n.ID,
				log.FieldNotifType, string(n.Type))
		}
	}
	return emitted
}

// hasBudgetAlert matches on a plain substring of the message, so a category
// whose name is contained in another category's alert is also suppressed.
func hasBudgetAlert(existing []core.Notification, category string) bool {
	for _, n := range existing {
		if n.Type == core.NotificationBudget && strings.Contains(n.Message, category) {
			return true
		}
	}
	return false
}

// Notification builds the notification a budget status calls for, if any.
// Over-limit wins over near-limit.
func Notification(st core.BudgetStatus) (core.NotificationInput, bool) {
	switch {
	case st.Status == core.StatusOver:
		return core.NotificationInput{
			Type:  core.NotificationBudget,
			Title: OverTitle,
			Message: fmt.Sprintf("หมวดหมู่ \"%s\" เกินงบประมาณแล้ว! ใช้ไป %s บาท จากงบ %s บาท",
				st.Category, core.FormatAmount(st.Spent), core.FormatAmount(st.Limit)),
			Link: BudgetLink,
		}, true
	case isNear(st):
		return core.NotificationInput{
			Type:  core.NotificationAlert,
			Title: NearTitle,
			Message: fmt.Sprintf("หมวดหมู่ \"%s\" ใช้งบประมาณไปแล้ว %s%% ใกล้จะเกินงบประมาณแล้ว",
				st.Category, core.FormatPercent(st.UsedPercent())),
			Link: BudgetLink,
		}, true
	default:
		return core.NotificationInput{}, false
	}
}

func isNear(st core.BudgetStatus) bool {
	return st.Exceeds(nearRatio)
}

// Messages renders the dashboard alert lines for statuses, in order.
func Messages(statuses []core.BudgetStatus) []string {
	var out []string
	for _, st := range statuses {
		switch {
		case st.Status == core.StatusOver:
			out = append(out, fmt.Sprintf("⚠️ เกินงบประมาณในหมวดหมู่ \"%s\" ใช้ไป %s บาท จากงบ %s บาท",
				st.Category, core.FormatAmount(st.Spent), core.FormatAmount(st.Limit)))
		case isNear(st):
			out = append(out, fmt.Sprintf("🔔 ใกล้เกินงบประมาณในหมวดหมู่ \"%s\" ใช้ไป %s%%",
				st.Category, core.FormatPercent(st.UsedPercent())))
		}
	}
	return out
}
