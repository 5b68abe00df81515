package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"kepngern/internal/core"
)

// SeedState is the demo data a fresh install starts with. Dates are
// relative to the UTC calendar day of now.
func SeedState(now time.Time) State {
	now = now.UTC()
	day := func(daysAgo int) core.Date {
		return core.DateOf(now.AddDate(0, 0, -daysAgo))
	}
	return State{
		Transactions: []core.Transaction{
			{ID: "1", Type: core.Expense, Category: "อาหาร", Amount: decimal.NewFromInt(150), Date: day(0), Description: "อาหารเย็น"},
			{ID: "2", Type: core.Expense, Category: "เดินทาง", Amount: decimal.NewFromInt(80), Date: day(1), Description: "ค่าแท็กซี่"},
			{ID: "3", Type: core.Income, Category: "เงินเดือน", Amount: decimal.NewFromInt(30000), Date: day(0)},
			{ID: "4", Type: core.Expense, Category: "ค่าเช่า", Amount: decimal.NewFromInt(8000), Date: day(2)},
			{ID: "5", Type: core.Expense, Category: "บิล", Amount: decimal.NewFromInt(2500), Date: day(3), Description: "ค่าไฟ"},
		},
		Budgets: []core.Budget{
			{Category: "อาหาร", Limit: decimal.NewFromInt(3000)},
			{Category: "เดินทาง", Limit: decimal.NewFromInt(2000)},
			{Category: "ค่าเช่า", Limit: decimal.NewFromInt(8000)},
			{Category: "บิล", Limit: decimal.NewFromInt(3000)},
		},
		Profile: core.DefaultProfile(),
	}
}
