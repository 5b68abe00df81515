package core

import "github.com/shopspring/decimal"

// FinancialSummary totals every transaction by type.
type FinancialSummary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

// BudgetStatus compares the expenses of one budgeted category against its limit.
type BudgetStatus struct {
	Category string          `json:"category"`
	Spent    decimal.Decimal `json:"spent"`
	Limit    decimal.Decimal `json:"limit"`
	Status   BudgetState     `json:"status"`
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Summarize computes the financial summary of txs.
func Summarize(txs []Transaction) FinancialSummary {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return FinancialSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
	}
}

// StatusOf evaluates one budget against the amount spent in its category.
func StatusOf(b Budget, spent decimal.Decimal) BudgetStatus {
	state := StatusUnder
	if spent.GreaterThan(b.Limit) {
		state = StatusOver
	}
	return BudgetStatus{
		Category: b.Category,
		Spent:    spent,
		Limit:    b.Limit,
		Status:   state,
	}
}

// Exceeds reports whether spent is strictly above share of the limit. It
// multiplies instead of dividing so no precision is lost to rounding.
func (s BudgetStatus) Exceeds(share decimal.Decimal) bool {
	return s.Limit.IsPositive() && s.Spent.GreaterThan(s.Limit.Mul(share))
}

// UsedPercent is spent/limit*100.
func (s BudgetStatus) UsedPercent() decimal.Decimal {
	if s.Limit.IsZero() {
		return decimal.Zero
	}
	return Percent(s.Spent, s.Limit)
}

// ByCategory totals the amounts of transactions of type kind per category,
// in the order categories are first seen.
func ByCategory(txs []Transaction, kind TransactionType) []CategoryAmount {
	index := map[string]int{}
	var out []CategoryAmount
	for _, t := range txs {
		if t.Type != kind {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryAmount{Name: t.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}
