package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"kepngern/internal/core"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(category, amount string) core.TransactionInput {
	return core.TransactionInput{Type: core.Expense, Category: category, Amount: d(amount), Date: "2024-01-10"}
}

func income(category, amount string) core.TransactionInput {
	return core.TransactionInput{Type: core.Income, Category: category, Amount: d(amount), Date: "2024-01-10"}
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("tx-%d", n)
	})
}

func TestAddTransactionAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := New(State{})

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		tx, err := s.AddTransaction(ctx, expense("อาหาร", "1"))
		require.NoError(t, err)
		require.NotEmpty(t, tx.ID)
		require.False(t, seen[tx.ID], "duplicate id %s", tx.ID)
		seen[tx.ID] = true
	}
	require.Len(t, s.Transactions(), 20)
}

func TestAddTransactionRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := New(State{})

	bads := []core.TransactionInput{
		expense("อาหาร", "0"),
		expense("อาหาร", "-10"),
		expense("", "10"),
		{Type: core.Expense, Category: "x", Amount: d("1"), Date: "not-a-date"},
		{Type: "gift", Category: "x", Amount: d("1"), Date: "2024-01-01"},
	}
	for i, in := range bads {
		_, err := s.AddTransaction(ctx, in)
		require.Error(t, err, "case %d", i)
		require.True(t, core.IsValidationError(err), "case %d: %v", i, err)
	}
	require.Empty(t, s.Transactions())
}

func TestSummaryInvariantAcrossOrders(t *testing.T) {
	ctx := context.Background()
	inputs := []core.TransactionInput{
		income("เงินเดือน", "30000"),
		expense("อาหาร", "150.50"),
		expense("ค่าเช่า", "8000"),
		income("ฟรีแลนซ์", "1200.25"),
		expense("บิล", "2500"),
	}

	forward := New(State{})
	backward := New(State{})
	for i := range inputs {
		_, err := forward.AddTransaction(ctx, inputs[i])
		require.NoError(t, err)
		_, err = backward.AddTransaction(ctx, inputs[len(inputs)-1-i])
		require.NoError(t, err)
	}

	a, b := forward.FinancialSummary(), backward.FinancialSummary()
	require.True(t, a.TotalIncome.Equal(d("31200.25")), a.TotalIncome.String())
	require.True(t, a.TotalExpense.Equal(d("10650.50")), a.TotalExpense.String())
	require.True(t, a.Balance.Equal(a.TotalIncome.Sub(a.TotalExpense)))
	require.True(t, a.TotalIncome.Equal(b.TotalIncome))
	require.True(t, a.TotalExpense.Equal(b.TotalExpense))
	require.True(t, a.Balance.Equal(b.Balance))
}

func TestAddThenDeleteRestoresSummary(t *testing.T) {
	ctx := context.Background()
	s := New(SeedState(fixedNow()))
	before := s.FinancialSummary()

	tx, err := s.AddTransaction(ctx, expense("อาหาร", "99.99"))
	require.NoError(t, err)
	require.False(t, s.FinancialSummary().Balance.Equal(before.Balance))

	s.DeleteTransaction(ctx, tx.ID)
	after := s.FinancialSummary()
	require.True(t, before.TotalIncome.Equal(after.TotalIncome))
	require.True(t, before.TotalExpense.Equal(after.TotalExpense))
	require.True(t, before.Balance.Equal(after.Balance))
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()
	s := New(State{}, sequentialIDs())

	tx, err := s.AddTransaction(ctx, expense("อาหาร", "100"))
	require.NoError(t, err)
	require.Equal(t, "tx-1", tx.ID)

	require.NoError(t, s.UpdateTransaction(ctx, tx.ID, core.TransactionInput{
		Type: core.Income, Category: "โบนัส", Amount: d("500"), Date: "2024-02-01", Description: "Q1",
	}))
	got := s.Transactions()
	require.Len(t, got, 1)
	require.Equal(t, "tx-1", got[0].ID)
	require.Equal(t, core.Income, got[0].Type)
	require.Equal(t, "โบนัส", got[0].Category)
	require.Equal(t, "2024-02-01", got[0].Date.String())
	require.Equal(t, "Q1", got[0].Description)

	// Unknown id is a silent no-op.
	require.NoError(t, s.UpdateTransaction(ctx, "missing", expense("x", "1")))
	require.Len(t, s.Transactions(), 1)

	// Invalid input is rejected and nothing changes.
	err = s.UpdateTransaction(ctx, tx.ID, expense("อาหาร", "0"))
	require.True(t, errors.Is(err, core.ErrInvalidAmount))
	require.True(t, s.Transactions()[0].Amount.Equal(d("500")))
}

func TestDeleteMissingTransactionIsNoop(t *testing.T) {
	ctx := context.Background()
	s := New(SeedState(fixedNow()))
	s.DeleteTransaction(ctx, "nope")
	require.Len(t, s.Transactions(), 5)
}

func TestSetBudgetUpsertKeepsPosition(t *testing.T) {
	ctx := context.Background()
	s := New(State{})

	require.NoError(t, s.SetBudget(ctx, "อาหาร", d("3000")))
	require.NoError(t, s.SetBudget(ctx, "เดินทาง", d("2000")))
	require.NoError(t, s.SetBudget(ctx, "อาหาร", d("3000")))
	require.NoError(t, s.SetBudget(ctx, "อาหาร", d("4500")))

	budgets := s.Budgets()
	require.Len(t, budgets, 2)
	require.Equal(t, "อาหาร", budgets[0].Category)
	require.True(t, budgets[0].Limit.Equal(d("4500")))

	status := s.BudgetStatus()
	require.Len(t, status, 2)
	require.Equal(t, "อาหาร", status[0].Category)
	require.Equal(t, "เดินทาง", status[1].Category)
}

func TestSetBudgetValidation(t *testing.T) {
	ctx := context.Background()
	s := New(State{})
	require.True(t, errors.Is(s.SetBudget(ctx, "อาหาร", d("0")), core.ErrInvalidLimit))
	require.True(t, errors.Is(s.SetBudget(ctx, "อาหาร", d("-1")), core.ErrInvalidLimit))
	require.True(t, errors.Is(s.SetBudget(ctx, " ", d("1")), core.ErrEmptyCategory))
	require.Empty(t, s.Budgets())
}

func TestBudgetStatus(t *testing.T) {
	ctx := context.Background()
	s := New(State{})
	require.NoError(t, s.SetBudget(ctx, "อาหาร", d("3000")))
	require.NoError(t, s.SetBudget(ctx, "เดินทาง", d("1000")))

	_, err := s.AddTransaction(ctx, expense("อาหาร", "3500"))
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, expense("เดินทาง", "850"))
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, expense("ช้อปปิ้ง", "999"))
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, income("อาหาร", "10000"))
	require.NoError(t, err)

	status := s.BudgetStatus()
	require.Len(t, status, 2)
	for _, st := range status {
		require.NotEqual(t, "ช้อปปิ้ง", st.Category)
	}
	require.Equal(t, core.StatusOver, status[0].Status)
	require.True(t, status[0].Spent.Equal(d("3500")), "income must not count as spent")
	require.Equal(t, core.StatusUnder, status[1].Status)
	require.True(t, status[1].Spent.Equal(d("850")))

	s.DeleteBudget(ctx, "อาหาร")
	status = s.BudgetStatus()
	require.Len(t, status, 1)
	require.Equal(t, "เดินทาง", status[0].Category)

	s.DeleteBudget(ctx, "อาหาร")
	require.Len(t, s.Budgets(), 1)
}

func TestBudgetWithoutExpensesReportsZero(t *testing.T) {
	s := New(State{Budgets: []core.Budget{{Category: "บิล", Limit: d("3000")}}})
	status := s.BudgetStatus()
	require.Len(t, status, 1)
	require.True(t, status[0].Spent.IsZero())
	require.Equal(t, core.StatusUnder, status[0].Status)
}

func TestCategoryTotals(t *testing.T) {
	s := New(SeedState(fixedNow()))
	exp := s.CategoryTotals(core.Expense)
	require.Len(t, exp, 4)
	require.Equal(t, "อาหาร", exp[0].Name)
	inc := s.CategoryTotals(core.Income)
	require.Len(t, inc, 1)
	require.True(t, inc[0].Amount.Equal(d("30000")))
}

func TestEventsFollowMutations(t *testing.T) {
	ctx := context.Background()
	s := New(State{}, sequentialIDs())

	var got []Event
	cancel := s.Subscribe(func(_ context.Context, e Event) {
		// The store lock is released before listeners run.
		_ = s.BudgetStatus()
		got = append(got, e)
	})

	_, err := s.AddTransaction(ctx, expense("อาหาร", "10"))
	require.NoError(t, err)
	require.NoError(t, s.UpdateTransaction(ctx, "tx-1", expense("อาหาร", "20")))
	require.NoError(t, s.UpdateTransaction(ctx, "missing", expense("อาหาร", "20")))
	s.DeleteTransaction(ctx, "tx-1")
	s.DeleteTransaction(ctx, "tx-1")
	require.NoError(t, s.SetBudget(ctx, "อาหาร", d("100")))
	s.DeleteBudget(ctx, "อาหาร")
	_, err = s.AddTransaction(ctx, expense("", "10"))
	require.Error(t, err)
	first := "หมู"
	_, err = s.UpdateProfile(ctx, core.ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	_, err = s.UpdateProfile(ctx, core.ProfileUpdate{FirstName: &first})
	require.NoError(t, err)

	require.Equal(t, []Event{
		{Kind: TransactionAdded, Ref: "tx-1"},
		{Kind: TransactionUpdated, Ref: "tx-1"},
		{Kind: TransactionDeleted, Ref: "tx-1"},
		{Kind: BudgetSet, Ref: "อาหาร"},
		{Kind: BudgetDeleted, Ref: "อาหาร"},
		{Kind: ProfileUpdated, Ref: "moowan06"},
	}, got)

	cancel()
	_, err = s.AddTransaction(ctx, expense("อาหาร", "10"))
	require.NoError(t, err)
	require.Len(t, got, 6)
}

func TestSeedState(t *testing.T) {
	st := SeedState(fixedNow())
	require.Len(t, st.Transactions, 5)
	require.Len(t, st.Budgets, 4)
	require.Equal(t, "2024-06-15", st.Transactions[0].Date.String())
	require.Equal(t, "2024-06-14", st.Transactions[1].Date.String())
	require.Equal(t, "2024-06-12", st.Transactions[4].Date.String())
	require.Equal(t, core.DefaultProfile(), st.Profile)

	sum := core.Summarize(st.Transactions)
	require.True(t, sum.TotalIncome.Equal(d("30000")))
	require.True(t, sum.TotalExpense.Equal(d("10730")))
}

func TestSeedStateUsesUTCDay(t *testing.T) {
	// 06:00 on 16 June in Bangkok is still 15 June in UTC.
	bangkok := time.FixedZone("ICT", 7*60*60)
	st := SeedState(time.Date(2024, 6, 16, 6, 0, 0, 0, bangkok))
	require.Equal(t, "2024-06-15", st.Transactions[0].Date.String())
	require.Equal(t, "2024-06-12", st.Transactions[4].Date.String())
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := New(State{})
	require.Equal(t, core.DefaultProfile(), s.Profile())

	first, last := "  หมู ", "หวาน"
	p, err := s.UpdateProfile(ctx, core.ProfileUpdate{FirstName: &first, LastName: &last})
	require.NoError(t, err)
	require.Equal(t, "หมู", p.FirstName)
	require.Equal(t, "หวาน", p.LastName)
	require.Equal(t, "moowan@example.com", p.Email)
	require.Equal(t, p, s.Profile())
	require.Equal(t, p, s.Snapshot().Profile)

	bad := "x@"
	_, err = s.UpdateProfile(ctx, core.ProfileUpdate{Email: &bad})
	require.True(t, core.IsValidationError(err))
	require.Equal(t, p, s.Profile())
}
