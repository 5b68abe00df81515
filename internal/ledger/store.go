// Package ledger owns transactions and budgets and derives the summary and
// budget status views from them on every read.
package ledger

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kepngern/internal/core"
	"kepngern/internal/event"
	"kepngern/internal/log"
)

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	TransactionAdded   EventKind = "transaction_added"
	TransactionUpdated EventKind = "transaction_updated"
	TransactionDeleted EventKind = "transaction_deleted"
	BudgetSet          EventKind = "budget_set"
	BudgetDeleted      EventKind = "budget_deleted"
	ProfileUpdated     EventKind = "profile_updated"
)

// Event is published after every mutation that changed ledger state.
// Ref is the transaction id, the budget category or the username.
type Event struct {
	Kind EventKind
	Ref  string
}

// State is the persisted shape of the ledger.
type State struct {
	Transactions []core.Transaction `json:"transactions"`
	Budgets      []core.Budget      `json:"budgets"`
	Profile      core.Profile       `json:"user"`
}

// Ledger is the read/write surface shared by the in-memory store and its
// persisting decorator.
type Ledger interface {
	AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) error
	DeleteTransaction(ctx context.Context, id string)
	Transactions() []core.Transaction
	FinancialSummary() core.FinancialSummary
	SetBudget(ctx context.Context, category string, limit decimal.Decimal) error
	DeleteBudget(ctx context.Context, category string)
	Budgets() []core.Budget
	BudgetStatus() []core.BudgetStatus
	CategoryTotals(kind core.TransactionType) []core.CategoryAmount
	Profile() core.Profile
	UpdateProfile(ctx context.Context, u core.ProfileUpdate) (core.Profile, error)
	Subscribe(fn event.Listener[Event]) (cancel func())
}

// Store is the in-memory ledger. All methods are safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	budgets      []core.Budget
	profile      core.Profile

	hub    event.Hub[Event]
	newID  func() string
	logger *log.Logger
}

var _ Ledger = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the store logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a ledger holding state. A state without a profile gets the
// default one.
func New(state State, opts ...Option) *Store {
	profile := state.Profile
	if profile.Username == "" {
		profile = core.DefaultProfile()
	}
	s := &Store{
		transactions: append([]core.Transaction(nil), state.Transactions...),
		budgets:      append([]core.Budget(nil), state.Budgets...),
		profile:      profile,
		newID:        uuid.NewString,
		logger:       log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	return s
}

// Subscribe registers fn for change events.
func (s *Store) Subscribe(fn event.Listener[Event]) func() {
	return s.hub.Subscribe(fn)
}

// Snapshot copies the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Transactions: append([]core.Transaction{}, s.transactions...),
		Budgets:      append([]core.Budget{}, s.budgets...),
		Profile:      s.profile,
	}
}

func (s *Store) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t, err := in.Build(s.newID())
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	s.transactions = append(s.transactions, t)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Transaction added",
		log.NewFields().WithTransaction(t.ID, string(t.Type), t.Category, t.Amount.String()).ToSlice()...)
	s.hub.Publish(ctx, Event{Kind: TransactionAdded, Ref: t.ID})
	return t, nil
}

// UpdateTransaction replaces every field of the transaction with id, keeping
// the id. An unknown id is a no-op; invalid input is rejected either way.
func (s *Store) UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) error {
	t, err := in.Build(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	found := false
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i] = t
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return nil
	}
	s.hub.Publish(ctx, Event{Kind: TransactionUpdated, Ref: id})
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) {
	s.mu.Lock()
	found := false
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.hub.Publish(ctx, Event{Kind: TransactionDeleted, Ref: id})
	}
}

// Transactions returns every transaction in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.transactions...)
}

func (s *Store) FinancialSummary() core.FinancialSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(s.transactions)
}

// SetBudget inserts a budget or replaces the limit of an existing one in place.
func (s *Store) SetBudget(ctx context.Context, category string, limit decimal.Decimal) error {
	b := core.Budget{Category: strings.TrimSpace(category), Limit: limit}
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.budgets {
		if s.budgets[i].Category == b.Category {
			s.budgets[i].Limit = b.Limit
			replaced = true
			break
		}
	}
	if !replaced {
		s.budgets = append(s.budgets, b)
	}
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Budget set", log.FieldCategory, b.Category, log.FieldLimit, b.Limit.String())
	s.hub.Publish(ctx, Event{Kind: BudgetSet, Ref: b.Category})
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, category string) {
	category = strings.TrimSpace(category)
	s.mu.Lock()
	found := false
	for i := range s.budgets {
		if s.budgets[i].Category == category {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.hub.Publish(ctx, Event{Kind: BudgetDeleted, Ref: category})
	}
}

// Budgets returns every budget in declaration order.
func (s *Store) Budgets() []core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget{}, s.budgets...)
}

// BudgetStatus reports one entry per budget, in budget order.
func (s *Store) BudgetStatus() []core.BudgetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	spent := make(map[string]decimal.Decimal, len(s.budgets))
	for _, t := range s.transactions {
		if t.Type != core.Expense {
			continue
		}
		spent[t.Category] = spent[t.Category].Add(t.Amount)
	}

	out := make([]core.BudgetStatus, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, core.StatusOf(b, spent[b.Category]))
	}
	return out
}

// CategoryTotals aggregates transactions of kind per category.
func (s *Store) CategoryTotals(kind core.TransactionType) []core.CategoryAmount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ByCategory(s.transactions, kind)
}

func (s *Store) Profile() core.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// UpdateProfile merges the set fields of u into the profile and returns the
// result. An update that changes nothing publishes no event.
func (s *Store) UpdateProfile(ctx context.Context, u core.ProfileUpdate) (core.Profile, error) {
	s.mu.Lock()
	next, err := u.Apply(s.profile)
	if err != nil {
		s.mu.Unlock()
		return core.Profile{}, err
	}
	changed := next != s.profile
	s.profile = next
	s.mu.Unlock()

	if changed {
		s.logger.DebugContext(ctx, "Profile updated", log.FieldUsername, next.Username)
		s.hub.Publish(ctx, Event{Kind: ProfileUpdated, Ref: next.Username})
	}
	return next, nil
}
