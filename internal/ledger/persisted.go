package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kepngern/internal/core"
	"kepngern/internal/log"
	"kepngern/internal/storage"
)

// Persisted decorates a Store, writing a snapshot of the whole ledger after
// every mutation. A failed write is logged and the in-memory change stands.
type Persisted struct {
	*Store
	writer *storage.SnapshotWriter[State]
}

var _ Ledger = (*Persisted)(nil)

// OpenOptions controls how a persisted ledger is hydrated.
type OpenOptions struct {
	Seed   bool
	Now    func() time.Time
	Logger *log.Logger
	Store  []Option
}

// Open hydrates the ledger from slot. When the slot is empty it starts from
// the seed data (or empty when seeding is off) and writes that first snapshot.
func Open(ctx context.Context, slot storage.Slot, opts OpenOptions) (*Persisted, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	state, found, err := storage.Hydrate[State](ctx, slot, storage.LedgerSlot)
	if err != nil {
		return nil, fmt.Errorf("hydrate ledger: %w", err)
	}
	if !found && opts.Seed {
		state = SeedState(now())
	}

	storeOpts := append([]Option{WithLogger(logger)}, opts.Store...)
	p := &Persisted{
		Store:  New(state, storeOpts...),
		writer: storage.NewSnapshotWriter[State](slot, storage.LedgerSlot, logger),
	}

	logger.WithComponent(log.ComponentLedger).InfoContext(ctx, "Ledger hydrated",
		log.FieldOperation, log.OpHydrate,
		"from_snapshot", found,
		"transactions", len(state.Transactions),
		"budgets", len(state.Budgets))

	if !found {
		p.save(ctx)
	}
	return p, nil
}

func (p *Persisted) save(ctx context.Context) {
	// Errors are already logged by the writer.
	_ = p.writer.Sync(ctx, p.Store.Snapshot)
}

func (p *Persisted) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t, err := p.Store.AddTransaction(ctx, in)
	if err != nil {
		return t, err
	}
	p.save(ctx)
	return t, nil
}

func (p *Persisted) UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) error {
	if err := p.Store.UpdateTransaction(ctx, id, in); err != nil {
		return err
	}
	p.save(ctx)
	return nil
}

func (p *Persisted) DeleteTransaction(ctx context.Context, id string) {
	p.Store.DeleteTransaction(ctx, id)
	p.save(ctx)
}

func (p *Persisted) SetBudget(ctx context.Context, category string, limit decimal.Decimal) error {
	if err := p.Store.SetBudget(ctx, category, limit); err != nil {
		return err
	}
	p.save(ctx)
	return nil
}

func (p *Persisted) DeleteBudget(ctx context.Context, category string) {
	p.Store.DeleteBudget(ctx, category)
	p.save(ctx)
}

func (p *Persisted) UpdateProfile(ctx context.Context, u core.ProfileUpdate) (core.Profile, error) {
	profile, err := p.Store.UpdateProfile(ctx, u)
	if err != nil {
		return profile, err
	}
	p.save(ctx)
	return profile, nil
}
