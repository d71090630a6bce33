package service

import (
	"context"
	"log"

	accountdomain "wiki-identity-bridge/internal/account/domain"
	"wiki-identity-bridge/internal/equivalence"
)

// AccountPager walks the account table in primary-key order.
type AccountPager interface {
	ListPage(ctx context.Context, afterID int64, limit int) ([]*accountdomain.Account, error)
}

// EquivInserter inserts equivalence rows without overwriting existing ones.
type EquivInserter interface {
	InsertIgnore(ctx context.Context, accountID int64, normalized string) error
}

// ReplicationWaiter blocks until replicas have caught up with the primary.
// Injected so the backfill can pace its writes; a no-op implementation is
// fine for single-node deployments.
type ReplicationWaiter interface {
	Wait(ctx context.Context) error
}

// NoopWaiter is a ReplicationWaiter that returns immediately.
type NoopWaiter struct{}

func (NoopWaiter) Wait(context.Context) error { return nil }

// Populator backfills equivalence rows for accounts that predate equivalence
// tracking. It processes accounts in bounded batches and waits for
// replication between batches to bound replica lag and transaction size.
type Populator struct {
	accounts   AccountPager
	equiv      EquivInserter
	normalizer *equivalence.Normalizer
	waiter     ReplicationWaiter
	batchSize  int
}

// NewPopulator returns a Populator. batchSize must be positive; waiter may be
// NoopWaiter{} when there are no replicas.
func NewPopulator(accounts AccountPager, equiv EquivInserter, normalizer *equivalence.Normalizer, waiter ReplicationWaiter, batchSize int) *Populator {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Populator{
		accounts:   accounts,
		equiv:      equiv,
		normalizer: normalizer,
		waiter:     waiter,
		batchSize:  batchSize,
	}
}

// Run walks every account and inserts its equivalence row, skipping temporary
// accounts and never overwriting rows written since. Returns the number of
// accounts written.
func (p *Populator) Run(ctx context.Context) (int, error) {
	var afterID int64
	count := 0
	for {
		batch, err := p.accounts.ListPage(ctx, afterID, p.batchSize)
		if err != nil {
			return count, err
		}
		if len(batch) == 0 {
			return count, nil
		}

		for _, a := range batch {
			afterID = a.ID
			if a.Temporary {
				continue
			}
			if err := p.equiv.InsertIgnore(ctx, a.ID, p.normalizer.Normalize(a.Name)); err != nil {
				return count, err
			}
			count++
		}
		log.Printf("populate-equiv: %d account(s) processed", count)

		if err := p.waiter.Wait(ctx); err != nil {
			return count, err
		}
	}
}
