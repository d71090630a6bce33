package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	accountdomain "wiki-identity-bridge/internal/account/domain"
	"wiki-identity-bridge/internal/equivalence"
)

type memPager struct {
	accounts []*accountdomain.Account
	pages    int
}

func (p *memPager) ListPage(ctx context.Context, afterID int64, limit int) ([]*accountdomain.Account, error) {
	var out []*accountdomain.Account
	for _, a := range p.accounts {
		if a.ID > afterID {
			out = append(out, a)
			if len(out) == limit {
				break
			}
		}
	}
	if len(out) > 0 {
		p.pages++
	}
	return out, nil
}

type memInserter struct {
	mu   sync.Mutex
	rows map[int64]string
}

func (i *memInserter) InsertIgnore(ctx context.Context, accountID int64, normalized string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.rows == nil {
		i.rows = map[int64]string{}
	}
	if _, ok := i.rows[accountID]; !ok {
		i.rows[accountID] = normalized
	}
	return nil
}

type countingWaiter struct {
	calls int
}

func (w *countingWaiter) Wait(context.Context) error {
	w.calls++
	return nil
}

func TestPopulator_BatchesAndSkipsTemporary(t *testing.T) {
	pager := &memPager{}
	tempIDs := map[int64]bool{}
	for i := 1; i <= 250; i++ {
		temp := i%25 == 0 // 10 temporary accounts
		if temp {
			tempIDs[int64(i)] = true
		}
		pager.accounts = append(pager.accounts, &accountdomain.Account{
			ID:        int64(i),
			Name:      fmt.Sprintf("User%d", i),
			Temporary: temp,
		})
	}
	inserter := &memInserter{}
	waiter := &countingWaiter{}

	p := NewPopulator(pager, inserter, equivalence.NewNormalizer(), waiter, 100)
	count, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if count != 240 {
		t.Errorf("processed = %d, want 240 (250 minus 10 temporary)", count)
	}
	if pager.pages != 3 {
		t.Errorf("batches = %d, want 3", pager.pages)
	}
	if waiter.calls != 3 {
		t.Errorf("replication waits = %d, want one per batch (3)", waiter.calls)
	}
	for id := range tempIDs {
		if _, ok := inserter.rows[id]; ok {
			t.Errorf("temporary account %d should not have an equivalence row", id)
		}
	}
	if len(inserter.rows) != 240 {
		t.Errorf("rows written = %d, want 240", len(inserter.rows))
	}
}

func TestPopulator_EmptyTable(t *testing.T) {
	p := NewPopulator(&memPager{}, &memInserter{}, equivalence.NewNormalizer(), NoopWaiter{}, 100)
	count, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if count != 0 {
		t.Errorf("processed = %d, want 0", count)
	}
}
