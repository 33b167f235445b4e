package benchmark

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/storage"
)

// EntryCounts defines the store sizes for benchmarking.
var EntryCounts = []int{1000, 10000, 100000}

// memSharedTier is an in-memory SharedTier so benchmarks measure the
// store machinery rather than network round trips.
type memSharedTier struct {
	mu      sync.RWMutex
	records map[string]*domain.RevocationRecord
}

func newMemSharedTier() *memSharedTier {
	return &memSharedTier{records: make(map[string]*domain.RevocationRecord)}
}

func (m *memSharedTier) Put(_ context.Context, record *domain.RevocationRecord, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.TokenID] = record
	return nil
}

func (m *memSharedTier) Get(_ context.Context, tokenID string) (*domain.RevocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[tokenID]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return record, nil
}

func (m *memSharedTier) Ping(_ context.Context) error { return nil }
func (m *memSharedTier) Close() error                 { return nil }

// newRecord builds a revocation record with an hour of life left.
func newRecord(b *testing.B) *domain.RevocationRecord {
	b.Helper()
	id, err := domain.GenerateTokenID()
	if err != nil {
		b.Fatalf("GenerateTokenID: %v", err)
	}
	now := time.Now()
	return &domain.RevocationRecord{
		TokenID:   id,
		RevokedAt: now.UnixMilli(),
		ExpiresAt: now.Add(time.Hour).UnixMilli(),
		Reason:    "user_logout",
	}
}

// prefillStore revokes count tokens and returns their IDs.
func prefillStore(b *testing.B, store *storage.TieredStore, count int) []string {
	b.Helper()
	ctx := context.Background()
	ids := make([]string, count)
	for i := 0; i < count; i++ {
		record := newRecord(b)
		if err := store.Put(ctx, record); err != nil {
			b.Fatalf("Put: %v", err)
		}
		ids[i] = record.TokenID
	}
	return ids
}

// benchName labels a sub-benchmark by store size.
func benchName(count int) string {
	return fmt.Sprintf("entries_%d", count)
}
