package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/storage/local"
)

// Tier identifies which tier answered a revocation lookup.
type Tier string

const (
	// TierLocal means the local in-process cache answered.
	TierLocal Tier = "local"

	// TierShared means the shared Redis tier answered.
	TierShared Tier = "shared"

	// TierNone means neither tier holds a record for the token.
	TierNone Tier = "none"
)

// SharedTier is the cluster-visible revocation record set.
//
// Implementations must return domain.ErrTokenNotFound for a missing
// record and domain.ErrSharedTierUnavailable (with cause) for
// transport or backend failures.
type SharedTier interface {
	// Put stores a revocation record with the given TTL.
	Put(ctx context.Context, record *domain.RevocationRecord, ttl time.Duration) error

	// Get retrieves a revocation record by token ID.
	Get(ctx context.Context, tokenID string) (*domain.RevocationRecord, error)

	// Ping verifies the tier is reachable.
	Ping(ctx context.Context) error

	// Close releases the tier's resources.
	Close() error
}

// LookupResult is the outcome of a revocation check against the store.
type LookupResult struct {
	// Revoked reports whether a live revocation record exists.
	Revoked bool

	// Record is the revocation record, nil when Revoked is false.
	Record *domain.RevocationRecord

	// Tier is the tier that produced the answer.
	Tier Tier

	// Degraded is true when the shared tier could not be consulted
	// and the answer reflects only local knowledge.
	Degraded bool
}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Checks          int64
	LocalHits       int64
	SharedHits      int64
	Misses          int64
	SharedErrors    int64
	Revocations     int64
	PutFailures     int64
	AvgCheckLatency time.Duration
	LocalEntries    int
	LocalBytes      int64
}

// TieredConfig configures the tiered store.
type TieredConfig struct {
	// LocalJanitorInterval is how often the local tier sweeps expired
	// entries. Zero uses the tier's default.
	LocalJanitorInterval time.Duration

	// Logger is the structured logger.
	Logger *slog.Logger
}

// TieredStore composes the local and shared tiers into a single
// revocation store.
//
// Put is write-through: the shared tier must acknowledge the record
// before the local tier sees it, so a record that exists locally is
// guaranteed to exist (or to have existed) in the shared tier. A
// shared-tier failure fails the whole Put and leaves the local tier
// untouched.
type TieredStore struct {
	localTier  *local.Cache
	sharedTier SharedTier
	logger     *slog.Logger

	// Concurrent shared-tier lookups for the same token collapse
	// into one round trip.
	lookups singleflight.Group

	checks            atomic.Int64
	localHits         atomic.Int64
	sharedHits        atomic.Int64
	misses            atomic.Int64
	sharedErrors      atomic.Int64
	revocations       atomic.Int64
	putFailures       atomic.Int64
	checkLatencyNanos atomic.Int64
}

// NewTiered creates a tiered store over the given shared tier.
func NewTiered(shared SharedTier, cfg TieredConfig) (*TieredStore, error) {
	if shared == nil {
		return nil, errors.New("storage: shared tier is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	localOpts := []local.Option{}
	if cfg.LocalJanitorInterval != 0 {
		localOpts = append(localOpts, local.WithJanitorInterval(cfg.LocalJanitorInterval))
	}

	return &TieredStore{
		localTier:  local.New(localOpts...),
		sharedTier: shared,
		logger:     cfg.Logger,
	}, nil
}

// Put records a revocation in both tiers.
//
// The record's TTL is its token's remaining natural lifetime. A record
// whose lifetime has already elapsed is dropped without touching either
// tier; there is nothing left for it to protect.
func (s *TieredStore) Put(ctx context.Context, record *domain.RevocationRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	ttl := record.TTL()
	if ttl <= 0 {
		return nil
	}

	// Step 1: Shared tier first. Without its ack the record must not
	// become locally visible, or a restarted peer could miss it.
	if err := s.sharedTier.Put(ctx, record, ttl); err != nil {
		s.putFailures.Add(1)
		s.sharedErrors.Add(1)
		s.logger.Error("shared tier put failed",
			"token_id", domain.MaskTokenID(record.TokenID),
			"error", err)
		return err
	}

	// Step 2: Local tier.
	s.localTier.Put(record.TokenID, record, ttl)
	s.revocations.Add(1)

	return nil
}

// IsRevoked reports whether the token has a live revocation record.
//
// Lookup order is local tier, then shared tier with a local backfill
// on hit. A shared-tier failure does not fail the check: the result is
// the local tier's answer, flagged Degraded.
func (s *TieredStore) IsRevoked(ctx context.Context, tokenID string) (LookupResult, error) {
	start := time.Now()
	defer func() {
		s.checks.Add(1)
		s.checkLatencyNanos.Add(time.Since(start).Nanoseconds())
	}()

	if !domain.IsValidTokenID(tokenID) {
		return LookupResult{}, domain.ErrTokenIDMalformed
	}

	// Step 1: Local tier.
	if record, ok := s.localTier.Get(tokenID); ok {
		s.localHits.Add(1)
		return LookupResult{Revoked: true, Record: record, Tier: TierLocal}, nil
	}

	// Step 2: Shared tier, deduplicated per token.
	v, err, _ := s.lookups.Do(tokenID, func() (any, error) {
		return s.sharedTier.Get(ctx, tokenID)
	})

	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			s.misses.Add(1)
			return LookupResult{Tier: TierNone}, nil
		}
		s.sharedErrors.Add(1)
		s.logger.Warn("shared tier lookup failed, answering from local tier only",
			"token_id", domain.MaskTokenID(tokenID),
			"error", err)
		return LookupResult{Tier: TierNone, Degraded: true}, nil
	}

	record := v.(*domain.RevocationRecord)
	if record.IsStale() {
		// The shared tier has not expired the key yet; treat it as gone.
		s.misses.Add(1)
		return LookupResult{Tier: TierNone}, nil
	}

	s.sharedHits.Add(1)

	// Step 3: Backfill the local tier with the remaining lifetime.
	if ttl := record.TTL(); ttl > 0 {
		s.localTier.Put(tokenID, record, ttl)
	}

	return LookupResult{Revoked: true, Record: record, Tier: TierShared}, nil
}

// Ping verifies the shared tier is reachable.
func (s *TieredStore) Ping(ctx context.Context) error {
	return s.sharedTier.Ping(ctx)
}

// Sweep removes expired entries from the local tier and returns the
// number removed.
func (s *TieredStore) Sweep() int {
	return s.localTier.Sweep()
}

// Stats returns a snapshot of the store's counters.
func (s *TieredStore) Stats() Stats {
	checks := s.checks.Load()
	var avg time.Duration
	if checks > 0 {
		avg = time.Duration(s.checkLatencyNanos.Load() / checks)
	}

	return Stats{
		Checks:          checks,
		LocalHits:       s.localHits.Load(),
		SharedHits:      s.sharedHits.Load(),
		Misses:          s.misses.Load(),
		SharedErrors:    s.sharedErrors.Load(),
		Revocations:     s.revocations.Load(),
		PutFailures:     s.putFailures.Load(),
		AvgCheckLatency: avg,
		LocalEntries:    s.localTier.Count(),
		LocalBytes:      s.localTier.EstimatedBytes(),
	}
}

// Close shuts down both tiers.
func (s *TieredStore) Close() error {
	s.localTier.Close()
	return s.sharedTier.Close()
}
