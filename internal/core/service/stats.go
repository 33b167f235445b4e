package service

import (
	"context"
	"sync"
	"time"
)

// Stats report defaults.
const (
	DefaultStatsCacheTTL = 5 * time.Minute

	// DegradedErrorRate is the shared-tier error rate above which the
	// report flags the store as degraded.
	DegradedErrorRate = 0.05
)

// StatsService handles the GetStatistics query.
//
// The underlying counters move slowly relative to request volume, so
// the assembled report is cached; ForceRefresh rebuilds it.
type StatsService struct {
	store    RevocationStore
	cacheTTL time.Duration

	mu       sync.Mutex
	report   *StatsReport
	cachedAt time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(store RevocationStore, cacheTTL time.Duration) *StatsService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultStatsCacheTTL
	}
	return &StatsService{
		store:    store,
		cacheTTL: cacheTTL,
	}
}

// GetStatisticsRequest contains parameters for the statistics query.
type GetStatisticsRequest struct {
	// ForceRefresh rebuilds the report even if a cached one is fresh.
	ForceRefresh bool
}

// StatsReport is the aggregated statistics report.
type StatsReport struct {
	GeneratedAt int64 `json:"generated_at"` // Unix MS
	FromCache   bool  `json:"from_cache"`

	Counts      StatsCounts      `json:"counts"`
	Performance StatsPerformance `json:"performance"`
	Health      StatsHealth      `json:"health"`
}

// StatsCounts holds the basic volume counters.
type StatsCounts struct {
	TotalRevocations int64 `json:"total_revocations"`
	LocalEntries     int   `json:"local_entries"`
	PendingCleanup   int   `json:"pending_cleanup"`
	EstimatedBytes   int64 `json:"estimated_bytes"`
}

// StatsPerformance holds the check-path performance indicators.
type StatsPerformance struct {
	Checks            int64   `json:"checks"`
	LocalHits         int64   `json:"local_hits"`
	SharedHits        int64   `json:"shared_hits"`
	Misses            int64   `json:"misses"`
	HitRate           float64 `json:"hit_rate"`
	AvgCheckLatencyMs float64 `json:"avg_check_latency_ms"`
}

// StatsHealth holds the derived health flags.
type StatsHealth struct {
	SharedTierReachable bool    `json:"shared_tier_reachable"`
	SharedErrors        int64   `json:"shared_errors"`
	SharedErrorRate     float64 `json:"shared_error_rate"`
	PutFailures         int64   `json:"put_failures"`
	Degraded            bool    `json:"degraded"`
}

// Get returns the statistics report, rebuilding it when the cached
// copy has aged out.
func (s *StatsService) Get(ctx context.Context, req *GetStatisticsRequest) (*StatsReport, error) {
	force := req != nil && req.ForceRefresh

	s.mu.Lock()
	if !force && s.report != nil && time.Since(s.cachedAt) < s.cacheTTL {
		cached := *s.report
		cached.FromCache = true
		s.mu.Unlock()
		return &cached, nil
	}
	s.mu.Unlock()

	report := s.build(ctx)

	s.mu.Lock()
	s.report = report
	s.cachedAt = time.Now()
	s.mu.Unlock()

	out := *report
	return &out, nil
}

func (s *StatsService) build(ctx context.Context) *StatsReport {
	// The sweep doubles as the pending-cleanup measurement: whatever
	// it removes is exactly what the tiers failed to auto-evict.
	pending := s.store.Sweep()
	stats := s.store.Stats()
	reachable := s.store.Ping(ctx) == nil

	hitRate := 0.0
	errorRate := 0.0
	if stats.Checks > 0 {
		hitRate = float64(stats.LocalHits+stats.SharedHits) / float64(stats.Checks)
		errorRate = float64(stats.SharedErrors) / float64(stats.Checks)
	}

	return &StatsReport{
		GeneratedAt: time.Now().UnixMilli(),
		Counts: StatsCounts{
			TotalRevocations: stats.Revocations,
			LocalEntries:     stats.LocalEntries,
			PendingCleanup:   pending,
			EstimatedBytes:   stats.LocalBytes,
		},
		Performance: StatsPerformance{
			Checks:            stats.Checks,
			LocalHits:         stats.LocalHits,
			SharedHits:        stats.SharedHits,
			Misses:            stats.Misses,
			HitRate:           hitRate,
			AvgCheckLatencyMs: float64(stats.AvgCheckLatency.Microseconds()) / 1000.0,
		},
		Health: StatsHealth{
			SharedTierReachable: reachable,
			SharedErrors:        stats.SharedErrors,
			SharedErrorRate:     errorRate,
			PutFailures:         stats.PutFailures,
			Degraded:            !reachable || errorRate > DegradedErrorRate,
		},
	}
}
