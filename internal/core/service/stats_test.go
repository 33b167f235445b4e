package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/revgate-io/revgate/internal/storage"
)

func TestStatsService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("report reflects store counters", func(t *testing.T) {
		store := newFakeStore()
		store.stats = storage.Stats{
			Checks:          1000,
			LocalHits:       700,
			SharedHits:      100,
			Misses:          200,
			SharedErrors:    10,
			Revocations:     42,
			PutFailures:     2,
			AvgCheckLatency: 250 * time.Microsecond,
			LocalEntries:    42,
			LocalBytes:      4096,
		}
		store.swept = 3
		svc := NewStatsService(store, 0)

		report, err := svc.Get(ctx, nil)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if report.FromCache {
			t.Error("first report should not come from cache")
		}
		if report.GeneratedAt == 0 {
			t.Error("GeneratedAt should be set")
		}
		if report.Counts.TotalRevocations != 42 {
			t.Errorf("TotalRevocations = %d, want 42", report.Counts.TotalRevocations)
		}
		if report.Counts.LocalEntries != 42 || report.Counts.EstimatedBytes != 4096 {
			t.Errorf("Counts = %+v", report.Counts)
		}
		if report.Counts.PendingCleanup != 3 {
			t.Errorf("PendingCleanup = %d, want 3", report.Counts.PendingCleanup)
		}
		if report.Performance.HitRate != 0.8 {
			t.Errorf("HitRate = %f, want 0.8", report.Performance.HitRate)
		}
		if report.Performance.AvgCheckLatencyMs != 0.25 {
			t.Errorf("AvgCheckLatencyMs = %f, want 0.25", report.Performance.AvgCheckLatencyMs)
		}
		if !report.Health.SharedTierReachable {
			t.Error("shared tier should be reachable")
		}
		if report.Health.SharedErrorRate != 0.01 {
			t.Errorf("SharedErrorRate = %f, want 0.01", report.Health.SharedErrorRate)
		}
		if report.Health.Degraded {
			t.Error("report should not be degraded at a 1% error rate")
		}
	})

	t.Run("fresh report is cached", func(t *testing.T) {
		store := newFakeStore()
		svc := NewStatsService(store, time.Minute)

		first, err := svc.Get(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		second, err := svc.Get(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !second.FromCache {
			t.Error("second report should come from cache")
		}
		if second.GeneratedAt != first.GeneratedAt {
			t.Error("cached report should keep the original GeneratedAt")
		}
	})

	t.Run("force refresh rebuilds", func(t *testing.T) {
		store := newFakeStore()
		svc := NewStatsService(store, time.Minute)

		if _, err := svc.Get(ctx, nil); err != nil {
			t.Fatal(err)
		}
		store.mu.Lock()
		store.stats.Revocations = 7
		store.mu.Unlock()

		report, err := svc.Get(ctx, &GetStatisticsRequest{ForceRefresh: true})
		if err != nil {
			t.Fatal(err)
		}
		if report.FromCache {
			t.Error("forced report should not come from cache")
		}
		if report.Counts.TotalRevocations != 7 {
			t.Errorf("TotalRevocations = %d, want 7", report.Counts.TotalRevocations)
		}
	})

	t.Run("cached report expires", func(t *testing.T) {
		store := newFakeStore()
		svc := NewStatsService(store, 10*time.Millisecond)

		if _, err := svc.Get(ctx, nil); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)

		report, err := svc.Get(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if report.FromCache {
			t.Error("aged-out report should be rebuilt")
		}
	})

	t.Run("unreachable shared tier degrades", func(t *testing.T) {
		store := newFakeStore()
		store.pingErr = errors.New("connection refused")
		svc := NewStatsService(store, 0)

		report, err := svc.Get(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if report.Health.SharedTierReachable {
			t.Error("shared tier should be unreachable")
		}
		if !report.Health.Degraded {
			t.Error("report should be degraded")
		}
	})

	t.Run("high error rate degrades", func(t *testing.T) {
		store := newFakeStore()
		store.stats = storage.Stats{Checks: 100, SharedErrors: 10}
		svc := NewStatsService(store, 0)

		report, err := svc.Get(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !report.Health.SharedTierReachable {
			t.Error("shared tier should still answer pings")
		}
		if !report.Health.Degraded {
			t.Error("a 10% error rate should flag the report degraded")
		}
	})

	t.Run("zero checks yield zero rates", func(t *testing.T) {
		svc := NewStatsService(newFakeStore(), 0)

		report, err := svc.Get(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if report.Performance.HitRate != 0 || report.Health.SharedErrorRate != 0 {
			t.Errorf("rates should be zero: %+v %+v", report.Performance, report.Health)
		}
	})
}
