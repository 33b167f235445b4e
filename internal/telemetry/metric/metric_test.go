package metric

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/revgate-io/revgate/internal/storage"
)

type staticStats struct {
	stats storage.Stats
}

func (s staticStats) Stats() storage.Stats { return s.stats }

func TestNew(t *testing.T) {
	m := New()

	m.ChecksTotal.WithLabelValues("revoked").Inc()
	m.ChecksTotal.WithLabelValues("clear").Add(2)
	m.RevocationsTotal.WithLabelValues("user_logout").Inc()
	m.CheckDuration.Observe(0.0002)

	if got := testutil.ToFloat64(m.ChecksTotal.WithLabelValues("clear")); got != 2 {
		t.Errorf("checks_total{outcome=clear} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RevocationsTotal.WithLabelValues("user_logout")); got != 1 {
		t.Errorf("revocations_total{reason=user_logout} = %v, want 1", got)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.MissesTotal.Inc()

	if got := testutil.ToFloat64(b.MissesTotal); got != 0 {
		t.Errorf("second registry saw %v misses, want 0", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SharedErrorsTotal.Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "revgate_store_shared_errors_total 1") {
		t.Error("exposition missing shared error counter")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("exposition missing Go runtime collector")
	}
}

func TestStoreCollector(t *testing.T) {
	m := New()
	m.RegisterStore(staticStats{stats: storage.Stats{
		LocalEntries:    7,
		LocalBytes:      1120,
		AvgCheckLatency: 250 * time.Microsecond,
	}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "revgate_store_local_entries 7") {
		t.Error("exposition missing local entries gauge")
	}
	if !strings.Contains(body, "revgate_store_local_bytes 1120") {
		t.Error("exposition missing local bytes gauge")
	}
	if !strings.Contains(body, "revgate_store_avg_check_latency_seconds 0.00025") {
		t.Error("exposition missing latency gauge")
	}
}
