package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "revgate"

// Metrics holds all application metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Check path
	ChecksTotal     *prometheus.CounterVec
	CheckDuration   prometheus.Histogram
	LocalHitsTotal  prometheus.Counter
	SharedHitsTotal prometheus.Counter
	MissesTotal     prometheus.Counter
	DegradedTotal   prometheus.Counter
	ResultCacheHits prometheus.Counter

	// Write path
	RevocationsTotal  *prometheus.CounterVec
	PutFailuresTotal  prometheus.Counter
	SharedErrorsTotal prometheus.Counter

	// Issue path
	TokensIssuedTotal *prometheus.CounterVec

	// HTTP surface
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the metrics set on a fresh private registry with the
// standard Go and process collectors included.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,

		ChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "checks_total",
			Help:      "Revocation checks by outcome (revoked, clear, degraded).",
		}, []string{"outcome"}),

		CheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "check_duration_seconds",
			Help:      "Revocation check latency.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}),

		LocalHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "local_hits_total",
			Help:      "Checks answered by the local tier.",
		}),

		SharedHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "shared_hits_total",
			Help:      "Checks answered by the shared tier.",
		}),

		MissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "misses_total",
			Help:      "Checks that found no revocation record.",
		}),

		DegradedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "degraded_checks_total",
			Help:      "Checks answered from local knowledge only due to a shared tier outage.",
		}),

		ResultCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "result_cache_hits_total",
			Help:      "Checks answered by the short-lived result cache.",
		}),

		RevocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "revocations_total",
			Help:      "Successful revocations by reason.",
		}, []string{"reason"}),

		PutFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "put_failures_total",
			Help:      "Revocation writes rejected because the shared tier did not acknowledge.",
		}),

		SharedErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "shared_errors_total",
			Help:      "Shared tier transport failures.",
		}),

		TokensIssuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuer",
			Name:      "tokens_issued_total",
			Help:      "Tokens issued by type.",
		}, []string{"type"}),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		m.ChecksTotal,
		m.CheckDuration,
		m.LocalHitsTotal,
		m.SharedHitsTotal,
		m.MissesTotal,
		m.DegradedTotal,
		m.ResultCacheHits,
		m.RevocationsTotal,
		m.PutFailuresTotal,
		m.SharedErrorsTotal,
		m.TokensIssuedTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// Registry exposes the underlying registry for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
