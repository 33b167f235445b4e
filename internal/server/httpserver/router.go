// Package httpserver provides the HTTP/HTTPS server for RevGate.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/revgate-io/revgate/internal/core/service"
	"github.com/revgate-io/revgate/internal/server/httpserver/handler"
	"github.com/revgate-io/revgate/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Issuer signs and verifies credentials.
	Issuer *service.Issuer

	// RevocationService handles the revoke command.
	RevocationService *service.RevocationService

	// CheckService handles revocation queries and backs the gate.
	CheckService *service.CheckService

	// StatsService handles the statistics query.
	StatsService *service.StatsService

	// Pinger reports shared tier reachability for /health.
	Pinger handler.Pinger

	// Metrics serves /metrics when set.
	Metrics *metric.Metrics

	// Logger for request logging.
	Logger *slog.Logger

	// GlobalRateLimit is the global rate limit per IP (requests/second).
	GlobalRateLimit int

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := handler.New(cfg.Issuer, cfg.RevocationService, cfg.CheckService, cfg.StatsService, cfg.Pinger, cfg.Logger)

	base := []Middleware{
		RequestID(),
		Recover(cfg.Logger),
	}
	if cfg.GlobalRateLimit > 0 {
		base = append(base, RateLimit(cfg.GlobalRateLimit))
	}
	if cfg.Metrics != nil {
		base = append(base, Instrument(cfg.Metrics))
	}
	if cfg.EnableAudit {
		base = append(base, Audit(cfg.Logger))
	}

	// Token endpoints. Revoke carries its subject credential in the
	// Authorization header and must stay reachable for already-revoked
	// tokens, so it does not sit behind the gate.
	openHandler := Chain(h, base...)

	// Admin endpoints require a live, unrevoked credential.
	gated := append(append([]Middleware{}, base...), ValidationGate(&GateConfig{
		Issuer:  cfg.Issuer,
		Checker: cfg.CheckService,
		Logger:  cfg.Logger,
	}))
	adminHandler := Chain(h, gated...)

	mux := http.NewServeMux()

	// Health endpoint, anonymous
	mux.Handle("GET /health", Chain(h, RequestID(), Recover(cfg.Logger)))

	// Metrics endpoint, Prometheus exposition format
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), RequestID(), Recover(cfg.Logger)))
	}

	mux.Handle("POST /tokens/issue", openHandler)
	mux.Handle("POST /tokens/revoke", openHandler)

	mux.Handle("GET /admin/v1/tokens/status", adminHandler)
	mux.Handle("GET /admin/v1/stats", adminHandler)

	return mux
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		GlobalRateLimit: 1000, // requests/second per IP
		EnableAudit:     true,
	}
}
