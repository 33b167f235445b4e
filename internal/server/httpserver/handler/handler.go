// Package handler provides HTTP request handlers for RevGate.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/core/service"
)

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	issuer    *service.Issuer
	revokeSvc *service.RevocationService
	checkSvc  *service.CheckService
	statsSvc  *service.StatsService
	pinger    Pinger
	logger    *slog.Logger
	mux       *http.ServeMux
}

// Pinger reports shared tier reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New creates a new Handler with the given services.
func New(issuer *service.Issuer, revokeSvc *service.RevocationService, checkSvc *service.CheckService, statsSvc *service.StatsService, pinger Pinger, logger *slog.Logger) *Handler {
	h := &Handler{
		issuer:    issuer,
		revokeSvc: revokeSvc,
		checkSvc:  checkSvc,
		statsSvc:  statsSvc,
		pinger:    pinger,
		logger:    logger,
		mux:       http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoint (no auth required)
	h.mux.HandleFunc("GET /health", h.handleHealth)

	// Token endpoints
	h.mux.HandleFunc("POST /tokens/issue", h.handleIssueToken)
	h.mux.HandleFunc("POST /tokens/revoke", h.handleRevokeToken)

	// Admin endpoints
	h.mux.HandleFunc("GET /admin/v1/tokens/status", h.handleTokenStatus)
	h.mux.HandleFunc("GET /admin/v1/stats", h.handleStats)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// getRequestID extracts request ID from header (set by middleware).
func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		status := errorCodeToHTTPStatus(code)
		h.writeError(w, r, status, code, err.Error(), nil)
		return
	}

	h.logger.Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, "RG-INF-5000", "internal server error", nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"), strings.HasSuffix(code, "-4091"), strings.HasSuffix(code, "-4092"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		return http.StatusUnauthorized
	case strings.HasPrefix(code, "RG-VAL-"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.HasPrefix(code, "RG-INF-5"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// getClientIP extracts client IP from request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
