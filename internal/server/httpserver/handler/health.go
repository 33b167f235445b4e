// Package handler provides HTTP request handlers for RevGate.
package handler

import (
	"net/http"
	"time"

	"github.com/revgate-io/revgate/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	sharedTier := "reachable"
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			sharedTier = "unreachable"
		}
	}

	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:     "healthy",
		Version:    buildinfo.Version,
		SharedTier: sharedTier,
		Time:       time.Now().UTC().Format(time.RFC3339),
	})
}
