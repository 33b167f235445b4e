// Package handler provides HTTP request handlers for RevGate.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/core/service"
)

// handleTokenStatus handles GET /admin/v1/tokens/status.
//
// The token of interest comes in as either token_id or a full
// credential (token query parameter); bypass_cache=true skips the
// result cache so the answer reflects the store's current state.
func (h *Handler) handleTokenStatus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tokenID := query.Get("token_id")

	// A full credential also yields issuance detail for the response
	var subject *domain.Token
	if credential := query.Get("token"); credential != "" {
		token, err := h.issuer.Parse(credential)
		if err != nil && !errors.Is(err, domain.ErrCredentialExpired) {
			h.handleServiceError(w, r, err)
			return
		}
		subject = token
		tokenID = token.ID
	}

	if tokenID == "" {
		h.writeError(w, r, http.StatusBadRequest, "RG-VAL-4002", "token_id or token is required", nil)
		return
	}

	resp, err := h.checkSvc.Check(r.Context(), &service.CheckRevocationRequest{
		TokenID:     tokenID,
		BypassCache: query.Get("bypass_cache") == "true",
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	status := TokenStatusResponse{
		IsRevoked: resp.IsRevoked,
		TokenID:   resp.TokenID,
		Status:    deriveStatus(resp, subject),
		CheckedAt: time.UnixMilli(resp.CheckedAt),
		FromCache: resp.FromCache,
		Degraded:  resp.Degraded,
	}
	if resp.Record != nil {
		revokedAt := time.UnixMilli(resp.Record.RevokedAt)
		expiresAt := time.UnixMilli(resp.Record.ExpiresAt)
		status.RevokedAt = &revokedAt
		status.ExpiresAt = &expiresAt
		status.Reason = resp.Record.Reason
	} else if subject != nil {
		expiresAt := subject.ExpiresAtTime()
		status.ExpiresAt = &expiresAt
	}

	h.writeJSON(w, r, http.StatusOK, status)
}

// deriveStatus names the lifecycle state the check implies.
func deriveStatus(resp *service.CheckRevocationResponse, subject *domain.Token) string {
	switch {
	case resp.IsRevoked:
		return string(domain.StatusRevoked)
	case subject != nil && subject.ExpiresAtTime().Before(time.Now()):
		return string(domain.StatusExpired)
	case subject != nil:
		return string(domain.StatusActive)
	default:
		// Only the ID was presented; all the store knows is that no
		// revocation is recorded for it.
		return "not_revoked"
	}
}

// handleStats handles GET /admin/v1/stats.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	report, err := h.statsSvc.Get(r.Context(), &service.GetStatisticsRequest{
		ForceRefresh: r.URL.Query().Get("force_refresh") == "true",
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, report)
}
