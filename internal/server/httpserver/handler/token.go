// Package handler provides HTTP request handlers for RevGate.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/core/service"
)

// handleIssueToken handles POST /tokens/issue.
func (h *Handler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "RG-VAL-4000", "invalid request body", nil)
		return
	}

	svcReq := &service.IssueTokenRequest{
		OwnerID:   req.OwnerID,
		OwnerName: req.OwnerName,
		Type:      domain.TokenType(req.Type),
		Roles:     req.Roles,
		ClientIP:  getClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if req.LifetimeSeconds > 0 {
		svcReq.Lifetime = time.Duration(req.LifetimeSeconds) * time.Second
	}

	resp, err := h.issuer.Issue(svcReq)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, IssueTokenResponse{
		TokenID:    resp.Token.ID,
		Credential: resp.Credential,
		Type:       string(resp.Token.Type),
		IssuedAt:   resp.Token.IssuedAtTime(),
		ExpiresAt:  resp.Token.ExpiresAtTime(),
	})
}

// handleRevokeToken handles POST /tokens/revoke.
//
// The bearer credential in the Authorization header names the token
// being revoked; the revocation subsystem itself stays stateless and
// reconstructs the entity from the verified claims.
func (h *Handler) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	credential := extractBearer(r)
	if credential == "" {
		h.writeError(w, r, http.StatusUnauthorized, "RG-TOK-4010", "bearer credential required", nil)
		return
	}

	// An expired credential still parses to its entity; the revoke
	// command then answers with the proper lifecycle error.
	token, err := h.issuer.Parse(credential)
	if err != nil && !errors.Is(err, domain.ErrCredentialExpired) {
		h.handleServiceError(w, r, err)
		return
	}

	var req RevokeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "RG-VAL-4000", "invalid request body", nil)
		return
	}

	resp, err := h.revokeSvc.Revoke(r.Context(), &service.RevokeTokenRequest{
		Token:  token,
		Reason: req.Reason,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	// Drop any cached not-revoked answer for this token
	h.checkSvc.Invalidate(resp.TokenID)

	h.writeJSON(w, r, http.StatusOK, RevokeTokenResponse{
		TokenID:                  resp.TokenID,
		Status:                   string(resp.Status),
		RevokedAt:                time.UnixMilli(resp.RevokedAt),
		ExpiresAt:                time.UnixMilli(resp.ExpiresAt),
		RecommendedClientActions: resp.RecommendedClientActions,
	})
}

// extractBearer returns the credential from the Authorization header.
func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
