// Package handler provides HTTP request handlers for RevGate.
package handler

import "time"

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// IssueTokenRequest is the request body for POST /tokens/issue.
type IssueTokenRequest struct {
	OwnerID         string   `json:"owner_id"`
	OwnerName       string   `json:"owner_name"`
	Type            string   `json:"type,omitempty"`
	LifetimeSeconds int64    `json:"lifetime_seconds,omitempty"`
	Roles           []string `json:"roles,omitempty"`
}

// IssueTokenResponse is the response body for POST /tokens/issue.
type IssueTokenResponse struct {
	TokenID    string    `json:"token_id"`
	Credential string    `json:"credential"`
	Type       string    `json:"type"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RevokeTokenRequest is the request body for POST /tokens/revoke.
// The credential to revoke rides in the Authorization header; the
// body carries only the reason.
type RevokeTokenRequest struct {
	Reason string `json:"reason"`
}

// RevokeTokenResponse is the response body for POST /tokens/revoke.
type RevokeTokenResponse struct {
	TokenID                  string    `json:"token_id"`
	Status                   string    `json:"status"`
	RevokedAt                time.Time `json:"revoked_at"`
	ExpiresAt                time.Time `json:"expires_at"`
	RecommendedClientActions []string  `json:"recommended_client_actions"`
}

// TokenStatusResponse is the response body for GET /admin/v1/tokens/status.
type TokenStatusResponse struct {
	IsRevoked bool       `json:"is_revoked"`
	TokenID   string     `json:"token_id"`
	Status    string     `json:"status"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CheckedAt time.Time  `json:"checked_at"`
	FromCache bool       `json:"from_cache"`
	Degraded  bool       `json:"degraded,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	SharedTier string `json:"shared_tier"`
	Time       string `json:"time"`
}
