// Package httpserver provides the HTTP/HTTPS server for RevGate.
package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/core/service"
	"github.com/revgate-io/revgate/internal/telemetry/metric"
)

// Context keys for request-scoped values.
type contextKey string

const (
	// ContextKeyRequestID is the context key for request ID.
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyCaller is the context key for the authenticated caller's token.
	ContextKeyCaller contextKey = "caller"

	// ContextKeyStartTime is the context key for request start time.
	ContextKeyStartTime contextKey = "start_time"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a unique request ID to each request.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Honor an inbound request ID from a trusted proxy
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = "req-" + strings.ToLower(ulid.Make().String())
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GateConfig holds configuration for the validation gate middleware.
type GateConfig struct {
	Issuer  *service.Issuer
	Checker *service.CheckService
	Logger  *slog.Logger
}

// ValidationGate authenticates the bearer credential and rejects
// revoked tokens before the request reaches any handler.
//
// All rejections answer 401 with the same body, so a caller cannot
// distinguish a revoked credential from a malformed one. If the
// revocation check itself fails, the gate fails closed.
func ValidationGate(cfg *GateConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := extractBearer(r)
			if credential == "" {
				writeGateError(w)
				return
			}

			// 1. Signature and expiry verification
			token, err := cfg.Issuer.Parse(credential)
			if err != nil {
				writeGateError(w)
				return
			}

			// 2. Revocation check. Errors reject: the gate never
			// allows a request whose status it could not determine.
			resp, err := cfg.Checker.Check(r.Context(), &service.CheckRevocationRequest{
				TokenID: token.ID,
			})
			if err != nil || resp.IsRevoked {
				if err != nil {
					cfg.Logger.Error("revocation check failed, rejecting request",
						"request_id", GetRequestIDFromContext(r.Context()),
						"error", err,
					)
				}
				writeGateError(w)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyCaller, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit applies global rate limiting (per-IP).
// This implementation is thread-safe and uses a token bucket algorithm.
func RateLimit(requestsPerSecond int) Middleware {
	type bucket struct {
		tokens    float64
		lastCheck time.Time
	}

	var mu sync.RWMutex
	buckets := make(map[string]*bucket)
	rate := float64(requestsPerSecond)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			mu.RLock()
			b, ok := buckets[ip]
			mu.RUnlock()

			if !ok {
				mu.Lock()
				// Double-check after acquiring write lock
				if b, ok = buckets[ip]; !ok {
					b = &bucket{
						tokens:    rate,
						lastCheck: time.Now(),
					}
					buckets[ip] = b
				}
				mu.Unlock()
			}

			mu.Lock()
			now := time.Now()
			elapsed := now.Sub(b.lastCheck).Seconds()
			b.tokens += elapsed * rate
			if b.tokens > rate {
				b.tokens = rate
			}
			b.lastCheck = now

			if b.tokens < 1 {
				mu.Unlock()
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusTooManyRequests, "RG-SYS-4290", "too many requests")
				return
			}

			b.tokens--
			mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs request/response for audit trail.
func Audit(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			requestID, _ := r.Context().Value(ContextKeyRequestID).(string)
			startTime, _ := r.Context().Value(ContextKeyStartTime).(time.Time)
			duration := time.Since(startTime)

			attrs := []any{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
				"client_ip", getClientIP(r),
			}
			if caller := GetCallerFromContext(r.Context()); caller != nil {
				attrs = append(attrs, "owner_id", caller.OwnerID)
			}

			switch {
			case wrapped.statusCode >= 500:
				logger.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				logger.Warn("request completed with client error", attrs...)
			default:
				logger.Info("request completed", attrs...)
			}
		})
	}
}

// Instrument records request count and duration per route.
func Instrument(metrics *metric.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(wrapped, r)

			route := r.Method + " " + r.URL.Path
			metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(wrapped.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID, _ := r.Context().Value(ContextKeyRequestID).(string)
					logger.Error("panic recovered",
						"request_id", requestID,
						"error", err,
						"path", r.URL.Path,
					)
					writeJSONError(w, http.StatusInternalServerError, "RG-INF-5000", "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// GetCallerFromContext retrieves the authenticated caller's token from context.
func GetCallerFromContext(ctx context.Context) *domain.Token {
	if token, ok := ctx.Value(ContextKeyCaller).(*domain.Token); ok {
		return token
	}
	return nil
}

// GetRequestIDFromContext retrieves the request ID from context.
func GetRequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// extractBearer returns the credential from the Authorization header.
func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// writeGateError writes the uniform rejection of the validation gate.
// Adds a small jitter so response timing does not hint at which stage
// rejected the credential.
func writeGateError(w http.ResponseWriter) {
	time.Sleep(time.Duration(rand.Intn(2000)) * time.Microsecond)
	writeJSONError(w, http.StatusUnauthorized, domain.ErrCredentialInvalid.Code, "authentication required")
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// SplitHostPort handles IPv6 addresses like [::1]:8080
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
