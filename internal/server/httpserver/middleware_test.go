// Package httpserver provides the HTTP/HTTPS server for RevGate.
package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/core/service"
	"github.com/revgate-io/revgate/internal/storage"
)

// gateStore is an in-memory service.RevocationStore with fault
// injection for gate tests.
type gateStore struct {
	mu        sync.Mutex
	records   map[string]*domain.RevocationRecord
	lookupErr error
	degraded  bool
}

func newGateStore() *gateStore {
	return &gateStore{records: make(map[string]*domain.RevocationRecord)}
}

func (s *gateStore) Put(_ context.Context, record *domain.RevocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.TokenID] = record
	return nil
}

func (s *gateStore) IsRevoked(_ context.Context, tokenID string) (storage.LookupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return storage.LookupResult{}, s.lookupErr
	}
	if s.degraded {
		return storage.LookupResult{Tier: storage.TierNone, Degraded: true}, nil
	}
	if record, ok := s.records[tokenID]; ok {
		return storage.LookupResult{Revoked: true, Record: record, Tier: storage.TierLocal}, nil
	}
	return storage.LookupResult{Tier: storage.TierNone}, nil
}

func (s *gateStore) Stats() storage.Stats         { return storage.Stats{} }
func (s *gateStore) Ping(_ context.Context) error { return nil }
func (s *gateStore) Sweep() int                   { return 0 }

// revoke records a revocation for the token directly in the store.
func (s *gateStore) revoke(token *domain.Token, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[token.ID] = &domain.RevocationRecord{
		TokenID:   token.ID,
		RevokedAt: time.Now().UnixMilli(),
		ExpiresAt: token.ExpiresAt,
		Reason:    reason,
	}
}

var testGateSecret = []byte("0123456789abcdef0123456789abcdef")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newGate builds a validation gate over a fresh issuer and store.
func newGate(t *testing.T, store *gateStore) (Middleware, *service.Issuer) {
	t.Helper()
	issuer, err := service.NewIssuer(testGateSecret, "revgate-test", nil)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	checker := service.NewCheckService(store, nil)
	gate := ValidationGate(&GateConfig{
		Issuer:  issuer,
		Checker: checker,
		Logger:  discardLogger(),
	})
	return gate, issuer
}

func issueCredential(t *testing.T, issuer *service.Issuer) (string, *domain.Token) {
	t.Helper()
	resp, err := issuer.Issue(&service.IssueTokenRequest{
		OwnerID:   "usr-1001",
		OwnerName: "Gate Test",
		Type:      domain.TokenTypeAccess,
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return resp.Credential, resp.Token
}

// gateResult captures everything a client could observe from a
// gate rejection.
type gateResult struct {
	status    int
	errorCode string
	body      string
	passed    bool
}

func runThroughGate(gate Middleware, authorization string) gateResult {
	var passed bool
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin/v1/stats", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return gateResult{
		status:    rec.Code,
		errorCode: rec.Header().Get("X-Error-Code"),
		body:      rec.Body.String(),
		passed:    passed,
	}
}

func TestValidationGate(t *testing.T) {
	t.Run("missing bearer rejected", func(t *testing.T) {
		gate, _ := newGate(t, newGateStore())

		res := runThroughGate(gate, "")
		if res.passed {
			t.Error("request should not reach the handler")
		}
		if res.status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", res.status)
		}
	})

	t.Run("malformed credential rejected", func(t *testing.T) {
		gate, _ := newGate(t, newGateStore())

		res := runThroughGate(gate, "Bearer not.a.credential")
		if res.passed {
			t.Error("request should not reach the handler")
		}
		if res.status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", res.status)
		}
	})

	t.Run("revoked token rejected", func(t *testing.T) {
		store := newGateStore()
		gate, issuer := newGate(t, store)
		credential, token := issueCredential(t, issuer)
		store.revoke(token, "user_logout")

		res := runThroughGate(gate, "Bearer "+credential)
		if res.passed {
			t.Error("revoked token should not reach the handler")
		}
		if res.status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", res.status)
		}
	})

	t.Run("rejections are indistinguishable", func(t *testing.T) {
		store := newGateStore()
		gate, issuer := newGate(t, store)
		credential, token := issueCredential(t, issuer)
		store.revoke(token, "user_logout")

		missing := runThroughGate(gate, "")
		malformed := runThroughGate(gate, "Bearer garbage")
		revoked := runThroughGate(gate, "Bearer "+credential)

		for name, res := range map[string]gateResult{
			"malformed": malformed,
			"revoked":   revoked,
		} {
			if res.status != missing.status {
				t.Errorf("%s: status %d differs from missing-bearer %d", name, res.status, missing.status)
			}
			if res.body != missing.body {
				t.Errorf("%s: body %q differs from missing-bearer %q", name, res.body, missing.body)
			}
			if res.errorCode != missing.errorCode {
				t.Errorf("%s: error code %q differs from missing-bearer %q", name, res.errorCode, missing.errorCode)
			}
		}
	})

	t.Run("valid token passes with caller in context", func(t *testing.T) {
		store := newGateStore()
		gate, issuer := newGate(t, store)
		credential, token := issueCredential(t, issuer)

		var caller *domain.Token
		handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller = GetCallerFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/admin/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer "+credential)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if caller == nil {
			t.Fatal("expected caller token in context")
		}
		if caller.ID != token.ID {
			t.Errorf("caller ID = %q, want %q", caller.ID, token.ID)
		}
	})

	t.Run("check error fails closed", func(t *testing.T) {
		store := newGateStore()
		store.lookupErr = domain.ErrStorage.WithDetails("both tiers down")
		gate, issuer := newGate(t, store)
		credential, _ := issueCredential(t, issuer)

		res := runThroughGate(gate, "Bearer "+credential)
		if res.passed {
			t.Error("request with undeterminable status should not pass")
		}
		if res.status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", res.status)
		}
	})

	t.Run("degraded not-revoked answer passes", func(t *testing.T) {
		store := newGateStore()
		store.degraded = true
		gate, issuer := newGate(t, store)
		credential, _ := issueCredential(t, issuer)

		res := runThroughGate(gate, "Bearer "+credential)
		if !res.passed {
			t.Errorf("degraded not-revoked answer should pass, got %d", res.status)
		}
	})
}

func TestChain(t *testing.T) {
	var order []string

	record := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), record("first"), record("second"))

	req := httptest.NewRequest("GET", "/test", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRequestID(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestIDFromContext(r.Context()) == "" {
			t.Error("expected request ID in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		requestID := rec.Header().Get("X-Request-ID")
		if requestID == "" {
			t.Fatal("expected X-Request-ID header")
		}
		if !strings.HasPrefix(requestID, "req-") {
			t.Errorf("expected request ID to start with 'req-', got %s", requestID)
		}
	})

	t.Run("preserves existing request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "existing-id-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "existing-id-123" {
			t.Errorf("expected existing-id-123, got %s", got)
		}
	})
}

func TestRecover(t *testing.T) {
	handler := Recover(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "RG-INF-5000" {
		t.Errorf("expected error code RG-INF-5000, got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send(); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := send()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exhausting bucket, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// A different IP has its own bucket
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.0.2.11:4000"
	other := httptest.NewRecorder()
	handler.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Errorf("other IP: expected 200, got %d", other.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "X-Forwarded-For first entry",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"},
			want:       "203.0.113.5",
		},
		{
			name:       "X-Real-IP",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "remote addr",
			remoteAddr: "192.0.2.1:5678",
			want:       "192.0.2.1",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[::1]:5678",
			want:       "::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBearer(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if got := extractBearer(req); got != "" {
		t.Errorf("expected empty credential, got %q", got)
	}

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if got := extractBearer(req); got != "" {
		t.Errorf("expected empty credential for Basic auth, got %q", got)
	}

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	if got := extractBearer(req); got != "abc.def.ghi" {
		t.Errorf("expected credential, got %q", got)
	}
}
