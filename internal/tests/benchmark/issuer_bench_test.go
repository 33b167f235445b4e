package benchmark

import (
	"testing"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/core/service"
)

var benchSecret = []byte("0123456789abcdef0123456789abcdef")

// BenchmarkIssue benchmarks credential issuance (entity build + sign).
func BenchmarkIssue(b *testing.B) {
	issuer, err := service.NewIssuer(benchSecret, "revgate-bench", nil)
	if err != nil {
		b.Fatalf("NewIssuer: %v", err)
	}

	req := &service.IssueTokenRequest{
		OwnerID:   "usr-1001",
		OwnerName: "Bench",
		Type:      domain.TokenTypeAccess,
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := issuer.Issue(req); err != nil {
			b.Fatalf("Issue: %v", err)
		}
	}
}

// BenchmarkParse benchmarks credential verification and entity
// reconstruction, the hot path of every gated request.
func BenchmarkParse(b *testing.B) {
	issuer, err := service.NewIssuer(benchSecret, "revgate-bench", nil)
	if err != nil {
		b.Fatalf("NewIssuer: %v", err)
	}

	resp, err := issuer.Issue(&service.IssueTokenRequest{
		OwnerID:   "usr-1001",
		OwnerName: "Bench",
		Type:      domain.TokenTypeAccess,
	})
	if err != nil {
		b.Fatalf("Issue: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := issuer.Parse(resp.Credential); err != nil {
			b.Fatalf("Parse: %v", err)
		}
	}
}

// BenchmarkGenerateTokenID benchmarks token ID generation.
func BenchmarkGenerateTokenID(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := domain.GenerateTokenID(); err != nil {
			b.Fatalf("GenerateTokenID: %v", err)
		}
	}
}
