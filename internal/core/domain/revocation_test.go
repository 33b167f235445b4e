// Package domain defines the core domain models for RevGate.
package domain

import (
	"testing"
	"time"
)

func TestNewRevocationRecord(t *testing.T) {
	tok := newActiveToken(t, 30*time.Minute)
	if err := tok.Revoke("user_logout"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	rec := NewRevocationRecord(tok)
	if rec.TokenID != tok.ID {
		t.Errorf("TokenID = %s, want %s", rec.TokenID, tok.ID)
	}
	if rec.RevokedAt != tok.RevokedAt {
		t.Error("RevokedAt should be copied from the token")
	}
	if rec.ExpiresAt != tok.ExpiresAt {
		t.Error("ExpiresAt should be copied from the token")
	}
	if rec.Reason != "user_logout" {
		t.Errorf("Reason = %s, want user_logout", rec.Reason)
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestRevocationRecord_TTL(t *testing.T) {
	t.Run("ttl never exceeds remaining token lifetime", func(t *testing.T) {
		tok := newActiveToken(t, 10*time.Minute)
		if err := tok.Revoke("user_logout"); err != nil {
			t.Fatalf("Revoke failed: %v", err)
		}

		ttl := NewRevocationRecord(tok).TTL()
		if ttl > 10*time.Minute {
			t.Errorf("TTL = %v, exceeds remaining lifetime", ttl)
		}
		if ttl < 9*time.Minute {
			t.Errorf("TTL = %v, suspiciously short for a 10m token", ttl)
		}
	})

	t.Run("ttl is zero for past expiry", func(t *testing.T) {
		rec := &RevocationRecord{
			TokenID:   "rgtk-01hgw2n8xfvq4r9k3m5p7t6s2d",
			RevokedAt: time.Now().Add(-time.Hour).UnixMilli(),
			ExpiresAt: time.Now().Add(-time.Minute).UnixMilli(),
			Reason:    "user_logout",
		}
		if ttl := rec.TTL(); ttl != 0 {
			t.Errorf("TTL = %v, want 0", ttl)
		}
		if !rec.IsStale() {
			t.Error("record past expiry should report stale")
		}
	})
}

func TestRevocationRecord_Validate(t *testing.T) {
	base := func() *RevocationRecord {
		return &RevocationRecord{
			TokenID:   "rgtk-01hgw2n8xfvq4r9k3m5p7t6s2d",
			RevokedAt: time.Now().UnixMilli(),
			ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
			Reason:    "user_logout",
		}
	}

	t.Run("valid record", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	t.Run("missing token id", func(t *testing.T) {
		rec := base()
		rec.TokenID = ""
		if err := rec.Validate(); !IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("missing reason", func(t *testing.T) {
		rec := base()
		rec.Reason = ""
		if err := rec.Validate(); !IsDomainError(err, "RG-VAL-4003") {
			t.Errorf("expected RG-VAL-4003, got %v", err)
		}
	})

	t.Run("missing expiry", func(t *testing.T) {
		rec := base()
		rec.ExpiresAt = 0
		if err := rec.Validate(); !IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
