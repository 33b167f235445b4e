package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/revgate-io/revgate/internal/core/domain"
)

func openTestArchive(t *testing.T, sealer *Sealer) *Archive {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	cfg.Sealer = sealer
	cfg.GCInterval = time.Hour // no GC churn in tests

	archive, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { archive.Close() })
	return archive
}

func freshTokenID(t *testing.T) string {
	t.Helper()
	id, err := domain.GenerateTokenID()
	if err != nil {
		t.Fatalf("GenerateTokenID failed: %v", err)
	}
	return id
}

func archivedRecord(t *testing.T, revokedAt time.Time) *domain.RevocationRecord {
	t.Helper()
	return &domain.RevocationRecord{
		TokenID:   freshTokenID(t),
		RevokedAt: revokedAt.UnixMilli(),
		ExpiresAt: revokedAt.Add(time.Hour).UnixMilli(),
		Reason:    "security_incident",
	}
}

func TestArchive_AppendLookup(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t, nil)

	rec := archivedRecord(t, time.Now())
	if err := archive.Append(ctx, rec, "usr-1001"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := archive.Lookup(ctx, rec.TokenID)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	entry := entries[0]
	if entry.TokenID != rec.TokenID {
		t.Errorf("TokenID = %s, want %s", entry.TokenID, rec.TokenID)
	}
	if entry.OwnerID != "usr-1001" {
		t.Errorf("OwnerID = %s, want usr-1001", entry.OwnerID)
	}
	if entry.Reason != "security_incident" {
		t.Errorf("Reason = %s, want security_incident", entry.Reason)
	}
	if entry.ArchivedAt == 0 {
		t.Error("ArchivedAt should be set")
	}
}

func TestArchive_LookupUnknownToken(t *testing.T) {
	archive := openTestArchive(t, nil)

	_, err := archive.Lookup(context.Background(), freshTokenID(t))
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("error = %v, want ErrEntryNotFound", err)
	}
}

func TestArchive_List(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t, nil)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		rec := archivedRecord(t, base.Add(time.Duration(i)*time.Minute))
		if err := archive.Append(ctx, rec, "usr-1001"); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	t.Run("all entries in revocation order", func(t *testing.T) {
		entries, err := archive.List(ctx, time.Time{}, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 5 {
			t.Fatalf("got %d entries, want 5", len(entries))
		}
		for i := 1; i < len(entries); i++ {
			if entries[i].RevokedAt < entries[i-1].RevokedAt {
				t.Fatal("entries not in revocation order")
			}
		}
	})

	t.Run("since filter", func(t *testing.T) {
		entries, err := archive.List(ctx, base.Add(3*time.Minute), 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("got %d entries, want 2", len(entries))
		}
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := archive.List(ctx, time.Time{}, 2)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("got %d entries, want 2", len(entries))
		}
	})
}

func TestArchive_Encrypted(t *testing.T) {
	ctx := context.Background()

	sealer, salt, err := NewSealerFromPassphrase([]byte("audit archive secret"), nil)
	if err != nil {
		t.Fatal(err)
	}
	archive := openTestArchive(t, sealer)

	rec := archivedRecord(t, time.Now())
	if err := archive.Append(ctx, rec, "usr-1001"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := archive.Lookup(ctx, rec.TokenID)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if entries[0].Reason != "security_incident" {
		t.Errorf("Reason = %s, want security_incident", entries[0].Reason)
	}

	// Salts are caller-persisted; the same passphrase and salt must
	// keep opening existing entries.
	if _, _, err := NewSealerFromPassphrase([]byte("audit archive secret"), salt); err != nil {
		t.Errorf("re-deriving sealer failed: %v", err)
	}
}

func TestArchive_CountPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := DefaultConfig(dir)
	cfg.GCInterval = time.Hour
	archive, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := archive.Append(ctx, archivedRecord(t, time.Now()), "usr-1001"); err != nil {
			t.Fatal(err)
		}
	}
	if archive.Count() != 3 {
		t.Errorf("Count = %d, want 3", archive.Count())
	}
	if err := archive.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if reopened.Count() != 3 {
		t.Errorf("Count after reopen = %d, want 3", reopened.Count())
	}
}

func TestArchive_ClosedRejectsOperations(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig(t.TempDir())
	cfg.GCInterval = time.Hour

	archive, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := archive.Close(); err != nil {
		t.Fatal(err)
	}

	if err := archive.Append(ctx, archivedRecord(t, time.Now()), "usr-1001"); !errors.Is(err, ErrClosed) {
		t.Errorf("Append error = %v, want ErrClosed", err)
	}
	if _, err := archive.List(ctx, time.Time{}, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("List error = %v, want ErrClosed", err)
	}
	// Close is idempotent.
	if err := archive.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
}
