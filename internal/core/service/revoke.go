package service

import (
	"context"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/storage"
	"github.com/revgate-io/revgate/internal/telemetry/logger"
	"github.com/revgate-io/revgate/internal/telemetry/metric"
)

// RevocationStore is the storage interface for revocation operations.
type RevocationStore interface {
	// Put records a revocation in all tiers, shared tier first.
	Put(ctx context.Context, record *domain.RevocationRecord) error

	// IsRevoked reports whether a live revocation record exists.
	IsRevoked(ctx context.Context, tokenID string) (storage.LookupResult, error)

	// Stats returns a snapshot of store counters.
	Stats() storage.Stats

	// Ping verifies the shared tier is reachable.
	Ping(ctx context.Context) error

	// Sweep removes expired local entries and returns the count.
	Sweep() int
}

// Archiver records revocation decisions durably for audit.
type Archiver interface {
	Append(ctx context.Context, record *domain.RevocationRecord, ownerID string) error
}

// EventPublisher dispatches drained domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.Event)
}

// RevocationService handles the Revoke command.
type RevocationService struct {
	store     RevocationStore
	archive   Archiver       // optional
	publisher EventPublisher // optional
	metrics   *metric.Metrics
	logger    logger.Logger
}

// NewRevocationService creates a new RevocationService.
func NewRevocationService(store RevocationStore, archive Archiver, publisher EventPublisher, metrics *metric.Metrics, log logger.Logger) *RevocationService {
	if log == nil {
		log = logger.Default()
	}
	return &RevocationService{
		store:     store,
		archive:   archive,
		publisher: publisher,
		metrics:   metrics,
		logger:    log,
	}
}

// RevokeTokenRequest contains parameters for token revocation.
type RevokeTokenRequest struct {
	// Token is the entity reconstructed from the presented credential.
	Token *domain.Token
	// Reason is the mandatory revocation reason.
	Reason string
}

// RevokeTokenResponse contains the result of a revocation.
type RevokeTokenResponse struct {
	TokenID   string
	Status    domain.TokenStatus
	RevokedAt int64 // Unix MS
	ExpiresAt int64 // Unix MS

	// RecommendedClientActions tells the caller what to discard.
	RecommendedClientActions []string
}

// Revoke revokes a token.
//
// The command only reports success once the shared tier has
// acknowledged the record; a revocation visible to just this instance
// would silently keep the credential alive everywhere else.
func (s *RevocationService) Revoke(ctx context.Context, req *RevokeTokenRequest) (*RevokeTokenResponse, error) {
	// 1. Validate input
	if req == nil || req.Token == nil {
		return nil, domain.ErrMissingArgument.WithDetails("token is required")
	}
	token := req.Token

	// 2. The entity is reconstructed fresh from the credential on
	// every request, so the store is the only place a prior
	// revocation can show up. A lookup error does not abort here;
	// the write below is the authoritative failure point.
	if result, err := s.store.IsRevoked(ctx, token.ID); err == nil && result.Revoked {
		return nil, domain.ErrAlreadyRevoked.WithDetails("token is already revoked")
	}

	// 3. Transition the entity (validates reason and lifecycle state)
	if err := token.Revoke(req.Reason); err != nil {
		return nil, err
	}

	// 4. Write through the store; failure aborts the whole command
	record := domain.NewRevocationRecord(token)
	if err := s.store.Put(ctx, record); err != nil {
		return nil, err
	}

	// 5. Archive, best effort
	if s.archive != nil {
		if err := s.archive.Append(ctx, record, token.OwnerID); err != nil {
			s.logger.Warn("revocation archived only in live store",
				"token_id", token.ID,
				"error", err)
		}
	}

	// 6. Drain and publish domain events
	if events := token.Events(); len(events) > 0 {
		if s.publisher != nil {
			s.publisher.Publish(ctx, events)
		}
		token.ClearEvents()
	}

	if s.metrics != nil {
		s.metrics.RevocationsTotal.WithLabelValues(reasonLabel(record.Reason)).Inc()
	}
	s.logger.Info("token revoked",
		"token_id", token.ID,
		"owner_id", token.OwnerID,
		"reason", record.Reason)

	return &RevokeTokenResponse{
		TokenID:   token.ID,
		Status:    token.Status,
		RevokedAt: token.RevokedAt,
		ExpiresAt: token.ExpiresAt,
		RecommendedClientActions: []string{
			"discard_access_token",
			"discard_refresh_token",
			"clear_session_state",
		},
	}, nil
}

// wellKnownReasons keeps the revocation metric's label set bounded;
// free-text reasons collapse into "other".
var wellKnownReasons = map[string]struct{}{
	"user_logout":       {},
	"password_change":   {},
	"security_incident": {},
	"admin_action":      {},
	"token_rotation":    {},
}

func reasonLabel(reason string) string {
	if _, ok := wellKnownReasons[reason]; ok {
		return reason
	}
	return "other"
}
