package service

import (
	"context"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/telemetry/logger"
)

// LogPublisher publishes domain events to the structured log. It is
// the default publisher; deployments that feed revocations into a
// broker replace it behind the EventPublisher interface.
type LogPublisher struct {
	logger logger.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Default()
	}
	return &LogPublisher{logger: log}
}

// Publish implements EventPublisher.
func (p *LogPublisher) Publish(ctx context.Context, events []domain.Event) {
	for _, event := range events {
		p.logger.WithContext(ctx).Info("domain event",
			"event", event.Name,
			"token_id", event.TokenID,
			"owner_id", event.OwnerID,
			"reason", event.Reason,
			"occurred_at", event.OccurredAt)
	}
}
