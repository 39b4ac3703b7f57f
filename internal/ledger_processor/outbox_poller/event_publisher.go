package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/natillera-ledger/internal/domain/outbox"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/messaging/producers"
)

// ErrMalformedPayload marks outbox rows whose payload is not a movement event.
// They are failed immediately since no retry can fix them.
var ErrMalformedPayload = errors.New("malformed outbox payload")

// EventPublisher moves one outbox message onto the movement topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MovementPublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MovementPublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes the message and marks it as processed
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Failed to unmarshal movement event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("%w: outbox %d: %v", ErrMalformedPayload, message.ID, err)
	}

	log := logger.FromContext(logger.ContextWithCorrelationID(ctx, event.CorrelationID), p.logger)

	if err := p.producer.Publish(ctx, message); err != nil {
		return fmt.Errorf("failed to publish outbox message %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		log.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		return fmt.Errorf("event %s published, but failed to mark outbox %d as PROCESSED: %w", message.EventID, message.ID, err)
	}

	log.Debug("Outbox message published and marked as PROCESSED",
		"outbox_id", message.ID,
		"event_id", message.EventID,
		"kind", event.Kind,
	)
	return nil
}
