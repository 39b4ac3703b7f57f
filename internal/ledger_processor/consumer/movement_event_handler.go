package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/ledger_processor/projection"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/messaging/producers"
)

// MovementEventHandler projects movement events read from Kafka into the journal
type MovementEventHandler struct {
	projection projection.ProjectionService
	producer   producers.DeadLetterPublisher
	logger     *slog.Logger
}

func NewMovementEventHandler(
	logger *slog.Logger,
	projection projection.ProjectionService,
	producer producers.DeadLetterPublisher,
) *MovementEventHandler {
	return &MovementEventHandler{
		projection: projection,
		producer:   producer,
		logger:     logger,
	}
}

// HandleMessage processes one Kafka message. A nil return commits the offset.
func (h *MovementEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event movement.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, "Failed to unmarshal movement event", err)
	}
	if err := event.Validate(); err != nil {
		return h.deadLetter(ctx, key, value, "Rejected invalid movement event", err)
	}

	if event.CorrelationID != "" {
		ctx = logger.ContextWithCorrelationID(ctx, event.CorrelationID)
	}
	log := logger.FromContext(ctx, h.logger)

	log.Info("Received movement event",
		"event_id", event.EventID.String(),
		"kind", event.Kind,
		"member_id", event.MemberID,
	)

	if err := h.projection.Project(ctx, &event); err != nil {
		log.Error("Failed to project movement event",
			"event_id", event.EventID.String(),
			"member_id", event.MemberID,
			"error", err,
		)
		return fmt.Errorf("projecting event %s failed: %w", event.EventID.String(), err)
	}

	log.Info("Successfully projected movement event", "event_id", event.EventID.String())
	return nil
}

// deadLetter parks an unprocessable message. The offset is committed only when the DLQ accepted it.
func (h *MovementEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string, cause error) error {
	h.logger.Error(reason, "error", cause, "message_key", string(key))

	dlqReason := fmt.Sprintf("%s: %s", reason, cause.Error())
	dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason)
	if dlqErr == nil {
		h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
		return nil
	}
	if !errors.Is(dlqErr, producers.ErrDLQDisabled) {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
	}
	return fmt.Errorf("unprocessable movement event: %w", cause)
}
