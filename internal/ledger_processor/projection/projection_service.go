// Package projection applies movement events to the Mongo journal read model.
package projection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/logger"
)

// ProjectionService applies one movement event to the read model
type ProjectionService interface {
	Project(ctx context.Context, event *movement.Event) error
}

// JournalProjectionService writes events into the movement journal. Both operations are
// idempotent, so redelivered events are harmless.
type JournalProjectionService struct {
	journal movement.JournalRepository
	logger  *slog.Logger
}

func NewJournalProjectionService(logger *slog.Logger, journal movement.JournalRepository) *JournalProjectionService {
	return &JournalProjectionService{
		journal: journal,
		logger:  logger,
	}
}

func (s *JournalProjectionService) Project(ctx context.Context, event *movement.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	log := logger.FromContext(ctx, s.logger)

	switch event.Kind {
	case movement.EventMovementAppended:
		if err := s.journal.Upsert(ctx, event.Movement); err != nil {
			return fmt.Errorf("failed to project movement %d: %w", event.Movement.ID, err)
		}
		log.Debug("Movement projected to journal",
			"event_id", event.EventID,
			"movement_id", event.Movement.ID,
			"member_id", event.MemberID,
		)
	case movement.EventMemberReset:
		deleted, err := s.journal.DeleteByMember(ctx, event.MemberID)
		if err != nil {
			return fmt.Errorf("failed to clear journal of member %d: %w", event.MemberID, err)
		}
		log.Info("Member journal cleared after reset", "member_id", event.MemberID, "deleted", deleted)
	}
	return nil
}
