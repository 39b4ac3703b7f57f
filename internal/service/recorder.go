package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/outbox"
	"github.com/natillera-ledger/internal/logger"
)

// recorder appends movements together with their outbox rows
type recorder struct {
	movements movement.Repository
	outbox    outbox.Repository
	logger    *slog.Logger
}

func newRecorder(logger *slog.Logger, movements movement.Repository, outboxRepo outbox.Repository) *recorder {
	return &recorder{
		movements: movements,
		outbox:    outboxRepo,
		logger:    logger,
	}
}

// Append stores entry in tx and enqueues its appended event
func (r *recorder) Append(ctx context.Context, tx pgx.Tx, entry *movement.Entry) error {
	if err := r.movements.WithTx(tx).Append(ctx, entry); err != nil {
		return err
	}
	return r.enqueue(ctx, tx, movement.NewAppendedEvent(entry, logger.CorrelationID(ctx)))
}

// Reset enqueues the event that purges the member's projections
func (r *recorder) Reset(ctx context.Context, tx pgx.Tx, memberID int64, at time.Time) error {
	return r.enqueue(ctx, tx, movement.NewResetEvent(memberID, logger.CorrelationID(ctx), at))
}

func (r *recorder) enqueue(ctx context.Context, tx pgx.Tx, event *movement.Event) error {
	msg, err := outbox.NewMessage(event)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	if err := r.outbox.WithTx(tx).Create(ctx, msg); err != nil {
		return err
	}

	logger.FromContext(ctx, r.logger).Debug("Movement event enqueued",
		"event_id", event.EventID,
		"kind", event.Kind,
		"member_id", event.MemberID,
	)
	return nil
}
