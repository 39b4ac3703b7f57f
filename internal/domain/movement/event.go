package movement

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies what happened to a member's ledger
type EventKind string

const (
	EventMovementAppended EventKind = "movement.appended"
	EventMemberReset      EventKind = "member.reset"
)

// Event is the message carried from the outbox to the movement topic
type Event struct {
	EventID       uuid.UUID `json:"event_id"`
	Kind          EventKind `json:"kind"`
	MemberID      int64     `json:"member_id"`
	Movement      *Entry    `json:"movement,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewAppendedEvent wraps a committed movement
func NewAppendedEvent(entry *Entry, correlationID string) *Event {
	return &Event{
		EventID:       uuid.New(),
		Kind:          EventMovementAppended,
		MemberID:      entry.MemberID,
		Movement:      entry,
		CorrelationID: correlationID,
		OccurredAt:    entry.CreatedAt,
	}
}

// NewResetEvent announces that a member's ledger was wiped by an administrator
func NewResetEvent(memberID int64, correlationID string, at time.Time) *Event {
	return &Event{
		EventID:       uuid.New(),
		Kind:          EventMemberReset,
		MemberID:      memberID,
		CorrelationID: correlationID,
		OccurredAt:    at,
	}
}

// ErrInvalidEvent marks events the journal projection cannot apply
var ErrInvalidEvent = errors.New("invalid movement event")

// Validate checks the event carries what its kind requires
func (e *Event) Validate() error {
	if e.MemberID <= 0 {
		return fmt.Errorf("%w: missing member id", ErrInvalidEvent)
	}

	switch e.Kind {
	case EventMovementAppended:
		if e.Movement == nil || e.Movement.ID <= 0 {
			return fmt.Errorf("%w: appended event without a stored movement", ErrInvalidEvent)
		}
		if e.Movement.MemberID != e.MemberID {
			return fmt.Errorf("%w: movement %d belongs to member %d", ErrInvalidEvent, e.Movement.ID, e.Movement.MemberID)
		}
	case EventMemberReset:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return nil
}
