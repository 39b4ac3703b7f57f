package movement

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository is the authoritative Postgres ledger
type Repository interface {
	// Append stores the entry and sets its ID
	Append(ctx context.Context, entry *Entry) error
	// ListByMember returns the most recent movements first
	ListByMember(ctx context.Context, memberID int64, limit int) ([]*Entry, error)
	// LatestOfType returns the newest movement of the given type by ID, or nil when none exists
	LatestOfType(ctx context.Context, memberID int64, movementType Type) (*Entry, error)
	// ListLoanPayments returns the payments linked to a loan in insertion order
	ListLoanPayments(ctx context.Context, memberID, loanID int64) ([]*Entry, error)
	DeleteByMember(ctx context.Context, memberID int64) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// JournalRepository is the Mongo read model fed from the movement topic
type JournalRepository interface {
	// Upsert stores the movement keyed by its ID, so redelivery is harmless
	Upsert(ctx context.Context, entry *Entry) error
	ListByMember(ctx context.Context, memberID int64, limit, offset int) ([]*Entry, error)
	CountByMember(ctx context.Context, memberID int64) (int64, error)
	DeleteByMember(ctx context.Context, memberID int64) (int64, error)
}
