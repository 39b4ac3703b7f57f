package savings

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines savings account persistence operations. Every member has at most one row.
type Repository interface {
	GetByMember(ctx context.Context, memberID int64) (*Account, error)
	// Ensure inserts defaults when the member has no account and returns the stored row
	Ensure(ctx context.Context, defaults *Account) (*Account, error)
	// EnsureForUpdate behaves like Ensure and locks the row for the current transaction
	EnsureForUpdate(ctx context.Context, defaults *Account) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	WithTx(tx pgx.Tx) Repository
}
