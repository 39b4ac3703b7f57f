package loan

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines loan persistence operations
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id int64) (*Loan, error)
	// GetForUpdate locks the loan row for the current transaction
	GetForUpdate(ctx context.Context, id int64) (*Loan, error)
	ListByMember(ctx context.Context, memberID int64) ([]*Loan, error)
	Update(ctx context.Context, l *Loan) error
	DeleteByMember(ctx context.Context, memberID int64) (int64, error)
	TotalLentByMember(ctx context.Context, memberID int64) (int64, error)
	ListMemberIDsWithPendingLoans(ctx context.Context) ([]int64, error)
	WithTx(tx pgx.Tx) Repository
}
