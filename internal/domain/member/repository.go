package member

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/shared"
)

// Repository defines member persistence operations
type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id int64) (*Member, error)
	// List returns all members ordered by name
	List(ctx context.Context) ([]*Member, error)
	Count(ctx context.Context) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrMemberNotFound indicates a missing member
type ErrMemberNotFound struct {
	MemberID int64
}

func (e ErrMemberNotFound) Error() string {
	return "member not found: " + strconv.FormatInt(e.MemberID, 10)
}

// Is matches shared.ErrNotFound and any ErrMemberNotFound with a zero or equal ID
func (e ErrMemberNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrMemberNotFound)
	if !ok {
		return false
	}
	return t.MemberID == 0 || t.MemberID == e.MemberID
}

// ErrDuplicateMember indicates a uniqueness violation on one of the member's identifiers
type ErrDuplicateMember struct {
	Field string
}

func (e ErrDuplicateMember) Error() string {
	return "member with this " + e.Field + " already exists"
}
