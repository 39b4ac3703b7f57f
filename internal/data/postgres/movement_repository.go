package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/platform/persistence"
)

const movementColumns = `id, member_id, loan_id, type, amount, category, description, created_at`

// MovementRepository implements the movement.Repository interface for PostgreSQL.
// Movement ids come from a BIGSERIAL, which gives a stable insertion order per member.
type MovementRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewMovementRepository creates a new PostgreSQL movement repository
func NewMovementRepository(logger *slog.Logger, db *persistence.PostgresDB) movement.Repository {
	return &MovementRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *MovementRepository) WithTx(tx pgx.Tx) movement.Repository {
	return &MovementRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append stores an entry and sets its ID
func (r *MovementRepository) Append(ctx context.Context, entry *movement.Entry) error {
	query := `
		INSERT INTO movements (member_id, loan_id, type, amount, category, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		entry.MemberID,
		entry.LoanID,
		entry.Type,
		entry.Amount,
		entry.Category,
		entry.Description,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		r.logger.Error("Failed to append movement",
			"member_id", entry.MemberID,
			"type", string(entry.Type),
			"error", err,
		)
		return fmt.Errorf("failed to append movement: %w", err)
	}

	return nil
}

// ListByMember returns up to limit movements of a member, newest first
func (r *MovementRepository) ListByMember(ctx context.Context, memberID int64, limit int) ([]*movement.Entry, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE member_id = $1 ORDER BY id DESC LIMIT $2`
	return r.list(ctx, query, memberID, limit)
}

// LatestOfType returns the newest movement of the given type, or nil when there is none
func (r *MovementRepository) LatestOfType(ctx context.Context, memberID int64, movementType movement.Type) (*movement.Entry, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE member_id = $1 AND type = $2 ORDER BY id DESC LIMIT 1`

	entry, err := scanMovement(r.querier.QueryRow(ctx, query, memberID, movementType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get latest movement", "member_id", memberID, "type", string(movementType), "error", err)
		return nil, fmt.Errorf("failed to get latest movement: %w", err)
	}

	return entry, nil
}

// ListLoanPayments returns the payments of a loan in insertion order. Rows written before
// the loan_id column existed are matched through the tag in their description.
func (r *MovementRepository) ListLoanPayments(ctx context.Context, memberID, loanID int64) ([]*movement.Entry, error) {
	query := `SELECT ` + movementColumns + ` FROM movements
		WHERE member_id = $1 AND type = $2
		AND (loan_id = $3 OR (loan_id IS NULL AND strpos(lower(description), lower($4)) > 0))
		ORDER BY id ASC`
	return r.list(ctx, query, memberID, movement.TypeLoanPayment, loanID, movement.LoanTag(loanID))
}

// DeleteByMember removes the member's whole ledger and returns how many rows were deleted
func (r *MovementRepository) DeleteByMember(ctx context.Context, memberID int64) (int64, error) {
	query := `DELETE FROM movements WHERE member_id = $1`

	result, err := r.querier.Exec(ctx, query, memberID)
	if err != nil {
		r.logger.Error("Failed to delete movements", "member_id", memberID, "error", err)
		return 0, fmt.Errorf("failed to delete movements: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *MovementRepository) list(ctx context.Context, query string, args ...interface{}) ([]*movement.Entry, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list movements", "error", err)
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	var entries []*movement.Entry
	for rows.Next() {
		entry, err := scanMovement(rows)
		if err != nil {
			r.logger.Error("Failed to scan movement", "error", err)
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over movements", "error", err)
		return nil, fmt.Errorf("error iterating over movements: %w", err)
	}

	return entries, nil
}

func scanMovement(row pgx.Row) (*movement.Entry, error) {
	var e movement.Entry
	err := row.Scan(
		&e.ID,
		&e.MemberID,
		&e.LoanID,
		&e.Type,
		&e.Amount,
		&e.Category,
		&e.Description,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
