package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/platform/persistence"
)

const loanColumns = `id, member_id, principal, interest, total, term_months, disbursed_at, due_date, status, outstanding, installments_paid`

// LoanRepository implements the loan.Repository interface for PostgreSQL
type LoanRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLoanRepository creates a new PostgreSQL loan repository
func NewLoanRepository(logger *slog.Logger, db *persistence.PostgresDB) loan.Repository {
	return &LoanRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *LoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	return &LoanRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new loan and sets its ID
func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	query := `
		INSERT INTO loans (member_id, principal, interest, total, term_months, disbursed_at, due_date, status, outstanding, installments_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		l.MemberID,
		l.Principal,
		l.Interest,
		l.Total,
		l.TermMonths,
		l.DisbursedAt,
		l.DueDate,
		l.Status,
		l.Outstanding,
		l.InstallmentsPaid,
	).Scan(&l.ID)
	if err != nil {
		r.logger.Error("Failed to create loan", "member_id", l.MemberID, "error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// GetByID retrieves a loan by its ID
func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetForUpdate retrieves a loan and locks its row until the transaction ends
func (r *LoanRepository) GetForUpdate(ctx context.Context, id int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

// ListByMember returns the member's loans, most recent disbursement first
func (r *LoanRepository) ListByMember(ctx context.Context, memberID int64) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE member_id = $1 ORDER BY disbursed_at DESC, id DESC`

	rows, err := r.querier.Query(ctx, query, memberID)
	if err != nil {
		r.logger.Error("Failed to list loans", "member_id", memberID, "error", err)
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []*loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.Error("Failed to scan loan", "error", err)
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over loans", "error", err)
		return nil, fmt.Errorf("error iterating over loans: %w", err)
	}

	return loans, nil
}

// Update persists the reconciled position of a loan
func (r *LoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	query := `
		UPDATE loans
		SET status = $1, outstanding = $2, installments_paid = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query, l.Status, l.Outstanding, l.InstallmentsPaid, l.ID)
	if err != nil {
		r.logger.Error("Failed to update loan", "loan_id", l.ID, "error", err)
		return fmt.Errorf("failed to update loan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: l.ID}
	}

	return nil
}

// DeleteByMember removes every loan of a member and returns how many were deleted
func (r *LoanRepository) DeleteByMember(ctx context.Context, memberID int64) (int64, error) {
	query := `DELETE FROM loans WHERE member_id = $1`

	result, err := r.querier.Exec(ctx, query, memberID)
	if err != nil {
		r.logger.Error("Failed to delete loans", "member_id", memberID, "error", err)
		return 0, fmt.Errorf("failed to delete loans: %w", err)
	}

	return result.RowsAffected(), nil
}

// TotalLentByMember sums the principal of every loan granted to the member
func (r *LoanRepository) TotalLentByMember(ctx context.Context, memberID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(principal), 0)::BIGINT FROM loans WHERE member_id = $1`

	var total int64
	if err := r.querier.QueryRow(ctx, query, memberID).Scan(&total); err != nil {
		r.logger.Error("Failed to sum loans", "member_id", memberID, "error", err)
		return 0, fmt.Errorf("failed to sum loans: %w", err)
	}

	return total, nil
}

// ListMemberIDsWithPendingLoans returns the members that still owe at least one loan
func (r *LoanRepository) ListMemberIDsWithPendingLoans(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT member_id FROM loans WHERE status = $1 ORDER BY member_id`

	rows, err := r.querier.Query(ctx, query, loan.StatusPending)
	if err != nil {
		r.logger.Error("Failed to list members with pending loans", "error", err)
		return nil, fmt.Errorf("failed to list members with pending loans: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			r.logger.Error("Failed to scan member id", "error", err)
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over member ids", "error", err)
		return nil, fmt.Errorf("error iterating over member ids: %w", err)
	}

	return ids, nil
}

func (r *LoanRepository) get(ctx context.Context, query string, id int64) (*loan.Loan, error) {
	l, err := scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to get loan", "loan_id", id, "error", err)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return l, nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID,
		&l.MemberID,
		&l.Principal,
		&l.Interest,
		&l.Total,
		&l.TermMonths,
		&l.DisbursedAt,
		&l.DueDate,
		&l.Status,
		&l.Outstanding,
		&l.InstallmentsPaid,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
