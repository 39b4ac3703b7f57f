package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/savings"
	"github.com/natillera-ledger/internal/platform/persistence"
)

// SavingsRepository implements the savings.Repository interface for PostgreSQL
type SavingsRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSavingsRepository creates a new PostgreSQL savings account repository
func NewSavingsRepository(logger *slog.Logger, db *persistence.PostgresDB) savings.Repository {
	return &SavingsRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *SavingsRepository) WithTx(tx pgx.Tx) savings.Repository {
	return &SavingsRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByMember retrieves the account of a member
func (r *SavingsRepository) GetByMember(ctx context.Context, memberID int64) (*savings.Account, error) {
	query := `
		SELECT id, member_id, monthly_contribution, balance, interest_rate, interest_earned, updated_at
		FROM savings_accounts
		WHERE member_id = $1
	`
	return r.get(ctx, query, memberID)
}

// Ensure creates the account from defaults when it does not exist yet and returns the stored row.
// The unique member_id constraint makes concurrent first access converge on one row.
func (r *SavingsRepository) Ensure(ctx context.Context, defaults *savings.Account) (*savings.Account, error) {
	if err := r.insertIfAbsent(ctx, defaults); err != nil {
		return nil, err
	}
	return r.GetByMember(ctx, defaults.MemberID)
}

// EnsureForUpdate behaves like Ensure and locks the row until the transaction ends
func (r *SavingsRepository) EnsureForUpdate(ctx context.Context, defaults *savings.Account) (*savings.Account, error) {
	if err := r.insertIfAbsent(ctx, defaults); err != nil {
		return nil, err
	}

	query := `
		SELECT id, member_id, monthly_contribution, balance, interest_rate, interest_earned, updated_at
		FROM savings_accounts
		WHERE member_id = $1
		FOR UPDATE
	`
	return r.get(ctx, query, defaults.MemberID)
}

// Update persists the contribution settings and accrued position of the account
func (r *SavingsRepository) Update(ctx context.Context, acc *savings.Account) error {
	query := `
		UPDATE savings_accounts
		SET monthly_contribution = $1, balance = $2, interest_rate = $3, interest_earned = $4, updated_at = $5
		WHERE member_id = $6
	`

	result, err := r.querier.Exec(ctx, query,
		acc.MonthlyContribution,
		acc.Balance,
		acc.InterestRate,
		acc.InterestEarned,
		acc.UpdatedAt,
		acc.MemberID,
	)
	if err != nil {
		r.logger.Error("Failed to update savings account", "member_id", acc.MemberID, "error", err)
		return fmt.Errorf("failed to update savings account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return savings.ErrAccountNotFound{MemberID: acc.MemberID}
	}

	return nil
}

func (r *SavingsRepository) insertIfAbsent(ctx context.Context, acc *savings.Account) error {
	query := `
		INSERT INTO savings_accounts (member_id, monthly_contribution, balance, interest_rate, interest_earned, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (member_id) DO NOTHING
	`

	_, err := r.querier.Exec(ctx, query,
		acc.MemberID,
		acc.MonthlyContribution,
		acc.Balance,
		acc.InterestRate,
		acc.InterestEarned,
		acc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create savings account", "member_id", acc.MemberID, "error", err)
		return fmt.Errorf("failed to create savings account: %w", err)
	}

	return nil
}

func (r *SavingsRepository) get(ctx context.Context, query string, memberID int64) (*savings.Account, error) {
	var acc savings.Account
	err := r.querier.QueryRow(ctx, query, memberID).Scan(
		&acc.ID,
		&acc.MemberID,
		&acc.MonthlyContribution,
		&acc.Balance,
		&acc.InterestRate,
		&acc.InterestEarned,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, savings.ErrAccountNotFound{MemberID: memberID}
		}
		r.logger.Error("Failed to get savings account", "member_id", memberID, "error", err)
		return nil, fmt.Errorf("failed to get savings account: %w", err)
	}

	return &acc, nil
}
