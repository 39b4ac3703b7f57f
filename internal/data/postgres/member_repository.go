// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository runs against either the pool or a transaction, so services can
// compose several of them into one atomic unit of work.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/platform/persistence"
)

// MemberRepository implements the member.Repository interface for PostgreSQL
type MemberRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewMemberRepository creates a new PostgreSQL member repository
func NewMemberRepository(logger *slog.Logger, db *persistence.PostgresDB) member.Repository {
	return &MemberRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *MemberRepository) WithTx(tx pgx.Tx) member.Repository {
	return &MemberRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new member and sets its ID. Username and lottery number are unique.
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (username, name, phone, email, lottery_number, role, active, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		m.Username,
		m.Name,
		m.Phone,
		m.Email,
		m.LotteryNumber,
		m.Role,
		m.Active,
		m.RegisteredAt,
	).Scan(&m.ID)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			switch constraint {
			case "members_lottery_number_key":
				return member.ErrDuplicateMember{Field: "lottery number"}
			default:
				return member.ErrDuplicateMember{Field: "username"}
			}
		}
		r.logger.Error("Failed to create member", "username", m.Username, "error", err)
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetByID retrieves a member by its ID
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*member.Member, error) {
	query := `
		SELECT id, username, name, phone, email, lottery_number, role, active, registered_at
		FROM members
		WHERE id = $1
	`

	m, err := scanMember(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrMemberNotFound{MemberID: id}
		}
		r.logger.Error("Failed to get member", "member_id", id, "error", err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return m, nil
}

// List returns every member ordered by name
func (r *MemberRepository) List(ctx context.Context) ([]*member.Member, error) {
	query := `
		SELECT id, username, name, phone, email, lottery_number, role, active, registered_at
		FROM members
		ORDER BY name ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list members", "error", err)
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*member.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			r.logger.Error("Failed to scan member", "error", err)
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over members", "error", err)
		return nil, fmt.Errorf("error iterating over members: %w", err)
	}

	return members, nil
}

// Count returns the number of registered members
func (r *MemberRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM members`

	var count int64
	if err := r.querier.QueryRow(ctx, query).Scan(&count); err != nil {
		r.logger.Error("Failed to count members", "error", err)
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}

func scanMember(row pgx.Row) (*member.Member, error) {
	var m member.Member
	err := row.Scan(
		&m.ID,
		&m.Username,
		&m.Name,
		&m.Phone,
		&m.Email,
		&m.LotteryNumber,
		&m.Role,
		&m.Active,
		&m.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
