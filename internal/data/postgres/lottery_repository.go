package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/lottery"
	"github.com/natillera-ledger/internal/platform/persistence"
)

// LotteryRepository implements the lottery.Repository interface for PostgreSQL
type LotteryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLotteryRepository creates a new PostgreSQL lottery result repository
func NewLotteryRepository(logger *slog.Logger, db *persistence.PostgresDB) lottery.Repository {
	return &LotteryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *LotteryRepository) WithTx(tx pgx.Tx) lottery.Repository {
	return &LotteryRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Save stores a draw once per slug and date. It reports false when the draw already existed.
func (r *LotteryRepository) Save(ctx context.Context, res *lottery.Result) (bool, error) {
	query := `
		INSERT INTO lottery_results (slug, lottery, draw_date, result, series, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug, draw_date) DO NOTHING
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		res.Slug,
		res.Lottery,
		res.DrawDate,
		res.Result,
		res.Series,
		res.FetchedAt,
	).Scan(&res.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		r.logger.Error("Failed to save lottery result",
			"slug", res.Slug,
			"draw_date", res.DrawDate.Format(time.DateOnly),
			"error", err,
		)
		return false, fmt.Errorf("failed to save lottery result: %w", err)
	}

	return true, nil
}

// Latest returns the most recent stored draw for slug, or nil when none is stored
func (r *LotteryRepository) Latest(ctx context.Context, slug string) (*lottery.Result, error) {
	query := `
		SELECT id, slug, lottery, draw_date, result, series, fetched_at
		FROM lottery_results
		WHERE slug = $1
		ORDER BY draw_date DESC
		LIMIT 1
	`
	return r.get(ctx, query, slug)
}

// GetByDate returns the stored draw for slug on drawDate, or nil when it is not stored
func (r *LotteryRepository) GetByDate(ctx context.Context, slug string, drawDate time.Time) (*lottery.Result, error) {
	query := `
		SELECT id, slug, lottery, draw_date, result, series, fetched_at
		FROM lottery_results
		WHERE slug = $1 AND draw_date = $2
	`
	return r.get(ctx, query, slug, drawDate)
}

func (r *LotteryRepository) get(ctx context.Context, query string, args ...interface{}) (*lottery.Result, error) {
	var res lottery.Result
	err := r.querier.QueryRow(ctx, query, args...).Scan(
		&res.ID,
		&res.Slug,
		&res.Lottery,
		&res.DrawDate,
		&res.Result,
		&res.Series,
		&res.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get lottery result", "error", err)
		return nil, fmt.Errorf("failed to get lottery result: %w", err)
	}

	return &res, nil
}
