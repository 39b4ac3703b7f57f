// Package lottery holds draw results of the external lottery and the polla rules that
// compare them with members' numbers.
package lottery

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Result is one published draw
type Result struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Lottery   string    `json:"lottery"`
	DrawDate  time.Time `json:"draw_date"`
	Result    string    `json:"result"`
	Series    *string   `json:"series,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Repository stores draw results, unique per slug and draw date
type Repository interface {
	// Save inserts the result and reports false when the draw was already stored
	Save(ctx context.Context, r *Result) (bool, error)
	// Latest returns the most recent draw for slug, or nil when none is stored
	Latest(ctx context.Context, slug string) (*Result, error)
	// GetByDate returns the draw for slug on drawDate, or nil when it is not stored
	GetByDate(ctx context.Context, slug string, drawDate time.Time) (*Result, error)
	WithTx(tx pgx.Tx) Repository
}

// Cache keeps the latest result per slug. A miss returns nil without error.
type Cache interface {
	GetLatest(ctx context.Context, slug string) (*Result, error)
	SetLatest(ctx context.Context, r *Result) error
}

// Fetcher retrieves a draw from the external results feed
type Fetcher interface {
	FetchResult(ctx context.Context, drawDate time.Time) (*Result, error)
}

// ErrResultUnavailable indicates the feed has no result for the requested draw
type ErrResultUnavailable struct {
	Slug     string
	DrawDate time.Time
}

func (e ErrResultUnavailable) Error() string {
	return fmt.Sprintf("no %s result for %s", e.Slug, e.DrawDate.Format(time.DateOnly))
}
