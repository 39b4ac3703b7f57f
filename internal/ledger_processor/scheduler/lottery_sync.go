// Package scheduler runs the processor's time-driven jobs: the daily lottery sync and the
// periodic loan reconciliation.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/natillera-ledger/internal/config"
	"github.com/natillera-ledger/internal/platform/clock"
	"github.com/natillera-ledger/internal/service"
)

// DrawSyncer stores the current month's draw when it is due
type DrawSyncer interface {
	SyncDraw(ctx context.Context) (*service.SyncOutcome, error)
}

// LotterySync fires once a day at the configured local time
type LotterySync struct {
	syncer DrawSyncer
	clock  clock.Clock
	loc    *time.Location
	hour   int
	minute int
	logger *slog.Logger
}

func NewLotterySync(
	cfg *config.LotteryConfig,
	loc *time.Location,
	syncer DrawSyncer,
	clk clock.Clock,
	logger *slog.Logger,
) *LotterySync {
	return &LotterySync{
		syncer: syncer,
		clock:  clk,
		loc:    loc,
		hour:   cfg.SyncHour,
		minute: cfg.SyncMinute,
		logger: logger,
	}
}

// NextRun returns the first sync time strictly after now
func (s *LotterySync) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.hour, s.minute, 0, 0, s.loc)
	}
	return next
}

// Start performs a catch-up sync, then one sync per day until ctx is canceled
func (s *LotterySync) Start(ctx context.Context) {
	s.logger.Info("Starting lottery sync scheduler", "hour", s.hour, "minute", s.minute, "zone", s.loc.String())
	s.RunOnce(ctx)

	for {
		now := s.clock.Now()
		next := s.NextRun(now)
		timer := time.NewTimer(next.Sub(now))
		s.logger.Debug("Next lottery sync scheduled", "at", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Lottery sync scheduler stopping due to context cancellation.")
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce syncs the draw and logs the outcome. Failures are retried on the next run.
func (s *LotterySync) RunOnce(ctx context.Context) {
	outcome, err := s.syncer.SyncDraw(ctx)
	if err != nil {
		s.logger.Error("Lottery sync failed", "error", err)
		return
	}
	switch {
	case !outcome.Ran:
		s.logger.Debug("Lottery sync skipped, not a draw day", "draw_date", outcome.DrawDate.Format(time.DateOnly))
	case outcome.AlreadyStored:
		s.logger.Info("Lottery result already stored", "draw_date", outcome.DrawDate.Format(time.DateOnly))
	default:
		s.logger.Info("Lottery result stored",
			"draw_date", outcome.DrawDate.Format(time.DateOnly),
			"result", outcome.Result.Result,
		)
	}
}
