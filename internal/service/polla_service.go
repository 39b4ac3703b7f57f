package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/natillera-ledger/internal/domain/lottery"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/clock"
)

const noResultMessage = "No hay resultado disponible todavía."

type PollaServiceImpl struct {
	members  member.Repository
	results  lottery.Repository
	cache    lottery.Cache
	fetcher  lottery.Fetcher
	clock    clock.Clock
	settings Settings
	logger   *slog.Logger
}

func NewPollaService(
	logger *slog.Logger,
	repos Repositories,
	cache lottery.Cache,
	fetcher lottery.Fetcher,
	clk clock.Clock,
	settings Settings,
) PollaService {
	return &PollaServiceImpl{
		members:  repos.Members,
		results:  repos.Lottery,
		cache:    cache,
		fetcher:  fetcher,
		clock:    clk,
		settings: settings,
		logger:   logger,
	}
}

// Status compares the member's number with the latest known draw
func (s *PollaServiceImpl) Status(ctx context.Context, memberID int64) (*PollaStatus, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.LotteryNumber == nil {
		return nil, fmt.Errorf("%w: member %d has no lottery number", shared.ErrInvalidConfiguration, memberID)
	}

	status := &PollaStatus{
		MemberID:      m.ID,
		LotteryNumber: *m.LotteryNumber,
		Message:       noResultMessage,
	}

	res, err := s.latestResult(ctx)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return status, nil
	}

	outcome := lottery.Check(res.Result, *m.LotteryNumber)
	status.HasResult = true
	status.Result = res
	status.Outcome = &outcome
	status.Message = outcome.Message()
	return status, nil
}

// latestResult looks in the cache, then the database, then fetches last month's draw.
// A feed failure yields no result rather than an error.
func (s *PollaServiceImpl) latestResult(ctx context.Context) (*lottery.Result, error) {
	log := logger.FromContext(ctx, s.logger)
	slug := s.settings.LotterySlug

	cached, err := s.cache.GetLatest(ctx, slug)
	if err != nil {
		log.Warn("Lottery cache unavailable, falling back to database", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	stored, err := s.results.Latest(ctx, slug)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		s.refreshCache(ctx, stored)
		return stored, nil
	}

	loc := s.settings.location()
	year, month := lottery.PreviousMonth(s.clock.Now().In(loc))
	drawDate := lottery.LastFridayOfMonth(year, month, loc)

	fetched, err := s.fetcher.FetchResult(ctx, drawDate)
	if err != nil {
		log.Warn("Could not fetch last month's draw", "draw_date", drawDate.Format(time.DateOnly), "error", err)
		return nil, nil
	}

	if _, err := s.results.Save(ctx, fetched); err != nil {
		return nil, err
	}
	s.refreshCache(ctx, fetched)
	return fetched, nil
}

func (s *PollaServiceImpl) refreshCache(ctx context.Context, res *lottery.Result) {
	if err := s.cache.SetLatest(ctx, res); err != nil {
		logger.FromContext(ctx, s.logger).Warn("Failed to refresh lottery cache", "slug", res.Slug, "error", err)
	}
}

// SyncDraw only runs on the last Friday of the month and skips draws already stored
func (s *PollaServiceImpl) SyncDraw(ctx context.Context) (*SyncOutcome, error) {
	loc := s.settings.location()
	now := s.clock.Now().In(loc)
	drawDate := lottery.LastFridayOfMonth(now.Year(), now.Month(), loc)

	outcome := &SyncOutcome{DrawDate: drawDate}
	if !lottery.IsDrawDay(now, loc) {
		s.logger.Debug("Not a draw day, skipping lottery sync",
			"today", now.Format(time.DateOnly),
			"draw_date", drawDate.Format(time.DateOnly),
		)
		return outcome, nil
	}
	outcome.Ran = true

	existing, err := s.results.GetByDate(ctx, s.settings.LotterySlug, drawDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		outcome.AlreadyStored = true
		outcome.Result = existing
		return outcome, nil
	}

	fetched, err := s.fetcher.FetchResult(ctx, drawDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draw %s: %w", drawDate.Format(time.DateOnly), err)
	}

	inserted, err := s.results.Save(ctx, fetched)
	if err != nil {
		return nil, err
	}
	outcome.AlreadyStored = !inserted
	outcome.Result = fetched
	s.refreshCache(ctx, fetched)

	s.logger.Info("Lottery draw synchronised",
		"slug", fetched.Slug,
		"draw_date", drawDate.Format(time.DateOnly),
		"result", fetched.Result,
	)
	return outcome, nil
}
