package service

import (
	"context"
	"errors"

	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/savings"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/natillera-ledger/internal/platform/clock"
	"golang.org/x/sync/errgroup"
)

const dashboardMovements = 6

type DashboardServiceImpl struct {
	members   member.Repository
	savings   savings.Repository
	loans     loan.Repository
	movements movement.Repository
	clock     clock.Clock
	settings  Settings
}

func NewDashboardService(repos Repositories, clk clock.Clock, settings Settings) DashboardService {
	return &DashboardServiceImpl{
		members:   repos.Members,
		savings:   repos.Savings,
		loans:     repos.Loans,
		movements: repos.Movements,
		clock:     clk,
		settings:  settings,
	}
}

// Dashboard reads the member's overview concurrently. A member without a savings account
// sees the default settings; no account is created.
func (s *DashboardServiceImpl) Dashboard(ctx context.Context, memberID int64) (*Dashboard, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Member: m, LotteryNumber: m.LotteryNumber}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		acc, err := s.savings.GetByMember(gctx, memberID)
		if errors.Is(err, shared.ErrNotFound) {
			d.Savings = savings.NewAccount(memberID, 0, s.settings.DefaultInterestRate, s.clock.Now())
			return nil
		}
		d.Savings = acc
		return err
	})
	g.Go(func() error {
		count, err := s.members.Count(gctx)
		d.MemberCount = count
		return err
	})
	g.Go(func() error {
		total, err := s.loans.TotalLentByMember(gctx, memberID)
		d.TotalLent = total
		return err
	})
	g.Go(func() error {
		recent, err := s.movements.ListByMember(gctx, memberID, dashboardMovements)
		d.RecentMovements = recent
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
