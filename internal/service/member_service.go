package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/savings"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/clock"
)

type MemberServiceImpl struct {
	tx       TxRunner
	members  member.Repository
	savings  savings.Repository
	clock    clock.Clock
	settings Settings
	logger   *slog.Logger
}

func NewMemberService(
	logger *slog.Logger,
	tx TxRunner,
	repos Repositories,
	clk clock.Clock,
	settings Settings,
) MemberService {
	return &MemberServiceImpl{
		tx:       tx,
		members:  repos.Members,
		savings:  repos.Savings,
		clock:    clk,
		settings: settings,
		logger:   logger,
	}
}

func (s *MemberServiceImpl) CreateMember(ctx context.Context, input CreateMemberInput) (*member.Member, *savings.Account, error) {
	log := logger.FromContext(ctx, s.logger)
	now := s.clock.Now()

	rate := s.settings.DefaultInterestRate
	if input.InterestRate != nil {
		rate = *input.InterestRate
	}
	if err := validateSavingsSettings(input.MonthlyContribution, rate); err != nil {
		return nil, nil, err
	}

	m, err := member.NewMember(input.Username, input.Name, input.Phone, input.Email, input.LotteryNumber, input.Role, now)
	if err != nil {
		return nil, nil, err
	}

	var acc *savings.Account
	err = s.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.members.WithTx(tx).Create(ctx, m); err != nil {
			return err
		}

		acc, err = s.savings.WithTx(tx).Ensure(ctx, savings.NewAccount(m.ID, input.MonthlyContribution, rate, now))
		return err
	})
	if err != nil {
		log.Error("Failed to create member", "username", m.Username, "error", err)
		return nil, nil, err
	}

	log.Info("Member created", "member_id", m.ID, "username", m.Username, "role", m.Role)
	return m, acc, nil
}

// ListMembers returns every member ordered by name
func (s *MemberServiceImpl) ListMembers(ctx context.Context) ([]*member.Member, error) {
	return s.members.List(ctx)
}

func (s *MemberServiceImpl) GetMember(ctx context.Context, id int64) (*member.Member, error) {
	return s.members.GetByID(ctx, id)
}

func validateSavingsSettings(monthly int64, rate float64) error {
	if monthly < 0 {
		return fmt.Errorf("%w: monthly contribution cannot be negative", shared.ErrInvalidConfiguration)
	}
	if rate < 0 || rate > 100 {
		return fmt.Errorf("%w: interest rate must be between 0 and 100", shared.ErrInvalidConfiguration)
	}
	return nil
}
