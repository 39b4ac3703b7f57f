package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/savings"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/clock"
)

type SavingsServiceImpl struct {
	tx        TxRunner
	members   member.Repository
	savings   savings.Repository
	movements movement.Repository
	recorder  *recorder
	clock     clock.Clock
	settings  Settings
	logger    *slog.Logger
}

func NewSavingsService(
	logger *slog.Logger,
	tx TxRunner,
	repos Repositories,
	clk clock.Clock,
	settings Settings,
) SavingsService {
	return &SavingsServiceImpl{
		tx:        tx,
		members:   repos.Members,
		savings:   repos.Savings,
		movements: repos.Movements,
		recorder:  newRecorder(logger, repos.Movements, repos.Outbox),
		clock:     clk,
		settings:  settings,
		logger:    logger,
	}
}

func (s *SavingsServiceImpl) defaults(memberID int64) *savings.Account {
	return savings.NewAccount(memberID, 0, s.settings.DefaultInterestRate, s.clock.Now())
}

// RegisterContribution accrues one cycle and appends the labelled contribution movement.
// Nothing is persisted when the account has no valid monthly contribution.
func (s *SavingsServiceImpl) RegisterContribution(ctx context.Context, memberID int64) (*ContributionResult, error) {
	log := logger.FromContext(ctx, s.logger)
	now := s.clock.Now()

	var result *ContributionResult
	err := s.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.members.WithTx(tx).GetByID(ctx, memberID); err != nil {
			return err
		}

		accounts := s.savings.WithTx(tx)
		acc, err := accounts.EnsureForUpdate(ctx, s.defaults(memberID))
		if err != nil {
			return err
		}

		latest, err := s.movements.WithTx(tx).LatestOfType(ctx, memberID, movement.TypeMonthlyContribution)
		if err != nil {
			return err
		}
		label := savings.NextContributionLabel(latest, now, s.settings.location())

		accrual, err := acc.ApplyContribution(now)
		if err != nil {
			return err
		}
		if err := accounts.Update(ctx, acc); err != nil {
			return err
		}

		entry := movement.NewContribution(memberID, accrual.Contribution, label.String(), now)
		if err := s.recorder.Append(ctx, tx, entry); err != nil {
			return err
		}

		result = &ContributionResult{
			MemberID:       memberID,
			MonthLabel:     label.String(),
			Contribution:   accrual.Contribution,
			NewBalance:     accrual.NewBalance,
			CycleInterest:  accrual.CycleInterest,
			InterestEarned: accrual.InterestEarned,
			InterestRate:   acc.InterestRate,
			MovementID:     entry.ID,
		}
		return nil
	})
	if err != nil {
		log.Warn("Contribution not registered", "member_id", memberID, "error", err)
		return nil, err
	}

	log.Info("Contribution registered",
		"member_id", memberID,
		"month", result.MonthLabel,
		"new_balance", result.NewBalance,
		"cycle_interest", result.CycleInterest,
	)
	return result, nil
}

func (s *SavingsServiceImpl) GetSavingsSummary(ctx context.Context, memberID int64) (*savings.Account, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.savings.Ensure(ctx, s.defaults(memberID))
}

func (s *SavingsServiceImpl) UpdateSavingsConfig(ctx context.Context, memberID int64, input SavingsConfigInput) (*savings.Account, error) {
	if err := validateSavingsSettings(input.MonthlyContribution, input.InterestRate); err != nil {
		return nil, err
	}

	var acc *savings.Account
	err := s.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.members.WithTx(tx).GetByID(ctx, memberID); err != nil {
			return err
		}

		accounts := s.savings.WithTx(tx)
		var err error
		acc, err = accounts.EnsureForUpdate(ctx, s.defaults(memberID))
		if err != nil {
			return err
		}

		acc.MonthlyContribution = input.MonthlyContribution
		acc.InterestRate = input.InterestRate
		acc.UpdatedAt = s.clock.Now()
		return accounts.Update(ctx, acc)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Savings configuration updated",
		"member_id", memberID,
		"monthly_contribution", acc.MonthlyContribution,
		"interest_rate", acc.InterestRate,
	)
	return acc, nil
}
