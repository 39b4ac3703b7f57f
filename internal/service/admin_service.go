package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/savings"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/clock"
)

type AdminServiceImpl struct {
	tx        TxRunner
	members   member.Repository
	savings   savings.Repository
	loans     loan.Repository
	movements movement.Repository
	recorder  *recorder
	clock     clock.Clock
	logger    *slog.Logger
}

func NewAdminService(logger *slog.Logger, tx TxRunner, repos Repositories, clk clock.Clock) AdminService {
	return &AdminServiceImpl{
		tx:        tx,
		members:   repos.Members,
		savings:   repos.Savings,
		loans:     repos.Loans,
		movements: repos.Movements,
		recorder:  newRecorder(logger, repos.Movements, repos.Outbox),
		clock:     clk,
		logger:    logger,
	}
}

// ResetMember deletes the member's movements and loans and zeroes the savings position.
// Movements go first because payments reference their loan.
func (s *AdminServiceImpl) ResetMember(ctx context.Context, memberID int64) (*ResetReport, error) {
	now := s.clock.Now()
	var report *ResetReport

	err := s.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		m, err := s.members.WithTx(tx).GetByID(ctx, memberID)
		if err != nil {
			return err
		}

		movementsDeleted, err := s.movements.WithTx(tx).DeleteByMember(ctx, memberID)
		if err != nil {
			return err
		}
		loansDeleted, err := s.loans.WithTx(tx).DeleteByMember(ctx, memberID)
		if err != nil {
			return err
		}

		accounts := s.savings.WithTx(tx)
		acc, err := accounts.GetByMember(ctx, memberID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
		case err != nil:
			return err
		default:
			acc.Reset(now)
			if err := accounts.Update(ctx, acc); err != nil {
				return err
			}
		}

		if err := s.recorder.Reset(ctx, tx, memberID, now); err != nil {
			return err
		}

		report = &ResetReport{
			MemberID:         m.ID,
			Username:         m.Username,
			Role:             m.Role,
			MovementsDeleted: movementsDeleted,
			LoansDeleted:     loansDeleted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Warn("Member ledger reset",
		"member_id", memberID,
		"movements_deleted", report.MovementsDeleted,
		"loans_deleted", report.LoansDeleted,
	)
	return report, nil
}
