package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/clock"
)

type LoanServiceImpl struct {
	tx        TxRunner
	members   member.Repository
	loans     loan.Repository
	movements movement.Repository
	recorder  *recorder
	clock     clock.Clock
	settings  Settings
	logger    *slog.Logger
}

func NewLoanService(logger *slog.Logger, tx TxRunner, repos Repositories, clk clock.Clock, settings Settings) LoanService {
	return &LoanServiceImpl{
		tx:        tx,
		members:   repos.Members,
		loans:     repos.Loans,
		movements: repos.Movements,
		recorder:  newRecorder(logger, repos.Movements, repos.Outbox),
		clock:     clk,
		settings:  settings,
		logger:    logger,
	}
}

// CreateLoan disburses a pending loan and appends its disbursement movement
func (s *LoanServiceImpl) CreateLoan(ctx context.Context, input CreateLoanInput) (*loan.Loan, error) {
	now := s.clock.Now().In(s.settings.location())

	l, err := loan.NewLoan(input.MemberID, input.Principal, input.Interest, input.TermMonths, now, input.DueDate)
	if err != nil {
		return nil, err
	}

	err = s.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.members.WithTx(tx).GetByID(ctx, input.MemberID); err != nil {
			return err
		}
		if err := s.loans.WithTx(tx).Create(ctx, l); err != nil {
			return err
		}
		return s.recorder.Append(ctx, tx, movement.NewLoanDisbursement(l.MemberID, l.ID, l.Principal, l.TermMonths, now))
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Loan created",
		"loan_id", l.ID,
		"member_id", l.MemberID,
		"principal", l.Principal,
		"term_months", l.TermMonths,
	)
	return l, nil
}

// ListLoans derives each loan's position from its payments. Stored rows are left untouched;
// ReconcileLoans persists corrections.
func (s *LoanServiceImpl) ListLoans(ctx context.Context, memberID int64) ([]*LoanView, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	loans, err := s.loans.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	views := make([]*LoanView, 0, len(loans))
	for _, l := range loans {
		payments, err := s.movements.ListLoanPayments(ctx, memberID, l.ID)
		if err != nil {
			return nil, err
		}

		rec := loan.Reconcile(l, payments)
		views = append(views, &LoanView{
			Loan:             l,
			TotalPaid:        rec.TotalPaid,
			Outstanding:      rec.Outstanding,
			InstallmentsPaid: rec.InstallmentsPaid,
			EffectiveStatus:  rec.Status,
			Schedule:         loan.BuildSchedule(l, payments, s.settings.location()),
		})
	}

	return views, nil
}

// RegisterPayment records a payment against the reconciled balance. When the payments already
// cover the loan the paid status is committed before shared.ErrLoanAlreadySettled is returned.
func (s *LoanServiceImpl) RegisterPayment(ctx context.Context, loanID int64, amount *int64) (*PaymentResult, error) {
	log := logger.FromContext(ctx, s.logger)
	now := s.clock.Now()

	var result *PaymentResult
	settled := false

	err := s.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loans := s.loans.WithTx(tx)

		l, err := loans.GetForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if l.IsPaid() {
			return shared.ErrLoanAlreadySettled
		}

		payments, err := s.movements.WithTx(tx).ListLoanPayments(ctx, l.MemberID, l.ID)
		if err != nil {
			return err
		}
		rec := loan.Reconcile(l, payments)

		plan, err := loan.PlanPayment(l, rec, amount)
		if errors.Is(err, shared.ErrLoanAlreadySettled) {
			l.ApplyReconciliation(rec)
			if err := loans.Update(ctx, l); err != nil {
				return err
			}
			settled = true
			return nil
		}
		if err != nil {
			return err
		}

		entry := movement.NewLoanPayment(l.MemberID, l.ID, plan.AmountApplied, now)
		if err := s.recorder.Append(ctx, tx, entry); err != nil {
			return err
		}

		l.ApplyPayment(plan)
		if err := loans.Update(ctx, l); err != nil {
			return err
		}

		result = &PaymentResult{
			LoanID:           l.ID,
			MemberID:         l.MemberID,
			AmountApplied:    plan.AmountApplied,
			NewOutstanding:   plan.NewOutstanding,
			InstallmentsPaid: plan.InstallmentsPaid,
			NewStatus:        plan.NewStatus,
			MovementID:       entry.ID,
		}
		return nil
	})
	if err != nil {
		log.Warn("Loan payment rejected", "loan_id", loanID, "error", err)
		return nil, err
	}
	if settled {
		log.Info("Loan already covered by its payments, status corrected", "loan_id", loanID)
		return nil, shared.ErrLoanAlreadySettled
	}

	log.Info("Loan payment registered",
		"loan_id", loanID,
		"amount", result.AmountApplied,
		"outstanding", result.NewOutstanding,
		"status", result.NewStatus,
	)
	return result, nil
}

func (s *LoanServiceImpl) ReconcileLoans(ctx context.Context, memberID int64) (*ReconcileReport, error) {
	report := &ReconcileReport{MemberID: memberID}

	err := s.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.members.WithTx(tx).GetByID(ctx, memberID); err != nil {
			return err
		}

		loans := s.loans.WithTx(tx)
		movements := s.movements.WithTx(tx)

		stored, err := loans.ListByMember(ctx, memberID)
		if err != nil {
			return err
		}

		for _, listed := range stored {
			l, err := loans.GetForUpdate(ctx, listed.ID)
			if err != nil {
				return err
			}
			payments, err := movements.ListLoanPayments(ctx, memberID, l.ID)
			if err != nil {
				return err
			}

			report.Checked++
			rec := loan.Reconcile(l, payments)
			if !rec.NeedsRepair {
				continue
			}

			l.ApplyReconciliation(rec)
			if err := loans.Update(ctx, l); err != nil {
				return err
			}
			report.Repaired = append(report.Repaired, l.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(report.Repaired) > 0 {
		logger.FromContext(ctx, s.logger).Info("Loans reconciled",
			"member_id", memberID,
			"checked", report.Checked,
			"repaired", report.Repaired,
		)
	}
	return report, nil
}

// ReconcileAll returns the number of repaired loans. Members are reconciled independently so
// one failure does not block the rest.
func (s *LoanServiceImpl) ReconcileAll(ctx context.Context) (int, error) {
	memberIDs, err := s.loans.ListMemberIDsWithPendingLoans(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	var errs []error
	for _, memberID := range memberIDs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		report, err := s.ReconcileLoans(ctx, memberID)
		if err != nil {
			errs = append(errs, fmt.Errorf("member %d: %w", memberID, err))
			continue
		}
		repaired += len(report.Repaired)
	}

	return repaired, errors.Join(errs...)
}
