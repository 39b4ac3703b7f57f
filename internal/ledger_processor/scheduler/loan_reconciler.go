package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// LoanReconcilerService repairs loan status drift for every member
type LoanReconcilerService interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// LoanReconciler runs ReconcileAll on a fixed interval
type LoanReconciler struct {
	loans    LoanReconcilerService
	interval time.Duration
	logger   *slog.Logger
}

func NewLoanReconciler(loans LoanReconcilerService, interval time.Duration, logger *slog.Logger) *LoanReconciler {
	return &LoanReconciler{
		loans:    loans,
		interval: interval,
		logger:   logger,
	}
}

// Start reconciles every interval until ctx is canceled
func (r *LoanReconciler) Start(ctx context.Context) {
	r.logger.Info("Starting loan reconciler", "interval", r.interval.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Loan reconciler stopping due to context cancellation.")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

func (r *LoanReconciler) RunOnce(ctx context.Context) {
	members, err := r.loans.ReconcileAll(ctx)
	if err != nil {
		r.logger.Error("Loan reconciliation failed", "error", err)
		return
	}
	r.logger.Info("Loan reconciliation completed", "members", members)
}
