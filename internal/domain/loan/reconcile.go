package loan

import (
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Reconciliation is the authoritative position of a loan derived from its payments
type Reconciliation struct {
	TotalPaid        int64  `json:"total_paid"`
	TotalOriginal    int64  `json:"total_original"`
	Outstanding      int64  `json:"outstanding"`
	InstallmentsPaid int    `json:"installments_paid"`
	Status           Status `json:"status"`
	// NeedsRepair is set when the stored row disagrees with the derived position
	NeedsRepair bool `json:"-"`
}

// PaymentPlan is the validated effect of one payment on a loan
type PaymentPlan struct {
	AmountApplied    int64
	NewTotalPaid     int64
	NewOutstanding   int64
	InstallmentsPaid int
	NewStatus        Status
}

// RelevantPayments keeps the Loan Payment entries of the loan's member linked to the loan
func RelevantPayments(l *Loan, entries []*movement.Entry) []*movement.Entry {
	var payments []*movement.Entry
	for _, e := range entries {
		if e.Type != movement.TypeLoanPayment || e.MemberID != l.MemberID {
			continue
		}
		if e.ReferencesLoan(l.ID) {
			payments = append(payments, e)
		}
	}
	return payments
}

// Reconcile derives total paid, outstanding and the effective status of l
func Reconcile(l *Loan, entries []*movement.Entry) Reconciliation {
	totalPaid := sumAmounts(RelevantPayments(l, entries))
	totalOriginal := l.TotalOriginal()

	outstanding := totalOriginal - totalPaid
	if outstanding < 0 {
		outstanding = 0
	}

	status := l.Status
	if outstanding == 0 {
		status = StatusPaid
	}
	if status != StatusPaid {
		status = StatusPending
	}

	installmentsPaid := InstallmentsPaid(totalPaid, totalOriginal, l.TermMonths)

	return Reconciliation{
		TotalPaid:        totalPaid,
		TotalOriginal:    totalOriginal,
		Outstanding:      outstanding,
		InstallmentsPaid: installmentsPaid,
		Status:           status,
		NeedsRepair: status != l.Status ||
			outstanding != l.Outstanding ||
			installmentsPaid != l.InstallmentsPaid,
	}
}

// ApplyReconciliation copies the derived position onto the loan row
func (l *Loan) ApplyReconciliation(rec Reconciliation) {
	l.Outstanding = rec.Outstanding
	l.InstallmentsPaid = rec.InstallmentsPaid
	l.Status = rec.Status
}

// DefaultPayment is one theoretical installment, round(total / term) half to even.
// Loans without a term default to their whole total.
func DefaultPayment(l *Loan) int64 {
	total := l.TotalOriginal()
	if l.TermMonths <= 0 {
		return total
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(l.TermMonths))).RoundBank(0).IntPart()
}

// PlanPayment validates a payment against the reconciled position. requested nil means one
// default installment; amounts above the outstanding balance are clamped to it.
// Returns shared.ErrLoanAlreadySettled when the loan is paid or nothing is owed.
func PlanPayment(l *Loan, rec Reconciliation, requested *int64) (PaymentPlan, error) {
	if l.IsPaid() || rec.Outstanding <= 0 {
		return PaymentPlan{}, shared.ErrLoanAlreadySettled
	}

	amount := DefaultPayment(l)
	if requested != nil {
		amount = *requested
	}
	if amount <= 0 {
		return PaymentPlan{}, shared.ErrInvalidAmount
	}
	if amount > rec.Outstanding {
		amount = rec.Outstanding
	}

	newTotalPaid := rec.TotalPaid + amount
	newOutstanding := rec.Outstanding - amount
	status := StatusPending
	if newOutstanding == 0 {
		status = StatusPaid
	}

	return PaymentPlan{
		AmountApplied:    amount,
		NewTotalPaid:     newTotalPaid,
		NewOutstanding:   newOutstanding,
		InstallmentsPaid: InstallmentsPaid(newTotalPaid, rec.TotalOriginal, l.TermMonths),
		NewStatus:        status,
	}, nil
}

// ApplyPayment records the planned payment on the loan row
func (l *Loan) ApplyPayment(plan PaymentPlan) {
	l.Outstanding = plan.NewOutstanding
	l.InstallmentsPaid = plan.InstallmentsPaid
	l.Status = plan.NewStatus
}

func sumAmounts(entries []*movement.Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}
