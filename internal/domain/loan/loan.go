// Package loan models member loans: the flat-interest amortization schedule and the
// reconciliation of recorded payments against the amount owed.
package loan

import (
	"fmt"
	"strconv"
	"time"

	"github.com/natillera-ledger/internal/domain/shared"
)

// Status is the settlement state of a loan. pending -> paid is one-way.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

var (
	ErrInvalidTerm      = fmt.Errorf("%w: term must be at least one month", shared.ErrInvalidConfiguration)
	ErrNegativeInterest = fmt.Errorf("%w: interest cannot be negative", shared.ErrInvalidConfiguration)
)

// Loan is a principal lent to a member with a flat interest amount
type Loan struct {
	ID               int64     `json:"id"`
	MemberID         int64     `json:"member_id"`
	Principal        int64     `json:"principal"`
	Interest         int64     `json:"interest"`
	Total            int64     `json:"total"`
	TermMonths       int       `json:"term_months"`
	DisbursedAt      time.Time `json:"disbursed_at"`
	DueDate          time.Time `json:"due_date"`
	Status           Status    `json:"status"`
	Outstanding      int64     `json:"outstanding"`
	InstallmentsPaid int       `json:"installments_paid"`
}

// NewLoan validates the terms and returns a pending loan owing its full total.
// A nil dueDate defaults to the disbursement date plus the term.
func NewLoan(memberID, principal, interest int64, termMonths int, disbursedAt time.Time, dueDate *time.Time) (*Loan, error) {
	if principal <= 0 {
		return nil, shared.ErrInvalidAmount
	}
	if interest < 0 {
		return nil, ErrNegativeInterest
	}
	if termMonths <= 0 {
		return nil, ErrInvalidTerm
	}

	due := AddMonths(disbursedAt, termMonths)
	if dueDate != nil {
		due = *dueDate
	}

	total := principal + interest
	return &Loan{
		MemberID:    memberID,
		Principal:   principal,
		Interest:    interest,
		Total:       total,
		TermMonths:  termMonths,
		DisbursedAt: disbursedAt,
		DueDate:     due,
		Status:      StatusPending,
		Outstanding: total,
	}, nil
}

// TotalOriginal is the stored total, or principal plus interest for rows without one
func (l *Loan) TotalOriginal() int64 {
	if l.Total > 0 {
		return l.Total
	}
	return l.Principal + l.Interest
}

// IsPaid reports whether the stored status is paid
func (l *Loan) IsPaid() bool {
	return l.Status == StatusPaid
}

// ErrLoanNotFound indicates a missing loan
type ErrLoanNotFound struct {
	LoanID int64
}

func (e ErrLoanNotFound) Error() string {
	return "loan not found: " + strconv.FormatInt(e.LoanID, 10)
}

// Is matches shared.ErrNotFound and any ErrLoanNotFound with a zero or equal loan ID
func (e ErrLoanNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrLoanNotFound)
	if !ok {
		return false
	}
	return t.LoanID == 0 || t.LoanID == e.LoanID
}
