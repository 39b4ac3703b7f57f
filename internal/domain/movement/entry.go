// Package movement models the append-only ledger of money moving in and out of a member's account.
package movement

import (
	"fmt"
	"strings"
	"time"
)

// Type classifies a ledger movement
type Type string

const (
	TypeMonthlyContribution Type = "Monthly Contribution"
	TypeLoanDisbursement    Type = "Loan Disbursement"
	TypeLoanPayment         Type = "Loan Payment"
	TypeInterest            Type = "Interest"
	TypePrize               Type = "Prize"
)

// Category groups movements for reporting
type Category string

const (
	CategoryIncome   Category = "ingreso"
	CategoryInterest Category = "interes"
	CategoryLoan     Category = "prestamo"
	CategoryPrize    Category = "premio"
)

// Entry is one immutable ledger movement. ID is a monotonic sequence assigned by the store.
type Entry struct {
	ID          int64     `json:"id" bson:"movement_id"`
	MemberID    int64     `json:"member_id" bson:"member_id"`
	LoanID      *int64    `json:"loan_id,omitempty" bson:"loan_id,omitempty"`
	Type        Type      `json:"type" bson:"type"`
	Amount      int64     `json:"amount" bson:"amount"` // Whole currency units
	Category    Category  `json:"category" bson:"category"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// LoanTag is the textual marker embedded in loan payment descriptions
func LoanTag(loanID int64) string {
	return fmt.Sprintf("[loan_id:%d]", loanID)
}

// ReferencesLoan reports whether the entry is linked to loanID, either through the
// foreign key or, for rows written before the key existed, through the description tag.
func (e *Entry) ReferencesLoan(loanID int64) bool {
	if e.LoanID != nil {
		return *e.LoanID == loanID
	}
	return strings.Contains(strings.ToLower(e.Description), strings.ToLower(LoanTag(loanID)))
}

// NewContribution builds the movement recorded for a monthly savings contribution
func NewContribution(memberID, amount int64, monthLabel string, at time.Time) *Entry {
	return &Entry{
		MemberID:    memberID,
		Type:        TypeMonthlyContribution,
		Amount:      amount,
		Category:    CategoryIncome,
		Description: fmt.Sprintf("Aporte mensual registrado (%s)", monthLabel),
		CreatedAt:   at,
	}
}

// NewLoanPayment builds a payment movement linked to loanID by key and by tag
func NewLoanPayment(memberID, loanID, amount int64, at time.Time) *Entry {
	id := loanID
	return &Entry{
		MemberID:    memberID,
		LoanID:      &id,
		Type:        TypeLoanPayment,
		Amount:      amount,
		Category:    CategoryLoan,
		Description: "Pago de préstamo " + LoanTag(loanID),
		CreatedAt:   at,
	}
}

// NewLoanDisbursement builds the movement recorded when a loan is granted
func NewLoanDisbursement(memberID, loanID, principal int64, termMonths int, at time.Time) *Entry {
	id := loanID
	return &Entry{
		MemberID:    memberID,
		LoanID:      &id,
		Type:        TypeLoanDisbursement,
		Amount:      principal,
		Category:    CategoryLoan,
		Description: fmt.Sprintf("Préstamo creado (plazo %d meses)", termMonths),
		CreatedAt:   at,
	}
}
