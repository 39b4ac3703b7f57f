// Package savings holds the savings account aggregate, the accrual engine that compounds
// contributions and the month sequencer that labels each contribution cycle.
package savings

import (
	"strconv"
	"time"

	"github.com/natillera-ledger/internal/domain/shared"
)

// Account is a member's savings position. Balance and InterestEarned only grow,
// except through an administrative reset.
type Account struct {
	ID                  int64     `json:"id"`
	MemberID            int64     `json:"member_id"`
	MonthlyContribution int64     `json:"monthly_contribution"`
	Balance             int64     `json:"balance"`
	InterestRate        float64   `json:"interest_rate"` // Percent per cycle
	InterestEarned      int64     `json:"interest_earned"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewAccount returns an empty account with the given contribution settings
func NewAccount(memberID, monthlyContribution int64, interestRate float64, now time.Time) *Account {
	return &Account{
		MemberID:            memberID,
		MonthlyContribution: monthlyContribution,
		InterestRate:        interestRate,
		UpdatedAt:           now,
	}
}

// Reset zeroes the accrued position while keeping the configuration
func (a *Account) Reset(now time.Time) {
	a.Balance = 0
	a.InterestEarned = 0
	a.UpdatedAt = now
}

// ErrAccountNotFound indicates a member without a savings account
type ErrAccountNotFound struct {
	MemberID int64
}

func (e ErrAccountNotFound) Error() string {
	return "savings account not found for member: " + strconv.FormatInt(e.MemberID, 10)
}

// Is matches shared.ErrNotFound and any ErrAccountNotFound with a zero or equal member ID
func (e ErrAccountNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	return t.MemberID == 0 || t.MemberID == e.MemberID
}
