package savings

import (
	"fmt"
	"time"

	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Accrual is the outcome of one contribution cycle
type Accrual struct {
	PreviousBalance int64 `json:"previous_balance"`
	Contribution    int64 `json:"contribution"`
	NewBalance      int64 `json:"new_balance"`
	CycleInterest   int64 `json:"cycle_interest"`
	InterestEarned  int64 `json:"interest_earned"`
}

// Compound returns round((balance + contribution) * (1 + rate/100)), rounding half to even
// to whole currency units.
func Compound(balance, contribution int64, rate float64) int64 {
	base := decimal.NewFromInt(balance).Add(decimal.NewFromInt(contribution))
	factor := decimal.NewFromFloat(rate).Div(hundred).Add(decimal.NewFromInt(1))
	return base.Mul(factor).RoundBank(0).IntPart()
}

// Accrue computes the next cycle for acc without mutating it
func Accrue(acc *Account) (Accrual, error) {
	if acc.MonthlyContribution <= 0 {
		return Accrual{}, fmt.Errorf("%w: monthly contribution must be greater than zero", shared.ErrInvalidConfiguration)
	}
	if acc.InterestRate < 0 {
		return Accrual{}, fmt.Errorf("%w: interest rate cannot be negative", shared.ErrInvalidConfiguration)
	}

	newBalance := Compound(acc.Balance, acc.MonthlyContribution, acc.InterestRate)
	cycleInterest := newBalance - (acc.Balance + acc.MonthlyContribution)

	return Accrual{
		PreviousBalance: acc.Balance,
		Contribution:    acc.MonthlyContribution,
		NewBalance:      newBalance,
		CycleInterest:   cycleInterest,
		InterestEarned:  acc.InterestEarned + cycleInterest,
	}, nil
}

// ApplyContribution accrues one cycle onto the account
func (a *Account) ApplyContribution(now time.Time) (Accrual, error) {
	accrual, err := Accrue(a)
	if err != nil {
		return Accrual{}, err
	}
	a.Balance = accrual.NewBalance
	a.InterestEarned = accrual.InterestEarned
	a.UpdatedAt = now
	return accrual, nil
}
