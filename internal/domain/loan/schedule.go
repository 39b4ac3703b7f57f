package loan

import (
	"sort"
	"time"

	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Installment is one monthly slice of the loan total
type Installment struct {
	Number  int             `json:"number"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
	PaidAt  *time.Time      `json:"paid_at,omitempty"`
}

// Schedule is the amortization plan of a loan given its recorded payments
type Schedule struct {
	Installment      decimal.Decimal `json:"installment"`
	MonthlyRatePct   decimal.Decimal `json:"monthly_rate_pct"`
	InstallmentsPaid int             `json:"installments_paid"`
	Installments     []Installment   `json:"installments"`
}

// AddMonths adds n calendar months to t, clamping the day to the end of the target month
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return first.AddDate(0, 0, day-1)
}

// InstallmentAmount is total / term, unrounded
func InstallmentAmount(total int64, term int) decimal.Decimal {
	if term <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(term)))
}

// InstallmentsPaid returns floor(totalPaid / installment) capped at term, evaluated
// as floor(totalPaid * term / total) to stay in integers.
func InstallmentsPaid(totalPaid, total int64, term int) int {
	if total <= 0 || term <= 0 || totalPaid <= 0 {
		return 0
	}
	paid := totalPaid * int64(term) / total
	if paid > int64(term) {
		return term
	}
	return int(paid)
}

// MonthlyRate is interest / (principal * term) * 100 rounded to four decimals
func MonthlyRate(principal, interest int64, term int) decimal.Decimal {
	if principal == 0 || interest == 0 || term <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(interest).Mul(hundred).
		Div(decimal.NewFromInt(principal).Mul(decimal.NewFromInt(int64(term)))).
		RoundBank(4)
}

// BuildSchedule lays out every installment of l. Paid installments take the timestamp of
// the payment at the same position in time order, which is exact only when each payment
// covers one installment. Due dates follow the disbursement day in loc. Returns nil for
// loans without a term.
func BuildSchedule(l *Loan, entries []*movement.Entry, loc *time.Location) *Schedule {
	if l.TermMonths <= 0 {
		return nil
	}

	disbursed := l.DisbursedAt
	if loc != nil {
		disbursed = disbursed.In(loc)
	}

	payments := RelevantPayments(l, entries)
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})

	total := l.TotalOriginal()
	installment := InstallmentAmount(total, l.TermMonths)
	paidCount := InstallmentsPaid(sumAmounts(payments), total, l.TermMonths)

	schedule := &Schedule{
		Installment:      installment.RoundBank(2),
		MonthlyRatePct:   MonthlyRate(l.Principal, l.Interest, l.TermMonths),
		InstallmentsPaid: paidCount,
		Installments:     make([]Installment, 0, l.TermMonths),
	}

	for i := 1; i <= l.TermMonths; i++ {
		item := Installment{
			Number:  i,
			DueDate: AddMonths(disbursed, i),
			Amount:  installment.RoundBank(2),
			Paid:    i <= paidCount,
		}
		if item.Paid && i-1 < len(payments) {
			at := payments[i-1].CreatedAt
			item.PaidAt = &at
		}
		schedule.Installments = append(schedule.Installments, item)
	}

	return schedule
}
