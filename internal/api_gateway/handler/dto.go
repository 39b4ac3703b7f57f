package handler

import (
	"time"

	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/savings"
	"github.com/shopspring/decimal"
)

// CreateMemberRequest represents a request to register a new member
type CreateMemberRequest struct {
	Username            string   `json:"username" binding:"required"`
	Name                string   `json:"name" binding:"required"`
	Phone               *string  `json:"phone,omitempty"`
	Email               *string  `json:"email,omitempty" binding:"omitempty,email"`
	LotteryNumber       *int     `json:"lottery_number,omitempty" binding:"omitempty,min=0,max=9999"`
	Role                string   `json:"role,omitempty" binding:"omitempty,oneof=admin socio"`
	MonthlyContribution int64    `json:"monthly_contribution" binding:"min=0"`
	InterestRate        *float64 `json:"interest_rate,omitempty" binding:"omitempty,min=0,max=100"`
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	ID            int64   `json:"id"`
	Username      string  `json:"username"`
	Name          string  `json:"name"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	LotteryNumber *int    `json:"lottery_number,omitempty"`
	Role          string  `json:"role"`
	Active        bool    `json:"active"`
	RegisteredAt  string  `json:"registered_at"`
}

// CreateMemberResponse pairs a new member with its savings account
type CreateMemberResponse struct {
	Member  MemberResponse  `json:"member"`
	Savings SavingsResponse `json:"savings"`
}

// UpdateSavingsRequest replaces the contribution settings of an account.
// Pointers let zero values pass the required check.
type UpdateSavingsRequest struct {
	MonthlyContribution *int64   `json:"monthly_contribution" binding:"required,min=0"`
	InterestRate        *float64 `json:"interest_rate" binding:"required,min=0,max=100"`
}

// SavingsResponse represents a savings account in API responses
type SavingsResponse struct {
	MemberID            int64  `json:"member_id"`
	MonthlyContribution int64  `json:"monthly_contribution"`
	Balance             int64  `json:"balance"`
	InterestRate        string `json:"interest_rate"`
	InterestEarned      int64  `json:"interest_earned"`
	UpdatedAt           string `json:"updated_at"`
}

// ContributionResponse reports one registered monthly contribution
type ContributionResponse struct {
	MemberID       int64  `json:"member_id"`
	Month          string `json:"month"`
	Contribution   int64  `json:"contribution"`
	CycleInterest  int64  `json:"cycle_interest"`
	NewBalance     int64  `json:"new_balance"`
	InterestEarned int64  `json:"interest_earned"`
	InterestRate   string `json:"interest_rate"`
	MovementID     int64  `json:"movement_id"`
}

// MovementResponse represents a ledger movement in API responses
type MovementResponse struct {
	ID          int64  `json:"id"`
	MemberID    int64  `json:"member_id"`
	LoanID      *int64 `json:"loan_id,omitempty"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// MovementsQuery bounds the ledger listing; zero means the default limit
type MovementsQuery struct {
	Limit int `form:"limit" binding:"min=0"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

// CreateLoanRequest represents a request to disburse a loan
type CreateLoanRequest struct {
	MemberID   int64   `json:"member_id" binding:"required,gt=0"`
	Principal  int64   `json:"principal" binding:"required,gt=0"`
	Interest   int64   `json:"interest" binding:"min=0"`
	TermMonths int     `json:"term_months" binding:"required,gt=0"`
	DueDate    *string `json:"due_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

// PaymentRequest carries an optional amount; without it one installment is paid
type PaymentRequest struct {
	Amount *int64 `json:"amount,omitempty"`
}

// LoanResponse represents a stored loan in API responses
type LoanResponse struct {
	ID               int64  `json:"id"`
	MemberID         int64  `json:"member_id"`
	Principal        int64  `json:"principal"`
	Interest         int64  `json:"interest"`
	Total            int64  `json:"total"`
	TermMonths       int    `json:"term_months"`
	DisbursedAt      string `json:"disbursed_at"`
	DueDate          string `json:"due_date"`
	Status           string `json:"status"`
	Outstanding      int64  `json:"outstanding"`
	InstallmentsPaid int    `json:"installments_paid"`
}

// LoanViewResponse is a loan with its position derived from recorded payments
type LoanViewResponse struct {
	Loan             LoanResponse      `json:"loan"`
	TotalPaid        int64             `json:"total_paid"`
	Outstanding      int64             `json:"outstanding"`
	InstallmentsPaid int               `json:"installments_paid"`
	Status           string            `json:"status"`
	Schedule         *ScheduleResponse `json:"schedule,omitempty"`
}

// ScheduleResponse is the amortization plan of a loan
type ScheduleResponse struct {
	Installment      string                `json:"installment"`
	MonthlyRatePct   string                `json:"monthly_rate_pct"`
	InstallmentsPaid int                   `json:"installments_paid"`
	Installments     []InstallmentResponse `json:"installments"`
}

// InstallmentResponse is one row of the schedule
type InstallmentResponse struct {
	Number  int    `json:"number"`
	DueDate string `json:"due_date"`
	Amount  string `json:"amount"`
	Paid    bool   `json:"paid"`
	PaidAt  string `json:"paid_at,omitempty"`
}

// PaymentResponse reports a registered loan payment
type PaymentResponse struct {
	LoanID           int64  `json:"loan_id"`
	MemberID         int64  `json:"member_id"`
	AmountApplied    int64  `json:"amount_applied"`
	Outstanding      int64  `json:"outstanding"`
	InstallmentsPaid int    `json:"installments_paid"`
	Status           string `json:"status"`
	MovementID       int64  `json:"movement_id"`
}

// ReconcileResponse lists the loans whose stored status was corrected
type ReconcileResponse struct {
	MemberID int64   `json:"member_id"`
	Checked  int     `json:"checked"`
	Repaired []int64 `json:"repaired"`
}

// PollaResponse is the member's standing against the latest draw
type PollaResponse struct {
	MemberID      int64   `json:"member_id"`
	LotteryNumber int     `json:"lottery_number"`
	HasResult     bool    `json:"has_result"`
	Lottery       string  `json:"lottery,omitempty"`
	DrawDate      string  `json:"draw_date,omitempty"`
	Result        string  `json:"result,omitempty"`
	Series        *string `json:"series,omitempty"`
	ResultDigits  string  `json:"result_digits,omitempty"`
	NumberDigits  string  `json:"number_digits,omitempty"`
	Won           bool    `json:"won"`
	Message       string  `json:"message"`
}

// DashboardResponse is the member's home screen
type DashboardResponse struct {
	Member          MemberResponse     `json:"member"`
	Savings         SavingsResponse    `json:"savings"`
	MemberCount     int64              `json:"member_count"`
	TotalLent       int64              `json:"total_lent"`
	LotteryNumber   *int               `json:"lottery_number,omitempty"`
	RecentMovements []MovementResponse `json:"recent_movements"`
}

// ResetResponse summarises an administrative reset
type ResetResponse struct {
	MemberID         int64  `json:"member_id"`
	Username         string `json:"username"`
	Role             string `json:"role"`
	MovementsDeleted int64  `json:"movements_deleted"`
	LoansDeleted     int64  `json:"loans_deleted"`
}

func formatRate(rate float64) string {
	return decimal.NewFromFloat(rate).StringFixed(2)
}

func mapMemberToResponse(m *member.Member) MemberResponse {
	return MemberResponse{
		ID:            m.ID,
		Username:      m.Username,
		Name:          m.Name,
		Phone:         m.Phone,
		Email:         m.Email,
		LotteryNumber: m.LotteryNumber,
		Role:          string(m.Role),
		Active:        m.Active,
		RegisteredAt:  m.RegisteredAt.Format(time.RFC3339),
	}
}

func mapSavingsToResponse(acc *savings.Account) SavingsResponse {
	return SavingsResponse{
		MemberID:            acc.MemberID,
		MonthlyContribution: acc.MonthlyContribution,
		Balance:             acc.Balance,
		InterestRate:        formatRate(acc.InterestRate),
		InterestEarned:      acc.InterestEarned,
		UpdatedAt:           acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapMovementsToResponse(entries []*movement.Entry) []MovementResponse {
	movements := make([]MovementResponse, 0, len(entries))
	for _, e := range entries {
		movements = append(movements, MovementResponse{
			ID:          e.ID,
			MemberID:    e.MemberID,
			LoanID:      e.LoanID,
			Type:        string(e.Type),
			Amount:      e.Amount,
			Category:    string(e.Category),
			Description: e.Description,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		})
	}
	return movements
}

func mapLoanToResponse(l *loan.Loan) LoanResponse {
	return LoanResponse{
		ID:               l.ID,
		MemberID:         l.MemberID,
		Principal:        l.Principal,
		Interest:         l.Interest,
		Total:            l.Total,
		TermMonths:       l.TermMonths,
		DisbursedAt:      l.DisbursedAt.Format(time.RFC3339),
		DueDate:          l.DueDate.Format(time.DateOnly),
		Status:           string(l.Status),
		Outstanding:      l.Outstanding,
		InstallmentsPaid: l.InstallmentsPaid,
	}
}

func mapScheduleToResponse(s *loan.Schedule) *ScheduleResponse {
	if s == nil {
		return nil
	}

	installments := make([]InstallmentResponse, 0, len(s.Installments))
	for _, inst := range s.Installments {
		row := InstallmentResponse{
			Number:  inst.Number,
			DueDate: inst.DueDate.Format(time.DateOnly),
			Amount:  inst.Amount.StringFixed(2),
			Paid:    inst.Paid,
		}
		if inst.PaidAt != nil {
			row.PaidAt = inst.PaidAt.Format(time.RFC3339)
		}
		installments = append(installments, row)
	}

	return &ScheduleResponse{
		Installment:      s.Installment.StringFixed(2),
		MonthlyRatePct:   s.MonthlyRatePct.StringFixed(4),
		InstallmentsPaid: s.InstallmentsPaid,
		Installments:     installments,
	}
}
