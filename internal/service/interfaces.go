// Package service implements the natillera use cases on top of the domain engines. Every
// operation that changes the ledger runs in one Postgres transaction and writes the matching
// outbox row in that same transaction.
package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/domain/lottery"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/savings"
)

// TxRunner executes fn inside a database transaction; satisfied by *persistence.PostgresDB
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Settings carries the ledger rules that come from configuration
type Settings struct {
	DefaultInterestRate float64
	Location            *time.Location
	LotterySlug         string
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// MemberService manages natillera members
type MemberService interface {
	// CreateMember stores the member and its savings account in one transaction.
	// Returns member.ErrDuplicateMember when the username or lottery number is taken.
	CreateMember(ctx context.Context, input CreateMemberInput) (*member.Member, *savings.Account, error)
	ListMembers(ctx context.Context) ([]*member.Member, error)
	GetMember(ctx context.Context, id int64) (*member.Member, error)
}

// SavingsService runs the contribution cycle and exposes the savings position
type SavingsService interface {
	RegisterContribution(ctx context.Context, memberID int64) (*ContributionResult, error)
	// GetSavingsSummary returns the account, creating it with defaults on first access
	GetSavingsSummary(ctx context.Context, memberID int64) (*savings.Account, error)
	UpdateSavingsConfig(ctx context.Context, memberID int64, input SavingsConfigInput) (*savings.Account, error)
}

// LoanService grants loans and reconciles their payments
type LoanService interface {
	CreateLoan(ctx context.Context, input CreateLoanInput) (*loan.Loan, error)
	// ListLoans reports every loan with its reconciled position without persisting anything
	ListLoans(ctx context.Context, memberID int64) ([]*LoanView, error)
	// RegisterPayment applies amount, or one default installment when amount is nil
	RegisterPayment(ctx context.Context, loanID int64, amount *int64) (*PaymentResult, error)
	// ReconcileLoans persists the derived status of the member's loans
	ReconcileLoans(ctx context.Context, memberID int64) (*ReconcileReport, error)
	// ReconcileAll reconciles every member with pending loans
	ReconcileAll(ctx context.Context) (int, error)
}

// MovementService lists the authoritative ledger and its journal projection
type MovementService interface {
	ListMovements(ctx context.Context, memberID int64, limit int) ([]*movement.Entry, error)
	ListJournal(ctx context.Context, memberID int64, page, perPage int) ([]*movement.Entry, int64, error)
}

// PollaService compares members' numbers with the monthly draw
type PollaService interface {
	Status(ctx context.Context, memberID int64) (*PollaStatus, error)
	// SyncDraw stores this month's draw when today is draw day
	SyncDraw(ctx context.Context) (*SyncOutcome, error)
}

// DashboardService aggregates the member's home screen
type DashboardService interface {
	Dashboard(ctx context.Context, memberID int64) (*Dashboard, error)
}

// AdminService holds destructive administrative operations
type AdminService interface {
	ResetMember(ctx context.Context, memberID int64) (*ResetReport, error)
}

// CreateMemberInput describes a new member and its savings settings
type CreateMemberInput struct {
	Username            string
	Name                string
	Phone               *string
	Email               *string
	LotteryNumber       *int
	Role                member.Role
	MonthlyContribution int64
	InterestRate        *float64 // Defaults to the configured rate
}

// SavingsConfigInput replaces the contribution settings of an account
type SavingsConfigInput struct {
	MonthlyContribution int64
	InterestRate        float64
}

// ContributionResult is the outcome of one registered contribution
type ContributionResult struct {
	MemberID       int64
	MonthLabel     string
	Contribution   int64
	NewBalance     int64
	CycleInterest  int64
	InterestEarned int64
	InterestRate   float64
	MovementID     int64
}

// CreateLoanInput describes a loan to disburse
type CreateLoanInput struct {
	MemberID   int64
	Principal  int64
	Interest   int64
	TermMonths int
	DueDate    *time.Time
}

// LoanView is a loan with its reconciled position and schedule
type LoanView struct {
	Loan             *loan.Loan
	TotalPaid        int64
	Outstanding      int64
	InstallmentsPaid int
	EffectiveStatus  loan.Status
	Schedule         *loan.Schedule
}

// PaymentResult is the outcome of a registered loan payment
type PaymentResult struct {
	LoanID           int64
	MemberID         int64
	AmountApplied    int64
	NewOutstanding   int64
	InstallmentsPaid int
	NewStatus        loan.Status
	MovementID       int64
}

// ReconcileReport lists the loans whose stored position was corrected
type ReconcileReport struct {
	MemberID int64
	Checked  int
	Repaired []int64
}

// PollaStatus is a member's standing against the latest draw
type PollaStatus struct {
	MemberID      int64
	LotteryNumber int
	HasResult     bool
	Result        *lottery.Result
	Outcome       *lottery.Outcome
	Message       string
}

// SyncOutcome reports what the daily draw synchronisation did
type SyncOutcome struct {
	Ran           bool
	AlreadyStored bool
	DrawDate      time.Time
	Result        *lottery.Result
}

// Dashboard is the aggregated member overview
type Dashboard struct {
	Member          *member.Member
	Savings         *savings.Account
	MemberCount     int64
	TotalLent       int64
	LotteryNumber   *int
	RecentMovements []*movement.Entry
}

// ResetReport summarises an administrative reset
type ResetReport struct {
	MemberID         int64
	Username         string
	Role             member.Role
	MovementsDeleted int64
	LoansDeleted     int64
}
