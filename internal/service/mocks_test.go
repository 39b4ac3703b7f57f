package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/domain/lottery"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/outbox"
	"github.com/natillera-ledger/internal/domain/savings"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// MockTx stands in for a transaction; the mocked repositories never touch it
type MockTx struct {
	pgx.Tx
}

// MockTxRunner runs fn with a MockTx and records whether it would have committed
type MockTxRunner struct {
	BeginErr  error
	Commits   int
	Rollbacks int
}

func (r *MockTxRunner) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	if r.BeginErr != nil {
		return r.BeginErr
	}
	if err := fn(&MockTx{}); err != nil {
		r.Rollbacks++
		return err
	}
	r.Commits++
	return nil
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, mem *member.Member) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id int64) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context) ([]*member.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.Member), args.Error(1)
}

func (m *MockMemberRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberRepository) WithTx(pgx.Tx) member.Repository { return m }

type MockSavingsRepository struct {
	mock.Mock
}

func (m *MockSavingsRepository) GetByMember(ctx context.Context, memberID int64) (*savings.Account, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*savings.Account), args.Error(1)
}

func (m *MockSavingsRepository) Ensure(ctx context.Context, defaults *savings.Account) (*savings.Account, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*savings.Account), args.Error(1)
}

func (m *MockSavingsRepository) EnsureForUpdate(ctx context.Context, defaults *savings.Account) (*savings.Account, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*savings.Account), args.Error(1)
}

func (m *MockSavingsRepository) Update(ctx context.Context, acc *savings.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockSavingsRepository) WithTx(pgx.Tx) savings.Repository { return m }

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id int64) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetForUpdate(ctx context.Context, id int64) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByMember(ctx context.Context, memberID int64) ([]*loan.Loan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoanRepository) DeleteByMember(ctx context.Context, memberID int64) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) TotalLentByMember(ctx context.Context, memberID int64) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) ListMemberIDsWithPendingLoans(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockLoanRepository) WithTx(pgx.Tx) loan.Repository { return m }

type MockMovementRepository struct {
	mock.Mock
	nextID int64
}

// Append assigns sequential IDs like the BIGSERIAL column
func (m *MockMovementRepository) Append(ctx context.Context, entry *movement.Entry) error {
	args := m.Called(ctx, entry)
	if err := args.Error(0); err != nil {
		return err
	}
	m.nextID++
	entry.ID = m.nextID
	return nil
}

func (m *MockMovementRepository) ListByMember(ctx context.Context, memberID int64, limit int) ([]*movement.Entry, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*movement.Entry), args.Error(1)
}

func (m *MockMovementRepository) LatestOfType(ctx context.Context, memberID int64, movementType movement.Type) (*movement.Entry, error) {
	args := m.Called(ctx, memberID, movementType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*movement.Entry), args.Error(1)
}

func (m *MockMovementRepository) ListLoanPayments(ctx context.Context, memberID, loanID int64) ([]*movement.Entry, error) {
	args := m.Called(ctx, memberID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*movement.Entry), args.Error(1)
}

func (m *MockMovementRepository) DeleteByMember(ctx context.Context, memberID int64) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMovementRepository) WithTx(pgx.Tx) movement.Repository { return m }

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Upsert(ctx context.Context, entry *movement.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) ListByMember(ctx context.Context, memberID int64, limit, offset int) ([]*movement.Entry, error) {
	args := m.Called(ctx, memberID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*movement.Entry), args.Error(1)
}

func (m *MockJournalRepository) CountByMember(ctx context.Context, memberID int64) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) DeleteByMember(ctx context.Context, memberID int64) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) WithTx(pgx.Tx) outbox.Repository { return m }

type MockLotteryRepository struct {
	mock.Mock
}

func (m *MockLotteryRepository) Save(ctx context.Context, r *lottery.Result) (bool, error) {
	args := m.Called(ctx, r)
	return args.Bool(0), args.Error(1)
}

func (m *MockLotteryRepository) Latest(ctx context.Context, slug string) (*lottery.Result, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lottery.Result), args.Error(1)
}

func (m *MockLotteryRepository) GetByDate(ctx context.Context, slug string, drawDate time.Time) (*lottery.Result, error) {
	args := m.Called(ctx, slug, drawDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lottery.Result), args.Error(1)
}

func (m *MockLotteryRepository) WithTx(pgx.Tx) lottery.Repository { return m }

type MockLotteryCache struct {
	mock.Mock
}

func (m *MockLotteryCache) GetLatest(ctx context.Context, slug string) (*lottery.Result, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lottery.Result), args.Error(1)
}

func (m *MockLotteryCache) SetLatest(ctx context.Context, r *lottery.Result) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchResult(ctx context.Context, drawDate time.Time) (*lottery.Result, error) {
	args := m.Called(ctx, drawDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lottery.Result), args.Error(1)
}

// fixture bundles the mocks behind a Repositories value
type fixture struct {
	tx        *MockTxRunner
	members   *MockMemberRepository
	savings   *MockSavingsRepository
	loans     *MockLoanRepository
	movements *MockMovementRepository
	outbox    *MockOutboxRepository
	lottery   *MockLotteryRepository
}

func newFixture() *fixture {
	return &fixture{
		tx:        &MockTxRunner{},
		members:   new(MockMemberRepository),
		savings:   new(MockSavingsRepository),
		loans:     new(MockLoanRepository),
		movements: new(MockMovementRepository),
		outbox:    new(MockOutboxRepository),
		lottery:   new(MockLotteryRepository),
	}
}

func (f *fixture) repos() Repositories {
	return Repositories{
		Members:   f.members,
		Savings:   f.savings,
		Loans:     f.loans,
		Movements: f.movements,
		Outbox:    f.outbox,
		Lottery:   f.lottery,
	}
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.members.AssertExpectations(t)
	f.savings.AssertExpectations(t)
	f.loans.AssertExpectations(t)
	f.movements.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
	f.lottery.AssertExpectations(t)
}

func testMember(id int64) *member.Member {
	return &member.Member{ID: id, Username: "ana", Name: "Ana", Role: member.RoleMember, Active: true}
}

var testNow = time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

func testSettings() Settings {
	return Settings{DefaultInterestRate: 8.5, Location: time.UTC, LotterySlug: "medellin"}
}
