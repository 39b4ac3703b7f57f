package service

import (
	"context"
	"errors"
	"testing"

	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/outbox"
	"github.com/natillera-ledger/internal/domain/savings"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSavingsService(f *fixture) SavingsService {
	return NewSavingsService(newTestLogger(), f.tx, f.repos(), clock.Fixed{At: testNow}, testSettings())
}

func TestSavingsService_RegisterContribution(t *testing.T) {
	ctx := logger.ContextWithCorrelationID(context.Background(), "corr-42")

	t.Run("FirstContributionUsesCurrentMonth", func(t *testing.T) {
		f := newFixture()
		acc := &savings.Account{ID: 1, MemberID: 7, MonthlyContribution: 50000, InterestRate: 8.5}

		f.members.On("GetByID", ctx, int64(7)).Return(testMember(7), nil).Once()
		f.savings.On("EnsureForUpdate", ctx, mock.MatchedBy(func(d *savings.Account) bool {
			return d.MemberID == 7 && d.InterestRate == 8.5 && d.MonthlyContribution == 0
		})).Return(acc, nil).Once()
		f.movements.On("LatestOfType", ctx, int64(7), movement.TypeMonthlyContribution).Return(nil, nil).Once()
		f.savings.On("Update", ctx, mock.MatchedBy(func(a *savings.Account) bool {
			return a.Balance == 54250 && a.InterestEarned == 4250 && a.UpdatedAt.Equal(testNow)
		})).Return(nil).Once()
		f.movements.On("Append", ctx, mock.MatchedBy(func(e *movement.Entry) bool {
			return e.Type == movement.TypeMonthlyContribution &&
				e.Amount == 50000 &&
				e.Category == movement.CategoryIncome &&
				e.Description == "Aporte mensual registrado (Marzo 2025)"
		})).Return(nil).Once()
		f.outbox.On("Create", ctx, mock.MatchedBy(func(m *outbox.Message) bool {
			event, err := m.Event()
			return err == nil &&
				m.MemberID == 7 &&
				event.Kind == movement.EventMovementAppended &&
				event.CorrelationID == "corr-42" &&
				event.Movement.ID == 1
		})).Return(nil).Once()

		result, err := newSavingsService(f).RegisterContribution(ctx, 7)
		require.NoError(t, err)

		assert.Equal(t, "Marzo 2025", result.MonthLabel)
		assert.Equal(t, int64(54250), result.NewBalance)
		assert.Equal(t, int64(4250), result.CycleInterest)
		assert.Equal(t, int64(4250), result.InterestEarned)
		assert.Equal(t, int64(1), result.MovementID)
		assert.Equal(t, 1, f.tx.Commits)
		f.assertExpectations(t)
	})

	t.Run("SecondContributionAdvancesLabel", func(t *testing.T) {
		f := newFixture()
		acc := &savings.Account{MemberID: 7, MonthlyContribution: 50000, Balance: 54250, InterestEarned: 4250, InterestRate: 8.5}
		latest := movement.NewContribution(7, 50000, "Diciembre 2024", testNow.AddDate(0, -3, 0))

		f.members.On("GetByID", ctx, int64(7)).Return(testMember(7), nil)
		f.savings.On("EnsureForUpdate", ctx, mock.Anything).Return(acc, nil)
		f.movements.On("LatestOfType", ctx, int64(7), movement.TypeMonthlyContribution).Return(latest, nil)
		f.savings.On("Update", ctx, acc).Return(nil)
		f.movements.On("Append", ctx, mock.MatchedBy(func(e *movement.Entry) bool {
			return e.Description == "Aporte mensual registrado (Enero 2025)"
		})).Return(nil)
		f.outbox.On("Create", ctx, mock.Anything).Return(nil)

		result, err := newSavingsService(f).RegisterContribution(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Enero 2025", result.MonthLabel)
		assert.Equal(t, int64(113111), result.NewBalance)
		assert.Equal(t, int64(13111), result.InterestEarned)
	})

	t.Run("MissingMonthlyContribution", func(t *testing.T) {
		f := newFixture()
		acc := &savings.Account{MemberID: 7, MonthlyContribution: 0, Balance: 1000, InterestRate: 8.5}

		f.members.On("GetByID", ctx, int64(7)).Return(testMember(7), nil)
		f.savings.On("EnsureForUpdate", ctx, mock.Anything).Return(acc, nil)
		f.movements.On("LatestOfType", ctx, int64(7), movement.TypeMonthlyContribution).Return(nil, nil)

		_, err := newSavingsService(f).RegisterContribution(ctx, 7)
		assert.ErrorIs(t, err, shared.ErrInvalidConfiguration)
		assert.Equal(t, int64(1000), acc.Balance)
		assert.Equal(t, 1, f.tx.Rollbacks)
		f.savings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.movements.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("MemberNotFound", func(t *testing.T) {
		f := newFixture()
		f.members.On("GetByID", ctx, int64(404)).Return(nil, member.ErrMemberNotFound{MemberID: 404})

		_, err := newSavingsService(f).RegisterContribution(ctx, 404)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.savings.AssertNotCalled(t, "EnsureForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("OutboxFailureRollsBack", func(t *testing.T) {
		f := newFixture()
		acc := &savings.Account{MemberID: 7, MonthlyContribution: 100, InterestRate: 0}
		outboxErr := errors.New("outbox insert failed")

		f.members.On("GetByID", ctx, int64(7)).Return(testMember(7), nil)
		f.savings.On("EnsureForUpdate", ctx, mock.Anything).Return(acc, nil)
		f.movements.On("LatestOfType", ctx, int64(7), movement.TypeMonthlyContribution).Return(nil, nil)
		f.savings.On("Update", ctx, acc).Return(nil)
		f.movements.On("Append", ctx, mock.Anything).Return(nil)
		f.outbox.On("Create", ctx, mock.Anything).Return(outboxErr)

		_, err := newSavingsService(f).RegisterContribution(ctx, 7)
		assert.ErrorIs(t, err, outboxErr)
		assert.Equal(t, 0, f.tx.Commits)
		assert.Equal(t, 1, f.tx.Rollbacks)
	})
}

func TestSavingsService_GetSavingsSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesWithDefaults", func(t *testing.T) {
		f := newFixture()
		stored := &savings.Account{ID: 3, MemberID: 7, InterestRate: 8.5}

		f.members.On("GetByID", ctx, int64(7)).Return(testMember(7), nil)
		f.savings.On("Ensure", ctx, mock.MatchedBy(func(d *savings.Account) bool {
			return d.MemberID == 7 && d.InterestRate == 8.5 && d.Balance == 0
		})).Return(stored, nil).Once()

		acc, err := newSavingsService(f).GetSavingsSummary(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, stored, acc)
	})

	t.Run("MemberNotFound", func(t *testing.T) {
		f := newFixture()
		f.members.On("GetByID", ctx, int64(9)).Return(nil, member.ErrMemberNotFound{MemberID: 9})

		_, err := newSavingsService(f).GetSavingsSummary(ctx, 9)
		assert.ErrorIs(t, err, member.ErrMemberNotFound{})
	})
}

func TestSavingsService_UpdateSavingsConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdatesSettings", func(t *testing.T) {
		f := newFixture()
		acc := &savings.Account{MemberID: 7, MonthlyContribution: 10000, Balance: 500, InterestRate: 8.5}

		f.members.On("GetByID", ctx, int64(7)).Return(testMember(7), nil)
		f.savings.On("EnsureForUpdate", ctx, mock.Anything).Return(acc, nil)
		f.savings.On("Update", ctx, mock.MatchedBy(func(a *savings.Account) bool {
			return a.MonthlyContribution == 60000 && a.InterestRate == 7.0 && a.Balance == 500
		})).Return(nil).Once()

		updated, err := newSavingsService(f).UpdateSavingsConfig(ctx, 7, SavingsConfigInput{MonthlyContribution: 60000, InterestRate: 7.0})
		require.NoError(t, err)
		assert.Equal(t, int64(60000), updated.MonthlyContribution)
		assert.True(t, updated.UpdatedAt.Equal(testNow))
	})

	testCases := []struct {
		name  string
		input SavingsConfigInput
	}{
		{"NegativeMonthly", SavingsConfigInput{MonthlyContribution: -1, InterestRate: 8.5}},
		{"NegativeRate", SavingsConfigInput{MonthlyContribution: 100, InterestRate: -0.5}},
		{"RateAboveHundred", SavingsConfigInput{MonthlyContribution: 100, InterestRate: 101}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := newSavingsService(f).UpdateSavingsConfig(ctx, 7, tc.input)
			assert.ErrorIs(t, err, shared.ErrInvalidConfiguration)
			f.members.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

