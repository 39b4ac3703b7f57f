package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loanRowColumns = []string{"id", "member_id", "principal", "interest", "total", "term_months", "disbursed_at", "due_date", "status", "outstanding", "installments_paid"}

func loanRow(rows *pgxmock.Rows, l *loan.Loan) *pgxmock.Rows {
	return rows.AddRow(l.ID, l.MemberID, l.Principal, l.Interest, l.Total, l.TermMonths, l.DisbursedAt, l.DueDate, l.Status, l.Outstanding, l.InstallmentsPaid)
}

func TestLoanRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LoanRepository{querier: mock, logger: newTestLogger()}
	disbursed := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	l, err := loan.NewLoan(7, 1000000, 100000, 10, disbursed, nil)
	require.NoError(t, err)

	query := regexp.QuoteMeta(`INSERT INTO loans (member_id, principal, interest, total, term_months, disbursed_at, due_date, status, outstanding, installments_paid)`)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(l.MemberID, l.Principal, l.Interest, l.Total, l.TermMonths, l.DisbursedAt, l.DueDate, l.Status, l.Outstanding, l.InstallmentsPaid).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		require.NoError(t, repo.Create(ctx, l))
		assert.Equal(t, int64(42), l.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).
			WithArgs(l.MemberID, l.Principal, l.Interest, l.Total, l.TermMonths, l.DisbursedAt, l.DueDate, l.Status, l.Outstanding, l.InstallmentsPaid).
			WillReturnError(dbErr)

		err := repo.Create(ctx, l)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to create loan")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoanRepository_Get(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LoanRepository{querier: mock, logger: newTestLogger()}
	disbursed := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	expected := &loan.Loan{
		ID: 42, MemberID: 7, Principal: 1000000, Interest: 100000, Total: 1100000, TermMonths: 10,
		DisbursedAt: disbursed, DueDate: disbursed.AddDate(0, 10, 0),
		Status: loan.StatusPending, Outstanding: 990000, InstallmentsPaid: 1,
	}

	t.Run("by id", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM loans WHERE id = $1`)).
			WithArgs(int64(42)).
			WillReturnRows(loanRow(pgxmock.NewRows(loanRowColumns), expected))

		l, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, expected, l)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("for update", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM loans WHERE id = $1 FOR UPDATE`)).
			WithArgs(int64(42)).
			WillReturnRows(loanRow(pgxmock.NewRows(loanRowColumns), expected))

		l, err := repo.GetForUpdate(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, expected, l)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM loans WHERE id = $1`)).
			WithArgs(int64(99)).
			WillReturnError(pgx.ErrNoRows)

		l, err := repo.GetByID(ctx, 99)
		assert.Nil(t, l)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, loan.ErrLoanNotFound{LoanID: 99}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list by member", func(t *testing.T) {
		older := *expected
		older.ID = 40
		older.Status = loan.StatusPaid
		rows := loanRow(loanRow(pgxmock.NewRows(loanRowColumns), expected), &older)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM loans WHERE member_id = $1 ORDER BY disbursed_at DESC, id DESC`)).
			WithArgs(int64(7)).
			WillReturnRows(rows)

		loans, err := repo.ListByMember(ctx, 7)
		require.NoError(t, err)
		require.Len(t, loans, 2)
		assert.Equal(t, int64(42), loans[0].ID)
		assert.Equal(t, loan.StatusPaid, loans[1].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoanRepository_Update(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LoanRepository{querier: mock, logger: newTestLogger()}
	l := &loan.Loan{ID: 42, Status: loan.StatusPaid, Outstanding: 0, InstallmentsPaid: 10}
	query := regexp.QuoteMeta(`UPDATE loans SET status = $1, outstanding = $2, installments_paid = $3 WHERE id = $4`)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(loan.StatusPaid, int64(0), 10, int64(42)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.Update(ctx, l))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(loan.StatusPaid, int64(0), 10, int64(42)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.Update(ctx, l), loan.ErrLoanNotFound{LoanID: 42})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoanRepository_Aggregates(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LoanRepository{querier: mock, logger: newTestLogger()}

	t.Run("total lent", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(principal), 0)::BIGINT FROM loans WHERE member_id = $1`)).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(1500000)))

		total, err := repo.TotalLentByMember(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, int64(1500000), total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("members with pending loans", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT member_id FROM loans WHERE status = $1`)).
			WithArgs(loan.StatusPending).
			WillReturnRows(pgxmock.NewRows([]string{"member_id"}).AddRow(int64(2)).AddRow(int64(7)))

		ids, err := repo.ListMemberIDsWithPendingLoans(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []int64{2, 7}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete by member", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM loans WHERE member_id = $1`)).
			WithArgs(int64(7)).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))

		deleted, err := repo.DeleteByMember(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
