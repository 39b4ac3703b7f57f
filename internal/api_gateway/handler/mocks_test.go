package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/natillera-ledger/internal/domain/loan"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/savings"
	"github.com/natillera-ledger/internal/service"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) CreateMember(ctx context.Context, input service.CreateMemberInput) (*member.Member, *savings.Account, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*member.Member), args.Get(1).(*savings.Account), args.Error(2)
}

func (m *MockMemberService) ListMembers(ctx context.Context) ([]*member.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.Member), args.Error(1)
}

func (m *MockMemberService) GetMember(ctx context.Context, id int64) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Dashboard(ctx context.Context, memberID int64) (*service.Dashboard, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Dashboard), args.Error(1)
}

type MockSavingsService struct {
	mock.Mock
}

func (m *MockSavingsService) RegisterContribution(ctx context.Context, memberID int64) (*service.ContributionResult, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ContributionResult), args.Error(1)
}

func (m *MockSavingsService) GetSavingsSummary(ctx context.Context, memberID int64) (*savings.Account, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*savings.Account), args.Error(1)
}

func (m *MockSavingsService) UpdateSavingsConfig(ctx context.Context, memberID int64, input service.SavingsConfigInput) (*savings.Account, error) {
	args := m.Called(ctx, memberID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*savings.Account), args.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, input service.CreateLoanInput) (*loan.Loan, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, memberID int64) ([]*service.LoanView, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.LoanView), args.Error(1)
}

func (m *MockLoanService) RegisterPayment(ctx context.Context, loanID int64, amount *int64) (*service.PaymentResult, error) {
	args := m.Called(ctx, loanID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentResult), args.Error(1)
}

func (m *MockLoanService) ReconcileLoans(ctx context.Context, memberID int64) (*service.ReconcileReport, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReconcileReport), args.Error(1)
}

func (m *MockLoanService) ReconcileAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockMovementService struct {
	mock.Mock
}

func (m *MockMovementService) ListMovements(ctx context.Context, memberID int64, limit int) ([]*movement.Entry, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*movement.Entry), args.Error(1)
}

func (m *MockMovementService) ListJournal(ctx context.Context, memberID int64, page, perPage int) ([]*movement.Entry, int64, error) {
	args := m.Called(ctx, memberID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*movement.Entry), args.Get(1).(int64), args.Error(2)
}

type MockPollaService struct {
	mock.Mock
}

func (m *MockPollaService) Status(ctx context.Context, memberID int64) (*service.PollaStatus, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PollaStatus), args.Error(1)
}

func (m *MockPollaService) SyncDraw(ctx context.Context) (*service.SyncOutcome, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncOutcome), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ResetMember(ctx context.Context, memberID int64) (*service.ResetReport, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResetReport), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// perform sends body as JSON when it is not nil
func perform(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		var raw []byte
		if s, ok := body.(string); ok {
			raw = []byte(s)
		} else {
			raw, _ = json.Marshal(body)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the envelope and its data field into out
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()

	var envelope Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	if out != nil {
		require.NotNil(t, envelope.Data, "'data' field should not be nil")
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return envelope
}
