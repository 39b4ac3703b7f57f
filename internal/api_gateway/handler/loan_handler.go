package handler

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/service"
)

// LoanHandler handles HTTP requests for loans and their payments
type LoanHandler struct {
	loanService service.LoanService
	location    *time.Location
	logger      *slog.Logger
}

// NewLoanHandler creates a new loan handler. Due dates are read in loc.
func NewLoanHandler(logger *slog.Logger, loanService service.LoanService, loc *time.Location) *LoanHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &LoanHandler{
		loanService: loanService,
		location:    loc,
		logger:      logger,
	}
}

// Create disburses a new loan
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := service.CreateLoanInput{
		MemberID:   req.MemberID,
		Principal:  req.Principal,
		Interest:   req.Interest,
		TermMonths: req.TermMonths,
	}
	if req.DueDate != nil {
		due, err := time.ParseInLocation(time.DateOnly, *req.DueDate, h.location)
		if err != nil {
			RespondBadRequest(c, "Invalid due date")
			return
		}
		input.DueDate = &due
	}

	l, err := h.loanService.CreateLoan(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, h.logger, "create loan", err)
		return
	}

	RespondCreated(c, mapLoanToResponse(l))
}

// ListByMember returns the member's loans with their reconciled position
func (h *LoanHandler) ListByMember(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	views, err := h.loanService.ListLoans(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "list loans", err)
		return
	}

	response := make([]LoanViewResponse, 0, len(views))
	for _, v := range views {
		response = append(response, LoanViewResponse{
			Loan:             mapLoanToResponse(v.Loan),
			TotalPaid:        v.TotalPaid,
			Outstanding:      v.Outstanding,
			InstallmentsPaid: v.InstallmentsPaid,
			Status:           string(v.EffectiveStatus),
			Schedule:         mapScheduleToResponse(v.Schedule),
		})
	}
	RespondOK(c, response)
}

// RegisterPayment applies the requested amount, or one installment when the body has none
func (h *LoanHandler) RegisterPayment(c *gin.Context) {
	id, ok := parseID(c, h.logger, "loan ID")
	if !ok {
		return
	}

	var req PaymentRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.FromContext(c.Request.Context(), h.logger).Warn("Invalid request body", "error", err)
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	h.pay(c, id, req.Amount)
}

// PayInstallment pays one default installment of the loan
func (h *LoanHandler) PayInstallment(c *gin.Context) {
	id, ok := parseID(c, h.logger, "loan ID")
	if !ok {
		return
	}

	h.pay(c, id, nil)
}

func (h *LoanHandler) pay(c *gin.Context, loanID int64, amount *int64) {
	res, err := h.loanService.RegisterPayment(c.Request.Context(), loanID, amount)
	if err != nil {
		respondServiceError(c, h.logger, "register payment", err)
		return
	}

	RespondCreated(c, PaymentResponse{
		LoanID:           res.LoanID,
		MemberID:         res.MemberID,
		AmountApplied:    res.AmountApplied,
		Outstanding:      res.NewOutstanding,
		InstallmentsPaid: res.InstallmentsPaid,
		Status:           string(res.NewStatus),
		MovementID:       res.MovementID,
	})
}
