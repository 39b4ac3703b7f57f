package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/service"
)

// SavingsHandler handles HTTP requests for savings accounts and contributions
type SavingsHandler struct {
	savingsService service.SavingsService
	logger         *slog.Logger
}

// NewSavingsHandler creates a new savings handler
func NewSavingsHandler(logger *slog.Logger, savingsService service.SavingsService) *SavingsHandler {
	return &SavingsHandler{
		savingsService: savingsService,
		logger:         logger,
	}
}

// Summary returns the member's savings position
func (h *SavingsHandler) Summary(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	acc, err := h.savingsService.GetSavingsSummary(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "get savings summary", err)
		return
	}

	RespondOK(c, mapSavingsToResponse(acc))
}

// UpdateConfig replaces the monthly contribution and interest rate
func (h *SavingsHandler) UpdateConfig(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	var req UpdateSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.savingsService.UpdateSavingsConfig(c.Request.Context(), id, service.SavingsConfigInput{
		MonthlyContribution: *req.MonthlyContribution,
		InterestRate:        *req.InterestRate,
	})
	if err != nil {
		respondServiceError(c, h.logger, "update savings config", err)
		return
	}

	RespondOK(c, mapSavingsToResponse(acc))
}

// RegisterContribution records the next monthly contribution
func (h *SavingsHandler) RegisterContribution(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	res, err := h.savingsService.RegisterContribution(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "register contribution", err)
		return
	}

	RespondCreated(c, ContributionResponse{
		MemberID:       res.MemberID,
		Month:          res.MonthLabel,
		Contribution:   res.Contribution,
		CycleInterest:  res.CycleInterest,
		NewBalance:     res.NewBalance,
		InterestEarned: res.InterestEarned,
		InterestRate:   formatRate(res.InterestRate),
		MovementID:     res.MovementID,
	})
}
