package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/natillera-ledger/internal/service"
)

// AdminHandler exposes administrative maintenance operations
type AdminHandler struct {
	adminService service.AdminService
	loanService  service.LoanService
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(logger *slog.Logger, adminService service.AdminService, loanService service.LoanService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		loanService:  loanService,
		logger:       logger,
	}
}

// ResetMember wipes the member's movements and loans and zeroes the savings position
func (h *AdminHandler) ResetMember(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	report, err := h.adminService.ResetMember(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "reset member", err)
		return
	}

	RespondOK(c, ResetResponse{
		MemberID:         report.MemberID,
		Username:         report.Username,
		Role:             string(report.Role),
		MovementsDeleted: report.MovementsDeleted,
		LoansDeleted:     report.LoansDeleted,
	})
}

// ReconcileLoans persists the status derived from each loan's payments
func (h *AdminHandler) ReconcileLoans(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	report, err := h.loanService.ReconcileLoans(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "reconcile loans", err)
		return
	}

	repaired := report.Repaired
	if repaired == nil {
		repaired = []int64{}
	}
	RespondOK(c, ReconcileResponse{
		MemberID: report.MemberID,
		Checked:  report.Checked,
		Repaired: repaired,
	})
}
