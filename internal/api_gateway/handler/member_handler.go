package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/service"
)

// MemberHandler handles HTTP requests for members and their dashboard
type MemberHandler struct {
	memberService    service.MemberService
	dashboardService service.DashboardService
	logger           *slog.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(logger *slog.Logger, memberService service.MemberService, dashboardService service.DashboardService) *MemberHandler {
	return &MemberHandler{
		memberService:    memberService,
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Create registers a member together with its savings account
func (h *MemberHandler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	m, acc, err := h.memberService.CreateMember(c.Request.Context(), service.CreateMemberInput{
		Username:            req.Username,
		Name:                req.Name,
		Phone:               req.Phone,
		Email:               req.Email,
		LotteryNumber:       req.LotteryNumber,
		Role:                member.Role(req.Role),
		MonthlyContribution: req.MonthlyContribution,
		InterestRate:        req.InterestRate,
	})
	if err != nil {
		respondServiceError(c, h.logger, "create member", err)
		return
	}

	RespondCreated(c, CreateMemberResponse{
		Member:  mapMemberToResponse(m),
		Savings: mapSavingsToResponse(acc),
	})
}

// List returns every member ordered by name
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.memberService.ListMembers(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, "list members", err)
		return
	}

	response := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		response = append(response, mapMemberToResponse(m))
	}
	RespondOK(c, response)
}

// GetByID retrieves a member, returning 404 if not found
func (h *MemberHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	m, err := h.memberService.GetMember(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "get member", err)
		return
	}

	RespondOK(c, mapMemberToResponse(m))
}

// Dashboard returns the member overview
func (h *MemberHandler) Dashboard(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	d, err := h.dashboardService.Dashboard(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "build dashboard", err)
		return
	}

	RespondOK(c, DashboardResponse{
		Member:          mapMemberToResponse(d.Member),
		Savings:         mapSavingsToResponse(d.Savings),
		MemberCount:     d.MemberCount,
		TotalLent:       d.TotalLent,
		LotteryNumber:   d.LotteryNumber,
		RecentMovements: mapMovementsToResponse(d.RecentMovements),
	})
}
