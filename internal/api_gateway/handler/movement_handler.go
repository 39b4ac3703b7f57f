package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/service"
)

// MovementHandler serves the ledger and its journal projection
type MovementHandler struct {
	movementService service.MovementService
	logger          *slog.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(logger *slog.Logger, movementService service.MovementService) *MovementHandler {
	return &MovementHandler{
		movementService: movementService,
		logger:          logger,
	}
}

// List returns the member's latest movements, newest first
func (h *MovementHandler) List(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	var query MovementsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Invalid movement query", "error", err)
		RespondBadRequest(c, "Invalid limit")
		return
	}

	entries, err := h.movementService.ListMovements(c.Request.Context(), id, query.Limit)
	if err != nil {
		respondServiceError(c, h.logger, "list movements", err)
		return
	}

	RespondOK(c, mapMovementsToResponse(entries))
}

// Journal pages through the projected movement journal
func (h *MovementHandler) Journal(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.movementService.ListJournal(c.Request.Context(), id, pagination.Page, pagination.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, "list journal", err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, mapMovementsToResponse(entries), pagination.Page, pagination.PerPage, total)
}
