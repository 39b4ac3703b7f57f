package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/natillera-ledger/internal/logger"
)

// respondServiceError maps domain errors onto the response envelope. Unknown errors are
// logged and hidden behind a 500.
func respondServiceError(c *gin.Context, log *slog.Logger, operation string, err error) {
	var duplicate member.ErrDuplicateMember

	switch {
	case errors.Is(err, shared.ErrNotFound):
		RespondNotFound(c, err.Error())
	case errors.As(err, &duplicate):
		RespondConflict(c, duplicate.Error())
	case errors.Is(err, shared.ErrLoanAlreadySettled):
		RespondConflict(c, "Loan is already paid")
	case errors.Is(err, shared.ErrInvalidConfiguration):
		RespondUnprocessable(c, err.Error())
	case errors.Is(err, shared.ErrInvalidAmount), errors.Is(err, shared.ErrInvalidInput):
		RespondBadRequest(c, err.Error())
	default:
		logger.FromContext(c.Request.Context(), log).Error("Failed to "+operation, "error", err)
		RespondInternalError(c)
	}
}

// parseID reads the positive int64 :id path parameter, answering 400 when it is malformed
func parseID(c *gin.Context, log *slog.Logger, label string) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.FromContext(c.Request.Context(), log).Warn("Invalid path ID", "label", label, "value", raw)
		RespondBadRequest(c, "Invalid "+label)
		return 0, false
	}
	return id, true
}
