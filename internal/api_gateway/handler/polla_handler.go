package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natillera-ledger/internal/service"
)

// PollaHandler reports members' standing in the monthly lottery pool
type PollaHandler struct {
	pollaService service.PollaService
	logger       *slog.Logger
}

func NewPollaHandler(logger *slog.Logger, pollaService service.PollaService) *PollaHandler {
	return &PollaHandler{
		pollaService: pollaService,
		logger:       logger,
	}
}

// Status compares the member's number with the latest draw
func (h *PollaHandler) Status(c *gin.Context) {
	id, ok := parseID(c, h.logger, "member ID")
	if !ok {
		return
	}

	status, err := h.pollaService.Status(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "get polla status", err)
		return
	}

	response := PollaResponse{
		MemberID:      status.MemberID,
		LotteryNumber: status.LotteryNumber,
		HasResult:     status.HasResult,
		Message:       status.Message,
	}
	if status.Result != nil {
		response.Lottery = status.Result.Lottery
		response.DrawDate = status.Result.DrawDate.Format(time.DateOnly)
		response.Result = status.Result.Result
		response.Series = status.Result.Series
	}
	if status.Outcome != nil {
		response.ResultDigits = status.Outcome.ResultDigits
		response.NumberDigits = status.Outcome.NumberDigits
		response.Won = status.Outcome.Won
	}

	RespondOK(c, response)
}
