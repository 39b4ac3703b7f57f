package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natillera-ledger/internal/api_gateway/handler"
	"github.com/natillera-ledger/internal/api_gateway/middleware"
)

// handlers groups the HTTP handlers mounted by setupRouter
type handlers struct {
	members   *handler.MemberHandler
	savings   *handler.SavingsHandler
	movements *handler.MovementHandler
	loans     *handler.LoanHandler
	polla     *handler.PollaHandler
	admin     *handler.AdminHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		members := v1.Group("/members")
		{
			members.POST("", h.members.Create)
			members.GET("", h.members.List)
			members.GET("/:id", h.members.GetByID)
			members.GET("/:id/dashboard", h.members.Dashboard)

			members.GET("/:id/savings", h.savings.Summary)
			members.PUT("/:id/savings", h.savings.UpdateConfig)
			members.POST("/:id/savings/contributions", h.savings.RegisterContribution)

			members.GET("/:id/movements", h.movements.List)
			members.GET("/:id/journal", h.movements.Journal)

			members.GET("/:id/loans", h.loans.ListByMember)
			members.GET("/:id/polla", h.polla.Status)
		}

		loans := v1.Group("/loans")
		{
			loans.POST("", h.loans.Create)
			loans.POST("/:id/payments", h.loans.RegisterPayment)
			loans.POST("/:id/installments", h.loans.PayInstallment)
		}

		admin := v1.Group("/admin/members")
		{
			admin.POST("/:id/reset", h.admin.ResetMember)
			admin.POST("/:id/loans/reconcile", h.admin.ReconcileLoans)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
