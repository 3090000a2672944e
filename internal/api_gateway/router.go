package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/library-lending-engine/internal/api_gateway/handler"
	"github.com/library-lending-engine/internal/api_gateway/middleware"
)

type handlers struct {
	catalog *handler.CatalogHandler
	lending *handler.LendingHandler
	fines   *handler.FineHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1")
	{
		items := v1.Group("/items")
		{
			items.POST("", h.catalog.CreateItem)
			items.GET("", h.catalog.ListItems)
			items.GET("/:id", h.catalog.GetItem)
		}

		members := v1.Group("/members")
		{
			members.POST("", h.catalog.CreateMember)
			members.GET("/:id", h.catalog.GetMember)
			members.GET("/:id/loans", h.lending.MemberLoans)
			members.GET("/:id/transactions", h.lending.MemberTransactions)
			members.GET("/:id/fines", h.fines.MemberFines)
			members.GET("/:id/history", h.lending.MemberHistory)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("", h.lending.Borrow)
			transactions.GET("/overdue", h.lending.ListOverdue)
			transactions.GET("/:id", h.lending.GetTransaction)
			transactions.POST("/:id/return", h.lending.Return)
		}

		fines := v1.Group("/fines")
		{
			fines.GET("", h.fines.List)
			fines.POST("/recalculate", h.fines.Recalculate)
			fines.GET("/:id", h.fines.Get)
			fines.POST("/:id/pay", h.fines.Pay)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
