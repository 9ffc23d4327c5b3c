package http

import (
	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/ape-bridge-backend/internal/handler"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/config"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler, appConfig *config.AppConfig, logger *logger.Logger) {
	v1 := r.Group("/api/v1")

	transactions := v1.Group("/transactions")
	{
		transactions.POST("", h.TransactionHandler.Create)
		transactions.GET("/wallet/:address", h.TransactionHandler.ListByWallet)
		transactions.GET("/hash/:hash", h.TransactionHandler.GetByHash)
		transactions.GET("/:id", h.TransactionHandler.GetByID)
		transactions.PATCH("/:id/status", h.TransactionHandler.UpdateStatus)
	}

	health := v1.Group("/health")
	{
		health.GET("/db", h.HealthHandler.Database)
		health.GET("/jobs", h.HealthHandler.Jobs)
		health.GET("/external", h.HealthHandler.External)
	}

	// health check
	r.GET("/healthz", h.HealthHandler.Basic)
}
