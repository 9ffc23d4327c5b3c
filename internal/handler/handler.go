package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/dwarvesf/ape-bridge-backend/internal/evmrpc"
	"github.com/dwarvesf/ape-bridge-backend/internal/handler/health"
	"github.com/dwarvesf/ape-bridge-backend/internal/handler/metrics"
	"github.com/dwarvesf/ape-bridge-backend/internal/handler/transaction"
	"github.com/dwarvesf/ape-bridge-backend/internal/intake"
	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/query"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
	"github.com/dwarvesf/ape-bridge-backend/internal/tracker"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

type Handler struct {
	TransactionHandler transaction.IHandler
	HealthHandler      health.IHealthHandler
	MetricsHandler     *metrics.MetricsHandler
}

// Services groups what the HTTP handlers depend on. DB is nil when the
// memory store is in use.
type Services struct {
	Intake           intake.IIntake
	Query            query.IQuery
	Tracker          tracker.ITracker
	Store            bridgetransaction.IStore
	DB               *gorm.DB
	Readers          map[model.Network]evmrpc.ChainReader
	JobStatusManager *monitoring.JobStatusManager
	MetricsRegistry  *prometheus.Registry
}

func New(logger *logger.Logger, svc Services) *Handler {
	return &Handler{
		TransactionHandler: transaction.New(svc.Intake, svc.Query, svc.Tracker, logger),
		HealthHandler:      health.New(logger, svc.DB, svc.Store, svc.Readers, svc.JobStatusManager),
		MetricsHandler:     metrics.NewMetricsHandler(svc.MetricsRegistry),
	}
}
