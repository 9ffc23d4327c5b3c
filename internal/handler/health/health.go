package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dwarvesf/ape-bridge-backend/internal/evmrpc"
	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// HealthHandler implements IHealthHandler interface
type HealthHandler struct {
	logger           *logger.Logger
	db               *gorm.DB
	store            bridgetransaction.IStore
	readers          map[model.Network]evmrpc.ChainReader
	jobStatusManager *monitoring.JobStatusManager
}

// New creates a health handler. db is nil when records live in memory.
func New(
	logger *logger.Logger,
	db *gorm.DB,
	store bridgetransaction.IStore,
	readers map[model.Network]evmrpc.ChainReader,
	jobStatusManager *monitoring.JobStatusManager,
) IHealthHandler {
	return &HealthHandler{
		logger:           logger,
		db:               db,
		store:            store,
		readers:          readers,
		jobStatusManager: jobStatusManager,
	}
}

// Basic handles the basic health check endpoint (/healthz)
// @Summary Basic health check
// @Description Returns basic system availability status
// @Tags health
// @Produce json
// @Success 200 {object} BasicHealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Basic(c *gin.Context) {
	c.JSON(http.StatusOK, BasicHealthResponse{Message: "ok"})
}

// Database handles the record store health check endpoint
// @Summary Record store health check
// @Description Validates database connectivity, or the in-memory store when no database is configured
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/v1/health/db [get]
func (h *HealthHandler) Database(c *gin.Context) {
	start := time.Now()

	response := HealthResponse{
		Timestamp: start,
		Checks:    make(map[string]HealthCheck),
	}

	check := h.checkDatabase(c.Request.Context())
	response.Checks["database"] = check
	response.DurationMs = time.Since(start).Milliseconds()

	if check.Status == statusHealthy {
		response.Status = statusHealthy
		c.JSON(http.StatusOK, response)
		return
	}

	response.Status = statusUnhealthy
	c.JSON(http.StatusServiceUnavailable, response)
}

// External handles the chain RPC health check endpoint
// @Summary Chain RPC health check
// @Description Reads the head block of every configured network
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/v1/health/external [get]
func (h *HealthHandler) External(c *gin.Context) {
	start := time.Now()

	response := HealthResponse{
		Timestamp: start,
		Checks:    make(map[string]HealthCheck),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for network, reader := range h.readers {
		wg.Add(1)
		go func(network model.Network, reader evmrpc.ChainReader) {
			defer wg.Done()
			check := h.checkChainRPC(ctx, reader)
			mu.Lock()
			response.Checks[string(network)+"_rpc"] = check
			mu.Unlock()
		}(network, reader)
	}
	wg.Wait()
	response.DurationMs = time.Since(start).Milliseconds()

	response.Status = statusHealthy
	for _, check := range response.Checks {
		if check.Status != statusHealthy {
			response.Status = statusUnhealthy
			break
		}
	}

	if response.Status == statusHealthy {
		c.JSON(http.StatusOK, response)
		return
	}
	c.JSON(http.StatusServiceUnavailable, response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) HealthCheck {
	start := time.Now()

	check := HealthCheck{
		Metadata: make(map[string]interface{}),
	}

	if h.db == nil {
		return h.checkMemoryStore(ctx, start, check)
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		check.Status = statusUnhealthy
		check.Error = fmt.Sprintf("failed to get underlying database: %v", err)
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		check.Status = statusUnhealthy
		if pingCtx.Err() == context.DeadlineExceeded {
			check.Error = "timeout"
		} else {
			check.Error = err.Error()
		}
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	stats := sqlDB.Stats()

	check.Status = statusHealthy
	check.Latency = time.Since(start).Milliseconds()
	check.Metadata["driver"] = "postgres"
	check.Metadata["connection_pool"] = map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"max_open":         stats.MaxOpenConnections,
	}

	return check
}

func (h *HealthHandler) checkMemoryStore(ctx context.Context, start time.Time, check HealthCheck) HealthCheck {
	check.Metadata["driver"] = "memory"

	if h.store == nil {
		check.Status = statusUnhealthy
		check.Error = "record store not available"
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	count, err := h.store.Count(ctx)
	if err != nil {
		check.Status = statusUnhealthy
		check.Error = err.Error()
	} else {
		check.Status = statusHealthy
		check.Metadata["records"] = count
	}
	check.Latency = time.Since(start).Milliseconds()
	return check
}

func (h *HealthHandler) checkChainRPC(ctx context.Context, reader evmrpc.ChainReader) HealthCheck {
	start := time.Now()

	check := HealthCheck{
		Metadata: make(map[string]interface{}),
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	head, err := reader.BlockNumber(checkCtx)
	if err != nil {
		check.Status = statusUnhealthy
		if checkCtx.Err() == context.DeadlineExceeded {
			check.Error = "timeout"
		} else {
			check.Error = err.Error()
		}
	} else {
		check.Status = statusHealthy
		check.Metadata["head_block"] = head
	}

	check.Latency = time.Since(start).Milliseconds()
	return check
}
