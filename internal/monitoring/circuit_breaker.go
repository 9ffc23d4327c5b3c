package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sony/gobreaker"

	"github.com/dwarvesf/ape-bridge-backend/internal/evmrpc"
	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

// CircuitBreakerChainReader wraps evmrpc.ChainReader with circuit breaker functionality
type CircuitBreakerChainReader struct {
	wrapped        evmrpc.ChainReader
	apiName        string
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
	logger         *logger.Logger
	timeoutConfig  TimeoutConfig
}

var _ evmrpc.ChainReader = (*CircuitBreakerChainReader)(nil)

func NewCircuitBreakerChainReader(wrapped evmrpc.ChainReader, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerChainReader {
	return NewCircuitBreakerChainReaderWithTimeout(wrapped, config, DefaultTimeoutConfig, metrics, logger)
}

func NewCircuitBreakerChainReaderWithTimeout(wrapped evmrpc.ChainReader, config CircuitBreakerConfig, timeoutConfig TimeoutConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerChainReader {
	apiName := "chain_rpc_" + string(wrapped.Network())
	cb := &CircuitBreakerChainReader{
		wrapped:       wrapped,
		apiName:       apiName,
		metrics:       metrics,
		logger:        logger,
		timeoutConfig: timeoutConfig,
	}

	settings := gobreaker.Settings{
		Name:        apiName,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.ConsecutiveFailureThreshold)
		},
		// caller cancellation says nothing about the health of the endpoint
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state change", map[string]string{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.UpdateCircuitBreakerState(name, to)
		},
	}

	cb.circuitBreaker = gobreaker.NewCircuitBreaker(settings)
	return cb
}

func (cb *CircuitBreakerChainReader) Network() model.Network {
	return cb.wrapped.Network()
}

func (cb *CircuitBreakerChainReader) BlockNumber(ctx context.Context) (uint64, error) {
	result, err := cb.execute(ctx, "block_number", func(ctx context.Context) (interface{}, error) {
		return cb.wrapped.BlockNumber(ctx)
	})
	if err != nil {
		return 0, err
	}
	return result.(uint64), nil
}

func (cb *CircuitBreakerChainReader) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	result, err := cb.execute(ctx, "transaction_receipt", func(ctx context.Context) (interface{}, error) {
		return cb.wrapped.TransactionReceipt(ctx, hash)
	})
	if err != nil {
		return nil, err
	}
	receipt, _ := result.(*types.Receipt)
	return receipt, nil
}

// State exposes the breaker state for health checks.
func (cb *CircuitBreakerChainReader) State() gobreaker.State {
	return cb.circuitBreaker.State()
}

// execute runs fn through the breaker with a per-call deadline and records metrics
func (cb *CircuitBreakerChainReader) execute(ctx context.Context, operation string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	timeout := cb.timeoutConfig.RequestTimeout
	if operation == "health_check" {
		timeout = cb.timeoutConfig.HealthCheckTimeout
	}

	return cb.circuitBreaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		result, err := fn(callCtx)
		duration := time.Since(start).Seconds()

		switch {
		case err == nil:
			cb.metrics.RecordAPICall(cb.apiName, operation, "success", duration)
		case errors.Is(callCtx.Err(), context.DeadlineExceeded):
			cb.metrics.RecordTimeout(cb.apiName, operation)
			cb.metrics.RecordAPICall(cb.apiName, operation, "timeout", duration)
			cb.logError(operation, duration, err)
		default:
			cb.metrics.RecordAPICall(cb.apiName, operation, "error", duration)
			cb.logError(operation, duration, err)
		}
		return result, err
	})
}

func (cb *CircuitBreakerChainReader) logError(operation string, duration float64, err error) {
	cb.logger.Error("[CircuitBreakerChainReader] external call failed", map[string]string{
		"service":   cb.apiName,
		"operation": operation,
		"duration":  time.Duration(duration * float64(time.Second)).String(),
		"error":     err.Error(),
	})
}
