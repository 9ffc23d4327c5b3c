package monitoring

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

type MockChainReader struct {
	mock.Mock
}

func (m *MockChainReader) Network() model.Network {
	return model.NetworkEthereum
}

func (m *MockChainReader) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChainReader) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, hash)
	receipt, _ := args.Get(0).(*types.Receipt)
	return receipt, args.Error(1)
}

var testBreakerConfig = CircuitBreakerConfig{
	MaxRequests:                 1,
	Interval:                    time.Minute,
	Timeout:                     time.Minute,
	ConsecutiveFailureThreshold: 2,
}

func TestCircuitBreakerChainReader_Success(t *testing.T) {
	reader := new(MockChainReader)
	reader.On("BlockNumber", mock.Anything).Return(uint64(120), nil)
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(100)}
	reader.On("TransactionReceipt", mock.Anything, common.HexToHash("0x01")).Return(receipt, nil)

	metrics := NewExternalAPIMetrics()
	cb := NewCircuitBreakerChainReader(reader, testBreakerConfig, metrics, setupTestLogger())

	head, err := cb.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(120), head)

	got, err := cb.TransactionReceipt(context.Background(), common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Equal(t, receipt, got)

	assert.Equal(t, model.NetworkEthereum, cb.Network())
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.apiCalls.WithLabelValues("chain_rpc_ethereum", "success")))
}

func TestCircuitBreakerChainReader_MissingReceipt(t *testing.T) {
	reader := new(MockChainReader)
	reader.On("TransactionReceipt", mock.Anything, mock.Anything).Return((*types.Receipt)(nil), nil)

	cb := NewCircuitBreakerChainReader(reader, testBreakerConfig, NewExternalAPIMetrics(), setupTestLogger())
	for i := 0; i < 5; i++ {
		receipt, err := cb.TransactionReceipt(context.Background(), common.HexToHash("0x02"))
		assert.NoError(t, err)
		assert.Nil(t, receipt)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreakerChainReader_OpensAfterConsecutiveFailures(t *testing.T) {
	reader := new(MockChainReader)
	reader.On("BlockNumber", mock.Anything).Return(uint64(0), errors.New("connection refused")).Twice()

	metrics := NewExternalAPIMetrics()
	cb := NewCircuitBreakerChainReader(reader, testBreakerConfig, metrics, setupTestLogger())

	for i := 0; i < 2; i++ {
		_, err := cb.BlockNumber(context.Background())
		assert.Error(t, err)
	}

	_, err := cb.BlockNumber(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, float64(gobreaker.StateOpen), testutil.ToFloat64(metrics.circuitBreakerState.WithLabelValues("chain_rpc_ethereum")))
	reader.AssertNumberOfCalls(t, "BlockNumber", 2)
}

func TestCircuitBreakerChainReader_Timeout(t *testing.T) {
	reader := new(MockChainReader)
	reader.On("BlockNumber", mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(uint64(0), context.DeadlineExceeded)

	metrics := NewExternalAPIMetrics()
	cb := NewCircuitBreakerChainReaderWithTimeout(reader, testBreakerConfig, TimeoutConfig{
		RequestTimeout:     20 * time.Millisecond,
		HealthCheckTimeout: 20 * time.Millisecond,
	}, metrics, setupTestLogger())

	_, err := cb.BlockNumber(context.Background())
	assert.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.timeouts.WithLabelValues("chain_rpc_ethereum", "block_number")))
}
