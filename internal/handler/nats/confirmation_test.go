package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/query"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
	"github.com/dwarvesf/ape-bridge-backend/internal/tracker"
	"github.com/dwarvesf/ape-bridge-backend/internal/types/environments"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Observe(ctx context.Context, id int64, confirmations int) (tracker.Outcome, *model.BridgeTransaction, error) {
	args := m.Called(ctx, id, confirmations)
	rec, _ := args.Get(1).(*model.BridgeTransaction)
	return args.Get(0).(tracker.Outcome), rec, args.Error(2)
}

func (m *MockTracker) Fail(ctx context.Context, id int64, reason string) (tracker.Outcome, *model.BridgeTransaction, error) {
	args := m.Called(ctx, id, reason)
	rec, _ := args.Get(1).(*model.BridgeTransaction)
	return args.Get(0).(tracker.Outcome), rec, args.Error(2)
}

func (m *MockTracker) UpdateStatus(ctx context.Context, id int64, status model.TransactionStatus, confirmations *int) (*model.BridgeTransaction, error) {
	args := m.Called(ctx, id, status, confirmations)
	rec, _ := args.Get(0).(*model.BridgeTransaction)
	return rec, args.Error(1)
}

func (m *MockTracker) SweepStalled(ctx context.Context, now time.Time) ([]*model.BridgeTransaction, error) {
	args := m.Called(ctx, now)
	recs, _ := args.Get(0).([]*model.BridgeTransaction)
	return recs, args.Error(1)
}

type fixture struct {
	handler *Handler
	store   bridgetransaction.IStore
	tracker *MockTracker
	metrics *monitoring.HTTPMetrics
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store := bridgetransaction.NewMemory()
	q, err := query.New(store)
	require.NoError(t, err)

	metrics := monitoring.NewHTTPMetrics()
	tr := &MockTracker{}
	h, err := NewHandler(tr, q, logger.New(environments.Test), monitoring.NewBusinessMetricsRecorder(metrics))
	require.NoError(t, err)

	return &fixture{handler: h, store: store, tracker: tr, metrics: metrics}
}

func (f *fixture) feedCount(status string) float64 {
	return testutil.ToFloat64(f.metrics.BusinessOperations().WithLabelValues("confirmation_feed", "nats", status))
}

func TestNewHandler_RequiresCollaborators(t *testing.T) {
	log := logger.New(environments.Test)
	recorder := monitoring.NewBusinessMetricsRecorder(monitoring.NewHTTPMetrics())

	_, err := NewHandler(nil, &query.Query{}, log, recorder)
	assert.Error(t, err)
	_, err = NewHandler(&MockTracker{}, nil, log, recorder)
	assert.Error(t, err)
	_, err = NewHandler(&MockTracker{}, &query.Query{}, log, nil)
	assert.Error(t, err)
}

func TestHandleConfirmationEvent_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("observe by id", func(t *testing.T) {
		f := setup(t)
		f.tracker.On("Observe", mock.Anything, int64(7), 5).Return(tracker.OutcomeAdvanced, nil, nil).Once()

		err := f.handler.handleConfirmationEvent(ctx, []byte(`{"transactionId":7,"confirmations":5}`))
		require.NoError(t, err)
		f.tracker.AssertExpectations(t)
		assert.Equal(t, float64(1), f.feedCount("applied"))
	})

	t.Run("fail with default reason", func(t *testing.T) {
		f := setup(t)
		f.tracker.On("Fail", mock.Anything, int64(7), "reported by watcher").Return(tracker.OutcomeFailed, nil, nil).Once()

		err := f.handler.handleConfirmationEvent(ctx, []byte(`{"transactionId":7,"failed":true}`))
		require.NoError(t, err)
		f.tracker.AssertExpectations(t)
	})

	t.Run("observe by hash resolves the id case-insensitively", func(t *testing.T) {
		f := setup(t)
		rec, err := f.store.Create(ctx, &model.BridgeTransaction{
			WalletAddress:   "0xWallet",
			TransactionHash: "0xAbC",
			FromNetwork:     model.NetworkApechain,
			ToNetwork:       model.NetworkEthereum,
			Asset:           model.AssetAPE,
			Amount:          "3",
			Fee:             "1.0",
		})
		require.NoError(t, err)
		f.tracker.On("Observe", mock.Anything, rec.ID, 20).Return(tracker.OutcomeCompleted, nil, nil).Once()

		err = f.handler.handleConfirmationEvent(ctx, []byte(`{"transactionHash":"0xabc","confirmations":20}`))
		require.NoError(t, err)
		f.tracker.AssertExpectations(t)
	})

	t.Run("tracker error is surfaced", func(t *testing.T) {
		f := setup(t)
		f.tracker.On("Observe", mock.Anything, int64(7), 1).Return(tracker.OutcomeNoop, nil, errors.New("db down")).Once()

		err := f.handler.handleConfirmationEvent(ctx, []byte(`{"transactionId":7,"confirmations":1}`))
		assert.ErrorContains(t, err, "db down")
		assert.Equal(t, float64(1), f.feedCount("error"))
	})
}

func TestHandleConfirmationEvent_Drops(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus string
	}{
		{name: "not json", payload: `confirmations=5`, wantStatus: "malformed"},
		{name: "no target", payload: `{"confirmations":5}`, wantStatus: "malformed"},
		{name: "no confirmations", payload: `{"transactionId":7}`, wantStatus: "malformed"},
		{name: "negative confirmations", payload: `{"transactionId":7,"confirmations":-2}`, wantStatus: "malformed"},
		{name: "unknown hash", payload: `{"transactionHash":"0xmissing","confirmations":2}`, wantStatus: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			err := f.handler.handleConfirmationEvent(context.Background(), []byte(tt.payload))
			assert.NoError(t, err)
			assert.Equal(t, float64(1), f.feedCount(tt.wantStatus))
			f.tracker.AssertNotCalled(t, "Observe", mock.Anything, mock.Anything, mock.Anything)
			f.tracker.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandleConfirmationEvent_UnknownID(t *testing.T) {
	f := setup(t)
	f.tracker.On("Observe", mock.Anything, int64(99), 3).
		Return(tracker.OutcomeNoop, nil, model.NewNotFoundError("bridge transaction 99 not found")).Once()

	err := f.handler.handleConfirmationEvent(context.Background(), []byte(`{"transactionId":99,"confirmations":3}`))
	assert.NoError(t, err)
	assert.Equal(t, float64(1), f.feedCount("unknown"))
}
