package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dwarvesf/ape-bridge-backend/internal/evmrpc"
	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
	"github.com/dwarvesf/ape-bridge-backend/internal/types/environments"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

type stubReader struct {
	network model.Network
	head    uint64
	err     error
}

func (s stubReader) Network() model.Network { return s.network }

func (s stubReader) BlockNumber(context.Context) (uint64, error) { return s.head, s.err }

func (s stubReader) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, nil
}

func serve(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthHandler_Basic(t *testing.T) {
	h := New(logger.New(environments.Test), nil, nil, nil, nil)

	w := serve(t, h.Basic)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[BasicHealthResponse](t, w).Message)
}

func TestHealthHandler_Database_MemoryStore(t *testing.T) {
	h := New(logger.New(environments.Test), nil, bridgetransaction.NewMemory(), nil, nil)

	w := serve(t, h.Database)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "memory", resp.Checks["database"].Metadata["driver"])
}

func TestHealthHandler_Database_NoStore(t *testing.T) {
	h := New(logger.New(environments.Test), nil, nil, nil, nil)

	w := serve(t, h.Database)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decode[HealthResponse](t, w).Status)
}

func TestHealthHandler_Database_Postgres(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantCode int
	}{
		{name: "ping ok", wantCode: http.StatusOK},
		{name: "ping fails", pingErr: errors.New("connection refused"), wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer sqlDB.Close()

			db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
			require.NoError(t, err)

			mock.ExpectPing().WillReturnError(tt.pingErr)

			h := New(logger.New(environments.Test), db, bridgetransaction.New(db), nil, nil)
			w := serve(t, h.Database)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHealthHandler_External(t *testing.T) {
	readers := map[model.Network]evmrpc.ChainReader{
		model.NetworkEthereum: stubReader{network: model.NetworkEthereum, head: 100},
	}
	h := New(logger.New(environments.Test), nil, nil, readers, nil)

	w := serve(t, h.External)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Checks["ethereum_rpc"].Status)

	readers[model.NetworkApechain] = stubReader{network: model.NetworkApechain, err: errors.New("rpc down")}
	w = serve(t, h.External)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp = decode[HealthResponse](t, w)
	assert.Equal(t, "rpc down", resp.Checks["apechain_rpc"].Error)
}

func TestHealthHandler_Jobs(t *testing.T) {
	log := logger.New(environments.Test)

	t.Run("no manager", func(t *testing.T) {
		w := serve(t, New(log, nil, nil, nil, nil).Jobs)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("healthy", func(t *testing.T) {
		jsm := monitoring.NewJobStatusManager(log, monitoring.NewBackgroundJobMetrics())
		jsm.StartJob("index_confirmations")
		jsm.CompleteJob("index_confirmations", nil, nil)

		w := serve(t, New(log, nil, nil, nil, jsm).Jobs)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", decode[JobsHealthResponse](t, w).Status)
	})

	t.Run("degraded then unhealthy", func(t *testing.T) {
		jsm := monitoring.NewJobStatusManager(log, monitoring.NewBackgroundJobMetrics())
		jsm.StartJob("index_confirmations")
		jsm.CompleteJob("index_confirmations", errors.New("rpc down"), nil)

		w := serve(t, New(log, nil, nil, nil, jsm).Jobs)
		assert.Equal(t, http.StatusPartialContent, w.Code)

		for i := 0; i < 2; i++ {
			jsm.StartJob("index_confirmations")
			jsm.CompleteJob("index_confirmations", errors.New("rpc down"), nil)
		}
		w = serve(t, New(log, nil, nil, nil, jsm).Jobs)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", decode[JobsHealthResponse](t, w).Status)
	})
}
