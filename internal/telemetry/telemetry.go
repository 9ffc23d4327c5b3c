package telemetry

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dwarvesf/ape-bridge-backend/internal/evmrpc"
	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
	"github.com/dwarvesf/ape-bridge-backend/internal/tracker"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

const (
	FailureReasonReverted = "reverted"
	FailureReasonReorged  = "reorged"
)

type Telemetry struct {
	store      bridgetransaction.IStore
	tracker    tracker.ITracker
	readers    map[model.Network]evmrpc.ChainReader
	logger     *logger.Logger
	recorder   *monitoring.BusinessMetricsRecorder
	jobMetrics *monitoring.BackgroundJobMetrics

	indexConfirmationsMutex sync.Mutex
}

func New(
	store bridgetransaction.IStore,
	tracker tracker.ITracker,
	readers map[model.Network]evmrpc.ChainReader,
	logger *logger.Logger,
	recorder *monitoring.BusinessMetricsRecorder,
	jobMetrics *monitoring.BackgroundJobMetrics,
) *Telemetry {
	return &Telemetry{
		store:      store,
		tracker:    tracker,
		readers:    readers,
		logger:     logger.With(map[string]string{"component": "telemetry"}),
		recorder:   recorder,
		jobMetrics: jobMetrics,
	}
}

func (t *Telemetry) IndexConfirmations(ctx context.Context) error {
	// Prevent concurrent executions
	if !t.indexConfirmationsMutex.TryLock() {
		t.logger.Info("[IndexConfirmations] previous run still in progress, skipping")
		return nil
	}
	defer t.indexConfirmationsMutex.Unlock()

	active, err := t.store.ListActive(ctx)
	if err != nil {
		t.logger.Error("[IndexConfirmations][ListActive]", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	byNetwork := make(map[model.Network][]*model.BridgeTransaction)
	for _, rec := range active {
		byNetwork[rec.FromNetwork] = append(byNetwork[rec.FromNetwork], rec)
	}

	var errs []error
	for network, reader := range t.readers {
		records := byNetwork[network]
		t.jobMetrics.SetActiveTransactions(string(network), len(records))
		if len(records) == 0 {
			continue
		}

		start := time.Now()
		failed, err := t.indexNetwork(ctx, reader, records)
		status := "success"
		if err != nil || failed > 0 {
			status = "error"
		}
		t.recorder.RecordConfirmationIndexing(string(network), status, time.Since(start).Seconds())

		if err != nil {
			errs = append(errs, err)
			continue
		}
		if failed > 0 {
			errs = append(errs, fmt.Errorf("%s: %d of %d records failed to index", network, failed, len(records)))
		}
	}

	return errors.Join(errs...)
}

// indexNetwork reads the chain head once and then every record's receipt.
// A failing record is logged and counted without stopping the pass.
func (t *Telemetry) indexNetwork(ctx context.Context, reader evmrpc.ChainReader, records []*model.BridgeTransaction) (int, error) {
	head, err := reader.BlockNumber(ctx)
	if err != nil {
		t.logger.Error("[IndexConfirmations][BlockNumber]", map[string]string{
			"network": string(reader.Network()),
			"error":   err.Error(),
		})
		return 0, err
	}

	failed := 0
	for _, rec := range records {
		if ctx.Err() != nil {
			return failed, ctx.Err()
		}
		if err := t.indexRecord(ctx, reader, head, rec); err != nil {
			failed++
			t.logger.Error("[IndexConfirmations][indexRecord]", map[string]string{
				"id":      strconv.FormatInt(rec.ID, 10),
				"tx_hash": rec.TransactionHash,
				"error":   err.Error(),
			})
		}
	}

	return failed, nil
}

func (t *Telemetry) indexRecord(ctx context.Context, reader evmrpc.ChainReader, head uint64, rec *model.BridgeTransaction) error {
	if !isTxHash(rec.TransactionHash) {
		t.logger.Debug("[IndexConfirmations] not an evm transaction hash, skipping", map[string]string{
			"id":      strconv.FormatInt(rec.ID, 10),
			"tx_hash": rec.TransactionHash,
		})
		return nil
	}

	receipt, err := reader.TransactionReceipt(ctx, common.HexToHash(rec.TransactionHash))
	if err != nil {
		return err
	}

	if receipt == nil {
		// a receipt that disappears after being counted was reorganised out
		if rec.Confirmations > 0 {
			_, _, err = t.tracker.Fail(ctx, rec.ID, FailureReasonReorged)
			return err
		}
		return nil
	}

	if receipt.Status == types.ReceiptStatusFailed {
		_, _, err = t.tracker.Fail(ctx, rec.ID, FailureReasonReverted)
		return err
	}

	if receipt.BlockNumber == nil || !receipt.BlockNumber.IsUint64() || receipt.BlockNumber.Uint64() > head {
		return nil
	}

	confirmations := int(head - receipt.BlockNumber.Uint64() + 1)
	_, _, err = t.tracker.Observe(ctx, rec.ID, confirmations)
	return err
}

func (t *Telemetry) SweepStalled(ctx context.Context) error {
	stalled, err := t.tracker.SweepStalled(ctx, time.Now())
	if err != nil {
		t.logger.Error("[SweepStalled][tracker.SweepStalled]", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	if len(stalled) > 0 {
		t.logger.Info("[SweepStalled] sweep finished", map[string]string{
			"stalled": strconv.Itoa(len(stalled)),
		})
	}
	return nil
}

func isTxHash(hash string) bool {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hash)), "0x")
	if len(raw) != 2*common.HashLength {
		return false
	}
	_, err := hex.DecodeString(raw)
	return err == nil
}
