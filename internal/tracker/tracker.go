package tracker

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

const DefaultStallThreshold = 30 * time.Minute

type Tracker struct {
	store          bridgetransaction.IStore
	notifier       SettlementNotifier
	logger         *logger.Logger
	recorder       *monitoring.BusinessMetricsRecorder
	stallThreshold time.Duration
	stallHook      StallHook
}

type Option func(*Tracker)

func WithStallThreshold(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.stallThreshold = d
		}
	}
}

func WithStallHook(hook StallHook) Option {
	return func(t *Tracker) {
		if hook != nil {
			t.stallHook = hook
		}
	}
}

func WithMetricsRecorder(recorder *monitoring.BusinessMetricsRecorder) Option {
	return func(t *Tracker) {
		if recorder != nil {
			t.recorder = recorder
		}
	}
}

func New(store bridgetransaction.IStore, notifier SettlementNotifier, logger *logger.Logger, opts ...Option) (*Tracker, error) {
	switch {
	case store == nil:
		return nil, errors.New("tracker: store is required")
	case notifier == nil:
		return nil, errors.New("tracker: settlement notifier is required")
	case logger == nil:
		return nil, errors.New("tracker: logger is required")
	}

	t := &Tracker{
		store:          store,
		notifier:       notifier,
		logger:         logger.With(map[string]string{"component": "tracker"}),
		recorder:       monitoring.NewBusinessMetricsRecorder(monitoring.NewHTTPMetrics()),
		stallThreshold: DefaultStallThreshold,
	}
	t.stallHook = t.reportStalled

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

func (t *Tracker) Observe(ctx context.Context, id int64, confirmations int) (Outcome, *model.BridgeTransaction, error) {
	if confirmations < 0 {
		return OutcomeNoop, nil, model.NewValidationError("confirmations", "confirmations must not be negative")
	}

	current, err := t.store.GetByID(ctx, id)
	if err != nil {
		return OutcomeNoop, nil, err
	}

	if current.IsTerminal() || confirmations <= current.Confirmations {
		t.record("observe", OutcomeNoop)
		return OutcomeNoop, current, nil
	}

	required := current.RequiredConfirmations
	if required <= 0 {
		required = model.DefaultRequiredConfirmations
	}

	status, outcome := model.TransactionStatusConfirming, OutcomeAdvanced
	if confirmations >= required {
		status, outcome = model.TransactionStatusCompleted, OutcomeCompleted
	}

	return t.transition(ctx, "observe", current, status, &confirmations, outcome)
}

func (t *Tracker) Fail(ctx context.Context, id int64, reason string) (Outcome, *model.BridgeTransaction, error) {
	current, err := t.store.GetByID(ctx, id)
	if err != nil {
		return OutcomeNoop, nil, err
	}

	if current.IsTerminal() {
		t.record("fail", OutcomeNoop)
		return OutcomeNoop, current, nil
	}

	t.logger.Info("[Fail] failing bridge transaction", map[string]string{
		"id":     strconv.FormatInt(id, 10),
		"reason": reason,
	})
	return t.transition(ctx, "fail", current, model.TransactionStatusFailed, nil, OutcomeFailed)
}

// transition commits the change through the store. Losing a race to another
// writer (a regression or a terminal overwrite) is reported as a noop.
func (t *Tracker) transition(
	ctx context.Context,
	operation string,
	current *model.BridgeTransaction,
	status model.TransactionStatus,
	confirmations *int,
	outcome Outcome,
) (Outcome, *model.BridgeTransaction, error) {
	next, changed, err := t.store.UpdateStatus(ctx, current.ID, status, confirmations)
	if err != nil {
		if model.IsRegression(err) || model.IsTerminalOverwrite(err) {
			t.logger.Debug("["+operation+"][UpdateStatus] lost race", map[string]string{
				"id":    strconv.FormatInt(current.ID, 10),
				"error": err.Error(),
			})
			t.record(operation, OutcomeNoop)
			return OutcomeNoop, current, nil
		}
		return OutcomeNoop, nil, err
	}

	if !changed {
		t.record(operation, OutcomeNoop)
		return OutcomeNoop, next, nil
	}

	if next.IsTerminal() {
		t.notify(ctx, next)
	}

	t.record(operation, outcome)
	return outcome, next, nil
}

func (t *Tracker) UpdateStatus(ctx context.Context, id int64, status model.TransactionStatus, confirmations *int) (*model.BridgeTransaction, error) {
	next, changed, err := t.store.UpdateStatus(ctx, id, status, confirmations)
	if err != nil {
		return nil, err
	}

	if changed && next.IsTerminal() {
		t.notify(ctx, next)
	}
	return next, nil
}

func (t *Tracker) SweepStalled(ctx context.Context, now time.Time) ([]*model.BridgeTransaction, error) {
	active, err := t.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var stalled []*model.BridgeTransaction
	for _, rec := range active {
		idle := now.Sub(rec.UpdatedAt)
		if idle <= t.stallThreshold {
			continue
		}
		stalled = append(stalled, rec)
		t.stallHook(ctx, rec, idle)
	}

	return stalled, nil
}

func (t *Tracker) reportStalled(_ context.Context, rec *model.BridgeTransaction, idle time.Duration) {
	t.recorder.RecordStalled(string(rec.FromNetwork))
	t.logger.Warn("[SweepStalled] bridge transaction stalled", map[string]string{
		"id":            strconv.FormatInt(rec.ID, 10),
		"tx_hash":       rec.TransactionHash,
		"status":        string(rec.Status),
		"confirmations": strconv.Itoa(rec.Confirmations),
		"idle":          idle.String(),
	})
}

// notify runs once per terminal transition. Delivery failures are logged only.
func (t *Tracker) notify(ctx context.Context, rec *model.BridgeTransaction) {
	if err := t.notifier.NotifySettlement(ctx, rec); err != nil {
		t.recorder.RecordSettlementNotification("error")
		t.logger.Error("[notify][NotifySettlement]", map[string]string{
			"id":     strconv.FormatInt(rec.ID, 10),
			"status": string(rec.Status),
			"error":  err.Error(),
		})
		return
	}
	t.recorder.RecordSettlementNotification("delivered")
}

func (t *Tracker) record(operation string, outcome Outcome) {
	t.recorder.RecordTrackerOutcome(operation, string(outcome))
}
