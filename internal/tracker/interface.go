package tracker

import (
	"context"
	"time"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

type Outcome string

const (
	OutcomeNoop      Outcome = "noop"
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

type ITracker interface {
	// Observe applies a confirmation count reported by a chain watcher
	Observe(ctx context.Context, id int64, confirmations int) (Outcome, *model.BridgeTransaction, error)

	// Fail moves a non-terminal record to failed
	Fail(ctx context.Context, id int64, reason string) (Outcome, *model.BridgeTransaction, error)

	// UpdateStatus is the explicit transition used by the HTTP API. Unlike
	// Observe it surfaces terminal and regression errors to the caller.
	UpdateStatus(ctx context.Context, id int64, status model.TransactionStatus, confirmations *int) (*model.BridgeTransaction, error)

	// SweepStalled reports active records idle longer than the stall threshold.
	// It never changes status.
	SweepStalled(ctx context.Context, now time.Time) ([]*model.BridgeTransaction, error)
}

// SettlementNotifier is told once about every record that reaches a terminal state.
type SettlementNotifier interface {
	NotifySettlement(ctx context.Context, record *model.BridgeTransaction) error
}

// StallHook receives each stalled record found by SweepStalled.
type StallHook func(ctx context.Context, record *model.BridgeTransaction, idle time.Duration)
