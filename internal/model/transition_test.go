package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestApplyTransition(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name          string
		current       BridgeTransaction
		status        TransactionStatus
		confirmations *int
		wantStatus    TransactionStatus
		wantConfs     int
		wantChanged   bool
		wantKind      ErrorKind
		wantReason    string
	}{
		{
			name:          "pending to confirming",
			current:       BridgeTransaction{ID: 1, Status: TransactionStatusPending},
			status:        TransactionStatusConfirming,
			confirmations: intPtr(3),
			wantStatus:    TransactionStatusConfirming,
			wantConfs:     3,
			wantChanged:   true,
		},
		{
			name:        "status only keeps confirmations",
			current:     BridgeTransaction{ID: 1, Status: TransactionStatusConfirming, Confirmations: 4},
			status:      TransactionStatusFailed,
			wantStatus:  TransactionStatusFailed,
			wantConfs:   4,
			wantChanged: true,
		},
		{
			name:          "same values is a replay",
			current:       BridgeTransaction{ID: 1, Status: TransactionStatusConfirming, Confirmations: 4},
			status:        TransactionStatusConfirming,
			confirmations: intPtr(4),
			wantStatus:    TransactionStatusConfirming,
			wantConfs:     4,
		},
		{
			name:          "confirmations regression",
			current:       BridgeTransaction{ID: 1, Status: TransactionStatusConfirming, Confirmations: 9},
			status:        TransactionStatusConfirming,
			confirmations: intPtr(5),
			wantKind:      ErrorKindInvalidTransition,
			wantReason:    TransitionReasonRegression,
		},
		{
			name:       "status regression",
			current:    BridgeTransaction{ID: 1, Status: TransactionStatusConfirming, Confirmations: 2},
			status:     TransactionStatusPending,
			wantKind:   ErrorKindInvalidTransition,
			wantReason: TransitionReasonRegression,
		},
		{
			name:       "terminal overwrite",
			current:    BridgeTransaction{ID: 1, Status: TransactionStatusCompleted, Confirmations: 15},
			status:     TransactionStatusFailed,
			wantKind:   ErrorKindInvalidTransition,
			wantReason: TransitionReasonTerminal,
		},
		{
			name:          "terminal replay ignores confirmations",
			current:       BridgeTransaction{ID: 1, Status: TransactionStatusCompleted, Confirmations: 15},
			status:        TransactionStatusCompleted,
			confirmations: intPtr(40),
			wantStatus:    TransactionStatusCompleted,
			wantConfs:     15,
		},
		{
			name:     "unknown status",
			current:  BridgeTransaction{ID: 1, Status: TransactionStatusPending},
			status:   "settled",
			wantKind: ErrorKindValidation,
		},
		{
			name:          "negative confirmations",
			current:       BridgeTransaction{ID: 1, Status: TransactionStatusPending},
			status:        TransactionStatusConfirming,
			confirmations: intPtr(-1),
			wantKind:      ErrorKindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := tt.current
			next, changed, err := ApplyTransition(&current, tt.status, tt.confirmations, now)

			if tt.wantKind != "" {
				require.Error(t, err)
				be, ok := AsBridgeError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantKind, be.Kind)
				assert.Equal(t, tt.wantReason, be.Reason)
				assert.Equal(t, tt.current, current, "current must not be mutated")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantStatus, next.Status)
			assert.Equal(t, tt.wantConfs, next.Confirmations)
			if changed {
				assert.Equal(t, now, next.UpdatedAt)
			}
			assert.Equal(t, tt.current, current, "current must not be mutated")
		})
	}
}

func TestTypeForRoute(t *testing.T) {
	assert.Equal(t, TransactionTypeDeposit, TypeForRoute(NetworkEthereum))
	assert.Equal(t, TransactionTypeWithdrawal, TypeForRoute(NetworkApechain))
}

func TestErrorHelpers(t *testing.T) {
	regression := NewInvalidTransitionError(TransitionReasonRegression, "stale")
	terminal := NewInvalidTransitionError(TransitionReasonTerminal, "done")

	assert.True(t, IsRegression(regression))
	assert.False(t, IsRegression(terminal))
	assert.True(t, IsTerminalOverwrite(terminal))
	assert.True(t, IsKind(NewNotFoundError("x"), ErrorKindNotFound))
	assert.False(t, IsKind(assert.AnError, ErrorKindNotFound))
	assert.Equal(t, "validation: amount: must be positive", NewValidationError("amount", "must be positive").Error())
}
