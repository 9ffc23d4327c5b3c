package model

import (
	"fmt"
	"time"
)

// ApplyTransition computes the record that results from setting status (and
// optionally confirmations) on current. It never mutates current. changed is
// false when the update is an idempotent replay of the current state.
//
// Both store implementations run this under their per-record exclusion, so the
// check and the write form a single compare-and-set.
func ApplyTransition(current *BridgeTransaction, status TransactionStatus, confirmations *int, now time.Time) (*BridgeTransaction, bool, error) {
	if !status.Valid() {
		return nil, false, NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	if confirmations != nil && *confirmations < 0 {
		return nil, false, NewValidationError("confirmations", "must be greater than or equal to 0")
	}

	if current.Status.IsTerminal() {
		if status != current.Status {
			return nil, false, NewInvalidTransitionError(TransitionReasonTerminal,
				fmt.Sprintf("transaction %d is already %s", current.ID, current.Status))
		}
		return current.Clone(), false, nil
	}

	if confirmations != nil && *confirmations < current.Confirmations {
		return nil, false, NewInvalidTransitionError(TransitionReasonRegression,
			fmt.Sprintf("confirmations cannot decrease from %d to %d", current.Confirmations, *confirmations))
	}
	if status.rank() < current.Status.rank() {
		return nil, false, NewInvalidTransitionError(TransitionReasonRegression,
			fmt.Sprintf("status cannot move from %s back to %s", current.Status, status))
	}

	next := current.Clone()
	next.Status = status
	if confirmations != nil {
		next.Confirmations = *confirmations
	}

	changed := next.Status != current.Status || next.Confirmations != current.Confirmations
	if changed {
		next.UpdatedAt = now
	}
	return next, changed, nil
}
