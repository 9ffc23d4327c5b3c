package nats

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/tracker"
)

// ConfirmationEvent is what a chain watcher publishes for one bridge transaction.
// The record is addressed by id, or by source transaction hash when id is zero.
// Failed events carry no confirmation count.
type ConfirmationEvent struct {
	TransactionID   int64  `json:"transactionId"`
	TransactionHash string `json:"transactionHash"`
	Confirmations   *int   `json:"confirmations,omitempty"`
	Failed          bool   `json:"failed,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

func (e ConfirmationEvent) validate() error {
	if e.TransactionID <= 0 && strings.TrimSpace(e.TransactionHash) == "" {
		return model.NewValidationError("transactionId", "transactionId or transactionHash is required")
	}
	if !e.Failed {
		if e.Confirmations == nil {
			return model.NewValidationError("confirmations", "confirmations is required unless failed is set")
		}
		if *e.Confirmations < 0 {
			return model.NewValidationError("confirmations", "confirmations must not be negative")
		}
	}
	return nil
}

// handleConfirmationEvent applies one watcher event. Malformed payloads and
// events for unknown records are dropped: redelivery would not fix them.
func (h *Handler) handleConfirmationEvent(ctx context.Context, data []byte) error {
	var event ConfirmationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.recorder.RecordFeedMessage("malformed")
		h.logger.Warn("[handleConfirmationEvent][Unmarshal] dropping message", map[string]string{
			"error": err.Error(),
		})
		return nil
	}
	if err := event.validate(); err != nil {
		h.recorder.RecordFeedMessage("malformed")
		h.logger.Warn("[handleConfirmationEvent][validate] dropping message", map[string]string{
			"error": err.Error(),
		})
		return nil
	}

	id, err := h.resolveID(ctx, event)
	if err != nil {
		if model.IsKind(err, model.ErrorKindNotFound) {
			h.recorder.RecordFeedMessage("unknown")
			h.logger.Warn("[handleConfirmationEvent][resolveID] unknown transaction", map[string]string{
				"id":      strconv.FormatInt(event.TransactionID, 10),
				"tx_hash": event.TransactionHash,
			})
			return nil
		}
		h.recorder.RecordFeedMessage("error")
		return err
	}

	var outcome tracker.Outcome
	if event.Failed {
		reason := event.Reason
		if reason == "" {
			reason = "reported by watcher"
		}
		outcome, _, err = h.tracker.Fail(ctx, id, reason)
	} else {
		outcome, _, err = h.tracker.Observe(ctx, id, *event.Confirmations)
	}
	if err != nil {
		if model.IsKind(err, model.ErrorKindNotFound) {
			h.recorder.RecordFeedMessage("unknown")
			return nil
		}
		h.recorder.RecordFeedMessage("error")
		return pkgerrors.Wrapf(err, "failed to apply confirmation event for transaction %d", id)
	}

	h.recorder.RecordFeedMessage("applied")
	h.logger.Debug("[handleConfirmationEvent] applied", map[string]string{
		"id":      strconv.FormatInt(id, 10),
		"outcome": string(outcome),
	})
	return nil
}

func (h *Handler) resolveID(ctx context.Context, event ConfirmationEvent) (int64, error) {
	if event.TransactionID > 0 {
		return event.TransactionID, nil
	}
	rec, err := h.query.GetByHash(ctx, event.TransactionHash)
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}
