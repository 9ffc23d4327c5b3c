package bridgetransaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

// prepareForCreate checks the store-level invariants and stamps the
// store-owned fields on a copy of the incoming record.
func prepareForCreate(in *model.BridgeTransaction, now time.Time) (*model.BridgeTransaction, error) {
	if in == nil {
		return nil, model.NewValidationError("record", "record is required")
	}
	if in.FromNetwork == in.ToNetwork {
		return nil, model.NewValidationError("toNetwork", "source and destination networks must differ")
	}
	if strings.TrimSpace(in.TransactionHash) == "" {
		return nil, model.NewValidationError("transactionHash", "transaction hash is required")
	}
	if in.Confirmations < 0 {
		return nil, model.NewValidationError("confirmations", "must be greater than or equal to 0")
	}

	rec := in.Clone()
	rec.ID = 0
	rec.TransactionHash = strings.TrimSpace(rec.TransactionHash)
	if rec.Status == "" {
		rec.Status = model.TransactionStatusPending
	}
	if !rec.Status.Valid() {
		return nil, model.NewValidationError("status", fmt.Sprintf("unknown status %q", rec.Status))
	}
	if rec.RequiredConfirmations <= 0 {
		rec.RequiredConfirmations = model.DefaultRequiredConfirmations
	}
	rec.Timestamp = now
	rec.UpdatedAt = now

	return rec, nil
}

func duplicateHashError(hash string) error {
	return model.NewConflictError(fmt.Sprintf("transaction with hash %s already exists", hash))
}

func notFoundByID(id int64) error {
	return model.NewNotFoundError(fmt.Sprintf("transaction %d not found", id))
}

func notFoundByHash(hash string) error {
	return model.NewNotFoundError(fmt.Sprintf("transaction with hash %s not found", hash))
}
