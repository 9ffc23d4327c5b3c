package bridgetransaction

import (
	"context"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

type IStore interface {
	// Create assigns id and timestamp and persists a new record
	Create(ctx context.Context, record *model.BridgeTransaction) (*model.BridgeTransaction, error)

	// GetByID returns a not_found error when the id is unknown
	GetByID(ctx context.Context, id int64) (*model.BridgeTransaction, error)

	// GetByHash matches the source-chain hash case-insensitively
	GetByHash(ctx context.Context, hash string) (*model.BridgeTransaction, error)

	// ListByWallet returns records for the wallet, newest first
	ListByWallet(ctx context.Context, walletAddress string) ([]*model.BridgeTransaction, error)

	// UpdateStatus is an atomic compare-and-set; changed is false for idempotent replays
	UpdateStatus(ctx context.Context, id int64, status model.TransactionStatus, confirmations *int) (record *model.BridgeTransaction, changed bool, err error)

	// ListActive returns every non-terminal record, oldest first
	ListActive(ctx context.Context) ([]*model.BridgeTransaction, error)

	Count(ctx context.Context) (int64, error)
}
