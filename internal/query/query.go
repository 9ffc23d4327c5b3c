package query

import (
	"context"
	"errors"
	"strings"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
)

// Query is a read-only facade over the record store. Nothing is cached, so a
// read always reflects the last committed transition.
type Query struct {
	store bridgetransaction.IStore
}

func New(store bridgetransaction.IStore) (*Query, error) {
	if store == nil {
		return nil, errors.New("query: store is required")
	}
	return &Query{store: store}, nil
}

func (q *Query) GetByID(ctx context.Context, id int64) (*model.BridgeTransaction, error) {
	if id <= 0 {
		return nil, model.NewValidationError("id", "id must be a positive integer")
	}
	return q.store.GetByID(ctx, id)
}

func (q *Query) GetByHash(ctx context.Context, hash string) (*model.BridgeTransaction, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, model.NewValidationError("hash", "transaction hash is required")
	}
	return q.store.GetByHash(ctx, hash)
}

// ListByWallet returns an empty, non-nil slice for wallets with no history.
func (q *Query) ListByWallet(ctx context.Context, walletAddress string) ([]*model.BridgeTransaction, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, model.NewValidationError("address", "wallet address is required")
	}

	records, err := q.store.ListByWallet(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*model.BridgeTransaction{}
	}
	return records, nil
}
