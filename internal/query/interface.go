package query

import (
	"context"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

type IQuery interface {
	GetByID(ctx context.Context, id int64) (*model.BridgeTransaction, error)
	GetByHash(ctx context.Context, hash string) (*model.BridgeTransaction, error)
	ListByWallet(ctx context.Context, walletAddress string) ([]*model.BridgeTransaction, error)
}
