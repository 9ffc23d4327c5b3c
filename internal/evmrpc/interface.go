package evmrpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

// ChainReader is the read-only view of an EVM chain needed to count confirmations.
type ChainReader interface {
	Network() model.Network
	BlockNumber(ctx context.Context) (uint64, error)
	// TransactionReceipt returns a nil receipt without error when the
	// transaction is unknown or not yet mined.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}
