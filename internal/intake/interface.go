package intake

import (
	"context"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

type IIntake interface {
	// Submit validates a bridge request and persists it as a pending record
	Submit(ctx context.Context, req SubmitRequest) (*model.BridgeTransaction, error)
}

type SubmitRequest struct {
	WalletAddress   string        `json:"walletAddress"`
	Asset           model.Asset   `json:"asset"`
	Amount          string        `json:"amount"`
	FromNetwork     model.Network `json:"fromNetwork"`
	ToNetwork       model.Network `json:"toNetwork"`
	TransactionHash string        `json:"transactionHash"`
}
