package transaction

import (
	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

type IHandler interface {
	// Create accepts a new bridge transfer
	Create(c *gin.Context)

	// ListByWallet returns the wallet's transfers, newest first
	ListByWallet(c *gin.Context)

	GetByHash(c *gin.Context)
	GetByID(c *gin.Context)

	// UpdateStatus applies an explicit status transition
	UpdateStatus(c *gin.Context)
}

type CreateRequest struct {
	WalletAddress   string        `json:"walletAddress"`
	FromNetwork     model.Network `json:"fromNetwork"`
	ToNetwork       model.Network `json:"toNetwork"`
	Asset           model.Asset   `json:"asset"`
	Amount          string        `json:"amount"`
	TransactionHash string        `json:"transactionHash"`
}

type UpdateStatusRequest struct {
	Status        model.TransactionStatus `json:"status" validate:"required,oneof=pending confirming completed failed"`
	Confirmations *int                    `json:"confirmations,omitempty" validate:"omitempty,min=0"`
}
