package model

import (
	"strings"
	"time"
)

type Network string

const (
	NetworkEthereum Network = "ethereum"
	NetworkApechain Network = "apechain"
)

func (n Network) Valid() bool {
	return n == NetworkEthereum || n == NetworkApechain
}

type Asset string

const (
	AssetETH Asset = "eth"
	AssetAPE Asset = "ape"
)

func (a Asset) Valid() bool {
	return a == AssetETH || a == AssetAPE
}

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// TypeForRoute labels transfers leaving ethereum as deposits and everything else as withdrawals.
func TypeForRoute(from Network) TransactionType {
	if from == NetworkEthereum {
		return TransactionTypeDeposit
	}
	return TransactionTypeWithdrawal
}

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusConfirming TransactionStatus = "confirming"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusConfirming, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// rank orders statuses along the lifecycle; both terminal states share the top rank.
func (s TransactionStatus) rank() int {
	switch s {
	case TransactionStatusPending:
		return 0
	case TransactionStatusConfirming:
		return 1
	default:
		return 2
	}
}

const DefaultRequiredConfirmations = 15

// BridgeTransaction is the audit record of one bridge transfer. Rows are never deleted.
type BridgeTransaction struct {
	ID                    int64             `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	WalletAddress         string            `json:"walletAddress" gorm:"column:wallet_address;type:varchar(255);not null;index"`
	TransactionHash       string            `json:"transactionHash" gorm:"column:transaction_hash;type:varchar(255);not null"`
	FromNetwork           Network           `json:"fromNetwork" gorm:"column:from_network;type:varchar(32);not null"`
	ToNetwork             Network           `json:"toNetwork" gorm:"column:to_network;type:varchar(32);not null"`
	Asset                 Asset             `json:"asset" gorm:"column:asset;type:varchar(16);not null"`
	Amount                string            `json:"amount" gorm:"column:amount;type:varchar(78);not null"`
	Fee                   string            `json:"fee" gorm:"column:fee;type:varchar(78);not null"`
	Status                TransactionStatus `json:"status" gorm:"column:status;type:varchar(16);not null;default:'pending'"`
	Confirmations         int               `json:"confirmations" gorm:"column:confirmations;not null;default:0"`
	RequiredConfirmations int               `json:"requiredConfirmations" gorm:"column:required_confirmations;not null;default:15"`
	Type                  TransactionType   `json:"type" gorm:"column:type;type:varchar(16);not null"`
	Timestamp             time.Time         `json:"timestamp" gorm:"column:timestamp;not null"`
	UpdatedAt             time.Time         `json:"updatedAt" gorm:"column:updated_at;not null"`
}

func (BridgeTransaction) TableName() string {
	return "bridge_transactions"
}

// Clone returns a detached copy.
func (t *BridgeTransaction) Clone() *BridgeTransaction {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (t *BridgeTransaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// NormalizeKey is the case-insensitive lookup key for hashes and wallet addresses.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
