package store

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Store struct {
	BridgeTransaction bridgetransaction.IStore
}

// New wires the gorm-backed stores.
func New(db *gorm.DB) *Store {
	return &Store{
		BridgeTransaction: bridgetransaction.New(db),
	}
}

// NewMemory wires process-local stores; every call returns an isolated instance.
func NewMemory(opts ...bridgetransaction.MemoryOption) *Store {
	return &Store{
		BridgeTransaction: bridgetransaction.NewMemory(opts...),
	}
}
