package bridgetransaction

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	pgstore "github.com/dwarvesf/ape-bridge-backend/internal/store/postgres"
)

type store struct {
	db  *gorm.DB
	now func() time.Time
}

// New returns the gorm-backed store. Uniqueness of transaction_hash is also
// enforced by a LOWER(transaction_hash) unique index, see migrations/schema.
func New(db *gorm.DB) IStore {
	return &store{
		db:  db,
		now: time.Now,
	}
}

func (s *store) Create(ctx context.Context, record *model.BridgeTransaction) (*model.BridgeTransaction, error) {
	rec, err := prepareForCreate(record, s.now().UTC())
	if err != nil {
		return nil, err
	}

	err = pgstore.DoInTx(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.BridgeTransaction{}).
			Where("LOWER(transaction_hash) = ?", model.NormalizeKey(rec.TransactionHash)).
			Count(&count).Error; err != nil {
			return pkgerrors.Wrap(err, "failed to check duplicate hash")
		}
		if count > 0 {
			return duplicateHashError(rec.TransactionHash)
		}

		if err := tx.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicateHashError(rec.TransactionHash)
			}
			return pkgerrors.Wrap(err, "failed to insert bridge transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec.Clone(), nil
}

func (s *store) GetByID(ctx context.Context, id int64) (*model.BridgeTransaction, error) {
	var rec model.BridgeTransaction
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundByID(id)
		}
		return nil, pkgerrors.Wrap(err, "failed to get bridge transaction by id")
	}
	return &rec, nil
}

func (s *store) GetByHash(ctx context.Context, hash string) (*model.BridgeTransaction, error) {
	var rec model.BridgeTransaction
	err := s.db.WithContext(ctx).
		Where("LOWER(transaction_hash) = ?", model.NormalizeKey(hash)).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundByHash(hash)
		}
		return nil, pkgerrors.Wrap(err, "failed to get bridge transaction by hash")
	}
	return &rec, nil
}

func (s *store) ListByWallet(ctx context.Context, walletAddress string) ([]*model.BridgeTransaction, error) {
	var records []*model.BridgeTransaction
	err := s.db.WithContext(ctx).
		Where("LOWER(wallet_address) = ?", model.NormalizeKey(walletAddress)).
		Order("timestamp DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list bridge transactions by wallet")
	}
	return records, nil
}

func (s *store) UpdateStatus(ctx context.Context, id int64, status model.TransactionStatus, confirmations *int) (*model.BridgeTransaction, bool, error) {
	var (
		next    *model.BridgeTransaction
		changed bool
	)

	err := pgstore.DoInTx(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var current model.BridgeTransaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundByID(id)
			}
			return pkgerrors.Wrap(err, "failed to lock bridge transaction")
		}

		next, changed, err = model.ApplyTransition(&current, status, confirmations, s.now().UTC())
		if err != nil || !changed {
			return err
		}

		return tx.Model(&model.BridgeTransaction{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":        next.Status,
				"confirmations": next.Confirmations,
				"updated_at":    next.UpdatedAt,
			}).Error
	})
	if err != nil {
		return nil, false, err
	}

	return next, changed, nil
}

func (s *store) ListActive(ctx context.Context) ([]*model.BridgeTransaction, error) {
	var records []*model.BridgeTransaction
	err := s.db.WithContext(ctx).
		Where("status IN ?", []model.TransactionStatus{
			model.TransactionStatusPending,
			model.TransactionStatusConfirming,
		}).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list active bridge transactions")
	}
	return records, nil
}

func (s *store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.BridgeTransaction{}).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "failed to count bridge transactions")
	}
	return count, nil
}
