package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	"github.com/gobuddy/backend/internal/integration/persistence/model"
)

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// ListCompletedErrands retrieves all completed errands with their line items.
func (r *transactionRepository) ListCompletedErrands(ctx context.Context) ([]*entity.Errand, error) {
	var models []model.ErrandModel
	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", string(entity.TransactionStatusCompleted)).
		Order("completed_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	errands := make([]*entity.Errand, len(models))
	for i, m := range models {
		errands[i] = m.ToEntity()
	}
	return errands, nil
}

// ListCompletedCommissions retrieves all completed commissions.
func (r *transactionRepository) ListCompletedCommissions(ctx context.Context) ([]*entity.Commission, error) {
	var models []model.CommissionModel
	result := r.db.WithContext(ctx).
		Where("status = ?", string(entity.TransactionStatusCompleted)).
		Order("completed_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	commissions := make([]*entity.Commission, len(models))
	for i, m := range models {
		commissions[i] = m.ToEntity()
	}
	return commissions, nil
}
