// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
	"github.com/gobuddy/backend/internal/integration/persistence/model"
)

// settlementRepository implements the adapter.SettlementRepository interface.
type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository creates a new settlement repository instance.
func NewSettlementRepository(db *gorm.DB) adapter.SettlementRepository {
	return &settlementRepository{
		db: db,
	}
}

// ListAll retrieves every settlement row, newest period first.
func (r *settlementRepository) ListAll(ctx context.Context) ([]*entity.Settlement, error) {
	var models []model.SettlementModel
	result := r.db.WithContext(ctx).
		Order("period_start DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntities(models), nil
}

// ListByWorker retrieves a worker's settlement rows, newest period first.
func (r *settlementRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*entity.Settlement, error) {
	var models []model.SettlementModel
	result := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("period_start DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntities(models), nil
}

// GetByID retrieves a settlement by its row id.
func (r *settlementRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Settlement, error) {
	var settlementModel model.SettlementModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&settlementModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrSettlementNotFound
		}
		return nil, result.Error
	}
	return settlementModel.ToEntity(), nil
}

// FindByPeriod retrieves the settlement for an exact period key.
func (r *settlementRepository) FindByPeriod(ctx context.Context, workerID uuid.UUID, periodStart, periodEnd time.Time) (*entity.Settlement, error) {
	var settlementModel model.SettlementModel
	result := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Where("period_start = ?", periodStart).
		Where("period_end = ?", periodEnd).
		First(&settlementModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrSettlementNotFound
		}
		return nil, result.Error
	}
	return settlementModel.ToEntity(), nil
}

// Create inserts a new settlement row. A uniqueness conflict on the period
// key maps to the domain ErrSettlementExists so callers can adopt the
// concurrent writer's row.
func (r *settlementRepository) Create(ctx context.Context, settlement *entity.Settlement) error {
	settlementModel := model.SettlementFromEntity(settlement)
	now := time.Now().UTC()
	if settlementModel.CreatedAt.IsZero() {
		settlementModel.CreatedAt = now
	}
	settlementModel.UpdatedAt = now

	result := r.db.WithContext(ctx).Create(settlementModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domainerror.ErrSettlementExists
		}
		return result.Error
	}
	return nil
}

// UpdateFinancials overwrites the financial state of a row while it is still
// pending. A row that left pending reports false with no write.
func (r *settlementRepository) UpdateFinancials(ctx context.Context, settlement *entity.Settlement) (bool, error) {
	settlementModel := model.SettlementFromEntity(settlement)

	result := r.db.WithContext(ctx).
		Model(&model.SettlementModel{}).
		Where("id = ?", settlement.ID).
		Where("status = ?", string(entity.SettlementStatusPending)).
		Updates(map[string]interface{}{
			"period_start":      settlementModel.PeriodStart,
			"period_end":        settlementModel.PeriodEnd,
			"total_earnings":    settlementModel.TotalEarnings,
			"total_system_fee":  settlementModel.TotalSystemFee,
			"transaction_count": settlementModel.TransactionCount,
			"commission_ids":    settlementModel.CommissionIDs,
			"errand_ids":        settlementModel.ErrandIDs,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkPaidIfActive atomically flips a pending or overdue row to paid. The
// status predicate is what makes two racing payouts resolve to exactly one
// success.
func (r *settlementRepository) MarkPaidIfActive(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.SettlementModel{}).
		Where("id = ?", id).
		Where("status IN ?", []string{
			string(entity.SettlementStatusPending),
			string(entity.SettlementStatusOverdue),
		}).
		Updates(map[string]interface{}{
			"status":     string(entity.SettlementStatusPaid),
			"paid_at":    paidAt,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a settlement row by id.
func (r *settlementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.SettlementModel{})
	return result.Error
}

func toEntities(models []model.SettlementModel) []*entity.Settlement {
	settlements := make([]*entity.Settlement, len(models))
	for i, m := range models {
		settlements[i] = m.ToEntity()
	}
	return settlements
}
