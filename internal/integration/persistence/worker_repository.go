package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
	"github.com/gobuddy/backend/internal/integration/persistence/model"
)

// workerRepository implements the adapter.WorkerRepository interface.
type workerRepository struct {
	db *gorm.DB
}

// NewWorkerRepository creates a new worker repository instance.
func NewWorkerRepository(db *gorm.DB) adapter.WorkerRepository {
	return &workerRepository{
		db: db,
	}
}

// ListRunners retrieves all worker accounts with the BuddyRunner role.
func (r *workerRepository) ListRunners(ctx context.Context) ([]*entity.Worker, error) {
	var models []model.WorkerModel
	result := r.db.WithContext(ctx).
		Where("role = ?", string(entity.RoleBuddyRunner)).
		Order("name ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	workers := make([]*entity.Worker, len(models))
	for i, m := range models {
		workers[i] = m.ToEntity()
	}
	return workers, nil
}

// GetByID retrieves a worker account by id.
func (r *workerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	var workerModel model.WorkerModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&workerModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrUserNotFound
		}
		return nil, result.Error
	}
	return workerModel.ToEntity(), nil
}
