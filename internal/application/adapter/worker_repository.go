package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// WorkerRepository defines read access to BuddyRunner accounts.
type WorkerRepository interface {
	// ListRunners retrieves all worker accounts with the BuddyRunner role.
	ListRunners(ctx context.Context) ([]*entity.Worker, error)

	// GetByID retrieves a worker account by id.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Worker, error)
}
