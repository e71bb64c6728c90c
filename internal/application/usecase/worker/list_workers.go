// Package worker contains worker roster use cases for the admin panel.
package worker

import (
	"context"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
)

// ListWorkersOutput represents the BuddyRunner roster.
type ListWorkersOutput struct {
	Workers []*entity.Worker
}

// ListWorkersUseCase lists all BuddyRunner accounts for the settlements view.
type ListWorkersUseCase struct {
	workerRepo adapter.WorkerRepository
}

// NewListWorkersUseCase creates a new ListWorkersUseCase instance.
func NewListWorkersUseCase(workerRepo adapter.WorkerRepository) *ListWorkersUseCase {
	return &ListWorkersUseCase{workerRepo: workerRepo}
}

// Execute retrieves the worker roster.
func (uc *ListWorkersUseCase) Execute(ctx context.Context) (*ListWorkersOutput, error) {
	workers, err := uc.workerRepo.ListRunners(ctx)
	if err != nil {
		return nil, err
	}
	return &ListWorkersOutput{Workers: workers}, nil
}
