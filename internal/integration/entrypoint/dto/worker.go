package dto

import (
	"time"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// WorkerDTO represents a BuddyRunner account in API responses.
type WorkerDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	AccountLocked bool   `json:"account_locked"`
	CreatedAt     string `json:"created_at"`
}

// ListWorkersResponse represents the response for the worker roster endpoint.
type ListWorkersResponse struct {
	Workers []WorkerDTO `json:"workers"`
}

// ToWorkerDTO converts a worker entity to its API representation.
func ToWorkerDTO(w *entity.Worker) WorkerDTO {
	return WorkerDTO{
		ID:            w.ID.String(),
		Name:          w.Name,
		Email:         w.Email,
		Role:          string(w.Role),
		AccountLocked: w.AccountLocked,
		CreatedAt:     w.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToWorkerDTOs converts a slice of worker entities.
func ToWorkerDTOs(workers []*entity.Worker) []WorkerDTO {
	dtos := make([]WorkerDTO, len(workers))
	for i, w := range workers {
		dtos[i] = ToWorkerDTO(w)
	}
	return dtos
}
