package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// WorkerModel represents the workers table in the database.
type WorkerModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(255);not null"`
	Email         string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role          string    `gorm:"type:varchar(20);not null;index"`
	AccountLocked bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the WorkerModel.
func (WorkerModel) TableName() string {
	return "workers"
}

// ToEntity converts a WorkerModel to a domain Worker entity.
func (m *WorkerModel) ToEntity() *entity.Worker {
	return &entity.Worker{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		Role:          entity.WorkerRole(m.Role),
		AccountLocked: m.AccountLocked,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
