package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// CommissionModel represents the commissions table in the database.
// InvoiceTotal is the final accepted invoice amount.
type CommissionModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WorkerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CallerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title        string          `gorm:"type:varchar(255);not null"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	InvoiceTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CompletedAt  sql.NullTime    `gorm:"type:timestamptz;index"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the CommissionModel.
func (CommissionModel) TableName() string {
	return "commissions"
}

// ToEntity converts a CommissionModel to a domain Commission entity.
func (m *CommissionModel) ToEntity() *entity.Commission {
	var completedAt *time.Time
	if m.CompletedAt.Valid {
		completedAt = &m.CompletedAt.Time
	}

	return &entity.Commission{
		ID:           m.ID,
		WorkerID:     m.WorkerID,
		CallerID:     m.CallerID,
		Title:        m.Title,
		Status:       entity.TransactionStatus(m.Status),
		InvoiceTotal: m.InvoiceTotal,
		CompletedAt:  completedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
