package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// ErrandModel represents the errands table in the database.
type ErrandModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WorkerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CallerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category    string          `gorm:"type:varchar(100);not null"`
	Status      string          `gorm:"type:varchar(20);not null;index"`
	AmountPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CompletedAt sql.NullTime    `gorm:"type:timestamptz;index"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`

	Items []ErrandItemModel `gorm:"foreignKey:ErrandID;references:ID"`
}

// TableName returns the table name for the ErrandModel.
func (ErrandModel) TableName() string {
	return "errands"
}

// ErrandItemModel represents the errand_items table in the database. Price
// and quantity are stored as entered by the requester; fee calculation
// tolerates malformed values.
type ErrandItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ErrandID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	UnitPrice string    `gorm:"type:varchar(50)"`
	Quantity  string    `gorm:"type:varchar(50)"`
}

// TableName returns the table name for the ErrandItemModel.
func (ErrandItemModel) TableName() string {
	return "errand_items"
}

// ToEntity converts an ErrandModel to a domain Errand entity.
func (m *ErrandModel) ToEntity() *entity.Errand {
	var completedAt *time.Time
	if m.CompletedAt.Valid {
		completedAt = &m.CompletedAt.Time
	}

	items := make([]entity.ErrandItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = entity.ErrandItem{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	return &entity.Errand{
		ID:          m.ID,
		WorkerID:    m.WorkerID,
		CallerID:    m.CallerID,
		Category:    m.Category,
		Status:      entity.TransactionStatus(m.Status),
		AmountPrice: m.AmountPrice,
		Items:       items,
		CompletedAt: completedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
