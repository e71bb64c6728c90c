package model

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// SettlementModel represents the settlements table in the database. The
// store enforces uniqueness on (worker_id, period_start, period_end); the
// assigned transaction ids live in uuid[] columns.
type SettlementModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WorkerID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_settlements_worker_period"`
	PeriodStart      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_settlements_worker_period"`
	PeriodEnd        time.Time       `gorm:"type:date;not null;uniqueIndex:idx_settlements_worker_period"`
	TotalEarnings    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalSystemFee   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransactionCount int             `gorm:"not null;default:0"`
	CommissionIDs    pq.StringArray  `gorm:"type:uuid[]"`
	ErrandIDs        pq.StringArray  `gorm:"type:uuid[]"`
	Status           string          `gorm:"type:varchar(20);not null;index;default:'pending'"`
	PaidAt           sql.NullTime    `gorm:"type:timestamptz"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the SettlementModel.
func (SettlementModel) TableName() string {
	return "settlements"
}

// ToEntity converts a SettlementModel to a domain Settlement entity.
func (m *SettlementModel) ToEntity() *entity.Settlement {
	var paidAt *time.Time
	if m.PaidAt.Valid {
		paidAt = &m.PaidAt.Time
	}

	return &entity.Settlement{
		ID:               m.ID,
		WorkerID:         m.WorkerID,
		PeriodStart:      dateOnlyUTC(m.PeriodStart),
		PeriodEnd:        dateOnlyUTC(m.PeriodEnd),
		TotalEarnings:    m.TotalEarnings,
		TotalSystemFee:   m.TotalSystemFee,
		TransactionCount: m.TransactionCount,
		CommissionIDs:    parseIDArray(m.CommissionIDs),
		ErrandIDs:        parseIDArray(m.ErrandIDs),
		Status:           entity.SettlementStatus(m.Status),
		PaidAt:           paidAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// SettlementFromEntity creates a SettlementModel from a domain Settlement entity.
func SettlementFromEntity(settlement *entity.Settlement) *SettlementModel {
	var paidAt sql.NullTime
	if settlement.PaidAt != nil {
		paidAt = sql.NullTime{Time: *settlement.PaidAt, Valid: true}
	}

	return &SettlementModel{
		ID:               settlement.ID,
		WorkerID:         settlement.WorkerID,
		PeriodStart:      settlement.PeriodStart,
		PeriodEnd:        settlement.PeriodEnd,
		TotalEarnings:    settlement.TotalEarnings,
		TotalSystemFee:   settlement.TotalSystemFee,
		TransactionCount: settlement.TransactionCount,
		CommissionIDs:    formatIDArray(settlement.CommissionIDs),
		ErrandIDs:        formatIDArray(settlement.ErrandIDs),
		Status:           string(settlement.Status),
		PaidAt:           paidAt,
		CreatedAt:        settlement.CreatedAt,
		UpdatedAt:        settlement.UpdatedAt,
	}
}

func parseIDArray(raw pq.StringArray) []uuid.UUID {
	if len(raw) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			slog.Warn("skipping malformed transaction id in settlement row", "value", s)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func formatIDArray(ids []uuid.UUID) pq.StringArray {
	raw := make(pq.StringArray, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	return raw
}

func dateOnlyUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
