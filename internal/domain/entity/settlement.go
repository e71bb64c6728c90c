package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus represents the payout state of a settlement period.
// Paid is terminal; the pending/overdue flip is owned by a scheduled
// database procedure, not by this engine.
type SettlementStatus string

const (
	SettlementStatusPending SettlementStatus = "pending"
	SettlementStatusPaid    SettlementStatus = "paid"
	SettlementStatusOverdue SettlementStatus = "overdue"
)

// Settlement aggregates a worker's completed transactions over a bounded
// earning period. ID is uuid.Nil until the row has been persisted; callers
// must treat an unpersisted settlement as non-actionable.
type Settlement struct {
	ID                uuid.UUID
	WorkerID          uuid.UUID
	PeriodStart       time.Time // UTC calendar date, inclusive
	PeriodEnd         time.Time // UTC calendar date, inclusive
	TotalEarnings     decimal.Decimal
	TotalSystemFee    decimal.Decimal
	TransactionCount  int
	CommissionIDs     []uuid.UUID
	ErrandIDs         []uuid.UUID
	Status            SettlementStatus
	PaidAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive reports whether the settlement is still collecting or awaiting
// payout. At most one active settlement may exist per worker.
func (s *Settlement) IsActive() bool {
	return s.Status == SettlementStatusPending || s.Status == SettlementStatusOverdue
}

// IsEmpty reports whether the settlement carries no transactions and no
// earnings. Empty rows must not exist in the store.
func (s *Settlement) IsEmpty() bool {
	return s.TransactionCount == 0 && s.TotalEarnings.IsZero()
}

// ContainsDate reports whether the given date falls within the inclusive
// period bounds.
func (s *Settlement) ContainsDate(date time.Time) bool {
	return !date.Before(s.PeriodStart) && !date.After(s.PeriodEnd)
}

// HasTransaction reports whether the transaction id is already assigned to
// this settlement.
func (s *Settlement) HasTransaction(id uuid.UUID) bool {
	for _, cid := range s.CommissionIDs {
		if cid == id {
			return true
		}
	}
	for _, eid := range s.ErrandIDs {
		if eid == id {
			return true
		}
	}
	return false
}
