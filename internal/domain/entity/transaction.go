package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind tags the two kinds of paid work that generate earnings.
type TransactionKind string

const (
	TransactionKindErrand     TransactionKind = "errand"
	TransactionKindCommission TransactionKind = "commission"
)

// TransactionStatus represents the lifecycle status of an errand or commission.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusAccepted  TransactionStatus = "accepted"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// ErrandItem is a single line item of an errand request. UnitPrice may be
// empty; in that case the per-category catalog price applies.
type ErrandItem struct {
	Name      string
	UnitPrice string // raw value as entered by the requester, may be malformed
	Quantity  string // raw value, may be malformed
}

// Errand represents an errand request fulfilled by a BuddyRunner.
type Errand struct {
	ID          uuid.UUID
	WorkerID    uuid.UUID
	CallerID    uuid.UUID
	Category    string
	Status      TransactionStatus
	AmountPrice decimal.Decimal
	Items       []ErrandItem
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Commission represents a commissioned job with an accepted invoice.
type Commission struct {
	ID           uuid.UUID
	WorkerID     uuid.UUID
	CallerID     uuid.UUID
	Title        string
	Status       TransactionStatus
	InvoiceTotal decimal.Decimal // final accepted invoice amount
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SettlementTransaction is the normalized projection of an errand or
// commission consumed by the period-assignment algorithm. The kind tag
// dispatches the fee formula used to compute SystemFee.
type SettlementTransaction struct {
	Kind        TransactionKind
	ID          uuid.UUID
	WorkerID    uuid.UUID
	CompletedAt time.Time
	Amount      decimal.Decimal
	SystemFee   decimal.Decimal
}

// Eligible reports whether the transaction qualifies for settlement
// assignment: completed with a positive derived amount.
func (t SettlementTransaction) Eligible() bool {
	return !t.CompletedAt.IsZero() && t.Amount.IsPositive()
}

// CompletedDate returns the completion timestamp truncated to a UTC calendar
// date. Period membership is decided at day granularity.
func (t SettlementTransaction) CompletedDate() time.Time {
	y, m, d := t.CompletedAt.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
