// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// SettlementRepository defines the interface for settlement persistence
// operations. The store enforces a uniqueness constraint on
// (worker_id, period_start, period_end); all financial mutation is mediated
// through status-conditioned writes.
type SettlementRepository interface {
	// ListAll retrieves every settlement row, newest period first.
	ListAll(ctx context.Context) ([]*entity.Settlement, error)

	// ListByWorker retrieves a worker's settlement rows, newest period first.
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*entity.Settlement, error)

	// GetByID retrieves a settlement by its row id.
	// Returns domain ErrSettlementNotFound when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Settlement, error)

	// FindByPeriod retrieves the settlement for an exact
	// (workerID, periodStart, periodEnd) key.
	// Returns domain ErrSettlementNotFound when missing.
	FindByPeriod(ctx context.Context, workerID uuid.UUID, periodStart, periodEnd time.Time) (*entity.Settlement, error)

	// Create inserts a new settlement row.
	// Returns domain ErrSettlementExists when a row for the same worker and
	// period already exists (concurrent writer won the insert).
	Create(ctx context.Context, settlement *entity.Settlement) error

	// UpdateFinancials overwrites earnings, fees, transaction count, id lists
	// and period bounds of a row, conditioned on the row still being pending.
	// Non-pending rows are left untouched and the update reports no rows
	// affected via the returned bool.
	UpdateFinancials(ctx context.Context, settlement *entity.Settlement) (bool, error)

	// MarkPaidIfActive atomically transitions a row to paid with the given
	// timestamp, conditioned on its current status being pending or overdue.
	// Returns true when exactly one row was updated.
	MarkPaidIfActive(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)

	// Delete removes a settlement row by id.
	Delete(ctx context.Context, id uuid.UUID) error
}
