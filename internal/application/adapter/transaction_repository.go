package adapter

import (
	"context"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// TransactionRepository defines read access to the two transaction kinds
// consumed by the settlement engine. The engine never mutates transactions.
type TransactionRepository interface {
	// ListCompletedErrands retrieves all completed errands with their line
	// items, oldest first.
	ListCompletedErrands(ctx context.Context) ([]*entity.Errand, error)

	// ListCompletedCommissions retrieves all completed commissions with an
	// accepted invoice, oldest first.
	ListCompletedCommissions(ctx context.Context) ([]*entity.Commission, error)
}
