package adapter

import (
	"context"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// SettlementCache defines the short-lived cache in front of the reconciled
// settlement list read by the admin dashboard. A cache miss or a cache error
// is never fatal; callers fall through to the store.
type SettlementCache interface {
	// GetList retrieves the cached reconciled list. The bool reports a hit.
	GetList(ctx context.Context) ([]*entity.Settlement, bool, error)

	// SetList stores the reconciled list with the configured TTL.
	SetList(ctx context.Context, settlements []*entity.Settlement) error

	// Invalidate drops the cached list after a mutation.
	Invalidate(ctx context.Context) error
}
