package settlement

import (
	"context"
	"log/slog"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
)

// ListSettlementsOutput represents the settlement dashboard listing.
type ListSettlementsOutput struct {
	Settlements []*entity.Settlement
	FromCache   bool
}

// ListSettlementsUseCase serves the reconciled settlement list, fronted by a
// short-lived cache so dashboard refreshes do not hammer the store.
type ListSettlementsUseCase struct {
	settlementRepo adapter.SettlementRepository
	cache          adapter.SettlementCache
}

// NewListSettlementsUseCase creates a new ListSettlementsUseCase instance.
func NewListSettlementsUseCase(settlementRepo adapter.SettlementRepository, cache adapter.SettlementCache) *ListSettlementsUseCase {
	return &ListSettlementsUseCase{
		settlementRepo: settlementRepo,
		cache:          cache,
	}
}

// Execute returns every settlement row, newest period first. Cache errors
// degrade to a store read.
func (uc *ListSettlementsUseCase) Execute(ctx context.Context) (*ListSettlementsOutput, error) {
	if uc.cache != nil {
		cached, hit, err := uc.cache.GetList(ctx)
		if err != nil {
			slog.Warn("settlement cache read failed", "error", err)
		} else if hit {
			return &ListSettlementsOutput{Settlements: cached, FromCache: true}, nil
		}
	}

	settlements, err := uc.settlementRepo.ListAll(ctx)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to load settlements", err)
	}

	if uc.cache != nil {
		if err := uc.cache.SetList(ctx, settlements); err != nil {
			slog.Warn("settlement cache write failed", "error", err)
		}
	}

	return &ListSettlementsOutput{Settlements: settlements}, nil
}
