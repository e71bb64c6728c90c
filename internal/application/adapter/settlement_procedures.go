package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// SettlementProcedures groups the server-side stored procedures the engine
// defers to. The creation procedure is authoritative for period math on the
// database side; the others are best-effort collaborators.
type SettlementProcedures interface {
	// CreateSettlementForPeriod atomically computes and inserts a settlement
	// for the given worker and date range. Returns (nil, nil) when the
	// procedure determines no qualifying transactions exist; that is not an
	// error.
	CreateSettlementForPeriod(ctx context.Context, workerID uuid.UUID, periodStart, periodEnd time.Time) (*entity.Settlement, error)

	// UnlockPaidAccounts lifts access restrictions for workers whose blocking
	// settlements are now paid.
	UnlockPaidAccounts(ctx context.Context) error

	// FlagOverdueSettlements flips pending settlements past their grace window
	// to overdue. The flip is owned by a scheduled database job; this call is
	// a courtesy invocation of the same procedure.
	FlagOverdueSettlements(ctx context.Context) error
}
