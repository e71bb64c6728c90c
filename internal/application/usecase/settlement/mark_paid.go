package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
)

// processingLocks serializes mark-as-paid attempts per settlement key within
// this process. Cross-session exclusion relies on the store's conditional
// update, not on this lock.
type processingLocks struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newProcessingLocks() *processingLocks {
	return &processingLocks{inFlight: make(map[string]struct{})}
}

// TryAcquire attempts to take the lock for a key. Returns false when another
// invocation for the same key is already in flight.
func (l *processingLocks) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.inFlight[key]; busy {
		return false
	}
	l.inFlight[key] = struct{}{}
	return true
}

// Release frees the lock for a key.
func (l *processingLocks) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, key)
}

// MarkSettlementPaidInput identifies the settlement to transition. The row id
// may be unknown when the UI snapshot predates a boundary shift; the expected
// financials then drive the fuzzy fallback lookup.
type MarkSettlementPaidInput struct {
	SettlementID uuid.UUID // optional, uuid.Nil when unknown
	WorkerID     uuid.UUID
	PeriodStart  time.Time
	PeriodEnd    time.Time

	// Snapshot financials for the fuzzy fallback.
	ExpectedEarnings decimal.Decimal
	ExpectedCount    int
}

// MarkSettlementPaidOutput represents the result of the transition.
type MarkSettlementPaidOutput struct {
	Settlement *entity.Settlement

	// AlreadyPaid is true when the row was paid before this call; the
	// operation is then a verified no-op.
	AlreadyPaid bool

	// WorkerStillRestricted reports whether the worker has other non-paid
	// settlements left after this transition.
	WorkerStillRestricted bool
	RemainingUnpaid       int
}

// MarkSettlementPaidUseCase transitions one settlement from pending or
// overdue to paid with read-back verification.
type MarkSettlementPaidUseCase struct {
	settlementRepo adapter.SettlementRepository
	workerRepo     adapter.WorkerRepository
	procedures     adapter.SettlementProcedures
	emailService   adapter.EmailService
	cache          adapter.SettlementCache

	verifyDelay time.Duration
	locks       *processingLocks
	now         func() time.Time
	sleep       func(time.Duration)
}

// NewMarkSettlementPaidUseCase creates a new MarkSettlementPaidUseCase instance.
func NewMarkSettlementPaidUseCase(
	settlementRepo adapter.SettlementRepository,
	workerRepo adapter.WorkerRepository,
	procedures adapter.SettlementProcedures,
	emailService adapter.EmailService,
	cache adapter.SettlementCache,
	verifyDelay time.Duration,
) *MarkSettlementPaidUseCase {
	return &MarkSettlementPaidUseCase{
		settlementRepo: settlementRepo,
		workerRepo:     workerRepo,
		procedures:     procedures,
		emailService:   emailService,
		cache:          cache,
		verifyDelay:    verifyDelay,
		locks:          newProcessingLocks(),
		now:            time.Now,
		sleep:          time.Sleep,
	}
}

// Execute performs the transition. Paid is terminal: a call against an
// already-paid row succeeds without writing anything.
func (uc *MarkSettlementPaidUseCase) Execute(ctx context.Context, input MarkSettlementPaidInput) (*MarkSettlementPaidOutput, error) {
	key := lockKey(input.WorkerID, input.PeriodStart, input.PeriodEnd)
	if !uc.locks.TryAcquire(key) {
		return nil, domainerror.NewSettlementError(
			domainerror.ErrCodeSettlementProcessing,
			"a payout for this settlement is already being processed",
			domainerror.ErrSettlementProcessing,
		)
	}
	defer uc.locks.Release(key)

	row, err := uc.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	if row.Status == entity.SettlementStatusPaid {
		// Idempotent retry: report success without touching paid_at.
		return uc.buildOutput(ctx, row, true), nil
	}

	paidAt := uc.now().UTC()
	updated, err := uc.settlementRepo.MarkPaidIfActive(ctx, row.ID, paidAt)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementWriteFailed, "failed to mark settlement paid", err)
	}
	if !updated {
		// Lost the race: the row left pending/overdue between our read and
		// the conditional write. The admin must re-invoke deliberately.
		return nil, domainerror.NewSettlementError(
			domainerror.ErrCodeSettlementStatusChanged,
			"settlement is no longer pending or overdue",
			domainerror.ErrSettlementStatusChanged,
		)
	}

	// Give the store a moment before the verification read; replicas may lag
	// the conditional write.
	if uc.verifyDelay > 0 {
		uc.sleep(uc.verifyDelay)
	}

	verified, err := uc.settlementRepo.GetByID(ctx, row.ID)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementVerification, "failed to verify settlement after payment", err)
	}
	if verified.Status != entity.SettlementStatusPaid {
		// The write nominally succeeded, so this is distinct from a plain
		// write failure and is surfaced with the observed status.
		return nil, domainerror.NewSettlementError(
			domainerror.ErrCodeSettlementVerification,
			fmt.Sprintf("settlement status is %q after payment write", verified.Status),
			domainerror.ErrSettlementVerification,
		)
	}

	uc.runSideEffects(ctx, verified)

	return uc.buildOutput(ctx, verified, false), nil
}

// resolve finds the settlement row: by id first, then by exact period bounds,
// then by a fuzzy match on worker plus equal earnings and transaction count
// among the worker's non-paid rows. The fuzzy path covers UI snapshots whose
// period bounds drifted after an earliest-date correction.
func (uc *MarkSettlementPaidUseCase) resolve(ctx context.Context, input MarkSettlementPaidInput) (*entity.Settlement, error) {
	if input.SettlementID != uuid.Nil {
		row, err := uc.settlementRepo.GetByID(ctx, input.SettlementID)
		if err == nil {
			return row, nil
		}
		if !errors.Is(err, domainerror.ErrSettlementNotFound) {
			return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to look up settlement", err)
		}
	}

	row, err := uc.settlementRepo.FindByPeriod(ctx, input.WorkerID, input.PeriodStart, input.PeriodEnd)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, domainerror.ErrSettlementNotFound) {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to look up settlement", err)
	}

	rows, err := uc.settlementRepo.ListByWorker(ctx, input.WorkerID)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to list worker settlements", err)
	}
	for _, candidate := range rows {
		if candidate.Status == entity.SettlementStatusPaid {
			continue
		}
		if candidate.TransactionCount == input.ExpectedCount &&
			candidate.TotalEarnings.Equal(input.ExpectedEarnings) {
			slog.Info("resolved settlement by fuzzy match after period drift",
				"worker_id", input.WorkerID,
				"settlement_id", candidate.ID,
			)
			return candidate, nil
		}
	}

	return nil, domainerror.NewSettlementError(
		domainerror.ErrCodeSettlementNotFound,
		"no settlement matches the requested period",
		domainerror.ErrSettlementNotFound,
	)
}

// runSideEffects performs the best-effort follow-ups of a successful
// transition. Failures here are logged, never surfaced: the payout itself
// has already been verified.
func (uc *MarkSettlementPaidUseCase) runSideEffects(ctx context.Context, paid *entity.Settlement) {
	if err := uc.procedures.UnlockPaidAccounts(ctx); err != nil {
		slog.Warn("unlock-paid-accounts call failed", "worker_id", paid.WorkerID, "error", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			slog.Warn("settlement cache invalidation failed", "error", err)
		}
	}

	if uc.emailService == nil {
		return
	}
	worker, err := uc.workerRepo.GetByID(ctx, paid.WorkerID)
	if err != nil {
		slog.Warn("could not load worker for payout notification", "worker_id", paid.WorkerID, "error", err)
		return
	}
	err = uc.emailService.QueuePayoutProcessedEmail(ctx, adapter.QueuePayoutProcessedInput{
		WorkerEmail:   worker.Email,
		WorkerName:    worker.Name,
		PeriodStart:   paid.PeriodStart.Format("2006-01-02"),
		PeriodEnd:     paid.PeriodEnd.Format("2006-01-02"),
		TotalEarnings: paid.TotalEarnings.StringFixed(2),
		SystemFee:     paid.TotalSystemFee.StringFixed(2),
	})
	if err != nil {
		slog.Warn("failed to queue payout notification", "worker_id", paid.WorkerID, "error", err)
	}
}

// buildOutput counts the worker's remaining non-paid settlements so the admin
// can be told when the account stays restricted.
func (uc *MarkSettlementPaidUseCase) buildOutput(ctx context.Context, row *entity.Settlement, alreadyPaid bool) *MarkSettlementPaidOutput {
	output := &MarkSettlementPaidOutput{
		Settlement:  row,
		AlreadyPaid: alreadyPaid,
	}

	rows, err := uc.settlementRepo.ListByWorker(ctx, row.WorkerID)
	if err != nil {
		slog.Warn("could not count remaining unpaid settlements", "worker_id", row.WorkerID, "error", err)
		return output
	}
	for _, s := range rows {
		if s.ID != row.ID && s.IsActive() {
			output.RemainingUnpaid++
		}
	}
	output.WorkerStillRestricted = output.RemainingUnpaid > 0
	return output
}

func lockKey(workerID uuid.UUID, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s", workerID, start.Format("2006-01-02"), end.Format("2006-01-02"))
}
