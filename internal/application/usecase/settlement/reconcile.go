package settlement

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
)

// ReconcileOutput represents the result of a full compute-and-reconcile pass.
type ReconcileOutput struct {
	// Settlements is the reconciled target list, one entry per computed
	// period. Entries with a Nil id exist in memory only and are not
	// actionable until a later pass persists them.
	Settlements []*entity.Settlement

	// Unassigned lists transactions deliberately left without a settlement
	// this pass.
	Unassigned []UnassignedTransaction

	Summary ReconcileSummary
}

// ReconcileSummary contains write counts from a reconciliation pass. A
// repeat pass with no new transactions reports all zeros.
type ReconcileSummary struct {
	Created int
	Updated int
	Adopted int
	Deleted int
}

// ReconcileSettlementsUseCase runs the settlement engine: it loads workers,
// completed transactions and persisted settlement rows, computes the target
// period set, and reconciles the store against it.
type ReconcileSettlementsUseCase struct {
	workerRepo      adapter.WorkerRepository
	transactionRepo adapter.TransactionRepository
	settlementRepo  adapter.SettlementRepository
	procedures      adapter.SettlementProcedures
	cache           adapter.SettlementCache
}

// NewReconcileSettlementsUseCase creates a new ReconcileSettlementsUseCase instance.
func NewReconcileSettlementsUseCase(
	workerRepo adapter.WorkerRepository,
	transactionRepo adapter.TransactionRepository,
	settlementRepo adapter.SettlementRepository,
	procedures adapter.SettlementProcedures,
	cache adapter.SettlementCache,
) *ReconcileSettlementsUseCase {
	return &ReconcileSettlementsUseCase{
		workerRepo:      workerRepo,
		transactionRepo: transactionRepo,
		settlementRepo:  settlementRepo,
		procedures:      procedures,
		cache:           cache,
	}
}

// Execute runs one reconciliation pass. All reads happen before any write, so
// a read failure aborts the pass with the store untouched.
func (uc *ReconcileSettlementsUseCase) Execute(ctx context.Context) (*ReconcileOutput, error) {
	// Courtesy call: the overdue flip is owned by a scheduled job, but each
	// pass nudges it so the dashboard reflects elapsed grace windows.
	if err := uc.procedures.FlagOverdueSettlements(ctx); err != nil {
		slog.Warn("flag-overdue courtesy call failed", "error", err)
	}

	workers, err := uc.workerRepo.ListRunners(ctx)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to load workers", err)
	}

	errands, err := uc.transactionRepo.ListCompletedErrands(ctx)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to load errands", err)
	}

	commissions, err := uc.transactionRepo.ListCompletedCommissions(ctx)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to load commissions", err)
	}

	existing, err := uc.settlementRepo.ListAll(ctx)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to load settlements", err)
	}

	byWorkerTx := groupTransactions(errands, commissions)
	byWorkerRows := make(map[uuid.UUID][]*entity.Settlement)
	for _, s := range existing {
		byWorkerRows[s.WorkerID] = append(byWorkerRows[s.WorkerID], s)
	}

	tracked := NewTrackedIDs()
	tracked.SeedFromSettlements(existing)

	output := &ReconcileOutput{}
	adoptedRows := make(map[uuid.UUID]struct{})

	// Stable worker order keeps write sequences reproducible across passes.
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID.String() < workers[j].ID.String() })

	for _, worker := range workers {
		result := AssignPeriods(byWorkerTx[worker.ID], byWorkerRows[worker.ID], tracked)
		output.Unassigned = append(output.Unassigned, result.Unassigned...)

		for _, u := range result.Unassigned {
			slog.Warn("transaction left unassigned this pass",
				"worker_id", u.Transaction.WorkerID,
				"transaction_id", u.Transaction.ID,
				"kind", u.Transaction.Kind,
				"reason", u.Reason,
			)
		}

		for _, period := range result.Periods {
			if period.IsEmpty() {
				continue
			}

			persisted, err := uc.persistPeriod(ctx, period, byWorkerRows[worker.ID], &output.Summary)
			if err != nil {
				return nil, err
			}
			if persisted.ID != uuid.Nil {
				adoptedRows[persisted.ID] = struct{}{}
			}
			output.Settlements = append(output.Settlements, persisted)
		}
	}

	// No-empty-settlement invariant: purge rows with zero transactions and
	// zero earnings, whatever their status. Rows we just wrote are exempt.
	for _, row := range existing {
		if _, keep := adoptedRows[row.ID]; keep {
			continue
		}
		if !row.IsEmpty() {
			continue
		}
		if err := uc.settlementRepo.Delete(ctx, row.ID); err != nil {
			return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementWriteFailed, "failed to delete empty settlement", err)
		}
		output.Summary.Deleted++
	}

	sort.Slice(output.Settlements, func(i, j int) bool {
		a, b := output.Settlements[i], output.Settlements[j]
		if a.WorkerID != b.WorkerID {
			return a.WorkerID.String() < b.WorkerID.String()
		}
		return a.PeriodStart.After(b.PeriodStart)
	})

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			slog.Warn("settlement cache invalidation failed", "error", err)
		}
	}

	return output, nil
}

// persistPeriod reconciles one computed period against the store. It returns
// the settlement as it should appear to the caller; the id stays Nil when no
// write path managed to attach a row this pass.
func (uc *ReconcileSettlementsUseCase) persistPeriod(
	ctx context.Context,
	period *entity.Settlement,
	workerRows []*entity.Settlement,
	summary *ReconcileSummary,
) (*entity.Settlement, error) {
	if period.ID != uuid.Nil {
		// Adopted from an existing row during assignment.
		original := findByID(workerRows, period.ID)
		if original != nil && original.Status != entity.SettlementStatusPending {
			// Paid and overdue rows keep their admin-finalized financials;
			// only the row itself is adopted into the result.
			return cloneSettlement(original), nil
		}
		return uc.updatePending(ctx, period, original, summary)
	}

	row, err := uc.settlementRepo.FindByPeriod(ctx, period.WorkerID, period.PeriodStart, period.PeriodEnd)
	if err == nil {
		if row.Status != entity.SettlementStatusPending {
			return cloneSettlement(row), nil
		}
		period.ID = row.ID
		return uc.updatePending(ctx, period, row, summary)
	}
	if !errors.Is(err, domainerror.ErrSettlementNotFound) {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to look up settlement period", err)
	}

	return uc.createPeriod(ctx, period, summary)
}

// updatePending overwrites a pending row's financial state when the computed
// period differs from it. Idempotence hinges on the comparison: an unchanged
// period issues no write.
func (uc *ReconcileSettlementsUseCase) updatePending(
	ctx context.Context,
	period *entity.Settlement,
	original *entity.Settlement,
	summary *ReconcileSummary,
) (*entity.Settlement, error) {
	if original != nil && !financialsChanged(original, period) {
		return period, nil
	}

	updated, err := uc.settlementRepo.UpdateFinancials(ctx, period)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementWriteFailed, "failed to update settlement", err)
	}
	if !updated {
		// The row stopped being pending between read and write. Re-fetch and
		// adopt whatever state the concurrent writer left.
		refreshed, err := uc.settlementRepo.GetByID(ctx, period.ID)
		if err != nil {
			return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to re-fetch settlement after conflict", err)
		}
		return cloneSettlement(refreshed), nil
	}

	summary.Updated++
	return period, nil
}

// createPeriod tries the stored procedure first, then a direct insert, then
// conflict adoption. A procedure that creates nothing is a legitimate
// outcome: the period stays unpersisted and the id placeholder tells the
// caller it is not yet actionable.
func (uc *ReconcileSettlementsUseCase) createPeriod(
	ctx context.Context,
	period *entity.Settlement,
	summary *ReconcileSummary,
) (*entity.Settlement, error) {
	created, err := uc.procedures.CreateSettlementForPeriod(ctx, period.WorkerID, period.PeriodStart, period.PeriodEnd)
	if err == nil {
		if created == nil {
			slog.Info("settlement procedure reported no qualifying transactions",
				"worker_id", period.WorkerID,
				"period_start", period.PeriodStart.Format("2006-01-02"),
				"period_end", period.PeriodEnd.Format("2006-01-02"),
			)
			return period, nil
		}
		period.ID = created.ID
		summary.Created++
		// Sync the row with the computed id lists and totals; the row is
		// freshly pending so the conditional update applies.
		return uc.updatePending(ctx, period, created, summary)
	}

	slog.Warn("settlement procedure failed, falling back to direct insert",
		"worker_id", period.WorkerID,
		"error", err,
	)

	insert := cloneSettlement(period)
	insert.ID = uuid.New()
	insert.Status = entity.SettlementStatusPending
	err = uc.settlementRepo.Create(ctx, insert)
	if err == nil {
		summary.Created++
		return insert, nil
	}
	if !errors.Is(err, domainerror.ErrSettlementExists) {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementWriteFailed, "failed to insert settlement", err)
	}

	// A concurrent writer created the row between our lookup and the insert.
	row, err := uc.settlementRepo.FindByPeriod(ctx, period.WorkerID, period.PeriodStart, period.PeriodEnd)
	if err != nil {
		return nil, domainerror.NewSettlementError(domainerror.ErrCodeSettlementLoadFailed, "failed to adopt settlement after insert conflict", err)
	}
	summary.Adopted++
	return cloneSettlement(row), nil
}

// financialsChanged compares the financial state of two settlements for the
// same row.
func financialsChanged(a, b *entity.Settlement) bool {
	if !a.TotalEarnings.Equal(b.TotalEarnings) || !a.TotalSystemFee.Equal(b.TotalSystemFee) {
		return true
	}
	if a.TransactionCount != b.TransactionCount {
		return true
	}
	if !a.PeriodStart.Equal(b.PeriodStart) || !a.PeriodEnd.Equal(b.PeriodEnd) {
		return true
	}
	return !sameIDSet(a.CommissionIDs, b.CommissionIDs) || !sameIDSet(a.ErrandIDs, b.ErrandIDs)
}

func sameIDSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func findByID(settlements []*entity.Settlement, id uuid.UUID) *entity.Settlement {
	for _, s := range settlements {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// groupTransactions normalizes both transaction kinds and groups the eligible
// ones per worker.
func groupTransactions(errands []*entity.Errand, commissions []*entity.Commission) map[uuid.UUID][]entity.SettlementTransaction {
	grouped := make(map[uuid.UUID][]entity.SettlementTransaction)
	for _, c := range commissions {
		if tx, ok := NormalizeCommission(c); ok {
			grouped[tx.WorkerID] = append(grouped[tx.WorkerID], tx)
		}
	}
	for _, e := range errands {
		if tx, ok := NormalizeErrand(e); ok {
			grouped[tx.WorkerID] = append(grouped[tx.WorkerID], tx)
		}
	}
	return grouped
}
