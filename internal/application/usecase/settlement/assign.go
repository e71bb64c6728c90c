package settlement

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gobuddy/backend/internal/domain/entity"
	"github.com/gobuddy/backend/internal/domain/valueobject"
)

// TrackedIDs is the set of transaction ids already consumed by a settlement.
// It is threaded explicitly through the computation so the assignment stage
// stays pure and independently testable.
type TrackedIDs map[uuid.UUID]struct{}

// NewTrackedIDs returns an empty tracked-id set.
func NewTrackedIDs() TrackedIDs {
	return make(TrackedIDs)
}

// Has reports whether the id has already been assigned.
func (t TrackedIDs) Has(id uuid.UUID) bool {
	_, ok := t[id]
	return ok
}

// Add marks an id as assigned.
func (t TrackedIDs) Add(id uuid.UUID) {
	t[id] = struct{}{}
}

// SeedFromSettlements marks every transaction id already listed in persisted
// settlement rows, across all workers. This is what makes repeated runs and
// the exclusive-assignment invariant hold.
func (t TrackedIDs) SeedFromSettlements(settlements []*entity.Settlement) {
	for _, s := range settlements {
		for _, id := range s.CommissionIDs {
			t.Add(id)
		}
		for _, id := range s.ErrandIDs {
			t.Add(id)
		}
	}
}

// UnassignedReason explains why a transaction was left out of the current
// assignment pass.
type UnassignedReason string

const (
	// ReasonOutsideActivePeriod means the transaction date falls outside the
	// worker's active settlement period. It is revisited on a later pass once
	// that settlement is paid.
	ReasonOutsideActivePeriod UnassignedReason = "outside_active_period"

	// ReasonBeforePaidPeriod means the transaction is dated on or before the
	// end of an already-paid settlement. Settled periods are never reopened;
	// this is treated as a data anomaly.
	ReasonBeforePaidPeriod UnassignedReason = "before_paid_period"
)

// UnassignedTransaction is a transaction deliberately left without a
// settlement this pass, with a machine-readable reason.
type UnassignedTransaction struct {
	Transaction entity.SettlementTransaction
	Reason      UnassignedReason
}

// AssignResult is the outcome of one worker's assignment computation.
type AssignResult struct {
	// Periods is the target settlement set: the worker's existing active
	// settlement with newly assigned transactions folded in, and at most one
	// freshly created period. Entries never alias the input settlements.
	Periods []*entity.Settlement

	// Unassigned lists transactions left out of this pass.
	Unassigned []UnassignedTransaction
}

// AssignPeriods assigns every eligible, not-yet-tracked transaction of a
// single worker to exactly one settlement period.
//
// The computation is two-phase: period boundaries are decided for the whole
// candidate set first, then the settlement aggregates are built once. The
// result is independent of the order transactions appear in the input.
//
// The tracked set is mutated: every assigned transaction id is added to it.
func AssignPeriods(
	transactions []entity.SettlementTransaction,
	existing []*entity.Settlement,
	tracked TrackedIDs,
) AssignResult {
	txIndex := make(map[uuid.UUID]entity.SettlementTransaction, len(transactions))
	for _, tx := range transactions {
		txIndex[tx.ID] = tx
	}

	candidates := make([]entity.SettlementTransaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Eligible() && !tracked.Has(tx.ID) {
			candidates = append(candidates, tx)
		}
	}
	// Deterministic processing order regardless of input order.
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := candidates[i].CompletedDate(), candidates[j].CompletedDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})

	active := findActive(existing)
	latestPaidEnd, hasPaid := findLatestPaidEnd(existing)

	var result AssignResult // zero-value slices are fine

	// Phase 1: decide each candidate's home.
	var assigned []entity.SettlementTransaction
	var remaining []entity.SettlementTransaction
	for _, tx := range candidates {
		if hasPaid && !tx.CompletedDate().After(latestPaidEnd) {
			result.Unassigned = append(result.Unassigned, UnassignedTransaction{Transaction: tx, Reason: ReasonBeforePaidPeriod})
			continue
		}
		remaining = append(remaining, tx)
	}

	if active != nil {
		// A transaction dated on or before the active period's end joins it;
		// dates before the start are allowed and pull the whole period
		// earlier (earliest-date correction). Dates past the end wait for
		// the active settlement to close.
		for _, tx := range remaining {
			if !tx.CompletedDate().After(active.PeriodEnd) {
				assigned = append(assigned, tx)
			} else {
				result.Unassigned = append(result.Unassigned, UnassignedTransaction{Transaction: tx, Reason: ReasonOutsideActivePeriod})
			}
		}

		updated := foldTransactions(cloneSettlement(active), assigned, txIndex, tracked)
		result.Periods = append(result.Periods, updated)
		return result
	}

	if len(remaining) == 0 {
		return result
	}

	// No active settlement: open a new period anchored at the earliest
	// candidate date. Candidates past the new period wait for the next pass,
	// exactly as they would have with an adopted active settlement.
	period := valueobject.NewPeriod(remaining[0].CompletedDate())
	for _, tx := range remaining {
		if period.Contains(tx.CompletedDate()) {
			assigned = append(assigned, tx)
		} else {
			result.Unassigned = append(result.Unassigned, UnassignedTransaction{Transaction: tx, Reason: ReasonOutsideActivePeriod})
		}
	}

	created := &entity.Settlement{
		WorkerID:       remaining[0].WorkerID,
		PeriodStart:    period.Start,
		PeriodEnd:      period.End,
		TotalEarnings:  decimal.Zero,
		TotalSystemFee: decimal.Zero,
		Status:         entity.SettlementStatusPending,
	}
	result.Periods = append(result.Periods, foldTransactions(created, assigned, txIndex, tracked))
	return result
}

// foldTransactions adds the assigned transactions to the settlement, marks
// their ids tracked, and applies the earliest-date correction: the period
// start becomes the earliest completion date among all assigned transactions
// whose dates are known, and the end follows as start plus the period span.
func foldTransactions(
	s *entity.Settlement,
	assigned []entity.SettlementTransaction,
	txIndex map[uuid.UUID]entity.SettlementTransaction,
	tracked TrackedIDs,
) *entity.Settlement {
	for _, tx := range assigned {
		if s.HasTransaction(tx.ID) {
			tracked.Add(tx.ID)
			continue
		}

		switch tx.Kind {
		case entity.TransactionKindCommission:
			s.CommissionIDs = append(s.CommissionIDs, tx.ID)
		case entity.TransactionKindErrand:
			s.ErrandIDs = append(s.ErrandIDs, tx.ID)
		}
		s.TotalEarnings = s.TotalEarnings.Add(tx.Amount)
		s.TotalSystemFee = s.TotalSystemFee.Add(tx.SystemFee)
		s.TransactionCount++
		tracked.Add(tx.ID)
	}

	if earliest, ok := earliestAssignedDate(s, txIndex); ok && !earliest.Equal(s.PeriodStart) {
		s.PeriodStart = earliest
		s.PeriodEnd = earliest.AddDate(0, 0, valueobject.PeriodDays-1)
	}

	return s
}

// earliestAssignedDate looks up the original completion date of every id
// assigned to the settlement. Ids not present in the index (transactions not
// loaded this pass) keep the current start as a floor.
func earliestAssignedDate(s *entity.Settlement, txIndex map[uuid.UUID]entity.SettlementTransaction) (time.Time, bool) {
	earliest := time.Time{}
	found := false
	consider := func(id uuid.UUID) {
		tx, ok := txIndex[id]
		if !ok {
			return
		}
		d := tx.CompletedDate()
		if !found || d.Before(earliest) {
			earliest = d
			found = true
		}
	}
	for _, id := range s.CommissionIDs {
		consider(id)
	}
	for _, id := range s.ErrandIDs {
		consider(id)
	}

	if !found {
		return time.Time{}, false
	}
	if earliest.After(s.PeriodStart) && anyUnresolved(s, txIndex) {
		// An unknown assigned id may predate every known one; never shrink
		// the period past the persisted start in that case.
		return s.PeriodStart, true
	}
	return earliest, true
}

func anyUnresolved(s *entity.Settlement, txIndex map[uuid.UUID]entity.SettlementTransaction) bool {
	for _, id := range s.CommissionIDs {
		if _, ok := txIndex[id]; !ok {
			return true
		}
	}
	for _, id := range s.ErrandIDs {
		if _, ok := txIndex[id]; !ok {
			return true
		}
	}
	return false
}

// findActive returns the worker's active (pending or overdue) settlement, or
// nil. If the store ever holds more than one, the most recent period wins so
// the engine keeps converging instead of erroring.
func findActive(settlements []*entity.Settlement) *entity.Settlement {
	var active *entity.Settlement
	for _, s := range settlements {
		if !s.IsActive() {
			continue
		}
		if active == nil || s.PeriodEnd.After(active.PeriodEnd) {
			active = s
		}
	}
	return active
}

func findLatestPaidEnd(settlements []*entity.Settlement) (time.Time, bool) {
	latest := time.Time{}
	found := false
	for _, s := range settlements {
		if s.Status != entity.SettlementStatusPaid {
			continue
		}
		if !found || s.PeriodEnd.After(latest) {
			latest = s.PeriodEnd
			found = true
		}
	}
	return latest, found
}

// cloneSettlement deep-copies a settlement so the computation never mutates
// the caller's snapshot of persisted rows.
func cloneSettlement(s *entity.Settlement) *entity.Settlement {
	clone := *s
	clone.CommissionIDs = append([]uuid.UUID(nil), s.CommissionIDs...)
	clone.ErrandIDs = append([]uuid.UUID(nil), s.ErrandIDs...)
	return &clone
}
