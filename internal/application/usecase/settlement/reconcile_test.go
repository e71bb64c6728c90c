package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gobuddy/backend/internal/domain/entity"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
)

type reconcileFixture struct {
	workers *fakeWorkerRepo
	txs     *fakeTransactionRepo
	repo    *fakeSettlementRepo
	procs   *fakeProcedures
	cache   *fakeCache
	uc      *ReconcileSettlementsUseCase
}

func newReconcileFixture(workers ...*entity.Worker) *reconcileFixture {
	repo := newFakeSettlementRepo()
	f := &reconcileFixture{
		workers: &fakeWorkerRepo{workers: workers},
		txs:     &fakeTransactionRepo{},
		repo:    repo,
		procs:   &fakeProcedures{repo: repo},
		cache:   &fakeCache{},
	}
	f.uc = NewReconcileSettlementsUseCase(f.workers, f.txs, f.repo, f.procs, f.cache)
	return f
}

func runner(name string) *entity.Worker {
	return &entity.Worker{
		ID:    uuid.New(),
		Name:  name,
		Email: name + "@up.edu.ph",
		Role:  entity.RoleBuddyRunner,
	}
}

func TestReconcileSettlements_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a settlement through the stored procedure", func(t *testing.T) {
		worker := runner("dana")
		f := newReconcileFixture(worker)
		f.txs.errands = []*entity.Errand{
			completedErrand(worker.ID, "2024-01-02", 100, "school materials",
				[]entity.ErrandItem{{Quantity: "2", UnitPrice: "25"}}),
			completedErrand(worker.ID, "2024-01-04", 50, "school materials",
				[]entity.ErrandItem{{Quantity: "1", UnitPrice: "25"}}),
		}

		output, err := f.uc.Execute(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(output.Settlements) != 1 {
			t.Fatalf("expected 1 settlement, got %d", len(output.Settlements))
		}
		s := output.Settlements[0]
		if s.ID == uuid.Nil {
			t.Fatal("expected a persisted settlement id")
		}
		if !s.PeriodStart.Equal(day("2024-01-02")) || !s.PeriodEnd.Equal(day("2024-01-06")) {
			t.Errorf("expected period 2024-01-02..2024-01-06, got %s..%s",
				s.PeriodStart.Format("2006-01-02"), s.PeriodEnd.Format("2006-01-02"))
		}
		if !s.TotalEarnings.Equal(decimal.NewFromInt(150)) {
			t.Errorf("expected earnings 150, got %s", s.TotalEarnings)
		}
		if !s.TotalSystemFee.Equal(decimal.RequireFromString("22")) {
			t.Errorf("expected system fee 22, got %s", s.TotalSystemFee)
		}
		if s.TransactionCount != 2 || len(s.ErrandIDs) != 2 {
			t.Errorf("expected 2 errand transactions, got count %d with %d ids", s.TransactionCount, len(s.ErrandIDs))
		}

		if output.Summary.Created != 1 {
			t.Errorf("expected Created 1, got %d", output.Summary.Created)
		}
		if output.Summary.Updated != 1 {
			t.Errorf("expected the post-create financial sync to count as 1 update, got %d", output.Summary.Updated)
		}
		if f.repo.creates != 0 {
			t.Errorf("expected no direct inserts when the procedure succeeds, got %d", f.repo.creates)
		}

		stored, err := f.repo.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("expected the row to be stored: %v", err)
		}
		if !stored.TotalEarnings.Equal(decimal.NewFromInt(150)) || stored.Status != entity.SettlementStatusPending {
			t.Errorf("stored row out of sync: earnings %s status %s", stored.TotalEarnings, stored.Status)
		}
		if f.cache.invalidations != 1 {
			t.Errorf("expected 1 cache invalidation, got %d", f.cache.invalidations)
		}
		if f.procs.flagCalls != 1 {
			t.Errorf("expected the overdue courtesy call, got %d", f.procs.flagCalls)
		}
	})

	t.Run("falls back to a direct insert when the procedure fails", func(t *testing.T) {
		worker := runner("dana")
		f := newReconcileFixture(worker)
		f.procs.createErr = errors.New("function does not exist")
		f.txs.commissions = []*entity.Commission{
			completedCommission(worker.ID, "2024-01-02", 117),
		}

		output, err := f.uc.Execute(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if output.Summary.Created != 1 {
			t.Errorf("expected Created 1, got %d", output.Summary.Created)
		}
		if f.repo.creates != 1 {
			t.Errorf("expected 1 direct insert, got %d", f.repo.creates)
		}
		s := output.Settlements[0]
		if s.ID == uuid.Nil {
			t.Fatal("expected the fallback row to carry an id")
		}
		if !s.TotalSystemFee.Equal(decimal.NewFromInt(17)) {
			t.Errorf("expected commission fee 17, got %s", s.TotalSystemFee)
		}
		if len(s.CommissionIDs) != 1 {
			t.Errorf("expected 1 commission id, got %d", len(s.CommissionIDs))
		}
	})

	t.Run("a procedure no-op leaves the period unpersisted", func(t *testing.T) {
		worker := runner("dana")
		f := newReconcileFixture(worker)
		f.procs.noop = true
		f.txs.errands = []*entity.Errand{
			completedErrand(worker.ID, "2024-01-02", 100, "printing", nil),
		}

		output, err := f.uc.Execute(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if output.Summary.Created != 0 {
			t.Errorf("expected Created 0, got %d", output.Summary.Created)
		}
		if len(output.Settlements) != 1 {
			t.Fatalf("expected the computed period to still be reported, got %d", len(output.Settlements))
		}
		if output.Settlements[0].ID != uuid.Nil {
			t.Error("expected a nil id marking the period as not yet persisted")
		}
		if len(f.repo.rows) != 0 {
			t.Errorf("expected no stored rows, got %d", len(f.repo.rows))
		}
	})

	t.Run("a repeat pass issues no writes", func(t *testing.T) {
		worker := runner("dana")
		f := newReconcileFixture(worker)
		f.txs.errands = []*entity.Errand{
			completedErrand(worker.ID, "2024-01-02", 100, "school materials",
				[]entity.ErrandItem{{Quantity: "2", UnitPrice: "25"}}),
		}

		if _, err := f.uc.Execute(ctx); err != nil {
			t.Fatalf("first pass failed: %v", err)
		}
		creates, updates := f.repo.creates, f.repo.updates

		output, err := f.uc.Execute(ctx)
		if err != nil {
			t.Fatalf("second pass failed: %v", err)
		}

		if output.Summary != (ReconcileSummary{}) {
			t.Errorf("expected an all-zero summary, got %+v", output.Summary)
		}
		if f.repo.creates != creates || f.repo.updates != updates {
			t.Errorf("expected no additional writes, got creates %d updates %d", f.repo.creates, f.repo.updates)
		}
		if len(output.Settlements) != 1 {
			t.Errorf("expected the existing settlement in the output, got %d", len(output.Settlements))
		}
	})

	t.Run("purges persisted rows left without transactions", func(t *testing.T) {
		worker := runner("dana")
		f := newReconcileFixture(worker)
		f.repo.seed(&entity.Settlement{
			ID:             uuid.New(),
			WorkerID:       worker.ID,
			PeriodStart:    day("2024-01-02"),
			PeriodEnd:      day("2024-01-06"),
			TotalEarnings:  decimal.Zero,
			TotalSystemFee: decimal.Zero,
			Status:         entity.SettlementStatusPending,
		})

		output, err := f.uc.Execute(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if output.Summary.Deleted != 1 {
			t.Errorf("expected Deleted 1, got %d", output.Summary.Deleted)
		}
		if len(f.repo.rows) != 0 {
			t.Errorf("expected the empty row gone, got %d rows", len(f.repo.rows))
		}
	})

	t.Run("adopts the row a concurrent writer inserted first", func(t *testing.T) {
		worker := runner("dana")
		f := newReconcileFixture(worker)
		f.procs.createErr = errors.New("function does not exist")
		f.txs.errands = []*entity.Errand{
			completedErrand(worker.ID, "2024-01-02", 100, "printing", nil),
		}

		concurrent := &entity.Settlement{
			ID:             uuid.New(),
			WorkerID:       worker.ID,
			PeriodStart:    day("2024-01-02"),
			PeriodEnd:      day("2024-01-06"),
			TotalEarnings:  decimal.NewFromInt(100),
			TotalSystemFee: decimal.NewFromInt(5),
			Status:         entity.SettlementStatusPending,
		}
		f.repo.onCreate = func() {
			f.repo.rows[concurrent.ID] = copySettlement(concurrent)
		}

		output, err := f.uc.Execute(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if output.Summary.Adopted != 1 || output.Summary.Created != 0 {
			t.Errorf("expected Adopted 1 Created 0, got %+v", output.Summary)
		}
		if output.Settlements[0].ID != concurrent.ID {
			t.Error("expected the concurrent row to be adopted into the result")
		}
	})

	t.Run("a read failure aborts the pass before any write", func(t *testing.T) {
		worker := runner("dana")
		f := newReconcileFixture(worker)
		f.txs.listErr = errors.New("connection refused")

		_, err := f.uc.Execute(ctx)
		if err == nil {
			t.Fatal("expected an error")
		}
		var settlementErr *domainerror.SettlementError
		if !errors.As(err, &settlementErr) || settlementErr.Code != domainerror.ErrCodeSettlementLoadFailed {
			t.Errorf("expected a load-failed settlement error, got %v", err)
		}
		if f.repo.creates != 0 || f.repo.updates != 0 || f.repo.deletes != 0 {
			t.Error("expected the store untouched after a read failure")
		}
	})

	t.Run("reports transactions past the active period", func(t *testing.T) {
		worker := runner("dana")
		f := newReconcileFixture(worker)
		trackedErrand := completedErrand(worker.ID, "2024-01-02", 40, "printing", nil)
		f.repo.seed(&entity.Settlement{
			ID:               uuid.New(),
			WorkerID:         worker.ID,
			PeriodStart:      day("2024-01-02"),
			PeriodEnd:        day("2024-01-06"),
			TotalEarnings:    decimal.NewFromInt(40),
			TotalSystemFee:   decimal.RequireFromString("5.6"),
			TransactionCount: 1,
			ErrandIDs:        []uuid.UUID{trackedErrand.ID},
			Status:           entity.SettlementStatusPending,
		})
		late := completedErrand(worker.ID, "2024-01-10", 60, "printing", nil)
		f.txs.errands = []*entity.Errand{trackedErrand, late}

		output, err := f.uc.Execute(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(output.Unassigned) != 1 {
			t.Fatalf("expected 1 unassigned transaction, got %d", len(output.Unassigned))
		}
		u := output.Unassigned[0]
		if u.Reason != ReasonOutsideActivePeriod || u.Transaction.ID != late.ID {
			t.Errorf("expected the late errand reported as %s, got %+v", ReasonOutsideActivePeriod, u)
		}
		if output.Summary.Updated != 0 {
			t.Errorf("expected the unchanged settlement to issue no write, got %d", output.Summary.Updated)
		}
	})
}
