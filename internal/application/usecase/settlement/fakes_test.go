package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
)

// day parses a YYYY-MM-DD date for test fixtures.
func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func completedErrand(workerID uuid.UUID, completed string, amount int64, category string, items []entity.ErrandItem) *entity.Errand {
	return &entity.Errand{
		ID:          uuid.New(),
		WorkerID:    workerID,
		CallerID:    uuid.New(),
		Category:    category,
		Status:      entity.TransactionStatusCompleted,
		AmountPrice: decimal.NewFromInt(amount),
		Items:       items,
		CompletedAt: timePtr(day(completed)),
	}
}

func completedCommission(workerID uuid.UUID, completed string, invoiceTotal int64) *entity.Commission {
	return &entity.Commission{
		ID:           uuid.New(),
		WorkerID:     workerID,
		CallerID:     uuid.New(),
		Title:        "logo design",
		Status:       entity.TransactionStatusCompleted,
		InvoiceTotal: decimal.NewFromInt(invoiceTotal),
		CompletedAt:  timePtr(day(completed)),
	}
}

func errandTx(workerID uuid.UUID, completed string, amount int64) entity.SettlementTransaction {
	return entity.SettlementTransaction{
		Kind:        entity.TransactionKindErrand,
		ID:          uuid.New(),
		WorkerID:    workerID,
		CompletedAt: day(completed),
		Amount:      decimal.NewFromInt(amount),
		SystemFee:   decimal.NewFromInt(5),
	}
}

func commissionTx(workerID uuid.UUID, completed string, amount int64) entity.SettlementTransaction {
	tx := errandTx(workerID, completed, amount)
	tx.Kind = entity.TransactionKindCommission
	return tx
}

// fakeWorkerRepo implements adapter.WorkerRepository.
type fakeWorkerRepo struct {
	workers []*entity.Worker
}

func (f *fakeWorkerRepo) ListRunners(ctx context.Context) ([]*entity.Worker, error) {
	return f.workers, nil
}

func (f *fakeWorkerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	for _, w := range f.workers {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, domainerror.ErrUserNotFound
}

// fakeTransactionRepo implements adapter.TransactionRepository.
type fakeTransactionRepo struct {
	errands     []*entity.Errand
	commissions []*entity.Commission
	listErr     error
}

func (f *fakeTransactionRepo) ListCompletedErrands(ctx context.Context) ([]*entity.Errand, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.errands, nil
}

func (f *fakeTransactionRepo) ListCompletedCommissions(ctx context.Context) ([]*entity.Commission, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.commissions, nil
}

// fakeSettlementRepo implements adapter.SettlementRepository in memory with
// write counters, so idempotence asserts on zero writes.
type fakeSettlementRepo struct {
	rows map[uuid.UUID]*entity.Settlement

	creates       int
	updates       int
	deletes       int
	markPaidCalls int

	// onCreate runs before the conflict check, simulating a concurrent writer.
	onCreate func()
	// onMarkPaid runs before the status condition is evaluated.
	onMarkPaid func()
	// markPaidNoop makes MarkPaidIfActive report success without applying,
	// so the read-back verification observes a stale status.
	markPaidNoop bool
}

func newFakeSettlementRepo() *fakeSettlementRepo {
	return &fakeSettlementRepo{rows: make(map[uuid.UUID]*entity.Settlement)}
}

func (f *fakeSettlementRepo) seed(s *entity.Settlement) {
	f.rows[s.ID] = copySettlement(s)
}

func copySettlement(s *entity.Settlement) *entity.Settlement {
	clone := *s
	clone.CommissionIDs = append([]uuid.UUID(nil), s.CommissionIDs...)
	clone.ErrandIDs = append([]uuid.UUID(nil), s.ErrandIDs...)
	return &clone
}

func (f *fakeSettlementRepo) ListAll(ctx context.Context) ([]*entity.Settlement, error) {
	out := make([]*entity.Settlement, 0, len(f.rows))
	for _, s := range f.rows {
		out = append(out, copySettlement(s))
	}
	return out, nil
}

func (f *fakeSettlementRepo) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*entity.Settlement, error) {
	var out []*entity.Settlement
	for _, s := range f.rows {
		if s.WorkerID == workerID {
			out = append(out, copySettlement(s))
		}
	}
	return out, nil
}

func (f *fakeSettlementRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Settlement, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, domainerror.ErrSettlementNotFound
	}
	return copySettlement(s), nil
}

func (f *fakeSettlementRepo) FindByPeriod(ctx context.Context, workerID uuid.UUID, periodStart, periodEnd time.Time) (*entity.Settlement, error) {
	for _, s := range f.rows {
		if s.WorkerID == workerID && s.PeriodStart.Equal(periodStart) && s.PeriodEnd.Equal(periodEnd) {
			return copySettlement(s), nil
		}
	}
	return nil, domainerror.ErrSettlementNotFound
}

func (f *fakeSettlementRepo) Create(ctx context.Context, settlement *entity.Settlement) error {
	if f.onCreate != nil {
		f.onCreate()
		f.onCreate = nil
	}
	for _, s := range f.rows {
		if s.WorkerID == settlement.WorkerID &&
			s.PeriodStart.Equal(settlement.PeriodStart) &&
			s.PeriodEnd.Equal(settlement.PeriodEnd) {
			return domainerror.ErrSettlementExists
		}
	}
	f.creates++
	f.rows[settlement.ID] = copySettlement(settlement)
	return nil
}

func (f *fakeSettlementRepo) UpdateFinancials(ctx context.Context, settlement *entity.Settlement) (bool, error) {
	row, ok := f.rows[settlement.ID]
	if !ok || row.Status != entity.SettlementStatusPending {
		return false, nil
	}
	f.updates++
	updated := copySettlement(settlement)
	updated.Status = row.Status
	updated.PaidAt = row.PaidAt
	f.rows[settlement.ID] = updated
	return true, nil
}

func (f *fakeSettlementRepo) MarkPaidIfActive(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	f.markPaidCalls++
	if f.onMarkPaid != nil {
		f.onMarkPaid()
		f.onMarkPaid = nil
	}
	row, ok := f.rows[id]
	if !ok || !row.IsActive() {
		return false, nil
	}
	if !f.markPaidNoop {
		row.Status = entity.SettlementStatusPaid
		row.PaidAt = timePtr(paidAt)
	}
	return true, nil
}

func (f *fakeSettlementRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	f.deletes++
	return nil
}

// fakeProcedures implements adapter.SettlementProcedures. On success the
// creation call inserts a bare pending row, like the SQL function would, and
// leaves the financial sync to the engine.
type fakeProcedures struct {
	repo *fakeSettlementRepo

	createErr error
	noop      bool

	flagCalls   int
	unlockCalls int
}

func (f *fakeProcedures) CreateSettlementForPeriod(ctx context.Context, workerID uuid.UUID, periodStart, periodEnd time.Time) (*entity.Settlement, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.noop {
		return nil, nil
	}
	row := &entity.Settlement{
		ID:             uuid.New(),
		WorkerID:       workerID,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		TotalEarnings:  decimal.Zero,
		TotalSystemFee: decimal.Zero,
		Status:         entity.SettlementStatusPending,
	}
	f.repo.rows[row.ID] = copySettlement(row)
	return row, nil
}

func (f *fakeProcedures) UnlockPaidAccounts(ctx context.Context) error {
	f.unlockCalls++
	return nil
}

func (f *fakeProcedures) FlagOverdueSettlements(ctx context.Context) error {
	f.flagCalls++
	return nil
}

// fakeCache implements adapter.SettlementCache and always misses.
type fakeCache struct {
	invalidations int
}

func (f *fakeCache) GetList(ctx context.Context) ([]*entity.Settlement, bool, error) {
	return nil, false, nil
}

func (f *fakeCache) SetList(ctx context.Context, settlements []*entity.Settlement) error {
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context) error {
	f.invalidations++
	return nil
}

// fakeEmailService implements adapter.EmailService and records queued inputs.
type fakeEmailService struct {
	queued   []adapter.QueuePayoutProcessedInput
	queueErr error
}

func (f *fakeEmailService) QueuePayoutProcessedEmail(ctx context.Context, input adapter.QueuePayoutProcessedInput) error {
	if f.queueErr != nil {
		return f.queueErr
	}
	f.queued = append(f.queued, input)
	return nil
}
