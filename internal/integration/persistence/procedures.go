package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	"github.com/gobuddy/backend/internal/integration/persistence/model"
)

// settlementProcedures implements adapter.SettlementProcedures by calling the
// SQL functions installed at startup. Period math for creation runs inside the
// database so that concurrent reconcilers converge on a single row.
type settlementProcedures struct {
	db *gorm.DB
}

// NewSettlementProcedures creates a new stored-procedure gateway.
func NewSettlementProcedures(db *gorm.DB) adapter.SettlementProcedures {
	return &settlementProcedures{
		db: db,
	}
}

// CreateSettlementForPeriod invokes create_settlement_for_period and loads the
// resulting row. A NULL return means the procedure found nothing to settle.
func (p *settlementProcedures) CreateSettlementForPeriod(ctx context.Context, workerID uuid.UUID, periodStart, periodEnd time.Time) (*entity.Settlement, error) {
	var createdID sql.NullString
	result := p.db.WithContext(ctx).
		Raw("SELECT create_settlement_for_period(?, ?, ?)", workerID, periodStart, periodEnd).
		Scan(&createdID)
	if result.Error != nil {
		return nil, result.Error
	}
	if !createdID.Valid {
		return nil, nil
	}

	settlementID, err := uuid.Parse(createdID.String)
	if err != nil {
		return nil, err
	}

	var settlementModel model.SettlementModel
	result = p.db.WithContext(ctx).Where("id = ?", settlementID).First(&settlementModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			// The procedure reported an id but the row is already gone;
			// treat it the same as a no-op creation.
			return nil, nil
		}
		return nil, result.Error
	}
	return settlementModel.ToEntity(), nil
}

// UnlockPaidAccounts invokes unlock_paid_settlement_accounts.
func (p *settlementProcedures) UnlockPaidAccounts(ctx context.Context) error {
	return p.db.WithContext(ctx).Exec("SELECT unlock_paid_settlement_accounts()").Error
}

// FlagOverdueSettlements invokes flag_overdue_settlements.
func (p *settlementProcedures) FlagOverdueSettlements(ctx context.Context) error {
	return p.db.WithContext(ctx).Exec("SELECT flag_overdue_settlements()").Error
}
