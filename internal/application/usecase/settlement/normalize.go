// Package settlement contains the settlement reconciliation engine use cases.
package settlement

import (
	"github.com/gobuddy/backend/internal/domain/entity"
	"github.com/gobuddy/backend/internal/domain/valueobject"
)

// NormalizeErrand projects an errand into the settlement transaction shape.
// The bool reports eligibility: completed with a positive amount.
func NormalizeErrand(errand *entity.Errand) (entity.SettlementTransaction, bool) {
	if errand.Status != entity.TransactionStatusCompleted || errand.CompletedAt == nil {
		return entity.SettlementTransaction{}, false
	}

	tx := entity.SettlementTransaction{
		Kind:        entity.TransactionKindErrand,
		ID:          errand.ID,
		WorkerID:    errand.WorkerID,
		CompletedAt: *errand.CompletedAt,
		Amount:      errand.AmountPrice,
		SystemFee:   valueobject.CalculateErrandSystemFee(errand.Category, errand.Items),
	}

	return tx, tx.Eligible()
}

// NormalizeCommission projects a commission into the settlement transaction
// shape. The amount is the final accepted invoice total.
func NormalizeCommission(commission *entity.Commission) (entity.SettlementTransaction, bool) {
	if commission.Status != entity.TransactionStatusCompleted || commission.CompletedAt == nil {
		return entity.SettlementTransaction{}, false
	}

	tx := entity.SettlementTransaction{
		Kind:        entity.TransactionKindCommission,
		ID:          commission.ID,
		WorkerID:    commission.WorkerID,
		CompletedAt: *commission.CompletedAt,
		Amount:      commission.InvoiceTotal,
		SystemFee:   valueobject.CalculateCommissionSystemFee(commission.InvoiceTotal),
	}

	return tx, tx.Eligible()
}
