package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gobuddy/backend/internal/application/usecase/settlement"
	"github.com/gobuddy/backend/internal/domain/entity"
)

// dateLayout is the wire format for period bounds. Bounds are calendar
// dates, not instants.
const dateLayout = "2006-01-02"

// SettlementDTO represents a settlement period in API responses. Monetary
// amounts are decimal strings.
type SettlementDTO struct {
	ID               string   `json:"id,omitempty"`
	WorkerID         string   `json:"worker_id"`
	PeriodStart      string   `json:"period_start"`
	PeriodEnd        string   `json:"period_end"`
	TotalEarnings    string   `json:"total_earnings"`
	TotalSystemFee   string   `json:"total_system_fee"`
	TransactionCount int      `json:"transaction_count"`
	CommissionIDs    []string `json:"commission_ids"`
	ErrandIDs        []string `json:"errand_ids"`
	Status           string   `json:"status"`
	PaidAt           *string  `json:"paid_at,omitempty"`
	Persisted        bool     `json:"persisted"`
}

// UnassignedTransactionDTO represents a transaction deliberately left
// without a settlement during reconciliation.
type UnassignedTransactionDTO struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	WorkerID    string `json:"worker_id"`
	CompletedAt string `json:"completed_at"`
	Amount      string `json:"amount"`
	Reason      string `json:"reason"`
}

// ListSettlementsResponse represents the response for the settlement list
// endpoint.
type ListSettlementsResponse struct {
	Settlements []SettlementDTO `json:"settlements"`
	FromCache   bool            `json:"from_cache"`
}

// ReconcileResponse represents the response for the reconcile endpoint.
type ReconcileResponse struct {
	Settlements []SettlementDTO            `json:"settlements"`
	Unassigned  []UnassignedTransactionDTO `json:"unassigned"`
	Summary     ReconcileSummaryDTO        `json:"summary"`
}

// ReconcileSummaryDTO carries the write counts of a reconciliation pass.
type ReconcileSummaryDTO struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Adopted int `json:"adopted"`
	Deleted int `json:"deleted"`
}

// MarkPaidRequest represents the request body for the mark-paid endpoint.
// The settlement id is optional; when the caller's snapshot predates a
// boundary shift the worker/period/financials identify the row instead.
type MarkPaidRequest struct {
	SettlementID     string `json:"settlement_id"`
	WorkerID         string `json:"worker_id" binding:"required,uuid"`
	PeriodStart      string `json:"period_start" binding:"required"`
	PeriodEnd        string `json:"period_end" binding:"required"`
	ExpectedEarnings string `json:"expected_earnings" binding:"required"`
	ExpectedCount    int    `json:"expected_count"`
}

// MarkPaidResponse represents the response for the mark-paid endpoint.
type MarkPaidResponse struct {
	Settlement            SettlementDTO `json:"settlement"`
	AlreadyPaid           bool          `json:"already_paid"`
	WorkerStillRestricted bool          `json:"worker_still_restricted"`
	RemainingUnpaid       int           `json:"remaining_unpaid"`
}

// ToMarkPaidInput converts the request into the use case input. Dates must
// be YYYY-MM-DD; the expected earnings must be a decimal string.
func (r MarkPaidRequest) ToMarkPaidInput() (settlement.MarkSettlementPaidInput, error) {
	var input settlement.MarkSettlementPaidInput

	if r.SettlementID != "" {
		id, err := uuid.Parse(r.SettlementID)
		if err != nil {
			return input, fmt.Errorf("invalid settlement_id: %w", err)
		}
		input.SettlementID = id
	}

	workerID, err := uuid.Parse(r.WorkerID)
	if err != nil {
		return input, fmt.Errorf("invalid worker_id: %w", err)
	}
	input.WorkerID = workerID

	periodStart, err := time.ParseInLocation(dateLayout, r.PeriodStart, time.UTC)
	if err != nil {
		return input, fmt.Errorf("invalid period_start: %w", err)
	}
	input.PeriodStart = periodStart

	periodEnd, err := time.ParseInLocation(dateLayout, r.PeriodEnd, time.UTC)
	if err != nil {
		return input, fmt.Errorf("invalid period_end: %w", err)
	}
	input.PeriodEnd = periodEnd

	earnings, err := decimal.NewFromString(r.ExpectedEarnings)
	if err != nil {
		return input, fmt.Errorf("invalid expected_earnings: %w", err)
	}
	input.ExpectedEarnings = earnings
	input.ExpectedCount = r.ExpectedCount

	return input, nil
}

// ToSettlementDTO converts a settlement entity to its API representation.
func ToSettlementDTO(s *entity.Settlement) SettlementDTO {
	d := SettlementDTO{
		WorkerID:         s.WorkerID.String(),
		PeriodStart:      s.PeriodStart.Format(dateLayout),
		PeriodEnd:        s.PeriodEnd.Format(dateLayout),
		TotalEarnings:    s.TotalEarnings.StringFixed(2),
		TotalSystemFee:   s.TotalSystemFee.StringFixed(2),
		TransactionCount: s.TransactionCount,
		CommissionIDs:    idStrings(s.CommissionIDs),
		ErrandIDs:        idStrings(s.ErrandIDs),
		Status:           string(s.Status),
		Persisted:        s.ID != uuid.Nil,
	}
	if s.ID != uuid.Nil {
		d.ID = s.ID.String()
	}
	if s.PaidAt != nil {
		paidAt := s.PaidAt.UTC().Format(time.RFC3339)
		d.PaidAt = &paidAt
	}
	return d
}

// ToSettlementDTOs converts a slice of settlement entities.
func ToSettlementDTOs(settlements []*entity.Settlement) []SettlementDTO {
	dtos := make([]SettlementDTO, len(settlements))
	for i, s := range settlements {
		dtos[i] = ToSettlementDTO(s)
	}
	return dtos
}

// ToUnassignedDTOs converts the reconciliation pass leftovers.
func ToUnassignedDTOs(unassigned []settlement.UnassignedTransaction) []UnassignedTransactionDTO {
	dtos := make([]UnassignedTransactionDTO, len(unassigned))
	for i, u := range unassigned {
		dtos[i] = UnassignedTransactionDTO{
			Kind:        string(u.Transaction.Kind),
			ID:          u.Transaction.ID.String(),
			WorkerID:    u.Transaction.WorkerID.String(),
			CompletedAt: u.Transaction.CompletedAt.UTC().Format(time.RFC3339),
			Amount:      u.Transaction.Amount.StringFixed(2),
			Reason:      string(u.Reason),
		}
	}
	return dtos
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
