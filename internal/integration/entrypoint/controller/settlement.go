package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gobuddy/backend/internal/application/usecase/settlement"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
	"github.com/gobuddy/backend/internal/integration/entrypoint/dto"
)

// SettlementController handles the admin settlement endpoints.
type SettlementController struct {
	listUseCase      *settlement.ListSettlementsUseCase
	reconcileUseCase *settlement.ReconcileSettlementsUseCase
	markPaidUseCase  *settlement.MarkSettlementPaidUseCase
}

// NewSettlementController creates a new settlement controller instance.
func NewSettlementController(
	listUseCase *settlement.ListSettlementsUseCase,
	reconcileUseCase *settlement.ReconcileSettlementsUseCase,
	markPaidUseCase *settlement.MarkSettlementPaidUseCase,
) *SettlementController {
	return &SettlementController{
		listUseCase:      listUseCase,
		reconcileUseCase: reconcileUseCase,
		markPaidUseCase:  markPaidUseCase,
	}
}

// List handles GET /admin/settlements requests.
func (c *SettlementController) List(ctx *gin.Context) {
	output, err := c.listUseCase.Execute(ctx.Request.Context())
	if err != nil {
		c.handleSettlementError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ListSettlementsResponse{
		Settlements: dto.ToSettlementDTOs(output.Settlements),
		FromCache:   output.FromCache,
	})
}

// Reconcile handles POST /admin/settlements/reconcile requests. It runs a
// full compute-and-reconcile pass and returns the resulting target list.
func (c *SettlementController) Reconcile(ctx *gin.Context) {
	output, err := c.reconcileUseCase.Execute(ctx.Request.Context())
	if err != nil {
		c.handleSettlementError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ReconcileResponse{
		Settlements: dto.ToSettlementDTOs(output.Settlements),
		Unassigned:  dto.ToUnassignedDTOs(output.Unassigned),
		Summary: dto.ReconcileSummaryDTO{
			Created: output.Summary.Created,
			Updated: output.Summary.Updated,
			Adopted: output.Summary.Adopted,
			Deleted: output.Summary.Deleted,
		},
	})
}

// MarkPaid handles POST /admin/settlements/mark-paid requests.
func (c *SettlementController) MarkPaid(ctx *gin.Context) {
	var req dto.MarkPaidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}

	input, err := req.ToMarkPaidInput()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	output, err := c.markPaidUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleSettlementError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MarkPaidResponse{
		Settlement:            dto.ToSettlementDTO(output.Settlement),
		AlreadyPaid:           output.AlreadyPaid,
		WorkerStillRestricted: output.WorkerStillRestricted,
		RemainingUnpaid:       output.RemainingUnpaid,
	})
}

// handleSettlementError maps settlement errors to HTTP responses.
func (c *SettlementController) handleSettlementError(ctx *gin.Context, err error) {
	var settlementErr *domainerror.SettlementError
	code := ""
	if errors.As(err, &settlementErr) {
		code = string(settlementErr.Code)
	}

	switch {
	case errors.Is(err, domainerror.ErrSettlementNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "Settlement not found",
			Code:  code,
		})
	case errors.Is(err, domainerror.ErrSettlementProcessing):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: "This settlement is already being processed",
			Code:  code,
		})
	case errors.Is(err, domainerror.ErrSettlementStatusChanged):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: "Settlement status changed while processing; refresh and retry",
			Code:  code,
		})
	case errors.Is(err, domainerror.ErrSettlementVerification):
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Payment could not be verified; check the settlement status before retrying",
			Code:  code,
		})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Settlement operation failed",
			Code:  code,
		})
	}
}
