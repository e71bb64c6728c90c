package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gobuddy/backend/internal/application/usecase/worker"
	"github.com/gobuddy/backend/internal/integration/entrypoint/dto"
)

// WorkerController handles the admin worker roster endpoints.
type WorkerController struct {
	listUseCase *worker.ListWorkersUseCase
}

// NewWorkerController creates a new worker controller instance.
func NewWorkerController(listUseCase *worker.ListWorkersUseCase) *WorkerController {
	return &WorkerController{
		listUseCase: listUseCase,
	}
}

// List handles GET /admin/workers requests.
func (c *WorkerController) List(ctx *gin.Context) {
	output, err := c.listUseCase.Execute(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to load workers",
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.ListWorkersResponse{
		Workers: dto.ToWorkerDTOs(output.Workers),
	})
}
