package email

import (
	"context"
	"fmt"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
)

// Service handles email queueing operations.
type Service struct {
	queue adapter.EmailQueueRepository
}

// NewService creates a new email service.
func NewService(queue adapter.EmailQueueRepository) *Service {
	return &Service{
		queue: queue,
	}
}

// QueuePayoutProcessedEmail queues a payout-processed notification for a
// worker whose settlement was just marked paid.
func (s *Service) QueuePayoutProcessedEmail(ctx context.Context, input adapter.QueuePayoutProcessedInput) error {
	subject := fmt.Sprintf("Your payout for %s - %s has been processed - GoBuddy", input.PeriodStart, input.PeriodEnd)

	templateData := map[string]interface{}{
		"worker_name":    input.WorkerName,
		"period_start":   input.PeriodStart,
		"period_end":     input.PeriodEnd,
		"total_earnings": input.TotalEarnings,
		"system_fee":     input.SystemFee,
	}

	job := entity.NewEmailJob(
		entity.TemplatePayoutProcessed,
		input.WorkerEmail,
		input.WorkerName,
		subject,
		templateData,
	)

	if err := s.queue.Create(ctx, job); err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeEmailQueueFailed,
			"failed to queue payout processed email",
			err,
		)
	}

	return nil
}

// Ensure Service implements adapter.EmailService.
var _ adapter.EmailService = (*Service)(nil)
