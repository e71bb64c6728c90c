package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// EmailQueueRepository defines the interface for email queue persistence operations.
type EmailQueueRepository interface {
	// Create adds a new email job to the queue.
	Create(ctx context.Context, job *entity.EmailJob) error

	// GetPendingJobs retrieves jobs ready to be processed, ordered by scheduled_at.
	GetPendingJobs(ctx context.Context, limit int) ([]*entity.EmailJob, error)

	// Update saves changes to an email job.
	Update(ctx context.Context, job *entity.EmailJob) error

	// GetByID retrieves a specific job by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EmailJob, error)
}

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ResendID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send sends an email via the email provider (e.g., Resend).
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// QueuePayoutProcessedInput represents the input for queueing a payout
// notification email to a worker.
type QueuePayoutProcessedInput struct {
	WorkerEmail   string
	WorkerName    string
	PeriodStart   string
	PeriodEnd     string
	TotalEarnings string
	SystemFee     string
}

// EmailService defines the interface for queueing notification emails.
type EmailService interface {
	// QueuePayoutProcessedEmail queues a payout-processed notification.
	QueuePayoutProcessedEmail(ctx context.Context, input QueuePayoutProcessedInput) error
}
