package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gobuddy/backend/internal/application/adapter"
	"github.com/gobuddy/backend/internal/domain/entity"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
	"github.com/gobuddy/backend/internal/integration/email/templates"
)

// fakeQueue is an in-memory email queue for worker tests.
type fakeQueue struct {
	jobs map[uuid.UUID]*entity.EmailJob
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{jobs: make(map[uuid.UUID]*entity.EmailJob)}
}

func (q *fakeQueue) Create(ctx context.Context, job *entity.EmailJob) error {
	q.jobs[job.ID] = job
	return nil
}

func (q *fakeQueue) GetPendingJobs(ctx context.Context, limit int) ([]*entity.EmailJob, error) {
	now := time.Now().UTC()
	var pending []*entity.EmailJob
	for _, job := range q.jobs {
		if job.Status == entity.EmailStatusPending && !job.ScheduledAt.After(now) {
			pending = append(pending, job)
		}
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (q *fakeQueue) Update(ctx context.Context, job *entity.EmailJob) error {
	q.jobs[job.ID] = job
	return nil
}

func (q *fakeQueue) GetByID(ctx context.Context, id uuid.UUID) (*entity.EmailJob, error) {
	job, ok := q.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	return job, nil
}

func payoutJob() *entity.EmailJob {
	return entity.NewEmailJob(
		entity.TemplatePayoutProcessed,
		"dana@up.edu.ph",
		"Dana",
		"Your payout for 2024-01-02 - 2024-01-06 has been processed - GoBuddy",
		map[string]interface{}{
			"worker_name":    "Dana",
			"period_start":   "2024-01-02",
			"period_end":     "2024-01-06",
			"total_earnings": "150.00",
			"system_fee":     "22.00",
		},
	)
}

func payoutInput() adapter.QueuePayoutProcessedInput {
	return adapter.QueuePayoutProcessedInput{
		WorkerEmail:   "dana@up.edu.ph",
		WorkerName:    "Dana",
		PeriodStart:   "2024-01-02",
		PeriodEnd:     "2024-01-06",
		TotalEarnings: "150.00",
		SystemFee:     "22.00",
	}
}

func newTestWorker(t *testing.T, queue *fakeQueue, sender *MockEmailSender) *Worker {
	t.Helper()
	renderer, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}
	return NewWorker(queue, sender, renderer, DefaultWorkerConfig())
}

func TestWorker_ProcessNow(t *testing.T) {
	ctx := context.Background()

	t.Run("renders and sends a pending payout job", func(t *testing.T) {
		queue := newFakeQueue()
		sender := NewMockEmailSender()
		worker := newTestWorker(t, queue, sender)

		job := payoutJob()
		if err := queue.Create(ctx, job); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		worker.ProcessNow(ctx)

		if len(sender.SentEmails) != 1 {
			t.Fatalf("expected 1 sent email, got %d", len(sender.SentEmails))
		}
		sent := sender.SentEmails[0]
		if sent.To != "dana@up.edu.ph" {
			t.Errorf("unexpected recipient %q", sent.To)
		}
		if sent.HTML == "" || sent.Text == "" {
			t.Error("expected both html and text bodies")
		}

		stored := queue.jobs[job.ID]
		if stored.Status != entity.EmailStatusSent {
			t.Errorf("expected sent status, got %s", stored.Status)
		}
		if stored.ResendID == "" || stored.ProcessedAt == nil {
			t.Error("expected the provider id and processed timestamp recorded")
		}
	})

	t.Run("a temporary failure schedules a retry", func(t *testing.T) {
		queue := newFakeQueue()
		sender := NewMockEmailSender()
		sender.SetFailure(errors.New("rate limited"), false)
		worker := newTestWorker(t, queue, sender)

		job := payoutJob()
		if err := queue.Create(ctx, job); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		worker.ProcessNow(ctx)

		stored := queue.jobs[job.ID]
		if stored.Status != entity.EmailStatusPending {
			t.Errorf("expected the job back in pending, got %s", stored.Status)
		}
		if stored.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", stored.Attempts)
		}
		if stored.LastError == "" {
			t.Error("expected the failure recorded")
		}
	})

	t.Run("a permanent failure abandons the job", func(t *testing.T) {
		queue := newFakeQueue()
		sender := NewMockEmailSender()
		sender.SetFailure(errors.New("422 validation_error"), true)
		worker := newTestWorker(t, queue, sender)

		job := payoutJob()
		if err := queue.Create(ctx, job); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		worker.ProcessNow(ctx)

		stored := queue.jobs[job.ID]
		if stored.Status != entity.EmailStatusFailed {
			t.Errorf("expected failed status, got %s", stored.Status)
		}
	})

	t.Run("attempts exhaust after max retries", func(t *testing.T) {
		queue := newFakeQueue()
		sender := NewMockEmailSender()
		sender.SetFailure(errors.New("rate limited"), false)
		worker := newTestWorker(t, queue, sender)

		job := payoutJob()
		if err := queue.Create(ctx, job); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		for i := 0; i < job.MaxAttempts; i++ {
			// Pull the retry forward so the next batch picks the job up.
			queue.jobs[job.ID].ScheduledAt = time.Now().UTC().Add(-time.Second)
			worker.ProcessNow(ctx)
		}

		stored := queue.jobs[job.ID]
		if stored.Status != entity.EmailStatusFailed {
			t.Errorf("expected failed after %d attempts, got %s", job.MaxAttempts, stored.Status)
		}
		if stored.Attempts != job.MaxAttempts {
			t.Errorf("expected %d attempts, got %d", job.MaxAttempts, stored.Attempts)
		}
	})

	t.Run("an unknown template fails permanently", func(t *testing.T) {
		queue := newFakeQueue()
		sender := NewMockEmailSender()
		worker := newTestWorker(t, queue, sender)

		job := payoutJob()
		job.TemplateType = entity.EmailTemplateType("no_such_template")
		if err := queue.Create(ctx, job); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		worker.ProcessNow(ctx)

		stored := queue.jobs[job.ID]
		if stored.Status != entity.EmailStatusFailed {
			t.Errorf("expected failed status, got %s", stored.Status)
		}
		if len(sender.SentEmails) != 0 {
			t.Errorf("expected nothing sent, got %d", len(sender.SentEmails))
		}
	})
}

func TestService_QueuePayoutProcessedEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("queues a pending job with the payout data", func(t *testing.T) {
		queue := newFakeQueue()
		service := NewService(queue)

		err := service.QueuePayoutProcessedEmail(ctx, payoutInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(queue.jobs) != 1 {
			t.Fatalf("expected 1 queued job, got %d", len(queue.jobs))
		}
		for _, job := range queue.jobs {
			if job.TemplateType != entity.TemplatePayoutProcessed {
				t.Errorf("unexpected template %s", job.TemplateType)
			}
			if job.RecipientEmail != "dana@up.edu.ph" || job.Status != entity.EmailStatusPending {
				t.Errorf("unexpected job: %+v", job)
			}
			if job.Subject != "Your payout for 2024-01-02 - 2024-01-06 has been processed - GoBuddy" {
				t.Errorf("unexpected subject %q", job.Subject)
			}
			if job.TemplateData["total_earnings"] != "150.00" {
				t.Errorf("unexpected template data: %v", job.TemplateData)
			}
		}
	})

	t.Run("a queue failure surfaces the email error code", func(t *testing.T) {
		service := NewService(failingQueue{})

		err := service.QueuePayoutProcessedEmail(ctx, payoutInput())
		var emailErr *domainerror.EmailError
		if !errors.As(err, &emailErr) || emailErr.Code != domainerror.ErrCodeEmailQueueFailed {
			t.Errorf("expected a queue-failed email error, got %v", err)
		}
	})
}

type failingQueue struct{}

func (failingQueue) Create(ctx context.Context, job *entity.EmailJob) error {
	return errors.New("connection refused")
}

func (failingQueue) GetPendingJobs(ctx context.Context, limit int) ([]*entity.EmailJob, error) {
	return nil, errors.New("connection refused")
}

func (failingQueue) Update(ctx context.Context, job *entity.EmailJob) error {
	return errors.New("connection refused")
}

func (failingQueue) GetByID(ctx context.Context, id uuid.UUID) (*entity.EmailJob, error) {
	return nil, errors.New("connection refused")
}
