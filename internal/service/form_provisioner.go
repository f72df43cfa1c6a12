package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	"github.com/novatorsmobile/studentvoice-api/pkg/jobs"
)

type formJobPayload struct {
	MeetingID string
	Title     string
}

// FormProvisioner creates external feedback forms off the request path.
// Meeting creation must not wait on, or fail with, the forms API.
type FormProvisioner struct {
	queue  *jobs.Queue
	client FormsClient
	repo   formRepository
	logger *zap.Logger
}

// NewFormProvisioner wires a worker queue around the forms client.
func NewFormProvisioner(client FormsClient, repo formRepository, logger *zap.Logger, cfg jobs.QueueConfig) *FormProvisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &FormProvisioner{client: client, repo: repo, logger: logger}
	cfg.Logger = logger
	p.queue = jobs.NewQueue("forms", p.handle, cfg)
	return p
}

// Start launches the queue workers.
func (p *FormProvisioner) Start(ctx context.Context) {
	p.queue.Start(ctx)
}

// Stop drains the workers.
func (p *FormProvisioner) Stop() {
	p.queue.Stop()
}

// Enqueue schedules form creation for a meeting.
func (p *FormProvisioner) Enqueue(meetingID, title string) error {
	return p.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "create_feedback_form",
		Payload: formJobPayload{MeetingID: meetingID, Title: title},
	})
}

func (p *FormProvisioner) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(formJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	created, err := p.client.CreateFeedbackForm(ctx, payload.Title)
	if err != nil {
		return fmt.Errorf("create feedback form: %w", err)
	}

	form := &models.Form{
		ID:        uuid.NewString(),
		MeetingID: payload.MeetingID,
		FormID:    created.FormID,
		FormURL:   created.ResponderURI,
	}
	if err := p.repo.Create(ctx, form); err != nil {
		return fmt.Errorf("persist form record: %w", err)
	}

	p.logger.Info("feedback form provisioned",
		zap.String("meeting_id", payload.MeetingID),
		zap.String("form_id", created.FormID))
	return nil
}
