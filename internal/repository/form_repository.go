package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
)

// FormRepository handles persistence for external feedback form records.
type FormRepository struct {
	db *sqlx.DB
}

// NewFormRepository creates a new repository instance.
func NewFormRepository(db *sqlx.DB) *FormRepository {
	return &FormRepository{db: db}
}

// Create inserts a form record for a meeting.
func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	const query = `INSERT INTO forms (id, meeting_id, form_id, form_url, created_at) VALUES ($1, $2, $3, $4, $5)`
	form.CreatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, form.ID, form.MeetingID, form.FormID, form.FormURL, form.CreatedAt); err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	return nil
}

// FindByMeetingID returns the form record attached to a meeting.
func (r *FormRepository) FindByMeetingID(ctx context.Context, meetingID string) (*models.Form, error) {
	const query = `SELECT id, meeting_id, form_id, form_url, created_at FROM forms WHERE meeting_id = $1`
	var form models.Form
	if err := r.db.GetContext(ctx, &form, query, meetingID); err != nil {
		return nil, err
	}
	return &form, nil
}
