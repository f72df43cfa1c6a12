package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
)

// MeetingRepository handles persistence for meetings and their polls.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository creates a new repository instance.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// List returns meetings matching the filter with pagination metadata.
func (r *MeetingRepository) List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error) {
	base := "FROM meetings WHERE 1=1"
	var args []interface{}

	if filter.SubjectID != "" {
		base += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		base += fmt.Sprintf(" AND teacher_id = $%d", len(args)+1)
		args = append(args, filter.TeacherID)
	}
	if filter.Type != "" {
		base += fmt.Sprintf(" AND meeting_type = $%d", len(args)+1)
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, subject_id, teacher_id, name, meeting_type, meeting_date, created_at, updated_at %s ORDER BY meeting_date DESC LIMIT %d OFFSET %d", base, size, offset)
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list meetings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count meetings: %w", err)
	}

	return meetings, total, nil
}

// FindByID returns a meeting by id.
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	const query = `SELECT id, subject_id, teacher_id, name, meeting_type, meeting_date, created_at, updated_at FROM meetings WHERE id = $1`
	var meeting models.Meeting
	if err := r.db.GetContext(ctx, &meeting, query, id); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// CreateWithPoll inserts the meeting and its empty poll in one transaction.
// A meeting and its poll always exist together.
func (r *MeetingRepository) CreateWithPoll(ctx context.Context, meeting *models.Meeting, poll *models.Poll) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create meeting: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	const insertMeeting = `INSERT INTO meetings (id, subject_id, teacher_id, name, meeting_type, meeting_date, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, insertMeeting, meeting.ID, meeting.SubjectID, meeting.TeacherID, meeting.Name, meeting.Type, meeting.Date, meeting.CreatedAt, meeting.UpdatedAt); err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}

	poll.MeetingID = meeting.ID
	poll.CreatedAt = now
	poll.UpdatedAt = now
	const insertPoll = `INSERT INTO polls (id, meeting_id, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, insertPoll, poll.ID, poll.MeetingID, poll.CreatedAt, poll.UpdatedAt); err != nil {
		return fmt.Errorf("insert poll: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create meeting: %w", err)
	}
	return nil
}

// Update persists meeting changes.
func (r *MeetingRepository) Update(ctx context.Context, meeting *models.Meeting) error {
	const query = `UPDATE meetings SET subject_id = $1, name = $2, meeting_type = $3, meeting_date = $4, updated_at = $5 WHERE id = $6`
	meeting.UpdatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, meeting.SubjectID, meeting.Name, meeting.Type, meeting.Date, meeting.UpdatedAt, meeting.ID); err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	return nil
}

// Delete removes a meeting. Its poll, poll results and form record cascade.
func (r *MeetingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	return nil
}
