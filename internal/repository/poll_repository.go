package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
)

const pollColumns = "id, meeting_id, question1_avg_mark, question2_avg_mark, question3_avg_mark, question4_avg_mark, question5_avg_mark, created_at, updated_at"

// PollRepository handles persistence for polls and their results.
type PollRepository struct {
	db *sqlx.DB
}

// NewPollRepository creates a new repository instance.
func NewPollRepository(db *sqlx.DB) *PollRepository {
	return &PollRepository{db: db}
}

// List returns all polls with pagination metadata.
func (r *PollRepository) List(ctx context.Context, page, size int) ([]models.Poll, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM polls ORDER BY created_at DESC LIMIT %d OFFSET %d", pollColumns, size, offset)
	var polls []models.Poll
	if err := r.db.SelectContext(ctx, &polls, query); err != nil {
		return nil, 0, fmt.Errorf("list polls: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM polls"); err != nil {
		return nil, 0, fmt.Errorf("count polls: %w", err)
	}
	return polls, total, nil
}

// FindByID returns a poll by id.
func (r *PollRepository) FindByID(ctx context.Context, id string) (*models.Poll, error) {
	query := fmt.Sprintf("SELECT %s FROM polls WHERE id = $1", pollColumns)
	var poll models.Poll
	if err := r.db.GetContext(ctx, &poll, query, id); err != nil {
		return nil, err
	}
	return &poll, nil
}

// FindByMeetingID returns the poll attached to a meeting.
func (r *PollRepository) FindByMeetingID(ctx context.Context, meetingID string) (*models.Poll, error) {
	query := fmt.Sprintf("SELECT %s FROM polls WHERE meeting_id = $1", pollColumns)
	var poll models.Poll
	if err := r.db.GetContext(ctx, &poll, query, meetingID); err != nil {
		return nil, err
	}
	return &poll, nil
}

// ResultsByPoll returns every recorded result for a poll, oldest first.
func (r *PollRepository) ResultsByPoll(ctx context.Context, pollID string) ([]models.PollResult, error) {
	const query = `SELECT id, poll_id, question1, question2, question3, question4, question5, comment1, comment2, created_at FROM poll_results WHERE poll_id = $1 ORDER BY created_at ASC`
	var results []models.PollResult
	if err := r.db.SelectContext(ctx, &results, query, pollID); err != nil {
		return nil, fmt.Errorf("list poll results: %w", err)
	}
	return results, nil
}

// SubmitResult records one result and folds it into the poll's running
// averages. The poll row is locked for the duration of the transaction so
// concurrent submissions to the same poll serialize instead of losing
// updates; submissions to different polls do not contend.
func (r *PollRepository) SubmitResult(ctx context.Context, result *models.PollResult) (*models.Poll, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin submit result: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	lockQuery := fmt.Sprintf("SELECT %s FROM polls WHERE id = $1 FOR UPDATE", pollColumns)
	var poll models.Poll
	if err := tx.GetContext(ctx, &poll, lockQuery, result.PollID); err != nil {
		return nil, err
	}

	var priorCount int
	if err := tx.GetContext(ctx, &priorCount, `SELECT COUNT(*) FROM poll_results WHERE poll_id = $1`, result.PollID); err != nil {
		return nil, fmt.Errorf("count poll results: %w", err)
	}

	poll.ApplyResult(result, priorCount)
	poll.UpdatedAt = time.Now().UTC()

	const updatePoll = `UPDATE polls SET question1_avg_mark = $1, question2_avg_mark = $2, question3_avg_mark = $3, question4_avg_mark = $4, question5_avg_mark = $5, updated_at = $6 WHERE id = $7`
	if _, err := tx.ExecContext(ctx, updatePoll,
		poll.Question1AvgMark, poll.Question2AvgMark, poll.Question3AvgMark,
		poll.Question4AvgMark, poll.Question5AvgMark, poll.UpdatedAt, poll.ID); err != nil {
		return nil, fmt.Errorf("update poll averages: %w", err)
	}

	result.CreatedAt = time.Now().UTC()
	const insertResult = `INSERT INTO poll_results (id, poll_id, question1, question2, question3, question4, question5, comment1, comment2, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := tx.ExecContext(ctx, insertResult,
		result.ID, result.PollID,
		result.Question1, result.Question2, result.Question3, result.Question4, result.Question5,
		result.Comment1, result.Comment2, result.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert poll result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submit result: %w", err)
	}
	return &poll, nil
}
