package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
)

// RatingRepository provides the read side of rating rollups: polls grouped
// by the entity above them in the hierarchy, and dated meeting averages for
// the statistics windows. Rollups are recomputed from these reads on every
// request; nothing here is materialized.
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository creates a new repository instance.
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// PollsBySubject returns the polls of every meeting under a subject.
func (r *RatingRepository) PollsBySubject(ctx context.Context, subjectID string) ([]models.Poll, error) {
	const query = `
		SELECT p.id, p.meeting_id, p.question1_avg_mark, p.question2_avg_mark, p.question3_avg_mark, p.question4_avg_mark, p.question5_avg_mark, p.created_at, p.updated_at
		FROM polls p
		JOIN meetings m ON m.id = p.meeting_id
		WHERE m.subject_id = $1`
	var polls []models.Poll
	if err := r.db.SelectContext(ctx, &polls, query, subjectID); err != nil {
		return nil, fmt.Errorf("polls by subject: %w", err)
	}
	return polls, nil
}

// PollsByTeacher returns the polls of every meeting the teacher holds,
// lectures and practices pooled.
func (r *RatingRepository) PollsByTeacher(ctx context.Context, teacherID string) ([]models.Poll, error) {
	const query = `
		SELECT p.id, p.meeting_id, p.question1_avg_mark, p.question2_avg_mark, p.question3_avg_mark, p.question4_avg_mark, p.question5_avg_mark, p.created_at, p.updated_at
		FROM polls p
		JOIN meetings m ON m.id = p.meeting_id
		WHERE m.teacher_id = $1`
	var polls []models.Poll
	if err := r.db.SelectContext(ctx, &polls, query, teacherID); err != nil {
		return nil, fmt.Errorf("polls by teacher: %w", err)
	}
	return polls, nil
}

// PollsByUniversity returns the polls of the union of meetings transitively
// under the university's subjects.
func (r *RatingRepository) PollsByUniversity(ctx context.Context, universityID string) ([]models.Poll, error) {
	const query = `
		SELECT p.id, p.meeting_id, p.question1_avg_mark, p.question2_avg_mark, p.question3_avg_mark, p.question4_avg_mark, p.question5_avg_mark, p.created_at, p.updated_at
		FROM polls p
		JOIN meetings m ON m.id = p.meeting_id
		JOIN subjects s ON s.id = m.subject_id
		WHERE s.university_id = $1`
	var polls []models.Poll
	if err := r.db.SelectContext(ctx, &polls, query, universityID); err != nil {
		return nil, fmt.Errorf("polls by university: %w", err)
	}
	return polls, nil
}

// RatedMeetingsInRange returns meeting dates and poll averages for meetings
// under the university's subjects with meeting_date in [from, to).
func (r *RatingRepository) RatedMeetingsInRange(ctx context.Context, universityID string, from, to time.Time) ([]models.RatedMeeting, error) {
	const query = `
		SELECT m.id AS meeting_id, m.meeting_date, p.question1_avg_mark, p.question2_avg_mark, p.question3_avg_mark, p.question4_avg_mark, p.question5_avg_mark
		FROM meetings m
		JOIN polls p ON p.meeting_id = m.id
		JOIN subjects s ON s.id = m.subject_id
		WHERE s.university_id = $1 AND m.meeting_date >= $2 AND m.meeting_date < $3`
	var meetings []models.RatedMeeting
	if err := r.db.SelectContext(ctx, &meetings, query, universityID, from, to); err != nil {
		return nil, fmt.Errorf("rated meetings in range: %w", err)
	}
	return meetings, nil
}
