package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRatingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRatingRepositoryPollsBySubject(t *testing.T) {
	db, mock, cleanup := newRatingRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "meeting_id",
		"question1_avg_mark", "question2_avg_mark", "question3_avg_mark", "question4_avg_mark", "question5_avg_mark",
		"created_at", "updated_at",
	}).
		AddRow("poll-1", "meeting-1", 4.0, 4.0, 4.0, 4.0, 4.0, time.Now(), time.Now()).
		AddRow("poll-2", "meeting-2", nil, nil, nil, nil, nil, time.Now(), time.Now())

	mock.ExpectQuery("FROM polls p\\s+JOIN meetings m(?s:.+)WHERE m.subject_id").
		WithArgs("subject-1").
		WillReturnRows(rows)

	polls, err := repo.PollsBySubject(context.Background(), "subject-1")
	require.NoError(t, err)
	require.Len(t, polls, 2)
	assert.NotNil(t, polls[0].Question1AvgMark)
	assert.Nil(t, polls[1].Question1AvgMark)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryPollsByUniversityJoinsSubjects(t *testing.T) {
	db, mock, cleanup := newRatingRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectQuery("JOIN subjects s(?s:.+)WHERE s.university_id").
		WithArgs("uni-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "meeting_id",
			"question1_avg_mark", "question2_avg_mark", "question3_avg_mark", "question4_avg_mark", "question5_avg_mark",
			"created_at", "updated_at",
		}))

	polls, err := repo.PollsByUniversity(context.Background(), "uni-1")
	require.NoError(t, err)
	assert.Empty(t, polls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryRatedMeetingsInRange(t *testing.T) {
	db, mock, cleanup := newRatingRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	from := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rows := sqlmock.NewRows([]string{
		"meeting_id", "meeting_date",
		"question1_avg_mark", "question2_avg_mark", "question3_avg_mark", "question4_avg_mark", "question5_avg_mark",
	}).AddRow("meeting-1", from.AddDate(0, 0, 5), 5.0, 5.0, 5.0, 5.0, 5.0)

	mock.ExpectQuery("FROM meetings m(?s:.+)m.meeting_date >=").
		WithArgs("uni-1", from, to).
		WillReturnRows(rows)

	meetings, err := repo.RatedMeetingsInRange(context.Background(), "uni-1", from, to)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	rating := meetings[0].Rating()
	require.NotNil(t, rating)
	assert.InDelta(t, 5.0, *rating, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
