package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
)

func newPollRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func pollRows(q1, q2, q3, q4, q5 interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "meeting_id",
		"question1_avg_mark", "question2_avg_mark", "question3_avg_mark", "question4_avg_mark", "question5_avg_mark",
		"created_at", "updated_at",
	}).AddRow("poll-1", "meeting-1", q1, q2, q3, q4, q5, time.Now(), time.Now())
}

func TestPollRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newPollRepoMock(t)
	defer cleanup()
	repo := NewPollRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, meeting_id, question1_avg_mark, question2_avg_mark, question3_avg_mark, question4_avg_mark, question5_avg_mark, created_at, updated_at FROM polls WHERE id = $1")).
		WithArgs("poll-1").
		WillReturnRows(pollRows(4.5, 4.0, 3.5, 5.0, 4.0))

	poll, err := repo.FindByID(context.Background(), "poll-1")
	require.NoError(t, err)
	require.NotNil(t, poll.Question1AvgMark)
	assert.InDelta(t, 4.5, *poll.Question1AvgMark, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPollRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newPollRepoMock(t)
	defer cleanup()
	repo := NewPollRepository(db)

	mock.ExpectQuery("FROM polls WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPollRepositorySubmitResultFirst(t *testing.T) {
	db, mock, cleanup := newPollRepoMock(t)
	defer cleanup()
	repo := NewPollRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("poll-1").
		WillReturnRows(pollRows(nil, nil, nil, nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM poll_results WHERE poll_id = $1")).
		WithArgs("poll-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE polls SET question1_avg_mark").
		WithArgs(5.0, 4.0, 3.0, 5.0, 4.0, sqlmock.AnyArg(), "poll-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO poll_results").
		WithArgs("res-1", "poll-1", 5, 4, 3, 5, 4, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result := &models.PollResult{
		ID: "res-1", PollID: "poll-1",
		Question1: 5, Question2: 4, Question3: 3, Question4: 5, Question5: 4,
	}
	poll, err := repo.SubmitResult(context.Background(), result)
	require.NoError(t, err)
	require.NotNil(t, poll.Question3AvgMark)
	assert.InDelta(t, 3.0, *poll.Question3AvgMark, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPollRepositorySubmitResultIncrements(t *testing.T) {
	db, mock, cleanup := newPollRepoMock(t)
	defer cleanup()
	repo := NewPollRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("poll-1").
		WillReturnRows(pollRows(5.0, 4.0, 3.0, 5.0, 4.0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM poll_results WHERE poll_id = $1")).
		WithArgs("poll-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("UPDATE polls SET question1_avg_mark").
		WithArgs(3.0, 2.5, 2.0, 3.0, 2.5, sqlmock.AnyArg(), "poll-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO poll_results").
		WithArgs("res-2", "poll-1", 1, 1, 1, 1, 1, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result := &models.PollResult{
		ID: "res-2", PollID: "poll-1",
		Question1: 1, Question2: 1, Question3: 1, Question4: 1, Question5: 1,
	}
	poll, err := repo.SubmitResult(context.Background(), result)
	require.NoError(t, err)
	require.NotNil(t, poll.Question2AvgMark)
	assert.InDelta(t, 2.5, *poll.Question2AvgMark, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPollRepositorySubmitResultPollMissing(t *testing.T) {
	db, mock, cleanup := newPollRepoMock(t)
	defer cleanup()
	repo := NewPollRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.SubmitResult(context.Background(), &models.PollResult{ID: "res-1", PollID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
