package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	"github.com/novatorsmobile/studentvoice-api/pkg/config"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
)

type stubPollRepo struct {
	submitted *models.PollResult
	poll      *models.Poll
	submitErr error
}

func (s *stubPollRepo) List(_ context.Context, _, _ int) ([]models.Poll, int, error) {
	return nil, 0, nil
}

func (s *stubPollRepo) FindByID(_ context.Context, id string) (*models.Poll, error) {
	if s.poll == nil || s.poll.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.poll, nil
}

func (s *stubPollRepo) ResultsByPoll(_ context.Context, _ string) ([]models.PollResult, error) {
	return nil, nil
}

func (s *stubPollRepo) SubmitResult(_ context.Context, result *models.PollResult) (*models.Poll, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	s.submitted = result
	return s.poll, nil
}

func intPtr(v int) *int { return &v }

func TestPollServiceSubmitDefaultsOmittedScores(t *testing.T) {
	repo := &stubPollRepo{poll: &models.Poll{ID: "poll-1"}}
	svc := NewPollService(repo, nil, nil, nil, config.PollsConfig{})

	_, err := svc.Submit(context.Background(), "poll-1", SubmitPollResultRequest{
		Question1: intPtr(3),
	})
	require.NoError(t, err)
	require.NotNil(t, repo.submitted)
	assert.Equal(t, 3, repo.submitted.Question1)
	assert.Equal(t, 5, repo.submitted.Question2)
	assert.Equal(t, 5, repo.submitted.Question3)
	assert.Equal(t, 5, repo.submitted.Question4)
	assert.Equal(t, 5, repo.submitted.Question5)
	assert.NotEmpty(t, repo.submitted.ID)
}

func TestPollServiceSubmitRejectsOutOfRangeScore(t *testing.T) {
	repo := &stubPollRepo{poll: &models.Poll{ID: "poll-1"}}
	svc := NewPollService(repo, nil, nil, nil, config.PollsConfig{})

	_, err := svc.Submit(context.Background(), "poll-1", SubmitPollResultRequest{
		Question2: intPtr(6),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Nil(t, repo.submitted)

	_, err = svc.Submit(context.Background(), "poll-1", SubmitPollResultRequest{
		Question4: intPtr(0),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestPollServiceSubmitUnknownPoll(t *testing.T) {
	repo := &stubPollRepo{submitErr: sql.ErrNoRows}
	svc := NewPollService(repo, nil, nil, nil, config.PollsConfig{})

	_, err := svc.Submit(context.Background(), "missing", SubmitPollResultRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
