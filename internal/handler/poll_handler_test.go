package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	"github.com/novatorsmobile/studentvoice-api/internal/service"
	"github.com/novatorsmobile/studentvoice-api/pkg/config"
	"github.com/novatorsmobile/studentvoice-api/pkg/response"
)

type pollRepoMock struct {
	poll      *models.Poll
	submitted *models.PollResult
}

func (m *pollRepoMock) List(_ context.Context, _, _ int) ([]models.Poll, int, error) {
	if m.poll == nil {
		return nil, 0, nil
	}
	return []models.Poll{*m.poll}, 1, nil
}

func (m *pollRepoMock) FindByID(_ context.Context, id string) (*models.Poll, error) {
	if m.poll == nil || m.poll.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.poll, nil
}

func (m *pollRepoMock) ResultsByPoll(_ context.Context, _ string) ([]models.PollResult, error) {
	return nil, nil
}

func (m *pollRepoMock) SubmitResult(_ context.Context, result *models.PollResult) (*models.Poll, error) {
	if m.poll == nil || m.poll.ID != result.PollID {
		return nil, sql.ErrNoRows
	}
	m.submitted = result
	avg := func(v int) *float64 { f := float64(v); return &f }
	m.poll.Question1AvgMark = avg(result.Question1)
	m.poll.Question2AvgMark = avg(result.Question2)
	m.poll.Question3AvgMark = avg(result.Question3)
	m.poll.Question4AvgMark = avg(result.Question4)
	m.poll.Question5AvgMark = avg(result.Question5)
	return m.poll, nil
}

func newPollHandler(repo *pollRepoMock) *PollHandler {
	svc := service.NewPollService(repo, nil, nil, nil, config.PollsConfig{MinScore: 1, MaxScore: 5, DefaultScore: 5})
	return NewPollHandler(svc)
}

func TestPollHandlerSubmitUpdatesAverages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &pollRepoMock{poll: &models.Poll{ID: "poll-1"}}
	handler := newPollHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"question1":4,"question2":4,"question3":4,"question4":4,"question5":4,"comment1":"great lecture"}`
	req, _ := http.NewRequest(http.MethodPost, "/polls/poll-1/results", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "poll-1"}}

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.submitted)
	assert.Equal(t, 4, repo.submitted.Question1)
	require.NotNil(t, repo.submitted.Comment1)
	assert.Equal(t, "great lecture", *repo.submitted.Comment1)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestPollHandlerSubmitDefaultsEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &pollRepoMock{poll: &models.Poll{ID: "poll-1"}}
	handler := newPollHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/polls/poll-1/results", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "poll-1"}}

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.submitted)
	assert.Equal(t, 5, repo.submitted.Question1)
	assert.Equal(t, 5, repo.submitted.Question5)
}

func TestPollHandlerSubmitRejectsBadScore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &pollRepoMock{poll: &models.Poll{ID: "poll-1"}}
	handler := newPollHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/polls/poll-1/results", bytes.NewBufferString(`{"question1":9}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "poll-1"}}

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, repo.submitted)
}

func TestPollHandlerGetUnknownPoll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPollHandler(&pollRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/polls/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}
