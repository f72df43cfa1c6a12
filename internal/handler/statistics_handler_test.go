package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	"github.com/novatorsmobile/studentvoice-api/internal/service"
	"github.com/novatorsmobile/studentvoice-api/pkg/response"
)

type ratedMeetingsMock struct {
	meetings []models.RatedMeeting
}

func (m *ratedMeetingsMock) RatedMeetingsInRange(_ context.Context, _ string, from, to time.Time) ([]models.RatedMeeting, error) {
	out := make([]models.RatedMeeting, 0, len(m.meetings))
	for _, meeting := range m.meetings {
		if meeting.Date.Before(from) || !meeting.Date.Before(to) {
			continue
		}
		out = append(out, meeting)
	}
	return out, nil
}

type universitiesMock struct {
	known map[string]bool
}

func (m *universitiesMock) FindByID(_ context.Context, id string) (*models.University, error) {
	if !m.known[id] {
		return nil, sql.ErrNoRows
	}
	return &models.University{ID: id}, nil
}

func fullRating(date time.Time, avg float64) models.RatedMeeting {
	v := avg
	return models.RatedMeeting{
		Date:             date,
		Question1AvgMark: &v,
		Question2AvgMark: &v,
		Question3AvgMark: &v,
		Question4AvgMark: &v,
		Question5AvgMark: &v,
	}
}

func newStatisticsHandler(meetings []models.RatedMeeting) *StatisticsHandler {
	svc := service.NewStatisticsService(
		&ratedMeetingsMock{meetings: meetings},
		&universitiesMock{known: map[string]bool{"uni-1": true}},
		nil, 0, nil,
	)
	return NewStatisticsHandler(svc)
}

func TestStatisticsHandlerWeekly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStatisticsHandler([]models.RatedMeeting{
		fullRating(time.Date(2024, time.February, 2, 9, 0, 0, 0, time.UTC), 4),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/universities/uni-1/statistics/weekly?month=February&year=2024", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "uni-1"}}

	handler.Weekly(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Weeks []struct {
				WeekNumber int      `json:"week_number"`
				Rating     *float64 `json:"rating"`
			} `json:"weeks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Weeks, 5)
	require.NotNil(t, envelope.Data.Weeks[0].Rating)
	assert.InDelta(t, 4.0, *envelope.Data.Weeks[0].Rating, 1e-9)
	// empty weeks are present with explicit null ratings
	assert.Nil(t, envelope.Data.Weeks[1].Rating)
}

func TestStatisticsHandlerWeeklyRejectsBadMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStatisticsHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/universities/uni-1/statistics/weekly?month=Fevruary&year=2024", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "uni-1"}}

	handler.Weekly(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_MONTH", envelope.Error.Code)
}

func TestStatisticsHandlerWeeklyRequiresParameters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStatisticsHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/universities/uni-1/statistics/weekly", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "uni-1"}}

	handler.Weekly(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "MISSING_PARAMETER", envelope.Error.Code)
}

func TestStatisticsHandlerMonthlyUnknownUniversity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStatisticsHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/universities/missing/statistics/monthly", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Monthly(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
