package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
)

type stubRatedMeetings struct {
	meetings []models.RatedMeeting
	from, to time.Time
}

func (s *stubRatedMeetings) RatedMeetingsInRange(_ context.Context, _ string, from, to time.Time) ([]models.RatedMeeting, error) {
	s.from, s.to = from, to
	out := make([]models.RatedMeeting, 0, len(s.meetings))
	for _, m := range s.meetings {
		if m.Date.Before(from) || !m.Date.Before(to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func ratedMeeting(date time.Time, avg float64) models.RatedMeeting {
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

func newStatisticsFixture(meetings []models.RatedMeeting, now time.Time) (*StatisticsService, *stubRatedMeetings) {
	repo := &stubRatedMeetings{meetings: meetings}
	universities := &stubUniversities{universities: map[string]*models.University{
		"uni-1": {ID: "uni-1"},
	}}
	svc := NewStatisticsService(repo, universities, nil, 0, nil)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestStatisticsMonthlyOmitsEmptyMonths(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newStatisticsFixture([]models.RatedMeeting{
		ratedMeeting(time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC), 4),
		ratedMeeting(time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC), 2),
		ratedMeeting(time.Date(2024, time.January, 20, 10, 0, 0, 0, time.UTC), 5),
		// February has no rated meetings and must not appear
	}, now)

	resp, err := svc.Monthly(context.Background(), "uni-1")
	require.NoError(t, err)
	require.Len(t, resp.Months, 2)

	assert.Equal(t, "March", resp.Months[0].Name)
	assert.Equal(t, 2024, resp.Months[0].Year)
	assert.InDelta(t, 3.0, resp.Months[0].Rating, 1e-9)

	assert.Equal(t, "January", resp.Months[1].Name)
	assert.Equal(t, 2024, resp.Months[1].Year)
	assert.InDelta(t, 5.0, resp.Months[1].Rating, 1e-9)
}

func TestStatisticsMonthlySpansTwelveMonths(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	svc, repo := newStatisticsFixture([]models.RatedMeeting{
		ratedMeeting(time.Date(2023, time.April, 2, 0, 0, 0, 0, time.UTC), 4),
		// a year older than the window, must be ignored
		ratedMeeting(time.Date(2023, time.March, 2, 0, 0, 0, 0, time.UTC), 1),
	}, now)

	resp, err := svc.Monthly(context.Background(), "uni-1")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), repo.to)

	require.Len(t, resp.Months, 1)
	assert.Equal(t, "April", resp.Months[0].Name)
	assert.Equal(t, 2023, resp.Months[0].Year)
}

func TestStatisticsMonthlySkipsIncompletePolls(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	partial := models.RatedMeeting{Date: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)}
	four := 4.0
	partial.Question1AvgMark = &four

	svc, _ := newStatisticsFixture([]models.RatedMeeting{partial}, now)

	resp, err := svc.Monthly(context.Background(), "uni-1")
	require.NoError(t, err)
	assert.Empty(t, resp.Months)
}

func TestStatisticsWeeklyFebruary2024(t *testing.T) {
	// February 2024 starts on a Thursday and has 29 days: windows are
	// 1-4, 5-11, 12-18, 19-25, 26-29.
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newStatisticsFixture([]models.RatedMeeting{
		ratedMeeting(time.Date(2024, time.February, 2, 9, 0, 0, 0, time.UTC), 5),
		ratedMeeting(time.Date(2024, time.February, 4, 9, 0, 0, 0, time.UTC), 3),
		ratedMeeting(time.Date(2024, time.February, 12, 9, 0, 0, 0, time.UTC), 2),
		ratedMeeting(time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC), 4),
	}, now)

	resp, err := svc.Weekly(context.Background(), "uni-1", "February", "2024")
	require.NoError(t, err)
	require.Len(t, resp.Weeks, 5)

	require.NotNil(t, resp.Weeks[0].Rating)
	assert.InDelta(t, 4.0, *resp.Weeks[0].Rating, 1e-9)
	assert.Equal(t, 1, resp.Weeks[0].WeekNumber)

	assert.Nil(t, resp.Weeks[1].Rating)

	require.NotNil(t, resp.Weeks[2].Rating)
	assert.InDelta(t, 2.0, *resp.Weeks[2].Rating, 1e-9)

	assert.Nil(t, resp.Weeks[3].Rating)

	require.NotNil(t, resp.Weeks[4].Rating)
	assert.InDelta(t, 4.0, *resp.Weeks[4].Rating, 1e-9)
	assert.Equal(t, 5, resp.Weeks[4].WeekNumber)
}

func TestStatisticsWeeklyMonthStartingOnSunday(t *testing.T) {
	// September 2024 starts on a Sunday: the first window is the single
	// day 1, then full weeks follow.
	now := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newStatisticsFixture(nil, now)

	resp, err := svc.Weekly(context.Background(), "uni-1", "September", "2024")
	require.NoError(t, err)
	require.Len(t, resp.Weeks, 6)
	for _, week := range resp.Weeks {
		assert.Nil(t, week.Rating)
	}
}

func TestStatisticsWeeklyValidation(t *testing.T) {
	svc, _ := newStatisticsFixture(nil, time.Now())

	_, err := svc.Weekly(context.Background(), "uni-1", "", "2024")
	assert.ErrorIs(t, err, appErrors.ErrMissingParameter)

	_, err = svc.Weekly(context.Background(), "uni-1", "February", "")
	assert.ErrorIs(t, err, appErrors.ErrMissingParameter)

	_, err = svc.Weekly(context.Background(), "uni-1", "February", "20x4")
	assert.ErrorIs(t, err, appErrors.ErrInvalidYear)

	_, err = svc.Weekly(context.Background(), "uni-1", "Fevruary", "2024")
	assert.ErrorIs(t, err, appErrors.ErrInvalidMonth)

	// month names are case sensitive
	_, err = svc.Weekly(context.Background(), "uni-1", "february", "2024")
	assert.ErrorIs(t, err, appErrors.ErrInvalidMonth)
}

func TestStatisticsMonthlyUnknownUniversity(t *testing.T) {
	svc, _ := newStatisticsFixture(nil, time.Now())

	_, err := svc.Monthly(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
