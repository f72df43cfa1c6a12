package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/novatorsmobile/studentvoice-api/internal/dto"
	"github.com/novatorsmobile/studentvoice-api/internal/models"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
)

// monthlyWindow is how many months back the monthly statistics reach,
// including the current month.
const monthlyWindow = 12

// monthsByName resolves English month names. Matching is case sensitive:
// "february" or "Fevruary" are rejected, not guessed at.
var monthsByName = map[string]time.Month{
	"January":   time.January,
	"February":  time.February,
	"March":     time.March,
	"April":     time.April,
	"May":       time.May,
	"June":      time.June,
	"July":      time.July,
	"August":    time.August,
	"September": time.September,
	"October":   time.October,
	"November":  time.November,
	"December":  time.December,
}

type ratedMeetingReader interface {
	RatedMeetingsInRange(ctx context.Context, universityID string, from, to time.Time) ([]models.RatedMeeting, error)
}

// StatisticsService builds time-bucketed rating statistics for a
// university from its rated meetings.
type StatisticsService struct {
	meetings     ratedMeetingReader
	universities universityReader
	cache        *CacheService
	cacheTTL     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewStatisticsService constructs a StatisticsService. cache may be nil.
func NewStatisticsService(meetings ratedMeetingReader, universities universityReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		meetings:     meetings,
		universities: universities,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *StatisticsService) checkUniversity(ctx context.Context, universityID string) error {
	if _, err := s.universities.FindByID(ctx, universityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}
	return nil
}

// Monthly returns per-month average ratings for the trailing twelve
// months, current month first. Months without positively rated meetings
// are omitted rather than reported as zero.
func (s *StatisticsService) Monthly(ctx context.Context, universityID string) (*dto.MonthlyStatisticsResponse, error) {
	if err := s.checkUniversity(ctx, universityID); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("statistics:monthly:%s", universityID)
	if s.cache.Enabled() {
		var cached dto.MonthlyStatisticsResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	now := s.now().UTC()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := currentMonth.AddDate(0, -(monthlyWindow - 1), 0)
	to := currentMonth.AddDate(0, 1, 0)

	meetings, err := s.meetings.RatedMeetingsInRange(ctx, universityID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rated meetings")
	}

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[time.Time]*bucket)
	for i := range meetings {
		rating := meetings[i].Rating()
		if rating == nil || *rating <= 0 {
			continue
		}
		date := meetings[i].Date.UTC()
		key := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += *rating
		b.count++
	}

	resp := &dto.MonthlyStatisticsResponse{Months: make([]dto.MonthBucket, 0, monthlyWindow)}
	for i := 0; i < monthlyWindow; i++ {
		month := currentMonth.AddDate(0, -i, 0)
		b, ok := buckets[month]
		if !ok {
			continue
		}
		resp.Months = append(resp.Months, dto.MonthBucket{
			Name:   month.Month().String(),
			Year:   month.Year(),
			Rating: b.sum / float64(b.count),
		})
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, resp, s.cacheTTL)
	}
	return resp, nil
}

// Weekly returns per-week average ratings for one named month. Week
// windows run from the month's first day and break after each Sunday;
// the last window ends with the month. Every window is reported, with a
// null rating when it holds no rated meetings.
func (s *StatisticsService) Weekly(ctx context.Context, universityID, monthName, year string) (*dto.WeeklyStatisticsResponse, error) {
	if monthName == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingParameter, "month is required")
	}
	if year == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingParameter, "year is required")
	}
	yearNum, err := strconv.Atoi(year)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidYear, fmt.Sprintf("invalid year %q", year))
	}
	month, ok := monthsByName[monthName]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidMonth, fmt.Sprintf("unrecognized month %q", monthName))
	}
	if err := s.checkUniversity(ctx, universityID); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("statistics:weekly:%s:%d:%s", universityID, yearNum, monthName)
	if s.cache.Enabled() {
		var cached dto.WeeklyStatisticsResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	monthStart := time.Date(yearNum, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	meetings, err := s.meetings.RatedMeetingsInRange(ctx, universityID, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rated meetings")
	}

	resp := &dto.WeeklyStatisticsResponse{Weeks: make([]dto.WeekBucket, 0, 6)}
	weekNumber := 0
	for start := monthStart; start.Before(monthEnd); {
		daysUntilSunday := (7 - int(start.Weekday())) % 7
		end := start.AddDate(0, 0, daysUntilSunday+1)
		if end.After(monthEnd) {
			end = monthEnd
		}
		weekNumber++

		var sum float64
		count := 0
		for i := range meetings {
			date := meetings[i].Date.UTC()
			if date.Before(start) || !date.Before(end) {
				continue
			}
			rating := meetings[i].Rating()
			if rating == nil || *rating <= 0 {
				continue
			}
			sum += *rating
			count++
		}

		week := dto.WeekBucket{WeekNumber: weekNumber}
		if count > 0 {
			mean := sum / float64(count)
			week.Rating = &mean
		}
		resp.Weeks = append(resp.Weeks, week)
		start = end
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, resp, s.cacheTTL)
	}
	return resp, nil
}
