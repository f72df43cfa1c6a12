package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/novatorsmobile/studentvoice-api/internal/dto"
	"github.com/novatorsmobile/studentvoice-api/internal/models"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
)

type ratingPollReader interface {
	PollsBySubject(ctx context.Context, subjectID string) ([]models.Poll, error)
	PollsByTeacher(ctx context.Context, teacherID string) ([]models.Poll, error)
	PollsByUniversity(ctx context.Context, universityID string) ([]models.Poll, error)
}

type meetingPollReader interface {
	FindByMeetingID(ctx context.Context, meetingID string) (*models.Poll, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ListByUniversity(ctx context.Context, universityID string) ([]models.Subject, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListByUniversity(ctx context.Context, universityID string) ([]models.Teacher, error)
}

type universityReader interface {
	FindByID(ctx context.Context, id string) (*models.University, error)
}

// RatingService derives entity ratings from poll state on every read.
// A rating is nil when the entity has no rated descendants; entities
// without data are excluded from parent averages, never counted as zero.
type RatingService struct {
	polls        ratingPollReader
	meetingPolls meetingPollReader
	subjects     subjectReader
	teachers     teacherReader
	universities universityReader
	logger       *zap.Logger
}

// NewRatingService constructs a RatingService.
func NewRatingService(polls ratingPollReader, meetingPolls meetingPollReader, subjects subjectReader, teachers teacherReader, universities universityReader, logger *zap.Logger) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{
		polls:        polls,
		meetingPolls: meetingPolls,
		subjects:     subjects,
		teachers:     teachers,
		universities: universities,
		logger:       logger,
	}
}

// Meeting returns a meeting's rating: the mean of its poll's five
// per-question averages, nil until the poll has complete data.
func (s *RatingService) Meeting(ctx context.Context, meetingID string) (*float64, error) {
	poll, err := s.meetingPolls.FindByMeetingID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meeting poll")
	}
	return poll.AverageMark(), nil
}

// Subject returns the mean of the defined meeting ratings under a subject.
func (s *RatingService) Subject(ctx context.Context, subjectID string) (*float64, error) {
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	polls, err := s.polls.PollsBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject polls")
	}
	return meanOfPolls(polls), nil
}

// Teacher returns the mean of the defined meeting ratings the teacher
// holds, lectures and practices pooled.
func (s *RatingService) Teacher(ctx context.Context, teacherID string) (*float64, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	polls, err := s.polls.PollsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher polls")
	}
	return meanOfPolls(polls), nil
}

// University returns the three university rollups. The overall rating is
// computed from the union of meetings under the university's subjects, not
// from subject means.
func (s *RatingService) University(ctx context.Context, universityID string) (*dto.UniversityRatingResponse, error) {
	if _, err := s.universities.FindByID(ctx, universityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}

	polls, err := s.polls.PollsByUniversity(ctx, universityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university polls")
	}

	subjects, err := s.subjects.ListByUniversity(ctx, universityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	subjectRatings := make([]*float64, 0, len(subjects))
	for _, subject := range subjects {
		subjectPolls, err := s.polls.PollsBySubject(ctx, subject.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject polls")
		}
		subjectRatings = append(subjectRatings, meanOfPolls(subjectPolls))
	}

	teachers, err := s.teachers.ListByUniversity(ctx, universityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	teacherRatings := make([]*float64, 0, len(teachers))
	for _, teacher := range teachers {
		teacherPolls, err := s.polls.PollsByTeacher(ctx, teacher.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher polls")
		}
		teacherRatings = append(teacherRatings, meanOfPolls(teacherPolls))
	}

	return &dto.UniversityRatingResponse{
		Rating:         meanOfPolls(polls),
		SubjectsRating: meanOfRatings(subjectRatings),
		TeachersRating: meanOfRatings(teacherRatings),
	}, nil
}

// meanOfPolls averages the overall ratings of the given polls, skipping
// polls without complete data. Nil when nothing qualifies.
func meanOfPolls(polls []models.Poll) *float64 {
	ratings := make([]*float64, 0, len(polls))
	for i := range polls {
		ratings = append(ratings, polls[i].AverageMark())
	}
	return meanOfRatings(ratings)
}

// meanOfRatings averages the defined entries; undefined entries are
// excluded rather than treated as zero. Nil when none are defined.
func meanOfRatings(ratings []*float64) *float64 {
	var sum float64
	count := 0
	for _, r := range ratings {
		if r == nil {
			continue
		}
		sum += *r
		count++
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}
