package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
	"github.com/novatorsmobile/studentvoice-api/pkg/forms"
)

type meetingRepository interface {
	List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error)
	FindByID(ctx context.Context, id string) (*models.Meeting, error)
	CreateWithPoll(ctx context.Context, meeting *models.Meeting, poll *models.Poll) error
	Update(ctx context.Context, meeting *models.Meeting) error
	Delete(ctx context.Context, id string) error
}

type formRepository interface {
	Create(ctx context.Context, form *models.Form) error
	FindByMeetingID(ctx context.Context, meetingID string) (*models.Form, error)
}

// FormsClient provisions an external feedback form for a meeting.
type FormsClient interface {
	CreateFeedbackForm(ctx context.Context, title string) (*forms.CreatedForm, error)
}

// FormEnqueuer schedules asynchronous feedback form creation.
type FormEnqueuer interface {
	Enqueue(meetingID, title string) error
}

// CreateMeetingRequest creates a meeting. Every meeting gets an empty
// poll at the same time.
type CreateMeetingRequest struct {
	SubjectID string    `json:"subject_id" validate:"required,uuid4"`
	TeacherID string    `json:"teacher_id" validate:"required,uuid4"`
	Name      string    `json:"name" validate:"required,min=2,max=255"`
	Type      string    `json:"type" validate:"required,oneof=lecture practice"`
	Date      time.Time `json:"date" validate:"required"`
}

// UpdateMeetingRequest applies partial meeting changes.
type UpdateMeetingRequest struct {
	SubjectID *string    `json:"subject_id" validate:"omitempty,uuid4"`
	Name      *string    `json:"name" validate:"omitempty,min=2,max=255"`
	Type      *string    `json:"type" validate:"omitempty,oneof=lecture practice"`
	Date      *time.Time `json:"date"`
}

// MeetingService manages meetings, their polls and external feedback forms.
type MeetingService struct {
	repo      meetingRepository
	subjects  subjectReader
	teachers  teacherReader
	formRepo  formRepository
	forms     FormEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
}

// NewMeetingService constructs a MeetingService. forms and cache may be
// nil when the integrations are disabled.
func NewMeetingService(repo meetingRepository, subjects subjectReader, teachers teacherReader, formRepo formRepository, forms FormEnqueuer, validate *validator.Validate, logger *zap.Logger, cache *CacheService) *MeetingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeetingService{
		repo:      repo,
		subjects:  subjects,
		teachers:  teachers,
		formRepo:  formRepo,
		forms:     forms,
		validator: validate,
		logger:    logger,
		cache:     cache,
	}
}

// List returns meetings with pagination metadata.
func (s *MeetingService) List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, *models.Pagination, error) {
	meetings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meetings")
	}
	return meetings, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one meeting by id.
func (s *MeetingService) Get(ctx context.Context, id string) (*models.Meeting, error) {
	meeting, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meeting")
	}
	return meeting, nil
}

// Create registers a meeting together with its empty poll. When the
// forms integration is enabled it also provisions an external feedback
// form; a forms failure does not roll the meeting back.
func (s *MeetingService) Create(ctx context.Context, req CreateMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}
	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	meeting := &models.Meeting{
		ID:        uuid.NewString(),
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		Name:      req.Name,
		Type:      models.MeetingType(req.Type),
		Date:      req.Date.UTC(),
	}
	poll := &models.Poll{ID: uuid.NewString()}
	if err := s.repo.CreateWithPoll(ctx, meeting, poll); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create meeting")
	}
	s.logger.Info("meeting created",
		zap.String("meeting_id", meeting.ID),
		zap.String("poll_id", poll.ID),
		zap.String("subject_id", meeting.SubjectID))

	if s.forms != nil {
		title := fmt.Sprintf("%s / %s (%s)", subject.Name, meeting.Name, meeting.Date.Format("02.01.2006"))
		if err := s.forms.Enqueue(meeting.ID, title); err != nil {
			s.logger.Warn("feedback form job not enqueued", zap.String("meeting_id", meeting.ID), zap.Error(err))
		}
	}

	s.invalidateStatistics(ctx)
	return meeting, nil
}

// Update applies partial changes to a meeting.
func (s *MeetingService) Update(ctx context.Context, id string, req UpdateMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}
	meeting, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SubjectID != nil {
		if _, err := s.subjects.FindByID(ctx, *req.SubjectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
		meeting.SubjectID = *req.SubjectID
	}
	if req.Name != nil {
		meeting.Name = *req.Name
	}
	if req.Type != nil {
		meeting.Type = models.MeetingType(*req.Type)
	}
	if req.Date != nil {
		meeting.Date = req.Date.UTC()
	}
	if err := s.repo.Update(ctx, meeting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update meeting")
	}
	s.invalidateStatistics(ctx)
	return meeting, nil
}

// Delete removes a meeting with its poll and results.
func (s *MeetingService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete meeting")
	}
	s.logger.Info("meeting deleted", zap.String("meeting_id", id))
	s.invalidateStatistics(ctx)
	return nil
}

// Form returns the external feedback form attached to a meeting.
func (s *MeetingService) Form(ctx context.Context, meetingID string) (*models.Form, error) {
	if _, err := s.Get(ctx, meetingID); err != nil {
		return nil, err
	}
	form, err := s.formRepo.FindByMeetingID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting has no feedback form")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load form")
	}
	return form, nil
}

func (s *MeetingService) invalidateStatistics(ctx context.Context) {
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, "statistics:*")
	}
}
