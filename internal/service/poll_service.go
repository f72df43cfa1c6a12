package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	"github.com/novatorsmobile/studentvoice-api/pkg/config"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
)

type pollRepo interface {
	List(ctx context.Context, page, size int) ([]models.Poll, int, error)
	FindByID(ctx context.Context, id string) (*models.Poll, error)
	ResultsByPoll(ctx context.Context, pollID string) ([]models.PollResult, error)
	SubmitResult(ctx context.Context, result *models.PollResult) (*models.Poll, error)
}

// SubmitPollResultRequest is one respondent's answer set. Omitted scores
// fall back to the configured default.
type SubmitPollResultRequest struct {
	Question1 *int    `json:"question1"`
	Question2 *int    `json:"question2"`
	Question3 *int    `json:"question3"`
	Question4 *int    `json:"question4"`
	Question5 *int    `json:"question5"`
	Comment1  *string `json:"comment1" validate:"omitempty,max=1024"`
	Comment2  *string `json:"comment2" validate:"omitempty,max=1024"`
}

// PollService is the write path of the rating engine: it accepts poll
// results and maintains the per-poll running averages.
type PollService struct {
	repo      pollRepo
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	scale     config.PollsConfig
}

// NewPollService constructs a PollService. metrics may be nil.
func NewPollService(repo pollRepo, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, scale config.PollsConfig) *PollService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if scale.MinScore == 0 && scale.MaxScore == 0 {
		scale = config.PollsConfig{MinScore: 1, MaxScore: 5, DefaultScore: 5}
	}
	return &PollService{repo: repo, validator: validate, logger: logger, metrics: metrics, scale: scale}
}

// List returns polls with pagination metadata.
func (s *PollService) List(ctx context.Context, page, size int) ([]models.Poll, *models.Pagination, error) {
	polls, total, err := s.repo.List(ctx, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list polls")
	}
	return polls, paginationFor(page, size, total), nil
}

// Get returns one poll by id.
func (s *PollService) Get(ctx context.Context, id string) (*models.Poll, error) {
	poll, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "poll not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load poll")
	}
	return poll, nil
}

// Results returns the recorded answer sets of a poll.
func (s *PollService) Results(ctx context.Context, pollID string) ([]models.PollResult, error) {
	if _, err := s.Get(ctx, pollID); err != nil {
		return nil, err
	}
	results, err := s.repo.ResultsByPoll(ctx, pollID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list poll results")
	}
	return results, nil
}

// Submit validates and records one result, returning the poll with its
// averages already updated. The averages update and the result append are
// atomic: a failed submission leaves no partial state.
func (s *PollService) Submit(ctx context.Context, pollID string, req SubmitPollResultRequest) (*models.Poll, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid poll result payload")
	}

	scores := make([]int, models.QuestionCount)
	for i, raw := range []*int{req.Question1, req.Question2, req.Question3, req.Question4, req.Question5} {
		score := s.scale.DefaultScore
		if raw != nil {
			score = *raw
		}
		if score < s.scale.MinScore || score > s.scale.MaxScore {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("question%d must be between %d and %d", i+1, s.scale.MinScore, s.scale.MaxScore))
		}
		scores[i] = score
	}

	result := &models.PollResult{
		ID:        uuid.NewString(),
		PollID:    pollID,
		Question1: scores[0],
		Question2: scores[1],
		Question3: scores[2],
		Question4: scores[3],
		Question5: scores[4],
		Comment1:  req.Comment1,
		Comment2:  req.Comment2,
	}

	poll, err := s.repo.SubmitResult(ctx, result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "poll not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record poll result")
	}

	s.metrics.RecordPollSubmission()
	s.logger.Info("poll result recorded",
		zap.String("poll_id", pollID),
		zap.String("result_id", result.ID))
	return poll, nil
}
