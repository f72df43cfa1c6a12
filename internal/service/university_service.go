package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
)

type universityRepository interface {
	List(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error)
	FindByID(ctx context.Context, id string) (*models.University, error)
	Create(ctx context.Context, university *models.University) error
	Update(ctx context.Context, university *models.University) error
	Delete(ctx context.Context, id string) error
}

// CreateUniversityRequest creates a university.
type CreateUniversityRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	Address string `json:"address" validate:"max=512"`
}

// UpdateUniversityRequest updates university attributes.
type UpdateUniversityRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=255"`
	Address *string `json:"address" validate:"omitempty,max=512"`
}

// UniversityService manages the top level of the rated hierarchy.
type UniversityService struct {
	repo      universityRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUniversityService constructs a UniversityService.
func NewUniversityService(repo universityRepository, validate *validator.Validate, logger *zap.Logger) *UniversityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UniversityService{repo: repo, validator: validate, logger: logger}
}

// List returns universities with pagination metadata.
func (s *UniversityService) List(ctx context.Context, filter models.UniversityFilter) ([]models.University, *models.Pagination, error) {
	universities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list universities")
	}
	return universities, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one university by id.
func (s *UniversityService) Get(ctx context.Context, id string) (*models.University, error) {
	university, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}
	return university, nil
}

// Create registers a new university.
func (s *UniversityService) Create(ctx context.Context, req CreateUniversityRequest) (*models.University, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid university payload")
	}
	university := &models.University{ID: uuid.NewString(), Name: req.Name, Address: req.Address}
	if err := s.repo.Create(ctx, university); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create university")
	}
	s.logger.Info("university created", zap.String("university_id", university.ID))
	return university, nil
}

// Update applies partial changes to a university.
func (s *UniversityService) Update(ctx context.Context, id string, req UpdateUniversityRequest) (*models.University, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid university payload")
	}
	university, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		university.Name = *req.Name
	}
	if req.Address != nil {
		university.Address = *req.Address
	}
	if err := s.repo.Update(ctx, university); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update university")
	}
	return university, nil
}

// Delete removes a university and everything beneath it.
func (s *UniversityService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete university")
	}
	s.logger.Info("university deleted", zap.String("university_id", id))
	return nil
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
