package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unirp/records-api/internal/models"
	appErrors "github.com/unirp/records-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	ReplaceBoundaries(ctx context.Context, courseID string, boundaries []models.GradeBoundary) error
}

// GradeBoundaryRequest is one (letter, minimum total) row of a boundary table.
type GradeBoundaryRequest struct {
	Letter   string  `json:"letter" validate:"required"`
	MinTotal float64 `json:"min_total"`
}

// CreateCourseRequest describes course creation payload.
type CreateCourseRequest struct {
	Name          string                 `json:"name" validate:"required"`
	Provider      string                 `json:"provider" validate:"required"`
	Instructor    string                 `json:"instructor" validate:"required"`
	Department    string                 `json:"department" validate:"required"`
	DurationWeeks int                    `json:"duration_weeks" validate:"required,gt=0"`
	Boundaries    []GradeBoundaryRequest `json:"grade_boundaries" validate:"required,dive"`
}

// UpdateBoundariesRequest replaces a course's boundary table.
type UpdateBoundariesRequest struct {
	Boundaries []GradeBoundaryRequest `json:"grade_boundaries" validate:"required,dive"`
}

// CourseService manages the course catalog and its boundary tables.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns the catalog.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course with its boundary table.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create validates the boundary invariant and persists a new course.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	boundaries := toBoundaries(req.Boundaries)
	if err := ValidateBoundaries(boundaries); err != nil {
		return nil, err
	}
	course := &models.Course{
		Name:          req.Name,
		Provider:      req.Provider,
		Instructor:    req.Instructor,
		Department:    req.Department,
		DurationWeeks: req.DurationWeeks,
		Boundaries:    boundaries,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	created, err := s.repo.FindByID(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return created, nil
}

// UpdateBoundaries replaces the boundary table of an existing course.
// Grades already stored on enrollments are not recomputed; they keep the
// values derived when they were written.
func (s *CourseService) UpdateBoundaries(ctx context.Context, id string, req UpdateBoundariesRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid boundaries payload")
	}
	boundaries := toBoundaries(req.Boundaries)
	if err := ValidateBoundaries(boundaries); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if err := s.repo.ReplaceBoundaries(ctx, id, boundaries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update boundaries")
	}
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return updated, nil
}

func toBoundaries(payload []GradeBoundaryRequest) []models.GradeBoundary {
	boundaries := make([]models.GradeBoundary, len(payload))
	for i, p := range payload {
		boundaries[i] = models.GradeBoundary{Letter: p.Letter, MinTotal: p.MinTotal, Position: i}
	}
	return boundaries
}
