package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unirp/records-api/internal/models"
	appErrors "github.com/unirp/records-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdatePending(ctx context.Context, enrollment *models.Enrollment) (bool, error)
	DeletePending(ctx context.Context, id string) (bool, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// CreateEnrollmentRequest describes enrollment creation payload. Marks are
// capped per component so the total lands on the boundary scale.
type CreateEnrollmentRequest struct {
	CourseID         string                  `json:"course_id" validate:"required"`
	AssessmentMarks  float64                 `json:"assessment_marks" validate:"gte=0,lte=50"`
	ExamMarks        float64                 `json:"exam_marks" validate:"gte=0,lte=50"`
	CompletionStatus models.CompletionStatus `json:"completion_status" validate:"required,oneof=IN_PROGRESS COMPLETED NOT_COMPLETED"`
}

// EnrollmentPatch enumerates the only fields a student may change while
// the record is pending. Absent fields are left untouched.
type EnrollmentPatch struct {
	AssessmentMarks         *float64                 `json:"assessment_marks,omitempty" validate:"omitempty,gte=0,lte=50"`
	ExamMarks               *float64                 `json:"exam_marks,omitempty" validate:"omitempty,gte=0,lte=50"`
	CompletionStatus        *models.CompletionStatus `json:"completion_status,omitempty" validate:"omitempty,oneof=IN_PROGRESS COMPLETED NOT_COMPLETED"`
	CreditTransferRequested *bool                    `json:"credit_transfer_requested,omitempty"`
}

// EnrollmentService enforces the enrollment workflow: ownership, legal
// state transitions, and derivation of total marks and grade on every
// write.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   courseReader
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, courses courseReader, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, cache: cache, validator: validate, logger: logger}
}

// ListForStudent returns all of the student's enrollments, any state.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Create registers the student on a course with freshly derived totals and
// grade. The new record always starts PENDING with no credit transfer.
func (s *EnrollmentService) Create(ctx context.Context, studentID string, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	exists, err := s.repo.Exists(ctx, studentID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
	}

	total := req.AssessmentMarks + req.ExamMarks
	grade, err := ComputeGrade(total, course.Boundaries)
	if err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		StudentID:         studentID,
		CourseID:          req.CourseID,
		AssessmentMarks:   req.AssessmentMarks,
		ExamMarks:         req.ExamMarks,
		TotalMarks:        total,
		Grade:             grade,
		CompletionStatus:  req.CompletionStatus,
		VerificationState: models.VerificationPending,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrDuplicateEnrollment.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	s.invalidatePending(ctx)
	return enrollment, nil
}

// Update applies the patch for the owning student while the record is
// still pending. Derived fields are recomputed whenever a mark changes.
func (s *EnrollmentService) Update(ctx context.Context, id, actorID string, patch EnrollmentPatch) (*models.Enrollment, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment patch")
	}
	enrollment, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if enrollment.VerificationState != models.VerificationPending {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "")
	}

	marksChanged := false
	if patch.AssessmentMarks != nil {
		enrollment.AssessmentMarks = *patch.AssessmentMarks
		marksChanged = true
	}
	if patch.ExamMarks != nil {
		enrollment.ExamMarks = *patch.ExamMarks
		marksChanged = true
	}
	if patch.CompletionStatus != nil {
		enrollment.CompletionStatus = *patch.CompletionStatus
	}
	if patch.CreditTransferRequested != nil {
		enrollment.CreditTransferRequested = *patch.CreditTransferRequested
	}

	if marksChanged {
		course, err := s.courses.FindByID(ctx, enrollment.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
		enrollment.TotalMarks = enrollment.AssessmentMarks + enrollment.ExamMarks
		grade, err := ComputeGrade(enrollment.TotalMarks, course.Boundaries)
		if err != nil {
			return nil, err
		}
		enrollment.Grade = grade
	}

	ok, err := s.repo.UpdatePending(ctx, enrollment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	if !ok {
		// Lost the race to a concurrent verification.
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "")
	}
	s.invalidatePending(ctx)
	return enrollment, nil
}

// Delete removes the record for the owning student while it is still pending.
func (s *EnrollmentService) Delete(ctx context.Context, id, actorID string) error {
	enrollment, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return err
	}
	if enrollment.VerificationState != models.VerificationPending {
		return appErrors.Clone(appErrors.ErrStateConflict, "")
	}
	ok, err := s.repo.DeletePending(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrStateConflict, "")
	}
	s.invalidatePending(ctx)
	return nil
}

func (s *EnrollmentService) loadOwned(ctx context.Context, id, actorID string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.StudentID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another student")
	}
	return enrollment, nil
}

func (s *EnrollmentService) invalidatePending(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("%s*", pendingCacheKey)); err != nil {
		s.logger.Warn("pending cache invalidation failed", zap.Error(err))
	}
}
