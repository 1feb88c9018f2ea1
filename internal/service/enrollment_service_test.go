package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unirp/records-api/internal/models"
	appErrors "github.com/unirp/records-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
	created     *models.Enrollment
	deleted     []string
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var list []models.EnrollmentDetail
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			list = append(list, models.EnrollmentDetail{Enrollment: e})
		}
	}
	return list, nil
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "new-enroll"
	}
	m.enrollments[enrollment.ID] = *enrollment
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) UpdatePending(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	current, ok := m.enrollments[enrollment.ID]
	if !ok || current.VerificationState != models.VerificationPending {
		return false, nil
	}
	m.enrollments[enrollment.ID] = *enrollment
	return true, nil
}

func (m *mockEnrollmentRepo) DeletePending(ctx context.Context, id string) (bool, error) {
	current, ok := m.enrollments[id]
	if !ok || current.VerificationState != models.VerificationPending {
		return false, nil
	}
	delete(m.enrollments, id)
	m.deleted = append(m.deleted, id)
	return true, nil
}

type stubCourseReader struct {
	courses map[string]*models.Course
}

func (s *stubCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := s.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func newCourseReader() *stubCourseReader {
	return &stubCourseReader{courses: map[string]*models.Course{
		"c1": {ID: "c1", Name: "Distributed Systems", Boundaries: standardBoundaries()},
	}}
}

func ptrFloat(f float64) *float64 { return &f }

func TestEnrollmentServiceCreateDerivesGrade(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, newCourseReader(), nil, validator.New(), zap.NewNop())

	enrollment, err := svc.Create(context.Background(), "s7", CreateEnrollmentRequest{
		CourseID:         "c1",
		AssessmentMarks:  45,
		ExamMarks:        50,
		CompletionStatus: models.CompletionCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, 95.0, enrollment.TotalMarks)
	assert.Equal(t, "O", enrollment.Grade)
	assert.Equal(t, models.VerificationPending, enrollment.VerificationState)
	assert.False(t, enrollment.CreditTransferRequested)
	assert.NotNil(t, repo.created)
}

func TestEnrollmentServiceCreateFailGrade(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, newCourseReader(), nil, validator.New(), zap.NewNop())

	enrollment, err := svc.Create(context.Background(), "s7", CreateEnrollmentRequest{
		CourseID:         "c1",
		AssessmentMarks:  20,
		ExamMarks:        15,
		CompletionStatus: models.CompletionNotCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, 35.0, enrollment.TotalMarks)
	assert.Equal(t, models.GradeFail, enrollment.Grade)
}

func TestEnrollmentServiceCreateDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s7", CourseID: "c1", VerificationState: models.VerificationPending},
	}}
	svc := NewEnrollmentService(repo, newCourseReader(), nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "s7", CreateEnrollmentRequest{
		CourseID:         "c1",
		AssessmentMarks:  30,
		ExamMarks:        30,
		CompletionStatus: models.CompletionInProgress,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceCreateUnknownCourse(t *testing.T) {
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, newCourseReader(), nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "s7", CreateEnrollmentRequest{
		CourseID:         "missing",
		AssessmentMarks:  30,
		ExamMarks:        30,
		CompletionStatus: models.CompletionInProgress,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceCreateRejectsOutOfRangeMarks(t *testing.T) {
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, newCourseReader(), nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "s7", CreateEnrollmentRequest{
		CourseID:         "c1",
		AssessmentMarks:  80,
		ExamMarks:        10,
		CompletionStatus: models.CompletionInProgress,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceUpdateRecomputesDerivedFields(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s7", CourseID: "c1", AssessmentMarks: 20, ExamMarks: 15,
			TotalMarks: 35, Grade: models.GradeFail, CompletionStatus: models.CompletionInProgress,
			VerificationState: models.VerificationPending},
	}}
	svc := NewEnrollmentService(repo, newCourseReader(), nil, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "e1", "s7", EnrollmentPatch{
		AssessmentMarks: ptrFloat(45),
		ExamMarks:       ptrFloat(48),
	})
	require.NoError(t, err)
	assert.Equal(t, 93.0, updated.TotalMarks)
	assert.Equal(t, "O", updated.Grade)
	// Untouched fields stay as they were.
	assert.Equal(t, models.CompletionInProgress, updated.CompletionStatus)
}

func TestEnrollmentServiceUpdateStatusOnlyKeepsGrade(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s7", CourseID: "c1", AssessmentMarks: 45, ExamMarks: 50,
			TotalMarks: 95, Grade: "O", CompletionStatus: models.CompletionInProgress,
			VerificationState: models.VerificationPending},
	}}
	svc := NewEnrollmentService(repo, newCourseReader(), nil, validator.New(), zap.NewNop())

	status := models.CompletionCompleted
	flag := true
	updated, err := svc.Update(context.Background(), "e1", "s7", EnrollmentPatch{
		CompletionStatus:        &status,
		CreditTransferRequested: &flag,
	})
	require.NoError(t, err)
	assert.Equal(t, "O", updated.Grade)
	assert.Equal(t, 95.0, updated.TotalMarks)
	assert.True(t, updated.CreditTransferRequested)
}

func TestEnrollmentServiceUpdateRequiresOwnership(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s7", CourseID: "c1", VerificationState: models.VerificationPending},
	}}
	svc := NewEnrollmentService(repo, newCourseReader(), nil, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "e1", "someone-else", EnrollmentPatch{AssessmentMarks: ptrFloat(10)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceUpdateVerifiedRecordConflicts(t *testing.T) {
	stored := models.Enrollment{ID: "e1", StudentID: "s7", CourseID: "c1", AssessmentMarks: 45,
		ExamMarks: 50, TotalMarks: 95, Grade: "O", VerificationState: models.VerificationVerified}
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{"e1": stored}}
	svc := NewEnrollmentService(repo, newCourseReader(), nil, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "e1", "s7", EnrollmentPatch{AssessmentMarks: ptrFloat(1)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
	// Stored record untouched by the rejected update.
	assert.Equal(t, stored, repo.enrollments["e1"])
}

func TestEnrollmentServiceDelete(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s7", CourseID: "c1", VerificationState: models.VerificationPending},
	}}
	svc := NewEnrollmentService(repo, newCourseReader(), nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "e1", "s7"))
	assert.Contains(t, repo.deleted, "e1")

	err := svc.Delete(context.Background(), "e1", "s7")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceDeleteRejectedRecordConflicts(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s7", CourseID: "c1", VerificationState: models.VerificationRejected},
	}}
	svc := NewEnrollmentService(repo, newCourseReader(), nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "e1", "s7")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceBoundaryEditDoesNotRecomputeStoredGrade(t *testing.T) {
	courses := newCourseReader()
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, courses, nil, validator.New(), zap.NewNop())

	enrollment, err := svc.Create(context.Background(), "s7", CreateEnrollmentRequest{
		CourseID:         "c1",
		AssessmentMarks:  45,
		ExamMarks:        50,
		CompletionStatus: models.CompletionCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, "O", enrollment.Grade)

	// Tighten the boundaries after the fact; the stored grade must not move.
	courses.courses["c1"].Boundaries = []models.GradeBoundary{{Letter: "O", MinTotal: 99}}

	list, err := svc.ListForStudent(context.Background(), "s7")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "O", list[0].Grade)
}
