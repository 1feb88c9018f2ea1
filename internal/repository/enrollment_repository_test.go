package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/unirp/records-api/internal/models"
	appErrors "github.com/unirp/records-api/pkg/errors"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func enrollmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "assessment_marks", "exam_marks", "total_marks", "grade",
		"completion_status", "credit_transfer_requested", "credit_transfer_grade", "verification_state",
		"verifier_id", "verification_comments", "created_at", "updated_at",
	})
}

func TestEnrollmentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := enrollmentRows().
		AddRow("enr-1", "stu-1", "crs-1", 45.0, 50.0, 95.0, "O",
			models.CompletionCompleted, false, nil, models.VerificationPending,
			nil, "", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE id = $1")).
		WithArgs("enr-1").
		WillReturnRows(rows)

	enrollment, err := repo.FindByID(context.Background(), "enr-1")
	require.NoError(t, err)
	require.Equal(t, "O", enrollment.Grade)
	require.Equal(t, models.VerificationPending, enrollment.VerificationState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "assessment_marks", "exam_marks", "total_marks", "grade",
		"completion_status", "credit_transfer_requested", "credit_transfer_grade", "verification_state",
		"verifier_id", "verification_comments", "created_at", "updated_at", "course_name", "provider",
	}).AddRow("enr-1", "stu-1", "crs-1", 45.0, 50.0, 95.0, "O",
		models.CompletionCompleted, false, nil, models.VerificationPending,
		nil, "", time.Now(), time.Now(), "Machine Learning", "Coursera")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	enrollments, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	require.Equal(t, "Machine Learning", enrollments[0].CourseName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &models.Enrollment{
		StudentID: "stu-1",
		CourseID:  "crs-1",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{
		StudentID:         "stu-1",
		CourseID:          "crs-1",
		AssessmentMarks:   45,
		ExamMarks:         50,
		TotalMarks:        95,
		Grade:             "O",
		CompletionStatus:  models.CompletionCompleted,
		VerificationState: models.VerificationPending,
	}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	require.NotEmpty(t, enrollment.ID)
	require.False(t, enrollment.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdatePendingRowGone(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("UPDATE enrollments").
		WithArgs("enr-1", 45.0, 50.0, 95.0, "O", models.CompletionCompleted, false,
			sqlmock.AnyArg(), models.VerificationPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdatePending(context.Background(), &models.Enrollment{
		ID:               "enr-1",
		AssessmentMarks:  45,
		ExamMarks:        50,
		TotalMarks:       95,
		Grade:            "O",
		CompletionStatus: models.CompletionCompleted,
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeletePending(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE id = $1 AND verification_state = $2")).
		WithArgs("enr-1", models.VerificationPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.DeletePending(context.Background(), "enr-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryVerify(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("UPDATE enrollments").
		WithArgs("enr-1", models.VerificationVerified, "tutor-1", "looks right", sqlmock.AnyArg(),
			models.VerificationVerified, models.VerificationPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Verify(context.Background(), "enr-1", "tutor-1", models.VerificationVerified, "looks right")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryVerifyAlreadyAdjudicated(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("UPDATE enrollments").
		WithArgs("enr-1", models.VerificationRejected, "tutor-2", "", sqlmock.AnyArg(),
			models.VerificationVerified, models.VerificationPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Verify(context.Background(), "enr-1", "tutor-2", models.VerificationRejected, "")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
