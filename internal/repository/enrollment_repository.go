package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unirp/records-api/internal/models"
	appErrors "github.com/unirp/records-api/pkg/errors"
)

const uniqueViolation = "23505"

const enrollmentColumns = `id, student_id, course_id, assessment_marks, exam_marks, total_marks, grade,
        completion_status, credit_transfer_requested, credit_transfer_grade, verification_state,
        verifier_id, verification_comments, created_at, updated_at`

// EnrollmentRepository handles persistence of enrollments. Writes that
// require the PENDING precondition are single conditional statements so a
// racing update, delete, or verification can never half-apply.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByStudent returns all enrollments for a student, any state.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.assessment_marks, e.exam_marks, e.total_marks, e.grade,
        e.completion_status, e.credit_transfer_requested, e.credit_transfer_grade, e.verification_state,
        e.verifier_id, e.verification_comments, e.created_at, e.updated_at,
        c.name AS course_name, c.provider AS provider
        FROM enrollments e
        LEFT JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1
        ORDER BY e.created_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByState returns enrollments in the given verification state.
func (r *EnrollmentRepository) ListByState(ctx context.Context, state models.VerificationState) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.assessment_marks, e.exam_marks, e.total_marks, e.grade,
        e.completion_status, e.credit_transfer_requested, e.credit_transfer_grade, e.verification_state,
        e.verifier_id, e.verification_comments, e.created_at, e.updated_at,
        c.name AS course_name, c.provider AS provider
        FROM enrollments e
        LEFT JOIN courses c ON c.id = e.course_id
        WHERE e.verification_state = $1
        ORDER BY e.created_at ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, state); err != nil {
		return nil, fmt.Errorf("list enrollments by state: %w", err)
	}
	return enrollments, nil
}

// Exists reports whether the student already holds an enrollment for the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment record. The (student_id, course_id)
// uniqueness constraint backs the duplicate check under concurrency.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, student_id, course_id, assessment_marks, exam_marks, total_marks, grade,
        completion_status, credit_transfer_requested, credit_transfer_grade, verification_state,
        verifier_id, verification_comments, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :assessment_marks, :exam_marks, :total_marks, :grade,
        :completion_status, :credit_transfer_requested, :credit_transfer_grade, :verification_state,
        :verifier_id, :verification_comments, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdatePending applies the new mark and status values only while the
// record is still PENDING. Returns false when the conditional write
// matched no row, either because the record is gone or no longer pending.
func (r *EnrollmentRepository) UpdatePending(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	enrollment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments
        SET assessment_marks = $2, exam_marks = $3, total_marks = $4, grade = $5,
            completion_status = $6, credit_transfer_requested = $7, updated_at = $8
        WHERE id = $1 AND verification_state = $9`
	res, err := r.db.ExecContext(ctx, query,
		enrollment.ID,
		enrollment.AssessmentMarks,
		enrollment.ExamMarks,
		enrollment.TotalMarks,
		enrollment.Grade,
		enrollment.CompletionStatus,
		enrollment.CreditTransferRequested,
		enrollment.UpdatedAt,
		models.VerificationPending,
	)
	if err != nil {
		return false, fmt.Errorf("update enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update enrollment result: %w", err)
	}
	return affected > 0, nil
}

// DeletePending removes the record only while it is still PENDING.
func (r *EnrollmentRepository) DeletePending(ctx context.Context, id string) (bool, error) {
	const query = `DELETE FROM enrollments WHERE id = $1 AND verification_state = $2`
	res, err := r.db.ExecContext(ctx, query, id, models.VerificationPending)
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete enrollment result: %w", err)
	}
	return affected > 0, nil
}

// Verify transitions a PENDING record to its terminal state in one
// statement. When the decision is VERIFIED and a credit transfer was
// requested, the stored grade is snapshotted into credit_transfer_grade
// at the same instant; later boundary edits cannot reach it.
func (r *EnrollmentRepository) Verify(ctx context.Context, id, verifierID string, decision models.VerificationState, comments string) (bool, error) {
	const query = `UPDATE enrollments
        SET verification_state = $2,
            verifier_id = $3,
            verification_comments = $4,
            credit_transfer_grade = CASE
                WHEN $2 = $6 AND credit_transfer_requested THEN grade
                ELSE credit_transfer_grade
            END,
            updated_at = $5
        WHERE id = $1 AND verification_state = $7`
	res, err := r.db.ExecContext(ctx, query, id, decision, verifierID, comments, time.Now().UTC(),
		models.VerificationVerified, models.VerificationPending)
	if err != nil {
		return false, fmt.Errorf("verify enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("verify enrollment result: %w", err)
	}
	return affected > 0, nil
}
