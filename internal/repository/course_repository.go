package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unirp/records-api/internal/models"
)

// CourseRepository handles persistence of courses and their boundary tables.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all courses without their boundary tables.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name, provider, instructor, department, duration_weeks, created_at, updated_at
        FROM courses ORDER BY name ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course including its ordered boundary table.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, provider, instructor, department, duration_weeks, created_at, updated_at
        FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	boundaries, err := r.boundaries(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Boundaries = boundaries
	return &course, nil
}

func (r *CourseRepository) boundaries(ctx context.Context, courseID string) ([]models.GradeBoundary, error) {
	const query = `SELECT id, course_id, letter, min_total, position
        FROM course_grade_boundaries WHERE course_id = $1 ORDER BY position ASC`
	var boundaries []models.GradeBoundary
	if err := r.db.SelectContext(ctx, &boundaries, query, courseID); err != nil {
		return nil, fmt.Errorf("load grade boundaries: %w", err)
	}
	return boundaries, nil
}

// Create persists a course and its boundary table in one transaction.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create course: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertCourse = `INSERT INTO courses (id, name, provider, instructor, department, duration_weeks, created_at, updated_at)
        VALUES (:id, :name, :provider, :instructor, :department, :duration_weeks, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertCourse, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	if err := insertBoundaries(ctx, tx, course.ID, course.Boundaries); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create course: %w", err)
	}
	return nil
}

// ReplaceBoundaries swaps the boundary table for a course. Stored
// enrollment grades are untouched; they keep the values computed when
// they were written.
func (r *CourseRepository) ReplaceBoundaries(ctx context.Context, courseID string, boundaries []models.GradeBoundary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace boundaries: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM course_grade_boundaries WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("clear grade boundaries: %w", err)
	}
	if err := insertBoundaries(ctx, tx, courseID, boundaries); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE courses SET updated_at = $2 WHERE id = $1`, courseID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch course: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace boundaries: %w", err)
	}
	return nil
}

func insertBoundaries(ctx context.Context, tx *sqlx.Tx, courseID string, boundaries []models.GradeBoundary) error {
	const query = `INSERT INTO course_grade_boundaries (id, course_id, letter, min_total, position)
        VALUES ($1, $2, $3, $4, $5)`
	for i, b := range boundaries {
		id := b.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, id, courseID, b.Letter, b.MinTotal, i); err != nil {
			return fmt.Errorf("insert grade boundary %s: %w", b.Letter, err)
		}
	}
	return nil
}
