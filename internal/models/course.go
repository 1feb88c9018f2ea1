package models

import "time"

// GradeFail is the sentinel grade for totals below every boundary.
const GradeFail = "FAIL"

// GradeBoundary maps a letter grade to the minimum total that earns it.
// A course's boundary table is ordered by MinTotal descending.
type GradeBoundary struct {
	ID       string  `db:"id" json:"-"`
	CourseID string  `db:"course_id" json:"-"`
	Letter   string  `db:"letter" json:"letter"`
	MinTotal float64 `db:"min_total" json:"min_total"`
	Position int     `db:"position" json:"-"`
}

// Course is a catalog entry carrying the boundary table used to derive
// letter grades for its enrollments.
type Course struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Provider      string          `db:"provider" json:"provider"`
	Instructor    string          `db:"instructor" json:"instructor"`
	Department    string          `db:"department" json:"department"`
	DurationWeeks int             `db:"duration_weeks" json:"duration_weeks"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	Boundaries    []GradeBoundary `json:"grade_boundaries,omitempty"`
}
