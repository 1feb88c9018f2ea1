package models

import "time"

// VerificationState represents the adjudication status of an enrollment.
type VerificationState string

// Enrollments start PENDING; VERIFIED and REJECTED are terminal.
const (
	VerificationPending  VerificationState = "PENDING"
	VerificationVerified VerificationState = "VERIFIED"
	VerificationRejected VerificationState = "REJECTED"
)

// CompletionStatus is supplied by the student, independent of the grade.
type CompletionStatus string

// Possible completion statuses.
const (
	CompletionInProgress   CompletionStatus = "IN_PROGRESS"
	CompletionCompleted    CompletionStatus = "COMPLETED"
	CompletionNotCompleted CompletionStatus = "NOT_COMPLETED"
)

// MaxComponentMarks caps each mark component so the combined total stays
// on the 0-100 scale that grade boundaries are authored on.
const MaxComponentMarks = 50.0

// Enrollment links one student to one course with marks, the derived
// grade, and the verification lifecycle. TotalMarks and Grade are always
// recomputed from the mark components, never set independently.
type Enrollment struct {
	ID                      string            `db:"id" json:"id"`
	StudentID               string            `db:"student_id" json:"student_id"`
	CourseID                string            `db:"course_id" json:"course_id"`
	AssessmentMarks         float64           `db:"assessment_marks" json:"assessment_marks"`
	ExamMarks               float64           `db:"exam_marks" json:"exam_marks"`
	TotalMarks              float64           `db:"total_marks" json:"total_marks"`
	Grade                   string            `db:"grade" json:"grade"`
	CompletionStatus        CompletionStatus  `db:"completion_status" json:"completion_status"`
	CreditTransferRequested bool              `db:"credit_transfer_requested" json:"credit_transfer_requested"`
	CreditTransferGrade     *string           `db:"credit_transfer_grade" json:"credit_transfer_grade,omitempty"`
	VerificationState       VerificationState `db:"verification_state" json:"verification_state"`
	VerifierID              *string           `db:"verifier_id" json:"verifier_id,omitempty"`
	VerificationComments    string            `db:"verification_comments" json:"verification_comments"`
	CreatedAt               time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time         `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with course info for listings.
type EnrollmentDetail struct {
	Enrollment
	CourseName string `db:"course_name" json:"course_name"`
	Provider   string `db:"provider" json:"provider"`
}
