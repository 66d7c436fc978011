package domain

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment records that a learner paid for a course. It is written once and
// never updated.
type Enrollment struct {
	LearnerID     uuid.UUID `json:"learner_id"`
	CourseID      uuid.UUID `json:"course_id"`
	TransactionID string    `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	TransactionAt time.Time `json:"transaction_at"`

	CourseTitle string `json:"course_title,omitempty"`
	LearnerName string `json:"learner_name,omitempty"`
}

// CourseSales summarises enrollments of a single course for its teacher.
type CourseSales struct {
	CourseID     uuid.UUID `json:"course_id"`
	Title        string    `json:"title"`
	IsActive     bool      `json:"is_active"`
	StudentCount int64     `json:"student_count"`
	Revenue      int64     `json:"revenue"`
}
