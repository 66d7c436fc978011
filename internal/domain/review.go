package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	LearnerID uuid.UUID `json:"learner_id"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LearnerName string `json:"learner_name,omitempty"`
	CourseTitle string `json:"course_title,omitempty"`
}

func (r *Review) AuthoredBy(learnerID uuid.UUID) bool {
	return r.LearnerID == learnerID
}

// ValidateReview checks the user-supplied part of a review.
func ValidateReview(content string, rating int) error {
	if rating < MinRating || rating > MaxRating {
		return Validationf("rating must be between %d and %d", MinRating, MaxRating)
	}
	if strings.TrimSpace(content) == "" {
		return Validationf("review content is required")
	}
	return nil
}

// AverageRating returns the mean rating, or 0 for no reviews.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
