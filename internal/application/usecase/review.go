package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"teachhub/internal/domain"
)

type ReviewUseCase struct {
	users       UserStore
	courses     CourseStore
	enrollments EnrollmentStore
	reviews     ReviewStore
	cache       CourseCache
	now         func() time.Time
}

type ReviewOption func(*ReviewUseCase)

func WithReviewCache(c CourseCache) ReviewOption {
	return func(uc *ReviewUseCase) { uc.cache = c }
}

func WithReviewClock(fn func() time.Time) ReviewOption {
	return func(uc *ReviewUseCase) { uc.now = fn }
}

func NewReviewUseCase(users UserStore, courses CourseStore, enrollments EnrollmentStore, reviews ReviewStore, opts ...ReviewOption) *ReviewUseCase {
	uc := &ReviewUseCase{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		reviews:     reviews,
		cache:       noopCache{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// SubmitReview records the learner's single review of a course they are
// enrolled in.
func (uc *ReviewUseCase) SubmitReview(ctx context.Context, learnerID, courseID uuid.UUID, content string, rating int) (*domain.Review, error) {
	if err := domain.ValidateReview(content, rating); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProfileIncomplete
		}
		return nil, err
	}
	if !user.IsLearner() {
		return nil, domain.ErrProfileIncomplete
	}

	course, err := uc.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := uc.enrollments.Exists(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, domain.ErrForbidden
	}

	exists, err := uc.reviews.Exists(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateReview
	}

	now := uc.now().UTC()
	review := &domain.Review{
		ID:          uuid.New(),
		CourseID:    courseID,
		LearnerID:   learnerID,
		Content:     strings.TrimSpace(content),
		Rating:      rating,
		CreatedAt:   now,
		UpdatedAt:   now,
		LearnerName: user.Profile.DisplayName(),
		CourseTitle: course.Title,
	}
	// The unique index still rejects a concurrent duplicate here.
	if err := uc.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	invalidateCourses(ctx, uc.cache, courseID)
	return review, nil
}

func (uc *ReviewUseCase) EditReview(ctx context.Context, learnerID, reviewID uuid.UUID, content string, rating int) (*domain.Review, error) {
	if err := domain.ValidateReview(content, rating); err != nil {
		return nil, err
	}
	review, err := uc.authoredReview(ctx, learnerID, reviewID)
	if err != nil {
		return nil, err
	}

	review.Content = strings.TrimSpace(content)
	review.Rating = rating
	review.UpdatedAt = uc.now().UTC()
	if err := uc.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	invalidateCourses(ctx, uc.cache, review.CourseID)
	return review, nil
}

func (uc *ReviewUseCase) DeleteReview(ctx context.Context, learnerID, reviewID uuid.UUID) error {
	review, err := uc.authoredReview(ctx, learnerID, reviewID)
	if err != nil {
		return err
	}
	if err := uc.reviews.Delete(ctx, review); err != nil {
		return err
	}
	invalidateCourses(ctx, uc.cache, review.CourseID)
	return nil
}

func (uc *ReviewUseCase) authoredReview(ctx context.Context, learnerID, reviewID uuid.UUID) (*domain.Review, error) {
	review, err := uc.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.AuthoredBy(learnerID) {
		return nil, domain.ErrForbidden
	}
	return review, nil
}
