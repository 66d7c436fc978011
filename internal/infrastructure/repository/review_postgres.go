package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teachhub/internal/domain"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Exists(ctx context.Context, learnerID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ReviewGorm{}).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		Count(&count).Error
	return count > 0, err
}

// Create stores the review and refreshes the course rating in the same
// transaction. The unique index turns a racing second review into
// ErrDuplicateReview.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	model := &ReviewGorm{
		ID:        review.ID,
		CourseID:  review.CourseID,
		LearnerID: review.LearnerID,
		Content:   review.Content,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateReview
			}
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return domain.ErrCourseNotFound
			}
			return err
		}
		return refreshCourseRating(tx, review.CourseID)
	})
	if err != nil {
		return err
	}
	review.CreatedAt = model.CreatedAt
	review.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var model ReviewGorm
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainReview(&model), nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ReviewGorm{}).
			Where("id = ?", review.ID).
			Updates(map[string]interface{}{
				"content":    review.Content,
				"rating":     review.Rating,
				"updated_at": review.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return refreshCourseRating(tx, review.CourseID)
	})
}

func (r *ReviewRepository) Delete(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&ReviewGorm{}, "id = ?", review.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return refreshCourseRating(tx, review.CourseID)
	})
}

// ListByLearner returns the learner's reviews with the reviewed course titles.
func (r *ReviewRepository) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Review, error) {
	var rows []struct {
		ReviewGorm
		CourseTitle string
	}
	err := r.db.WithContext(ctx).Table("reviews").
		Select("reviews.*, courses.title AS course_title").
		Joins("JOIN courses ON courses.id = reviews.course_id").
		Where("reviews.learner_id = ?", learnerID).
		Order("reviews.created_at desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Review, 0, len(rows))
	for i := range rows {
		rv := toDomainReview(&rows[i].ReviewGorm)
		rv.CourseTitle = rows[i].CourseTitle
		result = append(result, *rv)
	}
	return result, nil
}

// refreshCourseRating stores the mean of the course's review ratings, 0 when
// it has none.
func refreshCourseRating(tx *gorm.DB, courseID uuid.UUID) error {
	var ratings []int
	if err := tx.Model(&ReviewGorm{}).Where("course_id = ?", courseID).Pluck("rating", &ratings).Error; err != nil {
		return err
	}
	return tx.Model(&CourseGorm{}).
		Where("id = ?", courseID).
		Update("rating", domain.AverageRating(ratings)).Error
}
