package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teachhub/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	gormUser := &UserGorm{
		ID:       user.ID,
		Email:    user.Email,
		Password: user.PasswordHash,
	}

	result := r.db.WithContext(ctx).Create(gormUser)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return result.Error
	}

	user.CreatedAt = gormUser.CreatedAt
	user.UpdatedAt = gormUser.UpdatedAt
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var userModel UserGorm

	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Learner").
		First(&userModel, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return toDomainUser(&userModel), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var userModel UserGorm

	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Learner").
		Where("email = ?", email).
		First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return toDomainUser(&userModel), nil
}

// IsProfileComplete reports whether the user has finished creating a role profile.
func (r *UserRepository) IsProfileComplete(ctx context.Context, id uuid.UUID) (bool, error) {
	var userModel UserGorm
	err := r.db.WithContext(ctx).Select("profile_complete").First(&userModel, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrUserNotFound
		}
		return false, err
	}
	return userModel.ProfileComplete, nil
}

// CreateProfile attaches a teacher or learner role to the user and marks the
// profile complete. A user who already has either role gets ErrProfileExists.
func (r *UserRepository) CreateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userModel UserGorm
		if err := tx.First(&userModel, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		if domain.ProfileKind(userModel.ProfileKind) != domain.ProfileNone {
			return domain.ErrProfileExists
		}

		var err error
		switch profile.Kind {
		case domain.ProfileTeacher:
			t := profile.Teacher
			err = tx.Create(&TeacherGorm{UserID: userID, Name: t.Name, Bio: t.Bio, PictureURL: t.PictureURL}).Error
		case domain.ProfileLearner:
			l := profile.Learner
			err = tx.Create(&LearnerGorm{UserID: userID, Name: l.Name, PictureURL: l.PictureURL}).Error
		default:
			return domain.Validationf("unknown profile kind %d", profile.Kind)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrProfileExists
			}
			return err
		}

		return tx.Model(&UserGorm{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"profile_kind":     int(profile.Kind),
				"profile_complete": true,
			}).Error
	})
}

// UpdateProfile rewrites the name, bio and picture of the role named by
// profile.Kind. An empty PictureURL keeps the stored picture. A user without
// that role gets ErrNotFound. Returns the teacher's courses, whose cached
// views carry the teacher name.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) ([]uuid.UUID, error) {
	var courseIDs []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			model   interface{}
			changes map[string]interface{}
			picture string
		)
		switch profile.Kind {
		case domain.ProfileTeacher:
			t := profile.Teacher
			model = &TeacherGorm{}
			changes = map[string]interface{}{"name": t.Name, "bio": t.Bio}
			picture = t.PictureURL
		case domain.ProfileLearner:
			l := profile.Learner
			model = &LearnerGorm{}
			changes = map[string]interface{}{"name": l.Name}
			picture = l.PictureURL
		default:
			return domain.Validationf("unknown profile kind %d", profile.Kind)
		}
		if picture != "" {
			changes["picture_url"] = picture
		}

		if err := tx.First(model, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(model).Where("user_id = ?", userID).Updates(changes).Error; err != nil {
			return err
		}

		if profile.Kind == domain.ProfileTeacher {
			return tx.Model(&CourseGorm{}).Where("teacher_id = ?", userID).Pluck("id", &courseIDs).Error
		}
		return nil
	})
	return courseIDs, err
}

// DeleteTeacher removes the teacher role and everything hanging off its
// courses, enrollments included.
func (r *UserRepository) DeleteTeacher(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var courseIDs []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var teacher TeacherGorm
		if err := tx.First(&teacher, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if err := tx.Model(&CourseGorm{}).Where("teacher_id = ?", userID).Pluck("id", &courseIDs).Error; err != nil {
			return err
		}
		if len(courseIDs) > 0 {
			for _, model := range []interface{}{&EnrollmentGorm{}, &ReviewGorm{}, &VideoGorm{}} {
				if err := tx.Where("course_id IN ?", courseIDs).Delete(model).Error; err != nil {
					return fmt.Errorf("delete course dependents: %w", err)
				}
			}
			if err := tx.Where("id IN ?", courseIDs).Delete(&CourseGorm{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&TeacherGorm{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return resetProfile(tx, userID)
	})
	return courseIDs, err
}

// DeleteLearner removes the learner role and its reviews. It refuses while any
// enrollment references the learner. Returns the courses whose reviews were removed.
func (r *UserRepository) DeleteLearner(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var courseIDs []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var learner LearnerGorm
		if err := tx.First(&learner, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		var enrollments int64
		if err := tx.Model(&EnrollmentGorm{}).Where("learner_id = ?", userID).Count(&enrollments).Error; err != nil {
			return err
		}
		if enrollments > 0 {
			return domain.ErrHasEnrollments
		}

		if err := tx.Model(&ReviewGorm{}).Where("learner_id = ?", userID).Distinct().Pluck("course_id", &courseIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("learner_id = ?", userID).Delete(&ReviewGorm{}).Error; err != nil {
			return err
		}
		for _, courseID := range courseIDs {
			if err := refreshCourseRating(tx, courseID); err != nil {
				return err
			}
		}

		if err := tx.Delete(&LearnerGorm{}, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return domain.ErrHasEnrollments
			}
			return err
		}
		return resetProfile(tx, userID)
	})
	return courseIDs, err
}

func resetProfile(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&UserGorm{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"profile_kind":     int(domain.ProfileNone),
			"profile_complete": false,
		}).Error
}
