package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teachhub/internal/domain"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	gormCourse := toGormCourse(c)

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(gormCourse).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateTitle
		}
		return err
	}

	c.CreatedAt = gormCourse.CreatedAt
	c.UpdatedAt = gormCourse.UpdatedAt
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var course CourseGorm
	err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}
	return toDomainCourse(&course), nil
}

// GetDetails loads the course with its videos, reviews and the names of the
// people involved.
func (r *CourseRepository) GetDetails(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var course CourseGorm
	err := r.db.WithContext(ctx).
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("uploaded_at asc")
		}).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc")
		}).
		First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}

	result := toDomainCourse(&course)

	var teacher TeacherGorm
	if err := r.db.WithContext(ctx).Select("name").First(&teacher, "user_id = ?", course.TeacherID).Error; err == nil {
		result.TeacherName = teacher.Name
	}

	if len(result.Reviews) > 0 {
		learnerIDs := make([]uuid.UUID, 0, len(result.Reviews))
		for _, rv := range result.Reviews {
			learnerIDs = append(learnerIDs, rv.LearnerID)
		}
		var learners []LearnerGorm
		if err := r.db.WithContext(ctx).Where("user_id IN ?", learnerIDs).Find(&learners).Error; err != nil {
			return nil, err
		}
		names := make(map[uuid.UUID]string, len(learners))
		for _, l := range learners {
			names[l.UserID] = l.Name
		}
		for i := range result.Reviews {
			result.Reviews[i].LearnerName = names[result.Reviews[i].LearnerID]
		}
	}

	return result, nil
}

// TitleTaken reports whether the teacher already owns a course with exactly this
// title, ignoring the course identified by excludeID.
func (r *CourseRepository) TitleTaken(ctx context.Context, teacherID uuid.UUID, title string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&CourseGorm{}).
		Where("teacher_id = ? AND title = ?", teacherID, title)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) Update(ctx context.Context, c *domain.Course) error {
	result := r.db.WithContext(ctx).Model(&CourseGorm{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"title":       c.Title,
			"description": c.Description,
			"price":       c.Price,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateTitle
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).Model(&CourseGorm{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

// Delete hard-deletes an enrollment-free course together with its videos and
// reviews. Enrollments are never removed here.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollments int64
		if err := tx.Model(&EnrollmentGorm{}).Where("course_id = ?", id).Count(&enrollments).Error; err != nil {
			return err
		}
		if enrollments > 0 {
			return domain.ErrHasEnrollments
		}

		if err := tx.Where("course_id = ?", id).Delete(&VideoGorm{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&ReviewGorm{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&CourseGorm{}, "id = ?", id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
				return domain.ErrHasEnrollments
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrCourseNotFound
		}
		return nil
	})
}

func (r *CourseRepository) AddVideo(ctx context.Context, v *domain.Video) error {
	return r.db.WithContext(ctx).Create(&VideoGorm{
		ID:         v.ID,
		CourseID:   v.CourseID,
		Title:      v.Title,
		URL:        v.URL,
		UploadedAt: v.UploadedAt,
	}).Error
}

// RemoveVideos deletes the listed videos that belong to the course and
// returns the ids actually removed.
func (r *CourseRepository) RemoveVideos(ctx context.Context, courseID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var owned []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&VideoGorm{}).
			Where("course_id = ? AND id IN ?", courseID, ids).
			Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return nil
		}
		return tx.Where("id IN ?", owned).Delete(&VideoGorm{}).Error
	})
	return owned, err
}

func (r *CourseRepository) List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error) {
	query := r.db.WithContext(ctx).Model(&CourseGorm{}).
		Joins("LEFT JOIN teachers ON teachers.user_id = courses.teacher_id")

	if filter.ActiveOnly {
		query = query.Where("courses.is_active = ?", true)
	}
	if filter.TeacherID != uuid.Nil {
		query = query.Where("courses.teacher_id = ?", filter.TeacherID)
	}
	if filter.ExcludeLearner != uuid.Nil {
		query = query.Where("NOT EXISTS (SELECT 1 FROM enrollments e WHERE e.course_id = courses.id AND e.learner_id = ?)", filter.ExcludeLearner)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(courses.title) LIKE ? OR LOWER(teachers.name) LIKE ?)", pattern, pattern)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var rows []CourseGorm
	if err := query.Order("courses.created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}

	names, err := r.teacherNames(ctx, rows)
	if err != nil {
		return nil, err
	}

	courses := make([]domain.Course, 0, len(rows))
	for i := range rows {
		c := toDomainCourse(&rows[i])
		c.TeacherName = names[c.TeacherID]
		courses = append(courses, *c)
	}
	return courses, nil
}

func (r *CourseRepository) teacherNames(ctx context.Context, rows []CourseGorm) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	if len(rows) == 0 {
		return names, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TeacherID)
	}
	var teachers []TeacherGorm
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&teachers).Error; err != nil {
		return nil, err
	}
	for _, t := range teachers {
		names[t.UserID] = t.Name
	}
	return names, nil
}
