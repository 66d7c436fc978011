package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teachhub/internal/domain"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Exists(ctx context.Context, learnerID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&EnrollmentGorm{}).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the enrollment. A second row for the same learner and course
// is rejected by the primary key and reported as ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, e *domain.Enrollment) error {
	err := r.db.WithContext(ctx).Create(&EnrollmentGorm{
		LearnerID:     e.LearnerID,
		CourseID:      e.CourseID,
		TransactionID: e.TransactionID,
		Amount:        e.Amount,
		TransactionAt: e.TransactionAt,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyEnrolled
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.ErrCourseNotFound
		}
		return err
	}
	return nil
}

func (r *EnrollmentRepository) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Enrollment, error) {
	var rows []struct {
		EnrollmentGorm
		CourseTitle string
	}
	err := r.db.WithContext(ctx).Table("enrollments").
		Select("enrollments.*, courses.title AS course_title").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.learner_id = ?", learnerID).
		Order("enrollments.transaction_at desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Enrollment, 0, len(rows))
	for i := range rows {
		e := toDomainEnrollment(&rows[i].EnrollmentGorm)
		e.CourseTitle = rows[i].CourseTitle
		result = append(result, *e)
	}
	return result, nil
}

// ListByCourse returns the transaction ledger of a course, newest first.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]domain.Enrollment, error) {
	var rows []struct {
		EnrollmentGorm
		LearnerName string
	}
	err := r.db.WithContext(ctx).Table("enrollments").
		Select("enrollments.*, learners.name AS learner_name").
		Joins("LEFT JOIN learners ON learners.user_id = enrollments.learner_id").
		Where("enrollments.course_id = ?", courseID).
		Order("enrollments.transaction_at desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Enrollment, 0, len(rows))
	for i := range rows {
		e := toDomainEnrollment(&rows[i].EnrollmentGorm)
		e.LearnerName = rows[i].LearnerName
		result = append(result, *e)
	}
	return result, nil
}

// SalesByTeacher counts students and revenue for every course the teacher owns,
// including courses nobody has bought yet.
func (r *EnrollmentRepository) SalesByTeacher(ctx context.Context, teacherID uuid.UUID) ([]domain.CourseSales, error) {
	var rows []struct {
		CourseID     uuid.UUID
		Title        string
		IsActive     bool
		StudentCount int64
		Revenue      int64
	}
	err := r.db.WithContext(ctx).Table("courses").
		Select("courses.id AS course_id, courses.title, courses.is_active, COUNT(enrollments.learner_id) AS student_count, COALESCE(SUM(enrollments.amount), 0) AS revenue").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id").
		Where("courses.teacher_id = ?", teacherID).
		Group("courses.id, courses.title, courses.is_active").
		Order("courses.title asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.CourseSales, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.CourseSales{
			CourseID:     row.CourseID,
			Title:        row.Title,
			IsActive:     row.IsActive,
			StudentCount: row.StudentCount,
			Revenue:      row.Revenue,
		})
	}
	return result, nil
}
