package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teachhub/internal/domain"
)

type UserGorm struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email           string    `gorm:"uniqueIndex;not null;size:100"`
	Password        string    `gorm:"not null"`
	ProfileKind     int       `gorm:"not null;default:0"`
	ProfileComplete bool      `gorm:"not null;default:false"`

	Teacher *TeacherGorm `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Learner *LearnerGorm `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserGorm) TableName() string { return "users" }

type TeacherGorm struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null;size:100"`
	Bio        string    `gorm:"not null;size:500"`
	PictureURL string

	Courses []CourseGorm `gorm:"foreignKey:TeacherID;references:UserID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
}

func (TeacherGorm) TableName() string { return "teachers" }

type LearnerGorm struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null;size:100"`
	PictureURL string

	// A learner referenced by enrollments cannot be removed.
	Enrollments []EnrollmentGorm `gorm:"foreignKey:LearnerID;references:UserID;constraint:OnDelete:RESTRICT;"`
	Reviews     []ReviewGorm     `gorm:"foreignKey:LearnerID;references:UserID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
}

func (LearnerGorm) TableName() string { return "learners" }

type CourseGorm struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeacherID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_teacher_title"`
	Title       string    `gorm:"not null;size:200;uniqueIndex:idx_course_teacher_title"`
	Description string
	Price       int64   `gorm:"not null;default:0"`
	IsActive    bool    `gorm:"not null;default:true;index"`
	Rating      float64 `gorm:"not null;default:0"`

	Videos      []VideoGorm      `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;"`
	Reviews     []ReviewGorm     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;"`
	Enrollments []EnrollmentGorm `gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CourseGorm) TableName() string { return "courses" }

type VideoGorm struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title      string    `gorm:"not null"`
	URL        string    `gorm:"not null"`
	UploadedAt time.Time
}

func (VideoGorm) TableName() string { return "videos" }

// The composite key is the only thing standing between two concurrent
// enrollments of the same learner.
type EnrollmentGorm struct {
	LearnerID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID      uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	TransactionID string    `gorm:"not null;size:100"`
	Amount        int64     `gorm:"not null"`
	TransactionAt time.Time `gorm:"not null"`
}

func (EnrollmentGorm) TableName() string { return "enrollments" }

type ReviewGorm struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_learner_course;index"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_learner_course"`
	Content   string    `gorm:"type:text;not null"`
	Rating    int       `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ReviewGorm) TableName() string { return "reviews" }

// Migrate creates or updates every catalog table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserGorm{},
		&TeacherGorm{},
		&LearnerGorm{},
		&CourseGorm{},
		&VideoGorm{},
		&EnrollmentGorm{},
		&ReviewGorm{},
	)
}

func toDomainUser(u *UserGorm) *domain.User {
	user := &domain.User{
		ID:              u.ID,
		Email:           u.Email,
		PasswordHash:    u.Password,
		ProfileComplete: u.ProfileComplete,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	switch domain.ProfileKind(u.ProfileKind) {
	case domain.ProfileTeacher:
		if u.Teacher != nil {
			user.Profile = domain.TeacherProfile(domain.TeacherData{
				Name:       u.Teacher.Name,
				Bio:        u.Teacher.Bio,
				PictureURL: u.Teacher.PictureURL,
			})
		}
	case domain.ProfileLearner:
		if u.Learner != nil {
			user.Profile = domain.LearnerProfile(domain.LearnerData{
				Name:       u.Learner.Name,
				PictureURL: u.Learner.PictureURL,
			})
		}
	}
	return user
}

func toGormCourse(c *domain.Course) *CourseGorm {
	return &CourseGorm{
		ID:          c.ID,
		TeacherID:   c.TeacherID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		IsActive:    c.IsActive,
		Rating:      c.Rating,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toDomainCourse(c *CourseGorm) *domain.Course {
	course := &domain.Course{
		ID:          c.ID,
		TeacherID:   c.TeacherID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		IsActive:    c.IsActive,
		Rating:      c.Rating,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for i := range c.Videos {
		course.Videos = append(course.Videos, *toDomainVideo(&c.Videos[i]))
	}
	for i := range c.Reviews {
		course.Reviews = append(course.Reviews, *toDomainReview(&c.Reviews[i]))
	}
	return course
}

func toDomainVideo(v *VideoGorm) *domain.Video {
	return &domain.Video{
		ID:         v.ID,
		CourseID:   v.CourseID,
		Title:      v.Title,
		URL:        v.URL,
		UploadedAt: v.UploadedAt,
	}
}

func toDomainEnrollment(e *EnrollmentGorm) *domain.Enrollment {
	return &domain.Enrollment{
		LearnerID:     e.LearnerID,
		CourseID:      e.CourseID,
		TransactionID: e.TransactionID,
		Amount:        e.Amount,
		TransactionAt: e.TransactionAt,
	}
}

func toDomainReview(r *ReviewGorm) *domain.Review {
	return &domain.Review{
		ID:        r.ID,
		CourseID:  r.CourseID,
		LearnerID: r.LearnerID,
		Content:   r.Content,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
