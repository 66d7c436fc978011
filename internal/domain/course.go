package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Course prices are stored in minor currency units (cents).
type Course struct {
	ID          uuid.UUID `json:"id"`
	TeacherID   uuid.UUID `json:"teacher_id"`
	TeacherName string    `json:"teacher_name,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	IsActive    bool      `json:"is_active"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Videos  []Video  `json:"videos,omitempty"`
	Reviews []Review `json:"reviews,omitempty"`
}

func (c *Course) OwnedBy(teacherID uuid.UUID) bool {
	return c.TeacherID == teacherID
}

type Video struct {
	ID         uuid.UUID `json:"id"`
	CourseID   uuid.UUID `json:"course_id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// CourseDraft holds the teacher-supplied fields of a new course.
type CourseDraft struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=5000"`
	Price       int64  `validate:"gte=0"`
}

// CourseChanges lists the fields an update touches; nil means unchanged.
type CourseChanges struct {
	Title       *string `validate:"omitempty,min=1,max=200"`
	Description *string `validate:"omitempty,max=5000"`
	Price       *int64  `validate:"omitempty,gte=0"`
}

func (c CourseChanges) Apply(course *Course) {
	if c.Title != nil {
		course.Title = *c.Title
	}
	if c.Description != nil {
		course.Description = *c.Description
	}
	if c.Price != nil {
		course.Price = *c.Price
	}
}

// FileUpload is a binary payload headed for the blob store.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// VideoUpload is a video file plus the title shown in the course.
type VideoUpload struct {
	Title string
	FileUpload
}

// CourseFilter narrows catalog listings.
type CourseFilter struct {
	Search         string
	ActiveOnly     bool
	ExcludeLearner uuid.UUID
	TeacherID      uuid.UUID
	Limit          int
	Offset         int
}
