package usecase

import (
	"context"
	"io"

	"github.com/google/uuid"

	"teachhub/internal/domain"
)

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	IsProfileComplete(ctx context.Context, id uuid.UUID) (bool, error)
	CreateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) ([]uuid.UUID, error)
	DeleteTeacher(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	DeleteLearner(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type CourseStore interface {
	Create(ctx context.Context, c *domain.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	GetDetails(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	TitleTaken(ctx context.Context, teacherID uuid.UUID, title string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, c *domain.Course) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddVideo(ctx context.Context, v *domain.Video) error
	RemoveVideos(ctx context.Context, courseID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error)
}

type EnrollmentStore interface {
	Exists(ctx context.Context, learnerID, courseID uuid.UUID) (bool, error)
	Create(ctx context.Context, e *domain.Enrollment) error
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]domain.Enrollment, error)
	SalesByTeacher(ctx context.Context, teacherID uuid.UUID) ([]domain.CourseSales, error)
}

type ReviewStore interface {
	Exists(ctx context.Context, learnerID, courseID uuid.UUID) (bool, error)
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, review *domain.Review) error
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Review, error)
}

// BlobStore persists binary uploads and returns their public URL.
type BlobStore interface {
	Upload(ctx context.Context, content io.Reader, name, folder string) (string, error)
}

// PaymentGateway charges amount minor units against a client-side token and
// returns the gateway transaction id.
type PaymentGateway interface {
	Charge(ctx context.Context, token string, amount int64) (string, error)
}

// EnrollmentGuard serialises concurrent enrollment attempts for the same
// learner and course. ok is false when another attempt holds the guard.
type EnrollmentGuard interface {
	Acquire(ctx context.Context, learnerID, courseID uuid.UUID) (release func(), ok bool, err error)
}

// CourseCache holds course detail views. Get returns nil, nil on a miss.
type CourseCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	Set(ctx context.Context, course *domain.Course) error
	Invalidate(ctx context.Context, ids ...uuid.UUID) error
}

type EnrollmentObserver interface {
	EnrollmentOutcome(outcome string)
	PaymentCharge(result string)
}

type noopObserver struct{}

func (noopObserver) EnrollmentOutcome(string) {}
func (noopObserver) PaymentCharge(string)     {}

type noopCache struct{}

func (noopCache) Get(context.Context, uuid.UUID) (*domain.Course, error) { return nil, nil }
func (noopCache) Set(context.Context, *domain.Course) error              { return nil }
func (noopCache) Invalidate(context.Context, ...uuid.UUID) error         { return nil }
