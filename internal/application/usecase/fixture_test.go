package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teachhub/config"
	"teachhub/internal/domain"
	"teachhub/internal/infrastructure/database"
	"teachhub/internal/infrastructure/repository"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fixture struct {
	db          *gorm.DB
	users       *repository.UserRepository
	courses     *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	reviews     *repository.ReviewRepository
	gateway     *stubGateway
	blobs       *stubBlobs
	cache       *stubCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewSQLite(":memory:", config.Config{GoEnv: "test"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &fixture{
		db:          db,
		users:       repository.NewUserRepository(db),
		courses:     repository.NewCourseRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		reviews:     repository.NewReviewRepository(db),
		gateway:     &stubGateway{},
		blobs:       &stubBlobs{},
		cache:       newStubCache(),
	}
}

func (f *fixture) user(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if err := f.users.Create(context.Background(), &domain.User{ID: id, Email: id.String() + "@test.io", PasswordHash: "x"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func (f *fixture) teacher(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := f.user(t)
	profile := domain.TeacherProfile(domain.TeacherData{Name: name, Bio: "bio"})
	if err := f.users.CreateProfile(context.Background(), id, profile); err != nil {
		t.Fatalf("create teacher profile: %v", err)
	}
	return id
}

func (f *fixture) learner(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := f.user(t)
	if err := f.users.CreateProfile(context.Background(), id, domain.LearnerProfile(domain.LearnerData{Name: name})); err != nil {
		t.Fatalf("create learner profile: %v", err)
	}
	return id
}

func (f *fixture) course(t *testing.T, teacherID uuid.UUID, title string, price int64) *domain.Course {
	t.Helper()
	c := &domain.Course{ID: uuid.New(), TeacherID: teacherID, Title: title, Price: price, IsActive: true}
	if err := f.courses.Create(context.Background(), c); err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}

func (f *fixture) enroll(t *testing.T, learnerID, courseID uuid.UUID) {
	t.Helper()
	err := f.enrollments.Create(context.Background(), &domain.Enrollment{
		LearnerID: learnerID, CourseID: courseID, TransactionID: "tx_seed", Amount: 1, TransactionAt: fixedNow,
	})
	if err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}
}

func (f *fixture) enrollmentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&repository.EnrollmentGorm{}).Count(&n).Error; err != nil {
		t.Fatalf("count enrollments: %v", err)
	}
	return n
}

func (f *fixture) enrollmentUseCase(opts ...EnrollmentOption) *EnrollmentUseCase {
	opts = append([]EnrollmentOption{WithEnrollmentClock(fixedClock)}, opts...)
	return NewEnrollmentUseCase(f.users, f.courses, f.enrollments, f.gateway, opts...)
}

func (f *fixture) courseUseCase() *CourseUseCase {
	return NewCourseUseCase(f.users, f.courses, f.blobs, NewValidator(), WithCourseCache(f.cache), WithCourseClock(fixedClock))
}

func (f *fixture) reviewUseCase() *ReviewUseCase {
	return NewReviewUseCase(f.users, f.courses, f.enrollments, f.reviews, WithReviewCache(f.cache), WithReviewClock(fixedClock))
}

// stubGateway succeeds with "tx_<call number>" unless charge is set.
type stubGateway struct {
	mu     sync.Mutex
	calls  int
	charge func(ctx context.Context, token string, amount int64) (string, error)
}

func (g *stubGateway) Charge(ctx context.Context, token string, amount int64) (string, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	charge := g.charge
	g.mu.Unlock()

	if charge != nil {
		return charge(ctx, token, amount)
	}
	return fmt.Sprintf("tx_%d", n), nil
}

func (g *stubGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// stubBlobs stores nothing and fails any file whose name is in fail.
type stubBlobs struct {
	mu      sync.Mutex
	fail    map[string]bool
	folders []string
}

func (b *stubBlobs) Upload(ctx context.Context, content io.Reader, name, folder string) (string, error) {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.folders = append(b.folders, folder)
	if b.fail[name] {
		return "", errors.New("storage unavailable")
	}
	return "https://blob.test/" + folder + "/" + name, nil
}

type stubCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*domain.Course
	invalidated []uuid.UUID
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[uuid.UUID]*domain.Course)}
}

func (c *stubCache) Get(_ context.Context, id uuid.UUID) (*domain.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id], nil
}

func (c *stubCache) Set(_ context.Context, course *domain.Course) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[course.ID] = course
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
	}
	c.invalidated = append(c.invalidated, ids...)
	return nil
}

func (c *stubCache) wasInvalidated(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, got := range c.invalidated {
		if got == id {
			return true
		}
	}
	return false
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
	charges  map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{outcomes: map[string]int{}, charges: map[string]int{}}
}

func (o *recordingObserver) EnrollmentOutcome(outcome string) {
	o.mu.Lock()
	o.outcomes[outcome]++
	o.mu.Unlock()
}

func (o *recordingObserver) PaymentCharge(result string) {
	o.mu.Lock()
	o.charges[result]++
	o.mu.Unlock()
}

func video(name string) domain.VideoUpload {
	return domain.VideoUpload{FileUpload: domain.FileUpload{Filename: name, Content: strings.NewReader("data-" + name)}}
}
