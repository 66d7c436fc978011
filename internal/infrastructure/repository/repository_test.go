package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teachhub/config"
	"teachhub/internal/domain"
	"teachhub/internal/infrastructure/database"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLite(":memory:", config.Config{GoEnv: "test"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, ctx context.Context, repo *UserRepository, email string) uuid.UUID {
	t.Helper()
	user := &domain.User{ID: uuid.New(), Email: email, PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create(%s) error = %v", email, err)
	}
	return user.ID
}

func createTeacher(t *testing.T, ctx context.Context, repo *UserRepository, name string) uuid.UUID {
	t.Helper()
	id := createUser(t, ctx, repo, name+"@teach.test")
	profile := domain.TeacherProfile(domain.TeacherData{Name: name, Bio: "teaches things"})
	if err := repo.CreateProfile(ctx, id, profile); err != nil {
		t.Fatalf("CreateProfile(teacher) error = %v", err)
	}
	return id
}

func createLearner(t *testing.T, ctx context.Context, repo *UserRepository, name string) uuid.UUID {
	t.Helper()
	id := createUser(t, ctx, repo, name+"@learn.test")
	if err := repo.CreateProfile(ctx, id, domain.LearnerProfile(domain.LearnerData{Name: name})); err != nil {
		t.Fatalf("CreateProfile(learner) error = %v", err)
	}
	return id
}

func createCourse(t *testing.T, ctx context.Context, repo *CourseRepository, teacherID uuid.UUID, title string, price int64) *domain.Course {
	t.Helper()
	course := &domain.Course{
		ID:        uuid.New(),
		TeacherID: teacherID,
		Title:     title,
		Price:     price,
		IsActive:  true,
	}
	if err := repo.Create(ctx, course); err != nil {
		t.Fatalf("Create(%s) error = %v", title, err)
	}
	return course
}

func enroll(t *testing.T, ctx context.Context, repo *EnrollmentRepository, learnerID, courseID uuid.UUID, amount int64) {
	t.Helper()
	err := repo.Create(ctx, &domain.Enrollment{
		LearnerID:     learnerID,
		CourseID:      courseID,
		TransactionID: "tx_" + uuid.NewString()[:8],
		Amount:        amount,
		TransactionAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("enroll error = %v", err)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(setupDB(t))

	createUser(t, ctx, users, "a@b.test")
	err := users.Create(ctx, &domain.User{ID: uuid.New(), Email: "a@b.test", PasswordHash: "x"})
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestUserRepository_ProfileRolesAreExclusive(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(setupDB(t))

	id := createUser(t, ctx, users, "both@x.test")
	complete, err := users.IsProfileComplete(ctx, id)
	if err != nil || complete {
		t.Fatalf("IsProfileComplete() = %v, %v; want false, nil", complete, err)
	}

	if err := users.CreateProfile(ctx, id, domain.LearnerProfile(domain.LearnerData{Name: "Lee"})); err != nil {
		t.Fatalf("CreateProfile(learner) error = %v", err)
	}
	err = users.CreateProfile(ctx, id, domain.TeacherProfile(domain.TeacherData{Name: "Lee", Bio: "bio"}))
	if !errors.Is(err, domain.ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}

	user, err := users.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !user.IsLearner() || user.IsTeacher() {
		t.Fatalf("expected learner-only profile, got %+v", user.Profile)
	}
	if user.Profile.DisplayName() != "Lee" {
		t.Fatalf("DisplayName() = %q", user.Profile.DisplayName())
	}
}

func TestUserRepository_GetByIDMissing(t *testing.T) {
	users := NewUserRepository(setupDB(t))
	_, err := users.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)

	teacher := createUser(t, ctx, users, "tina@teach.test")
	initial := domain.TeacherProfile(domain.TeacherData{Name: "tina", Bio: "old", PictureURL: "https://pics/tina.png"})
	if err := users.CreateProfile(ctx, teacher, initial); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	course := createCourse(t, ctx, courses, teacher, "Intro", 100)

	courseIDs, err := users.UpdateProfile(ctx, teacher, domain.TeacherProfile(domain.TeacherData{Name: "Tina", Bio: "new"}))
	if err != nil {
		t.Fatalf("UpdateProfile(teacher) error = %v", err)
	}
	if len(courseIDs) != 1 || courseIDs[0] != course.ID {
		t.Fatalf("courseIDs = %v, want [%s]", courseIDs, course.ID)
	}
	user, _ := users.GetByID(ctx, teacher)
	data, _ := user.Profile.AsTeacher()
	if data.Name != "Tina" || data.Bio != "new" || data.PictureURL != "https://pics/tina.png" {
		t.Fatalf("unexpected teacher data %+v", data)
	}

	learner := createLearner(t, ctx, users, "lee")
	if _, err := users.UpdateProfile(ctx, learner, domain.LearnerProfile(domain.LearnerData{Name: "Lee", PictureURL: "https://pics/lee.png"})); err != nil {
		t.Fatalf("UpdateProfile(learner) error = %v", err)
	}
	user, _ = users.GetByID(ctx, learner)
	if l, _ := user.Profile.AsLearner(); l.Name != "Lee" || l.PictureURL != "https://pics/lee.png" {
		t.Fatalf("unexpected learner data %+v", l)
	}

	_, err = users.UpdateProfile(ctx, learner, domain.TeacherProfile(domain.TeacherData{Name: "Lee", Bio: "bio"}))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("updating an absent role: expected ErrNotFound, got %v", err)
	}
	bare := createUser(t, ctx, users, "bare@test.io")
	if _, err := users.UpdateProfile(ctx, bare, domain.LearnerProfile(domain.LearnerData{Name: "x"})); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCourseRepository_DuplicateTitlePerTeacher(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)

	t1 := createTeacher(t, ctx, users, "tina")
	t2 := createTeacher(t, ctx, users, "tom")

	createCourse(t, ctx, courses, t1, "Intro", 1000)
	err := courses.Create(ctx, &domain.Course{ID: uuid.New(), TeacherID: t1, Title: "Intro", IsActive: true})
	if !errors.Is(err, domain.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}

	// Another teacher may reuse the title.
	createCourse(t, ctx, courses, t2, "Intro", 1000)

	taken, err := courses.TitleTaken(ctx, t1, "Intro", uuid.Nil)
	if err != nil || !taken {
		t.Fatalf("TitleTaken() = %v, %v; want true", taken, err)
	}
}

func TestCourseRepository_UpdateRenameCollision(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)

	teacher := createTeacher(t, ctx, users, "tina")
	createCourse(t, ctx, courses, teacher, "Go", 100)
	rust := createCourse(t, ctx, courses, teacher, "Rust", 100)

	taken, err := courses.TitleTaken(ctx, teacher, "Rust", rust.ID)
	if err != nil || taken {
		t.Fatalf("TitleTaken() excluding itself = %v, %v; want false", taken, err)
	}

	rust.Title = "Go"
	if err := courses.Update(ctx, rust); !errors.Is(err, domain.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}

	missing := &domain.Course{ID: uuid.New(), Title: "x"}
	if err := courses.Update(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCourseRepository_DeleteRefusedWithEnrollments(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)
	enrollments := NewEnrollmentRepository(db)

	teacher := createTeacher(t, ctx, users, "tina")
	learner := createLearner(t, ctx, users, "lee")
	course := createCourse(t, ctx, courses, teacher, "Intro", 4999)
	enroll(t, ctx, enrollments, learner, course.ID, 4999)

	if err := courses.Delete(ctx, course.ID); !errors.Is(err, domain.ErrHasEnrollments) {
		t.Fatalf("expected ErrHasEnrollments, got %v", err)
	}
	if _, err := courses.GetByID(ctx, course.ID); err != nil {
		t.Fatalf("course must survive refused delete: %v", err)
	}
}

func TestCourseRepository_DeleteCascadesVideosAndReviews(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)
	reviews := NewReviewRepository(db)

	teacher := createTeacher(t, ctx, users, "tina")
	learner := createLearner(t, ctx, users, "lee")
	course := createCourse(t, ctx, courses, teacher, "Intro", 0)

	if err := courses.AddVideo(ctx, &domain.Video{ID: uuid.New(), CourseID: course.ID, Title: "v1", URL: "u", UploadedAt: time.Now()}); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}
	review := &domain.Review{ID: uuid.New(), CourseID: course.ID, LearnerID: learner, Content: "ok", Rating: 4}
	if err := reviews.Create(ctx, review); err != nil {
		t.Fatalf("review Create() error = %v", err)
	}

	if err := courses.Delete(ctx, course.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	var videos, reviewRows int64
	db.Model(&VideoGorm{}).Count(&videos)
	db.Model(&ReviewGorm{}).Count(&reviewRows)
	if videos != 0 || reviewRows != 0 {
		t.Fatalf("expected dependents removed, got %d videos %d reviews", videos, reviewRows)
	}
	if err := courses.Delete(ctx, course.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete() expected ErrNotFound, got %v", err)
	}
}

func TestCourseRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)
	enrollments := NewEnrollmentRepository(db)

	alice := createTeacher(t, ctx, users, "Alice")
	bob := createTeacher(t, ctx, users, "Bob")
	learner := createLearner(t, ctx, users, "lee")

	goCourse := createCourse(t, ctx, courses, alice, "Go Basics", 100)
	createCourse(t, ctx, courses, bob, "Advanced Go", 100)
	hidden := createCourse(t, ctx, courses, bob, "Painting", 100)
	if err := courses.SetActive(ctx, hidden.ID, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	enroll(t, ctx, enrollments, learner, goCourse.ID, 100)

	list, err := courses.List(ctx, domain.CourseFilter{ActiveOnly: true, ExcludeLearner: learner})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Title != "Advanced Go" || list[0].TeacherName != "Bob" {
		t.Fatalf("unexpected available courses: %+v", list)
	}

	list, err = courses.List(ctx, domain.CourseFilter{ActiveOnly: true, Search: "alice"})
	if err != nil {
		t.Fatalf("List(search) error = %v", err)
	}
	if len(list) != 1 || list[0].ID != goCourse.ID {
		t.Fatalf("search by teacher name returned %+v", list)
	}

	list, err = courses.List(ctx, domain.CourseFilter{Search: "GO"})
	if err != nil {
		t.Fatalf("List(search) error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("case-insensitive title search returned %d courses", len(list))
	}

	list, err = courses.List(ctx, domain.CourseFilter{TeacherID: bob})
	if err != nil {
		t.Fatalf("List(teacher) error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("teacher listing returned %d courses, want 2 including inactive", len(list))
	}
}

func TestCourseRepository_RemoveVideosOnlyOwned(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)

	teacher := createTeacher(t, ctx, users, "tina")
	a := createCourse(t, ctx, courses, teacher, "A", 0)
	b := createCourse(t, ctx, courses, teacher, "B", 0)
	va := &domain.Video{ID: uuid.New(), CourseID: a.ID, Title: "a", URL: "u", UploadedAt: time.Now()}
	vb := &domain.Video{ID: uuid.New(), CourseID: b.ID, Title: "b", URL: "u", UploadedAt: time.Now()}
	for _, v := range []*domain.Video{va, vb} {
		if err := courses.AddVideo(ctx, v); err != nil {
			t.Fatalf("AddVideo() error = %v", err)
		}
	}

	removed, err := courses.RemoveVideos(ctx, a.ID, []uuid.UUID{va.ID, vb.ID})
	if err != nil {
		t.Fatalf("RemoveVideos() error = %v", err)
	}
	if len(removed) != 1 || removed[0] != va.ID {
		t.Fatalf("removed = %v, want only %v", removed, va.ID)
	}

	details, err := courses.GetDetails(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetDetails() error = %v", err)
	}
	if len(details.Videos) != 1 || details.TeacherName != "tina" {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestEnrollmentRepository_CompositeKey(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)
	enrollments := NewEnrollmentRepository(db)

	teacher := createTeacher(t, ctx, users, "tina")
	learner := createLearner(t, ctx, users, "lee")
	course := createCourse(t, ctx, courses, teacher, "Intro", 4999)

	enroll(t, ctx, enrollments, learner, course.ID, 4999)
	err := enrollments.Create(ctx, &domain.Enrollment{
		LearnerID: learner, CourseID: course.ID, TransactionID: "tx_2", Amount: 4999, TransactionAt: time.Now(),
	})
	if !errors.Is(err, domain.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}

	exists, err := enrollments.Exists(ctx, learner, course.ID)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v", exists, err)
	}
	exists, err = enrollments.Exists(ctx, learner, uuid.New())
	if err != nil || exists {
		t.Fatalf("Exists(other course) = %v, %v", exists, err)
	}
}

func TestEnrollmentRepository_ListsAndSales(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)
	enrollments := NewEnrollmentRepository(db)

	teacher := createTeacher(t, ctx, users, "tina")
	l1 := createLearner(t, ctx, users, "lee")
	l2 := createLearner(t, ctx, users, "lou")
	intro := createCourse(t, ctx, courses, teacher, "Intro", 4999)
	createCourse(t, ctx, courses, teacher, "Unsold", 1000)

	enroll(t, ctx, enrollments, l1, intro.ID, 4999)
	enroll(t, ctx, enrollments, l2, intro.ID, 4999)

	mine, err := enrollments.ListByLearner(ctx, l1)
	if err != nil {
		t.Fatalf("ListByLearner() error = %v", err)
	}
	if len(mine) != 1 || mine[0].CourseTitle != "Intro" {
		t.Fatalf("unexpected learner enrollments: %+v", mine)
	}

	ledger, err := enrollments.ListByCourse(ctx, intro.ID)
	if err != nil {
		t.Fatalf("ListByCourse() error = %v", err)
	}
	if len(ledger) != 2 || ledger[0].LearnerName == "" {
		t.Fatalf("unexpected ledger: %+v", ledger)
	}

	sales, err := enrollments.SalesByTeacher(ctx, teacher)
	if err != nil {
		t.Fatalf("SalesByTeacher() error = %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales rows, got %+v", sales)
	}
	if sales[0].Title != "Intro" || sales[0].StudentCount != 2 || sales[0].Revenue != 9998 {
		t.Fatalf("unexpected Intro sales: %+v", sales[0])
	}
	if sales[1].StudentCount != 0 || sales[1].Revenue != 0 {
		t.Fatalf("unexpected Unsold sales: %+v", sales[1])
	}
}

func TestReviewRepository_UniqueAndRating(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)
	reviews := NewReviewRepository(db)

	teacher := createTeacher(t, ctx, users, "tina")
	l1 := createLearner(t, ctx, users, "lee")
	l2 := createLearner(t, ctx, users, "lou")
	course := createCourse(t, ctx, courses, teacher, "Intro", 0)

	first := &domain.Review{ID: uuid.New(), CourseID: course.ID, LearnerID: l1, Content: "great", Rating: 5}
	if err := reviews.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	dup := &domain.Review{ID: uuid.New(), CourseID: course.ID, LearnerID: l1, Content: "again", Rating: 1}
	if err := reviews.Create(ctx, dup); !errors.Is(err, domain.ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}
	second := &domain.Review{ID: uuid.New(), CourseID: course.ID, LearnerID: l2, Content: "meh", Rating: 2}
	if err := reviews.Create(ctx, second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	assertRating(t, ctx, courses, course.ID, 3.5)

	second.Rating = 4
	second.UpdatedAt = time.Now()
	if err := reviews.Update(ctx, second); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	assertRating(t, ctx, courses, course.ID, 4.5)

	if err := reviews.Delete(ctx, first); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertRating(t, ctx, courses, course.ID, 4)

	if _, err := reviews.GetByID(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mine, err := reviews.ListByLearner(ctx, l2)
	if err != nil || len(mine) != 1 || mine[0].CourseTitle != "Intro" {
		t.Fatalf("ListByLearner() = %+v, %v", mine, err)
	}
}

func TestUserRepository_DeleteLearnerRestrictedByEnrollments(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)
	enrollments := NewEnrollmentRepository(db)
	reviews := NewReviewRepository(db)

	teacher := createTeacher(t, ctx, users, "tina")
	enrolled := createLearner(t, ctx, users, "lee")
	reviewer := createLearner(t, ctx, users, "lou")
	course := createCourse(t, ctx, courses, teacher, "Intro", 4999)
	enroll(t, ctx, enrollments, enrolled, course.ID, 4999)

	if _, err := users.DeleteLearner(ctx, enrolled); !errors.Is(err, domain.ErrHasEnrollments) {
		t.Fatalf("expected ErrHasEnrollments, got %v", err)
	}

	rv := &domain.Review{ID: uuid.New(), CourseID: course.ID, LearnerID: reviewer, Content: "fine", Rating: 3}
	if err := reviews.Create(ctx, rv); err != nil {
		t.Fatalf("review Create() error = %v", err)
	}
	touched, err := users.DeleteLearner(ctx, reviewer)
	if err != nil {
		t.Fatalf("DeleteLearner() error = %v", err)
	}
	if len(touched) != 1 || touched[0] != course.ID {
		t.Fatalf("touched courses = %v", touched)
	}
	assertRating(t, ctx, courses, course.ID, 0)

	complete, err := users.IsProfileComplete(ctx, reviewer)
	if err != nil || complete {
		t.Fatalf("profile should be incomplete after delete, got %v, %v", complete, err)
	}
}

func TestUserRepository_DeleteTeacherCascades(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)
	enrollments := NewEnrollmentRepository(db)

	teacher := createTeacher(t, ctx, users, "tina")
	learner := createLearner(t, ctx, users, "lee")
	course := createCourse(t, ctx, courses, teacher, "Intro", 4999)
	enroll(t, ctx, enrollments, learner, course.ID, 4999)

	removed, err := users.DeleteTeacher(ctx, teacher)
	if err != nil {
		t.Fatalf("DeleteTeacher() error = %v", err)
	}
	if len(removed) != 1 || removed[0] != course.ID {
		t.Fatalf("removed courses = %v", removed)
	}
	if _, err := courses.GetByID(ctx, course.ID); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Fatalf("expected course gone, got %v", err)
	}
	if exists, _ := enrollments.Exists(ctx, learner, course.ID); exists {
		t.Fatalf("enrollment should be removed with the teacher")
	}

	// The user may now pick the learner role.
	if err := users.CreateProfile(ctx, teacher, domain.LearnerProfile(domain.LearnerData{Name: "tina"})); err != nil {
		t.Fatalf("CreateProfile after delete error = %v", err)
	}
}

func assertRating(t *testing.T, ctx context.Context, courses *CourseRepository, id uuid.UUID, want float64) {
	t.Helper()
	course, err := courses.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if course.Rating != want {
		t.Fatalf("rating = %v, want %v", course.Rating, want)
	}
}
