package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"teachhub/internal/domain"
)

const defaultUploadWorkers = 4

type CourseUseCase struct {
	users         UserStore
	courses       CourseStore
	blobs         BlobStore
	cache         CourseCache
	validate      *Validator
	uploadWorkers int
	now           func() time.Time
}

type CourseOption func(*CourseUseCase)

func WithCourseCache(c CourseCache) CourseOption {
	return func(uc *CourseUseCase) { uc.cache = c }
}

// WithUploadWorkers limits how many videos are uploaded at once.
func WithUploadWorkers(n int) CourseOption {
	return func(uc *CourseUseCase) {
		if n > 0 {
			uc.uploadWorkers = n
		}
	}
}

func WithCourseClock(fn func() time.Time) CourseOption {
	return func(uc *CourseUseCase) { uc.now = fn }
}

func NewCourseUseCase(users UserStore, courses CourseStore, blobs BlobStore, validate *Validator, opts ...CourseOption) *CourseUseCase {
	uc := &CourseUseCase{
		users:         users,
		courses:       courses,
		blobs:         blobs,
		cache:         noopCache{},
		validate:      validate,
		uploadWorkers: defaultUploadWorkers,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CreateCourse persists a new course and then uploads its videos. Uploads are
// not atomic with the course: when some fail the course is returned together
// with an *domain.UploadError listing what made it.
func (uc *CourseUseCase) CreateCourse(ctx context.Context, teacherID uuid.UUID, draft domain.CourseDraft, videos []domain.VideoUpload) (*domain.Course, error) {
	if err := uc.requireTeacher(ctx, teacherID); err != nil {
		return nil, err
	}

	draft.Title = strings.TrimSpace(draft.Title)
	if err := uc.validate.Struct(draft); err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, domain.Validationf("at least one video is required")
	}

	taken, err := uc.courses.TitleTaken(ctx, teacherID, draft.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrDuplicateTitle
	}

	now := uc.now().UTC()
	course := &domain.Course{
		ID:          uuid.New(),
		TeacherID:   teacherID,
		Title:       draft.Title,
		Description: draft.Description,
		Price:       draft.Price,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	added, uploadErr := uc.uploadVideos(ctx, course.ID, videos)
	course.Videos = added
	if uploadErr != nil {
		log.Printf("course %s created with failed uploads: %v", course.ID, uploadErr)
		return course, uploadErr
	}
	return course, nil
}

// UpdateCourse applies field changes, then removes and adds videos. A course
// that is missing or owned by someone else is reported as not found.
func (uc *CourseUseCase) UpdateCourse(
	ctx context.Context,
	teacherID, courseID uuid.UUID,
	changes domain.CourseChanges,
	newVideos []domain.VideoUpload,
	removedVideoIDs []uuid.UUID,
) (*domain.Course, error) {
	course, err := uc.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(teacherID) {
		return nil, domain.ErrCourseNotFound
	}

	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		changes.Title = &title
	}
	if err := uc.validate.Struct(changes); err != nil {
		return nil, err
	}

	if changes.Title != nil && *changes.Title != course.Title {
		taken, err := uc.courses.TitleTaken(ctx, teacherID, *changes.Title, courseID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrDuplicateTitle
		}
	}

	changes.Apply(course)
	course.UpdatedAt = uc.now().UTC()
	if err := uc.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	defer uc.invalidate(ctx, courseID)

	report := &domain.UploadError{}
	if len(removedVideoIDs) > 0 {
		if _, err := uc.courses.RemoveVideos(ctx, courseID, removedVideoIDs); err != nil {
			report.Failed = append(report.Failed, domain.FailedUpload{Name: "remove videos", Err: err})
		}
	}
	if len(newVideos) > 0 {
		if _, err := uc.uploadVideos(ctx, courseID, newVideos); err != nil {
			var partial *domain.UploadError
			if errors.As(err, &partial) {
				report.Succeeded = partial.Succeeded
				report.Failed = append(report.Failed, partial.Failed...)
			}
		}
	}

	updated, err := uc.courses.GetDetails(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(report.Failed) > 0 {
		return updated, report
	}
	return updated, nil
}

func (uc *CourseUseCase) DeactivateCourse(ctx context.Context, teacherID, courseID uuid.UUID) error {
	return uc.setActive(ctx, teacherID, courseID, false)
}

func (uc *CourseUseCase) ReactivateCourse(ctx context.Context, teacherID, courseID uuid.UUID) error {
	return uc.setActive(ctx, teacherID, courseID, true)
}

func (uc *CourseUseCase) setActive(ctx context.Context, teacherID, courseID uuid.UUID, active bool) error {
	if _, err := uc.ownedCourse(ctx, teacherID, courseID); err != nil {
		return err
	}
	if err := uc.courses.SetActive(ctx, courseID, active); err != nil {
		return err
	}
	uc.invalidate(ctx, courseID)
	return nil
}

// DeleteCourse hard-deletes a course nobody has bought. Courses with
// enrollments can only be deactivated.
func (uc *CourseUseCase) DeleteCourse(ctx context.Context, teacherID, courseID uuid.UUID) error {
	if _, err := uc.ownedCourse(ctx, teacherID, courseID); err != nil {
		return err
	}
	if err := uc.courses.Delete(ctx, courseID); err != nil {
		return err
	}
	uc.invalidate(ctx, courseID)
	return nil
}

func (uc *CourseUseCase) ownedCourse(ctx context.Context, teacherID, courseID uuid.UUID) (*domain.Course, error) {
	course, err := uc.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(teacherID) {
		return nil, domain.ErrForbidden
	}
	return course, nil
}

func (uc *CourseUseCase) requireTeacher(ctx context.Context, userID uuid.UUID) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrProfileIncomplete
		}
		return err
	}
	if !user.IsTeacher() {
		return domain.ErrProfileIncomplete
	}
	return nil
}

// uploadVideos uploads every file independently. A failed upload or insert
// never stops the others.
func (uc *CourseUseCase) uploadVideos(ctx context.Context, courseID uuid.UUID, uploads []domain.VideoUpload) ([]domain.Video, error) {
	folder := "courses/" + courseID.String()
	videos := make([]*domain.Video, len(uploads))
	failures := make([]error, len(uploads))

	var g errgroup.Group
	g.SetLimit(uc.uploadWorkers)
	for i, upload := range uploads {
		g.Go(func() error {
			url, err := uc.blobs.Upload(ctx, upload.Content, upload.Filename, folder)
			if err != nil {
				failures[i] = err
				return nil
			}
			video := &domain.Video{
				ID:         uuid.New(),
				CourseID:   courseID,
				Title:      videoTitle(upload),
				URL:        url,
				UploadedAt: uc.now().UTC(),
			}
			if err := uc.courses.AddVideo(ctx, video); err != nil {
				failures[i] = fmt.Errorf("save video record: %w", err)
				return nil
			}
			videos[i] = video
			return nil
		})
	}
	_ = g.Wait()

	var added []domain.Video
	report := &domain.UploadError{}
	for i, upload := range uploads {
		if failures[i] != nil {
			report.Failed = append(report.Failed, domain.FailedUpload{Name: upload.Filename, Err: failures[i]})
			continue
		}
		added = append(added, *videos[i])
		report.Succeeded = append(report.Succeeded, upload.Filename)
	}
	if len(report.Failed) > 0 {
		return added, report
	}
	return added, nil
}

func videoTitle(upload domain.VideoUpload) string {
	if title := strings.TrimSpace(upload.Title); title != "" {
		return title
	}
	base := filepath.Base(upload.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (uc *CourseUseCase) invalidate(ctx context.Context, ids ...uuid.UUID) {
	invalidateCourses(ctx, uc.cache, ids...)
}

// invalidateCourses drops cached course views. A stale entry only lives until
// its TTL, so failures are logged rather than returned.
func invalidateCourses(ctx context.Context, cache CourseCache, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	if err := cache.Invalidate(context.WithoutCancel(ctx), ids...); err != nil {
		log.Printf("course cache invalidate %v: %v", ids, err)
	}
}
