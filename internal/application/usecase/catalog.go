package usecase

import (
	"context"
	"log"

	"github.com/google/uuid"

	"teachhub/internal/domain"
)

type CatalogUseCase struct {
	courses     CourseStore
	enrollments EnrollmentStore
	reviews     ReviewStore
	cache       CourseCache
}

func NewCatalogUseCase(courses CourseStore, enrollments EnrollmentStore, reviews ReviewStore, cache CourseCache) *CatalogUseCase {
	if cache == nil {
		cache = noopCache{}
	}
	return &CatalogUseCase{courses: courses, enrollments: enrollments, reviews: reviews, cache: cache}
}

// ListAvailableCourses returns active courses the learner has not bought,
// optionally matching search against the title or the teacher's name.
func (uc *CatalogUseCase) ListAvailableCourses(ctx context.Context, learnerID uuid.UUID, search string) ([]domain.Course, error) {
	return uc.courses.List(ctx, domain.CourseFilter{
		Search:         search,
		ActiveOnly:     true,
		ExcludeLearner: learnerID,
	})
}

// GetCourse returns the course with videos and reviews, from cache when possible.
func (uc *CatalogUseCase) GetCourse(ctx context.Context, courseID uuid.UUID) (*domain.Course, error) {
	cached, err := uc.cache.Get(ctx, courseID)
	if err != nil {
		log.Printf("course cache get %s: %v", courseID, err)
	}
	if cached != nil {
		return cached, nil
	}

	course, err := uc.courses.GetDetails(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, course); err != nil {
		log.Printf("course cache set %s: %v", courseID, err)
	}
	return course, nil
}

func (uc *CatalogUseCase) ListTeacherCourses(ctx context.Context, teacherID uuid.UUID) ([]domain.Course, error) {
	return uc.courses.List(ctx, domain.CourseFilter{TeacherID: teacherID})
}

func (uc *CatalogUseCase) ListEnrollments(ctx context.Context, learnerID uuid.UUID) ([]domain.Enrollment, error) {
	return uc.enrollments.ListByLearner(ctx, learnerID)
}

func (uc *CatalogUseCase) ListReviews(ctx context.Context, learnerID uuid.UUID) ([]domain.Review, error) {
	return uc.reviews.ListByLearner(ctx, learnerID)
}

func (uc *CatalogUseCase) SalesReport(ctx context.Context, teacherID uuid.UUID) ([]domain.CourseSales, error) {
	return uc.enrollments.SalesByTeacher(ctx, teacherID)
}

// CourseTransactions lists the enrollments of a course owned by the teacher.
func (uc *CatalogUseCase) CourseTransactions(ctx context.Context, teacherID, courseID uuid.UUID) ([]domain.Enrollment, error) {
	course, err := uc.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(teacherID) {
		return nil, domain.ErrForbidden
	}
	return uc.enrollments.ListByCourse(ctx, courseID)
}
