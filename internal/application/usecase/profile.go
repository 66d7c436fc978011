package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"teachhub/internal/domain"
)

const profilePictureFolder = "profile-pictures"

type ProfileUseCase struct {
	users UserStore
	blobs BlobStore
	cache CourseCache
}

func NewProfileUseCase(users UserStore, blobs BlobStore, cache CourseCache) *ProfileUseCase {
	if cache == nil {
		cache = noopCache{}
	}
	return &ProfileUseCase{users: users, blobs: blobs, cache: cache}
}

// BecomeTeacher gives the user the teacher role. picture is optional.
func (uc *ProfileUseCase) BecomeTeacher(ctx context.Context, userID uuid.UUID, name, bio string, picture *domain.FileUpload) (*domain.User, error) {
	name, bio, err := teacherFields(name, bio)
	if err != nil {
		return nil, err
	}

	if err := uc.requireNoProfile(ctx, userID); err != nil {
		return nil, err
	}
	pictureURL, err := uc.uploadPicture(ctx, picture)
	if err != nil {
		return nil, err
	}

	profile := domain.TeacherProfile(domain.TeacherData{Name: name, Bio: bio, PictureURL: pictureURL})
	if err := uc.users.CreateProfile(ctx, userID, profile); err != nil {
		return nil, err
	}
	return uc.users.GetByID(ctx, userID)
}

// BecomeLearner gives the user the learner role. picture is optional.
func (uc *ProfileUseCase) BecomeLearner(ctx context.Context, userID uuid.UUID, name string, picture *domain.FileUpload) (*domain.User, error) {
	name, err := learnerName(name)
	if err != nil {
		return nil, err
	}

	if err := uc.requireNoProfile(ctx, userID); err != nil {
		return nil, err
	}
	pictureURL, err := uc.uploadPicture(ctx, picture)
	if err != nil {
		return nil, err
	}

	profile := domain.LearnerProfile(domain.LearnerData{Name: name, PictureURL: pictureURL})
	if err := uc.users.CreateProfile(ctx, userID, profile); err != nil {
		return nil, err
	}
	return uc.users.GetByID(ctx, userID)
}

// UpdateTeacherProfile changes the teacher's name and bio. A nil picture
// keeps the current one.
func (uc *ProfileUseCase) UpdateTeacherProfile(ctx context.Context, userID uuid.UUID, name, bio string, picture *domain.FileUpload) (*domain.User, error) {
	name, bio, err := teacherFields(name, bio)
	if err != nil {
		return nil, err
	}
	if err := uc.requireProfile(ctx, userID, domain.ProfileTeacher); err != nil {
		return nil, err
	}
	pictureURL, err := uc.uploadPicture(ctx, picture)
	if err != nil {
		return nil, err
	}

	profile := domain.TeacherProfile(domain.TeacherData{Name: name, Bio: bio, PictureURL: pictureURL})
	courseIDs, err := uc.users.UpdateProfile(ctx, userID, profile)
	if err != nil {
		return nil, err
	}
	invalidateCourses(ctx, uc.cache, courseIDs...)
	return uc.users.GetByID(ctx, userID)
}

// UpdateLearnerProfile changes the learner's name. A nil picture keeps the
// current one.
func (uc *ProfileUseCase) UpdateLearnerProfile(ctx context.Context, userID uuid.UUID, name string, picture *domain.FileUpload) (*domain.User, error) {
	name, err := learnerName(name)
	if err != nil {
		return nil, err
	}
	if err := uc.requireProfile(ctx, userID, domain.ProfileLearner); err != nil {
		return nil, err
	}
	pictureURL, err := uc.uploadPicture(ctx, picture)
	if err != nil {
		return nil, err
	}

	profile := domain.LearnerProfile(domain.LearnerData{Name: name, PictureURL: pictureURL})
	if _, err := uc.users.UpdateProfile(ctx, userID, profile); err != nil {
		return nil, err
	}
	return uc.users.GetByID(ctx, userID)
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// DeleteTeacherProfile removes the teacher role together with every course
// the teacher owns, enrollments included.
func (uc *ProfileUseCase) DeleteTeacherProfile(ctx context.Context, userID uuid.UUID) error {
	courseIDs, err := uc.users.DeleteTeacher(ctx, userID)
	if err != nil {
		return err
	}
	invalidateCourses(ctx, uc.cache, courseIDs...)
	return nil
}

// DeleteLearnerProfile removes the learner role and its reviews. A learner
// with enrollments gets ErrHasEnrollments.
func (uc *ProfileUseCase) DeleteLearnerProfile(ctx context.Context, userID uuid.UUID) error {
	courseIDs, err := uc.users.DeleteLearner(ctx, userID)
	if err != nil {
		return err
	}
	invalidateCourses(ctx, uc.cache, courseIDs...)
	return nil
}

func (uc *ProfileUseCase) requireNoProfile(ctx context.Context, userID uuid.UUID) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Profile.Kind != domain.ProfileNone {
		return domain.ErrProfileExists
	}
	return nil
}

// requireProfile fails with ErrNotFound unless the user holds the role, so
// nothing is uploaded for a profile that cannot be updated.
func (uc *ProfileUseCase) requireProfile(ctx context.Context, userID uuid.UUID, kind domain.ProfileKind) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Profile.Kind != kind {
		return fmt.Errorf("profile %w", domain.ErrNotFound)
	}
	return nil
}

func (uc *ProfileUseCase) uploadPicture(ctx context.Context, picture *domain.FileUpload) (string, error) {
	if picture == nil || picture.Content == nil {
		return "", nil
	}
	url, err := uc.blobs.Upload(ctx, picture.Content, picture.Filename, profilePictureFolder)
	if err != nil {
		return "", fmt.Errorf("%w: profile picture: %v", domain.ErrUploadFailed, err)
	}
	return url, nil
}

func teacherFields(name, bio string) (string, string, error) {
	name, bio = strings.TrimSpace(name), strings.TrimSpace(bio)
	if name == "" {
		return "", "", domain.Validationf("name is required")
	}
	if bio == "" {
		return "", "", domain.Validationf("bio is required")
	}
	if utf8.RuneCountInString(bio) > domain.MaxBioLength {
		return "", "", domain.Validationf("bio must be at most %d characters", domain.MaxBioLength)
	}
	return name, bio, nil
}

func learnerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Validationf("name is required")
	}
	return name, nil
}
