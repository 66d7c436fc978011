package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"teachhub/internal/domain"
)

func TestBecomeTeacher(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewProfileUseCase(f.users, f.blobs, f.cache)
	id := f.user(t)

	picture := &domain.FileUpload{Filename: "me.png", Content: strings.NewReader("png")}
	user, err := uc.BecomeTeacher(ctx, id, " Ada ", "Teaches things", picture)
	if err != nil {
		t.Fatalf("BecomeTeacher() error = %v", err)
	}
	data, ok := user.Profile.AsTeacher()
	if !ok || !user.ProfileComplete {
		t.Fatalf("unexpected profile %+v", user.Profile)
	}
	if data.Name != "Ada" || data.PictureURL != "https://blob.test/profile-pictures/me.png" {
		t.Fatalf("unexpected teacher data %+v", data)
	}

	if _, err := uc.BecomeLearner(ctx, id, "Ada", nil); !errors.Is(err, domain.ErrProfileExists) {
		t.Fatalf("a teacher cannot also become a learner, got %v", err)
	}
}

func TestBecomeTeacher_Validation(t *testing.T) {
	f := newFixture(t)
	uc := NewProfileUseCase(f.users, f.blobs, f.cache)
	id := f.user(t)

	tests := []struct {
		name, teacher, bio string
	}{
		{"missing name", " ", "bio"},
		{"missing bio", "Ada", ""},
		{"bio too long", "Ada", strings.Repeat("é", domain.MaxBioLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.BecomeTeacher(context.Background(), id, tt.teacher, tt.bio, nil); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	if _, err := uc.BecomeTeacher(context.Background(), id, "Ada", strings.Repeat("é", domain.MaxBioLength), nil); err != nil {
		t.Fatalf("bio of exactly %d characters should pass, got %v", domain.MaxBioLength, err)
	}
}

func TestBecomeLearner_PictureUploadFails(t *testing.T) {
	f := newFixture(t)
	f.blobs.fail = map[string]bool{"me.png": true}
	uc := NewProfileUseCase(f.users, f.blobs, f.cache)
	id := f.user(t)

	picture := &domain.FileUpload{Filename: "me.png", Content: strings.NewReader("png")}
	if _, err := uc.BecomeLearner(context.Background(), id, "Lin", picture); !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	complete, err := f.users.IsProfileComplete(context.Background(), id)
	if err != nil || complete {
		t.Fatalf("profile must not be created when the picture fails, complete=%v err=%v", complete, err)
	}
}

func TestDeleteProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewProfileUseCase(f.users, f.blobs, f.cache)
	teacher := f.teacher(t, "T1")
	learner := f.learner(t, "L1")
	course := f.course(t, teacher, "Intro", 100)
	f.enroll(t, learner, course.ID)

	if err := uc.DeleteLearnerProfile(ctx, learner); !errors.Is(err, domain.ErrHasEnrollments) {
		t.Fatalf("expected ErrHasEnrollments, got %v", err)
	}

	if err := uc.DeleteTeacherProfile(ctx, teacher); err != nil {
		t.Fatalf("DeleteTeacherProfile() error = %v", err)
	}
	if !f.cache.wasInvalidated(course.ID) {
		t.Fatal("deleted teacher's courses must be invalidated")
	}
	if f.enrollmentCount(t) != 0 {
		t.Fatal("enrollments of the teacher's courses should be gone")
	}

	if err := uc.DeleteLearnerProfile(ctx, learner); err != nil {
		t.Fatalf("DeleteLearnerProfile() error = %v", err)
	}
	user, err := uc.GetProfile(ctx, learner)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if user.Profile.Kind != domain.ProfileNone || user.ProfileComplete {
		t.Fatalf("profile should be reset, got %+v", user.Profile)
	}
}

func TestUpdateTeacherProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewProfileUseCase(f.users, f.blobs, f.cache)
	id := f.user(t)

	picture := &domain.FileUpload{Filename: "old.png", Content: strings.NewReader("png")}
	if _, err := uc.BecomeTeacher(ctx, id, "Ada", "First bio", picture); err != nil {
		t.Fatalf("BecomeTeacher() error = %v", err)
	}
	course := f.course(t, id, "Intro", 100)

	user, err := uc.UpdateTeacherProfile(ctx, id, " Ada Lovelace ", "Second bio", nil)
	if err != nil {
		t.Fatalf("UpdateTeacherProfile() error = %v", err)
	}
	data, _ := user.Profile.AsTeacher()
	if data.Name != "Ada Lovelace" || data.Bio != "Second bio" || data.PictureURL != "https://blob.test/profile-pictures/old.png" {
		t.Fatalf("unexpected teacher data %+v", data)
	}
	if !f.cache.wasInvalidated(course.ID) {
		t.Fatal("cached courses carry the teacher name and must be invalidated")
	}

	picture = &domain.FileUpload{Filename: "new.png", Content: strings.NewReader("png")}
	user, err = uc.UpdateTeacherProfile(ctx, id, "Ada", "Second bio", picture)
	if err != nil {
		t.Fatalf("UpdateTeacherProfile() error = %v", err)
	}
	if data, _ := user.Profile.AsTeacher(); data.PictureURL != "https://blob.test/profile-pictures/new.png" {
		t.Fatalf("picture = %q", data.PictureURL)
	}
}

func TestUpdateTeacherProfile_Rejects(t *testing.T) {
	f := newFixture(t)
	uc := NewProfileUseCase(f.users, f.blobs, f.cache)
	teacher := f.teacher(t, "T1")
	learner := f.learner(t, "L1")

	tests := []struct {
		name, teacher, bio string
		user               uuid.UUID
		want               error
	}{
		{"missing name", " ", "bio", teacher, domain.ErrValidation},
		{"missing bio", "Ada", "", teacher, domain.ErrValidation},
		{"bio too long", "Ada", strings.Repeat("é", domain.MaxBioLength+1), teacher, domain.ErrValidation},
		{"learner", "Ada", "bio", learner, domain.ErrNotFound},
		{"no profile", "Ada", "bio", f.user(t), domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picture := &domain.FileUpload{Filename: "me.png", Content: strings.NewReader("png")}
			_, err := uc.UpdateTeacherProfile(context.Background(), tt.user, tt.teacher, tt.bio, picture)
			if !errors.Is(err, tt.want) {
				t.Fatalf("UpdateTeacherProfile() error = %v, want %v", err, tt.want)
			}
		})
	}
	if len(f.blobs.folders) != 0 {
		t.Fatal("nothing may be uploaded for a rejected update")
	}
}

func TestUpdateLearnerProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewProfileUseCase(f.users, f.blobs, f.cache)
	learner := f.learner(t, "Lin")

	picture := &domain.FileUpload{Filename: "lin.png", Content: strings.NewReader("png")}
	user, err := uc.UpdateLearnerProfile(ctx, learner, "Lin Yu", picture)
	if err != nil {
		t.Fatalf("UpdateLearnerProfile() error = %v", err)
	}
	data, _ := user.Profile.AsLearner()
	if data.Name != "Lin Yu" || data.PictureURL != "https://blob.test/profile-pictures/lin.png" {
		t.Fatalf("unexpected learner data %+v", data)
	}

	if _, err := uc.UpdateLearnerProfile(ctx, learner, "  ", nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := uc.UpdateLearnerProfile(ctx, f.teacher(t, "T1"), "Lin", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	f.blobs.fail = map[string]bool{"broken.png": true}
	broken := &domain.FileUpload{Filename: "broken.png", Content: strings.NewReader("png")}
	if _, err := uc.UpdateLearnerProfile(ctx, learner, "Someone Else", broken); !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	user, _ = uc.GetProfile(ctx, learner)
	if user.Profile.DisplayName() != "Lin Yu" {
		t.Fatalf("a failed upload must leave the profile unchanged, got %q", user.Profile.DisplayName())
	}
}
