package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation error")
	ErrProfileIncomplete  = errors.New("profile is incomplete")
	ErrProfileExists      = errors.New("profile already exists for this user")
	ErrCourseNotFound     = fmt.Errorf("course %w", ErrNotFound)
	ErrCourseInactive     = errors.New("course is not open for new enrollments")
	ErrAlreadyEnrolled    = errors.New("learner is already enrolled in this course")
	ErrDuplicateTitle     = errors.New("teacher already has a course with this title")
	ErrDuplicateReview    = errors.New("learner has already reviewed this course")
	ErrHasEnrollments     = errors.New("enrollments exist, deactivate instead")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrPaymentAmbiguous   = errors.New("payment outcome unknown, learner may have been charged")
	ErrUploadFailed       = errors.New("upload failed")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FailedUpload names a file that could not be stored and why.
type FailedUpload struct {
	Name string
	Err  error
}

// UploadError reports a partially applied batch of uploads. The records that
// were written before the failures stay in place.
type UploadError struct {
	Succeeded []string
	Failed    []FailedUpload
}

func (e *UploadError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		names = append(names, fmt.Sprintf("%s (%v)", f.Name, f.Err))
	}
	return fmt.Sprintf("%s: %d succeeded, %d failed: %v", ErrUploadFailed, len(e.Succeeded), len(e.Failed), names)
}

func (e *UploadError) Unwrap() error { return ErrUploadFailed }

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
