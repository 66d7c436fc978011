package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"teachhub/internal/domain"
)

// statusOf maps domain errors to HTTP status codes. Unknown errors are 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProfileIncomplete):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrCourseInactive),
		errors.Is(err, domain.ErrHasEnrollments),
		errors.Is(err, domain.ErrAlreadyEnrolled),
		errors.Is(err, domain.ErrDuplicateTitle),
		errors.Is(err, domain.ErrDuplicateReview),
		errors.Is(err, domain.ErrProfileExists),
		errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPaymentAmbiguous),
		errors.Is(err, domain.ErrUploadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondPartial reports a write that succeeded apart from some uploads.
func respondPartial(c *gin.Context, body any, uploadErr *domain.UploadError) {
	failed := make([]gin.H, 0, len(uploadErr.Failed))
	for _, f := range uploadErr.Failed {
		failed = append(failed, gin.H{"name": f.Name, "error": f.Err.Error()})
	}
	c.JSON(http.StatusMultiStatus, gin.H{
		"course":         body,
		"uploaded":       uploadErr.Succeeded,
		"failed_uploads": failed,
	})
}
