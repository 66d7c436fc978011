package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teachhub/internal/application/usecase"
)

type EnrollmentHandler struct {
	enrollments *usecase.EnrollmentUseCase
	catalog     *usecase.CatalogUseCase
}

func NewEnrollmentHandler(enrollments *usecase.EnrollmentUseCase, catalog *usecase.CatalogUseCase) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, catalog: catalog}
}

type enrollReq struct {
	PaymentToken string `json:"payment_token" binding:"required"`
}

// POST /api/v1/courses/:id/enroll
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req enrollReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enrollment, err := h.enrollments.Enroll(c, userID, courseID, req.PaymentToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// GET /api/v1/me/enrollments
func (h *EnrollmentHandler) Mine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	enrollments, err := h.catalog.ListEnrollments(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}
