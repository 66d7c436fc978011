package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"teachhub/internal/application/usecase"
	"teachhub/internal/domain"
)

type CourseHandler struct {
	courses *usecase.CourseUseCase
	catalog *usecase.CatalogUseCase
}

func NewCourseHandler(courses *usecase.CourseUseCase, catalog *usecase.CatalogUseCase) *CourseHandler {
	return &CourseHandler{courses: courses, catalog: catalog}
}

// GET /api/v1/courses?search=
func (h *CourseHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	courses, err := h.catalog.ListAvailableCourses(c, userID, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GET /api/v1/courses/:id
func (h *CourseHandler) GetOne(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	course, err := h.catalog.GetCourse(c, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// POST /api/v1/courses (multipart: title, description, price, videos[])
func (h *CourseHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return
	}

	draft := domain.CourseDraft{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	price, err := formPrice(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if price != nil {
		draft.Price = *price
	}

	files, closeFiles, err := openFiles(form, "videos")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeFiles()

	course, err := h.courses.CreateCourse(c, userID, draft, toVideoUploads(files))
	if err != nil {
		var uploadErr *domain.UploadError
		if errors.As(err, &uploadErr) && course != nil {
			respondPartial(c, course, uploadErr)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// PATCH /api/v1/courses/:id (multipart: title, description, price, videos[], remove_video_ids[])
func (h *CourseHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return
	}

	changes := domain.CourseChanges{
		Title:       formString(c, "title"),
		Description: formString(c, "description"),
	}
	if changes.Price, err = formPrice(c); err != nil {
		respondError(c, err)
		return
	}

	var removed []uuid.UUID
	for _, raw := range c.PostFormArray("remove_video_ids") {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id " + raw})
			return
		}
		removed = append(removed, id)
	}

	files, closeFiles, err := openFiles(form, "videos")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeFiles()

	course, err := h.courses.UpdateCourse(c, userID, courseID, changes, toVideoUploads(files), removed)
	if err != nil {
		var uploadErr *domain.UploadError
		if errors.As(err, &uploadErr) && course != nil {
			respondPartial(c, course, uploadErr)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// POST /api/v1/courses/:id/deactivate
func (h *CourseHandler) Deactivate(c *gin.Context) {
	h.ownerAction(c, h.courses.DeactivateCourse)
}

// POST /api/v1/courses/:id/reactivate
func (h *CourseHandler) Reactivate(c *gin.Context) {
	h.ownerAction(c, h.courses.ReactivateCourse)
}

// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	h.ownerAction(c, h.courses.DeleteCourse)
}

func (h *CourseHandler) ownerAction(c *gin.Context, action func(ctx context.Context, teacherID, courseID uuid.UUID) error) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := action(c, userID, courseID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/courses/:id/transactions
func (h *CourseHandler) Transactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	txs, err := h.catalog.CourseTransactions(c, userID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// GET /api/v1/me/courses
func (h *CourseHandler) MyCourses(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	courses, err := h.catalog.ListTeacherCourses(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GET /api/v1/me/sales
func (h *CourseHandler) Sales(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sales, err := h.catalog.SalesReport(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func toVideoUploads(files []domain.FileUpload) []domain.VideoUpload {
	videos := make([]domain.VideoUpload, 0, len(files))
	for _, f := range files {
		videos = append(videos, domain.VideoUpload{FileUpload: f})
	}
	return videos
}
