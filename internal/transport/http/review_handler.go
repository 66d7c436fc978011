package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teachhub/internal/application/usecase"
)

type ReviewHandler struct {
	reviews *usecase.ReviewUseCase
	catalog *usecase.CatalogUseCase
}

func NewReviewHandler(reviews *usecase.ReviewUseCase, catalog *usecase.CatalogUseCase) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, catalog: catalog}
}

type reviewReq struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// POST /api/v1/courses/:id/reviews
func (h *ReviewHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviews.SubmitReview(c, userID, courseID, req.Content, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// PUT /api/v1/reviews/:id
func (h *ReviewHandler) Edit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviews.EditReview(c, userID, reviewID, req.Content, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reviews.DeleteReview(c, userID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/me/reviews
func (h *ReviewHandler) Mine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviews, err := h.catalog.ListReviews(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
