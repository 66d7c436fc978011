package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teachhub/internal/application/usecase"
	"teachhub/internal/domain"
)

type ProfileHandler struct {
	profiles *usecase.ProfileUseCase
}

func NewProfileHandler(profiles *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type profileResp struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	ProfileComplete bool   `json:"profile_complete"`
	Name            string `json:"name,omitempty"`
	Bio             string `json:"bio,omitempty"`
	PictureURL      string `json:"picture_url,omitempty"`
}

func toProfileResp(u *domain.User) profileResp {
	resp := profileResp{
		UserID:          u.ID.String(),
		Email:           u.Email,
		Role:            u.Profile.Kind.String(),
		ProfileComplete: u.ProfileComplete,
		Name:            u.Profile.DisplayName(),
	}
	if t, ok := u.Profile.AsTeacher(); ok {
		resp.Bio = t.Bio
		resp.PictureURL = t.PictureURL
	}
	if l, ok := u.Profile.AsLearner(); ok {
		resp.PictureURL = l.PictureURL
	}
	return resp
}

// GET /api/v1/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.profiles.GetProfile(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResp(user))
}

// POST /api/v1/profile/teacher (multipart: name, bio, picture)
func (h *ProfileHandler) BecomeTeacher(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	picture, closePicture, err := optionalFile(c, "picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closePicture()

	user, err := h.profiles.BecomeTeacher(c, userID, c.PostForm("name"), c.PostForm("bio"), picture)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProfileResp(user))
}

// POST /api/v1/profile/learner (multipart: name, picture)
func (h *ProfileHandler) BecomeLearner(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	picture, closePicture, err := optionalFile(c, "picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closePicture()

	user, err := h.profiles.BecomeLearner(c, userID, c.PostForm("name"), picture)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProfileResp(user))
}

// PATCH /api/v1/profile/teacher (multipart: name, bio, picture)
func (h *ProfileHandler) UpdateTeacher(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	picture, closePicture, err := optionalFile(c, "picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closePicture()

	user, err := h.profiles.UpdateTeacherProfile(c, userID, c.PostForm("name"), c.PostForm("bio"), picture)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResp(user))
}

// PATCH /api/v1/profile/learner (multipart: name, picture)
func (h *ProfileHandler) UpdateLearner(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	picture, closePicture, err := optionalFile(c, "picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closePicture()

	user, err := h.profiles.UpdateLearnerProfile(c, userID, c.PostForm("name"), picture)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResp(user))
}

// DELETE /api/v1/profile/teacher
func (h *ProfileHandler) DeleteTeacher(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.profiles.DeleteTeacherProfile(c, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/v1/profile/learner
func (h *ProfileHandler) DeleteLearner(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.profiles.DeleteLearnerProfile(c, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
