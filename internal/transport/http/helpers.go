package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"teachhub/internal/domain"
)

// maxUploadMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const maxUploadMemory = 32 << 20

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// openFiles opens every file under field. The returned closer must be called
// once the uploads are done, also on error.
func openFiles(form *multipart.Form, field string) ([]domain.FileUpload, func(), error) {
	var (
		uploads []domain.FileUpload
		files   []multipart.File
	)
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	if form == nil {
		return nil, closeAll, nil
	}
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, domain.FileUpload{Filename: fh.Filename, Content: f})
	}
	return uploads, closeAll, nil
}

func optionalFile(c *gin.Context, field string) (*domain.FileUpload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &domain.FileUpload{Filename: fh.Filename, Content: f}, func() { f.Close() }, nil
}

func formPrice(c *gin.Context) (*int64, error) {
	raw, ok := c.GetPostForm("price")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	price, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, domain.Validationf("price must be an integer amount in cents")
	}
	return &price, nil
}

func formString(c *gin.Context, field string) *string {
	v, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &v
}
