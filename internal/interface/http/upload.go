package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vidstream-accounts/internal/application"
	"github.com/oksasatya/vidstream-accounts/pkg/apperror"
)

const (
	defaultMaxUpload = 5 << 20
	formOverhead     = 1 << 20
)

// limitBody caps the request body for multipart endpoints holding up to files uploads.
func limitBody(c *gin.Context, maxFile int64, files int) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFile*int64(files)+formOverhead)
}

func parseMultipart(c *gin.Context, maxFile int64) error {
	if err := c.Request.ParseMultipartForm(maxFile); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.Validation("Request body too large")
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return apperror.Validation("Expected multipart/form-data")
		}
		return apperror.Validation("Invalid multipart form")
	}
	return nil
}

// formFile opens the named part. A missing part yields (nil, nil, nil).
// The returned closer must be called once the service is done with the body.
func formFile(c *gin.Context, field string, maxFile int64) (*application.FileInput, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, apperror.Validation("Invalid " + field + " file")
	}
	if fh.Size > maxFile {
		return nil, func() {}, apperror.Validation(field + " exceeds the maximum size of " + strconv.FormatInt(maxFile, 10) + " bytes")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, apperror.Upload("Could not read "+field+" file", err)
	}
	return &application.FileInput{
		Filename:    fh.Filename,
		ContentType: contentType(fh),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
