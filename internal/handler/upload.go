package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Goh0809/Eventora-Backend/internal/storage"
	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps banner and avatar uploads
const maxUploadBytes = 10 << 20

var errFileTooLarge = errors.New("file exceeds 10MB")

// formFile reads a multipart file. A missing field yields nil, nil.
func formFile(c *gin.Context, field string) (*storage.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	if fh.Size > maxUploadBytes {
		return nil, errFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadBytes {
		return nil, errFileTooLarge
	}

	return &storage.File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
