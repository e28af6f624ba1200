package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stitchfold/wardrobe/internal/imaging"
)

const imageFormField = "image"

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func formLookup(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func formOptional(form *multipart.Form, key string) *string {
	raw, ok := formLookup(form, key)
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	return &trimmed
}

func formMetadata(form *multipart.Form, key string) (map[string]any, error) {
	raw, ok := formLookup(form, key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, newValidationError(key, "invalid_metadata", "metadata must be a JSON object")
	}
	return metadata, nil
}

// normalizeUpload runs the uploaded file through the imaging pipeline. A
// missing file is fine; a file that fails normalization is a validation error
// that rejects the whole mutation. The thumbnail is best effort.
func (s *Server) normalizeUpload(form *multipart.Form) (image, thumbnail []byte, err error) {
	files, ok := form.File[imageFormField]
	if !ok || len(files) == 0 {
		return nil, nil, nil
	}

	file, err := files[0].Open()
	if err != nil {
		return nil, nil, newValidationError(imageFormField, "invalid_image", "unreadable upload")
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, imaging.MaxInputSize+1))
	if err != nil {
		return nil, nil, newValidationError(imageFormField, "invalid_image", "unreadable upload")
	}

	normalized, err := s.imaging.Normalize(raw)
	if err != nil {
		return nil, nil, err
	}
	return normalized, s.imaging.Thumbnail(normalized), nil
}
