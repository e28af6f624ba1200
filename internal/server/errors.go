package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	componentdomain "github.com/stitchfold/wardrobe/internal/component/domain"
	"github.com/stitchfold/wardrobe/internal/imaging"
	ledgerdomain "github.com/stitchfold/wardrobe/internal/ledger/domain"
	outfitdomain "github.com/stitchfold/wardrobe/internal/outfit/domain"
	piecedomain "github.com/stitchfold/wardrobe/internal/piece/domain"
	vendordomain "github.com/stitchfold/wardrobe/internal/vendors/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, vendordomain.ErrInUse),
		errors.Is(err, piecedomain.ErrInUse),
		errors.Is(err, vendordomain.ErrCodeTaken),
		errors.Is(err, piecedomain.ErrCodeTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ledgerdomain.ErrContention):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "try again",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, vendordomain.ErrInvalidName),
		errors.Is(err, vendordomain.ErrInvalidID),
		errors.Is(err, piecedomain.ErrInvalidName),
		errors.Is(err, piecedomain.ErrInvalidID),
		errors.Is(err, componentdomain.ErrInvalidName),
		errors.Is(err, componentdomain.ErrInvalidCost),
		errors.Is(err, componentdomain.ErrInvalidID),
		errors.Is(err, componentdomain.ErrVendorNotFound),
		errors.Is(err, componentdomain.ErrPieceNotFound),
		errors.Is(err, outfitdomain.ErrInvalidName),
		errors.Is(err, outfitdomain.ErrInvalidID),
		errors.Is(err, outfitdomain.ErrVendorNotFound),
		errors.Is(err, ledgerdomain.ErrInvalidOutfitID),
		errors.Is(err, ledgerdomain.ErrInvalidComponentID),
		errors.Is(err, imaging.ErrTooLarge),
		errors.Is(err, imaging.ErrUnsupportedFormat):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, vendordomain.ErrNotFound),
		errors.Is(err, piecedomain.ErrNotFound),
		errors.Is(err, componentdomain.ErrNotFound),
		errors.Is(err, componentdomain.ErrNoImage),
		errors.Is(err, outfitdomain.ErrNotFound),
		errors.Is(err, outfitdomain.ErrNoImage),
		errors.Is(err, ledgerdomain.ErrOutfitNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return "image_too_large"
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "unsupported_image_format"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasSuffix(code, "_not_found") {
		return strings.TrimSuffix(code, "_not_found") + "_id"
	}
	if strings.Contains(code, "image") {
		return "image"
	}
	return ""
}
