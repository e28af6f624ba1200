package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	componentdomain "github.com/stitchfold/wardrobe/internal/component/domain"
	"github.com/stitchfold/wardrobe/internal/imaging"
	ledgerdomain "github.com/stitchfold/wardrobe/internal/ledger/domain"
	outfitdomain "github.com/stitchfold/wardrobe/internal/outfit/domain"
	vendordomain "github.com/stitchfold/wardrobe/internal/vendors/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError_StatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		payload string
	}{
		{"nil", nil, http.StatusInternalServerError, "internal_error"},
		{"validation sentinel", componentdomain.ErrInvalidCost, http.StatusBadRequest, "validation_error"},
		{"wrapped imaging error", fmt.Errorf("%w: bmp", imaging.ErrUnsupportedFormat), http.StatusBadRequest, "validation_error"},
		{"oversized upload", imaging.ErrTooLarge, http.StatusBadRequest, "validation_error"},
		{"field errors", newValidationError("name", "invalid_name", "name required"), http.StatusBadRequest, "validation_error"},
		{"missing entity", outfitdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"missing ledger outfit", ledgerdomain.ErrOutfitNotFound, http.StatusNotFound, "not_found"},
		{"gorm record", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"vendor still referenced", vendordomain.ErrInUse, http.StatusConflict, "conflict"},
		{"vendor code taken", vendordomain.ErrCodeTaken, http.StatusConflict, "conflict"},
		{"ledger contention", ledgerdomain.ErrContention, http.StatusServiceUnavailable, "service_unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.payload, payload.Type)
		})
	}
}

func TestValidationErrorField(t *testing.T) {
	assert.Equal(t, "request", validationErrorField("invalid_request"))
	assert.Equal(t, "cost", validationErrorField("invalid_cost"))
	assert.Equal(t, "vendor_id", validationErrorField("vendor_not_found"))
	assert.Equal(t, "image", validationErrorField("image_too_large"))
}
