package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Deactivate(ctx context.Context, id string) (*Response, error)
	Image(ctx context.Context, id string, thumbnail bool) ([]byte, error)
}

type ListRequest struct {
	Query        string
	VendorID     string
	PieceID      string
	ShowInactive bool
	SortBy       string
	OrderBy      string
	Limit        int
	Offset       int
}

type CreateRequest struct {
	Name        string         `json:"name"`
	Brand       *string        `json:"brand"`
	Cost        int64          `json:"cost"`
	Description *string        `json:"description"`
	Notes       *string        `json:"notes"`
	VendorID    *string        `json:"vendor_id"`
	PieceID     *string        `json:"piece_id"`
	Metadata    map[string]any `json:"metadata"`

	// Image carries normalized bytes from the imaging pipeline; Thumbnail is
	// best effort and may be nil even when Image is set.
	Image     []byte `json:"-"`
	Thumbnail []byte `json:"-"`
}

type UpdateRequest struct {
	ID          string         `json:"id"`
	Name        *string        `json:"name"`
	Brand       *string        `json:"brand"`
	Cost        *int64         `json:"cost"`
	Description *string        `json:"description"`
	Notes       *string        `json:"notes"`
	VendorID    *string        `json:"vendor_id"`
	PieceID     *string        `json:"piece_id"`
	Metadata    map[string]any `json:"metadata"`

	Image      []byte `json:"-"`
	Thumbnail  []byte `json:"-"`
	ClearImage bool   `json:"-"`
}

type Response struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Brand       *string        `json:"brand,omitempty"`
	Cost        int64          `json:"cost"`
	Description *string        `json:"description,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	VendorID    *string        `json:"vendor_id,omitempty"`
	VendorName  *string        `json:"vendor_name,omitempty"`
	PieceID     *string        `json:"piece_id,omitempty"`
	PieceName   *string        `json:"piece_name,omitempty"`
	HasImage    bool           `json:"has_image"`
	Active      bool           `json:"active"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidCost    = errors.New("invalid_cost")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrVendorNotFound = errors.New("vendor_not_found")
	ErrPieceNotFound  = errors.New("piece_not_found")
	ErrNoImage        = errors.New("image_not_found")
)
