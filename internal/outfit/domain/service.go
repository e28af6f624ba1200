package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Deactivate(ctx context.Context, id string) (*Response, error)
	Image(ctx context.Context, id string, thumbnail bool) ([]byte, error)
}

// LinkRetirer flips an outfit inactive together with every active link it
// holds, in one transaction so a failure cannot strand an inactive outfit
// with live links. Implemented by the composition ledger, which is the only
// writer of link rows.
type LinkRetirer interface {
	RetireOutfit(ctx context.Context, outfitID snowflake.ID) error
}

type ListRequest struct {
	Query        string
	VendorID     string
	ShowInactive bool
	SortBy       string
	OrderBy      string
	Limit        int
	Offset       int
}

type CreateRequest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Notes       *string        `json:"notes"`
	VendorID    *string        `json:"vendor_id"`
	Metadata    map[string]any `json:"metadata"`

	Image     []byte `json:"-"`
	Thumbnail []byte `json:"-"`
}

type UpdateRequest struct {
	ID          string         `json:"id"`
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Notes       *string        `json:"notes"`
	VendorID    *string        `json:"vendor_id"`
	Metadata    map[string]any `json:"metadata"`

	Image      []byte `json:"-"`
	Thumbnail  []byte `json:"-"`
	ClearImage bool   `json:"-"`
}

type Response struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	TotalCost   int64          `json:"total_cost"`
	VendorID    *string        `json:"vendor_id,omitempty"`
	VendorName  *string        `json:"vendor_name,omitempty"`
	HasImage    bool           `json:"has_image"`
	Active      bool           `json:"active"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrVendorNotFound = errors.New("vendor_not_found")
	ErrNoImage        = errors.New("image_not_found")
)
