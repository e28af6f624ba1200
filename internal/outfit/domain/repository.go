package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Row struct {
	Outfit
	VendorName *string
	HasImage   bool
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, outfit *Outfit) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Row, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Row, error)
	Update(ctx context.Context, db *gorm.DB, outfit *Outfit) error
	UpdateImage(ctx context.Context, db *gorm.DB, id snowflake.ID, image, thumbnail []byte) error
	FindImage(ctx context.Context, db *gorm.DB, id snowflake.ID, thumbnail bool) ([]byte, error)
	ActiveVendorExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
