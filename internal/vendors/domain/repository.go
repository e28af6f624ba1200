package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vendor, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Vendor, error)
	Update(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	CountActiveComponents(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (int64, error)
}
