package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/stitchfold/wardrobe/internal/vendors/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, vendor *domain.Vendor) error {
	return db.WithContext(ctx).Create(vendor).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Vendor, error) {
	var v domain.Vendor
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, description, active, metadata, created_at, updated_at
		 FROM vendors WHERE id = ?`,
		id,
	).Scan(&v).Error
	if err != nil {
		return nil, err
	}
	if v.ID == 0 {
		return nil, nil
	}
	return &v, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Vendor, error) {
	var items []domain.Vendor
	stmt := db.WithContext(ctx).Model(&domain.Vendor{})

	if !filter.ShowInactive {
		stmt = stmt.Where("active = ?", true)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		stmt = stmt.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	order := filter.SortBy
	switch order {
	case "name", "created_at", "updated_at":
	default:
		order = "name"
	}
	if filter.OrderBy == "desc" {
		order += " DESC"
	}
	stmt = stmt.Order(order)
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		stmt = stmt.Offset(filter.Offset)
	}
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, vendor *domain.Vendor) error {
	if vendor == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE vendors
		 SET name = ?, description = ?, active = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		vendor.Name,
		vendor.Description,
		vendor.Active,
		vendor.Metadata,
		vendor.UpdatedAt,
		vendor.ID,
	).Error
}

func (r *repo) CountActiveComponents(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM components WHERE vendor_id = ? AND active = ?`,
		vendorID,
		true,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
