package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/stitchfold/wardrobe/internal/outfit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const rowSelect = `SELECT o.id, o.name, o.description, o.notes, o.total_cost,
       o.vendor_id, o.active, o.metadata, o.created_at, o.updated_at,
       v.name AS vendor_name,
       o.image IS NOT NULL AS has_image
  FROM outfits o
  LEFT JOIN vendors v ON v.id = o.vendor_id`

func (r *repo) Create(ctx context.Context, db *gorm.DB, outfit *domain.Outfit) error {
	return db.WithContext(ctx).Create(outfit).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Row, error) {
	var row domain.Row
	err := db.WithContext(ctx).Raw(rowSelect+` WHERE o.id = ?`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Row, error) {
	stmt := db.WithContext(ctx).
		Table("outfits o").
		Select(`o.id, o.name, o.description, o.notes, o.total_cost,
		        o.vendor_id, o.active, o.metadata, o.created_at, o.updated_at,
		        v.name AS vendor_name,
		        o.image IS NOT NULL AS has_image`).
		Joins("LEFT JOIN vendors v ON v.id = o.vendor_id")

	if !filter.ShowInactive {
		stmt = stmt.Where("o.active = ?", true)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		stmt = stmt.Where("o.name LIKE ? OR o.description LIKE ?", pattern, pattern)
	}
	if filter.VendorID != "" {
		stmt = stmt.Where("o.vendor_id = ?", filter.VendorID)
	}

	sortBy := filter.SortBy
	switch sortBy {
	case "name", "created_at", "updated_at", "total_cost":
	default:
		sortBy = "name"
	}
	order := "o." + sortBy
	if filter.OrderBy == "desc" {
		order += " DESC"
	}

	var rows []domain.Row
	stmt = stmt.Order(order)
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		stmt = stmt.Offset(filter.Offset)
	}
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, outfit *domain.Outfit) error {
	if outfit == nil {
		return gorm.ErrInvalidData
	}
	// Deliberately does not touch total_cost; the ledger owns that column.
	return db.WithContext(ctx).Exec(
		`UPDATE outfits
		 SET name = ?, description = ?, notes = ?, vendor_id = ?,
		     active = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		outfit.Name,
		outfit.Description,
		outfit.Notes,
		outfit.VendorID,
		outfit.Active,
		outfit.Metadata,
		outfit.UpdatedAt,
		outfit.ID,
	).Error
}

func (r *repo) UpdateImage(ctx context.Context, db *gorm.DB, id snowflake.ID, image, thumbnail []byte) error {
	return db.WithContext(ctx).Exec(
		`UPDATE outfits SET image = ?, thumbnail = ? WHERE id = ?`,
		image,
		thumbnail,
		id,
	).Error
}

func (r *repo) FindImage(ctx context.Context, db *gorm.DB, id snowflake.ID, thumbnail bool) ([]byte, error) {
	column := "image"
	if thumbnail {
		column = "thumbnail"
	}
	var row struct {
		Blob []byte
	}
	err := db.WithContext(ctx).Raw(
		`SELECT `+column+` AS blob FROM outfits WHERE id = ?`, id,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return row.Blob, nil
}

func (r *repo) ActiveVendorExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM vendors WHERE id = ? AND active = ?`, id, true,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
