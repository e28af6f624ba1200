package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/stitchfold/wardrobe/internal/component/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const rowSelect = `SELECT c.id, c.name, c.brand, c.cost, c.description, c.notes,
       c.vendor_id, c.piece_id, c.active, c.metadata, c.created_at, c.updated_at,
       v.name AS vendor_name, p.name AS piece_name,
       c.image IS NOT NULL AS has_image
  FROM components c
  LEFT JOIN vendors v ON v.id = c.vendor_id
  LEFT JOIN pieces p ON p.id = c.piece_id`

func (r *repo) Create(ctx context.Context, db *gorm.DB, component *domain.Component) error {
	return db.WithContext(ctx).Create(component).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Row, error) {
	var row domain.Row
	err := db.WithContext(ctx).Raw(rowSelect+` WHERE c.id = ?`, id).Scan(&row).Error
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
		Table("components c").
		Select(`c.id, c.name, c.brand, c.cost, c.description, c.notes,
		        c.vendor_id, c.piece_id, c.active, c.metadata, c.created_at, c.updated_at,
		        v.name AS vendor_name, p.name AS piece_name,
		        c.image IS NOT NULL AS has_image`).
		Joins("LEFT JOIN vendors v ON v.id = c.vendor_id").
		Joins("LEFT JOIN pieces p ON p.id = c.piece_id")

	if !filter.ShowInactive {
		stmt = stmt.Where("c.active = ?", true)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		stmt = stmt.Where("c.name LIKE ? OR c.description LIKE ? OR c.brand LIKE ?", pattern, pattern, pattern)
	}
	if filter.VendorID != "" {
		stmt = stmt.Where("c.vendor_id = ?", filter.VendorID)
	}
	if filter.PieceID != "" {
		stmt = stmt.Where("c.piece_id = ?", filter.PieceID)
	}

	sortBy := filter.SortBy
	switch sortBy {
	case "name", "created_at", "updated_at", "cost":
	default:
		sortBy = "name"
	}
	order := "c." + sortBy
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

func (r *repo) Update(ctx context.Context, db *gorm.DB, component *domain.Component) error {
	if component == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE components
		 SET name = ?, brand = ?, cost = ?, description = ?, notes = ?,
		     vendor_id = ?, piece_id = ?, active = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		component.Name,
		component.Brand,
		component.Cost,
		component.Description,
		component.Notes,
		component.VendorID,
		component.PieceID,
		component.Active,
		component.Metadata,
		component.UpdatedAt,
		component.ID,
	).Error
}

func (r *repo) UpdateImage(ctx context.Context, db *gorm.DB, id snowflake.ID, image, thumbnail []byte) error {
	return db.WithContext(ctx).Exec(
		`UPDATE components SET image = ?, thumbnail = ? WHERE id = ?`,
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
		`SELECT `+column+` AS blob FROM components WHERE id = ?`, id,
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

func (r *repo) ActivePieceExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM pieces WHERE id = ? AND active = ?`, id, true,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
