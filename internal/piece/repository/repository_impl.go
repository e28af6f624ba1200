package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/stitchfold/wardrobe/internal/piece/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, piece *domain.Piece) error {
	return db.WithContext(ctx).Create(piece).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Piece, error) {
	var p domain.Piece
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, description, active, metadata, created_at, updated_at
		 FROM pieces WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Piece, error) {
	var items []domain.Piece
	stmt := db.WithContext(ctx).Model(&domain.Piece{})

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

func (r *repo) Update(ctx context.Context, db *gorm.DB, piece *domain.Piece) error {
	if piece == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE pieces
		 SET name = ?, description = ?, active = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		piece.Name,
		piece.Description,
		piece.Active,
		piece.Metadata,
		piece.UpdatedAt,
		piece.ID,
	).Error
}

func (r *repo) CountActiveComponents(ctx context.Context, db *gorm.DB, pieceID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM components WHERE piece_id = ? AND active = ?`,
		pieceID,
		true,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
