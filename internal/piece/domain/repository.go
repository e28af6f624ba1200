package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, piece *Piece) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Piece, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Piece, error)
	Update(ctx context.Context, db *gorm.DB, piece *Piece) error
	CountActiveComponents(ctx context.Context, db *gorm.DB, pieceID snowflake.ID) (int64, error)
}
