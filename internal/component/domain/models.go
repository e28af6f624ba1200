package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Component is a single clothing item. Cost is stored in the smallest
// currency unit and is never negative. The image and thumbnail columns hold
// the normalized JPEG produced by the imaging pipeline, never raw uploads.
type Component struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Brand       *string           `json:"brand,omitempty" gorm:"type:text"`
	Cost        int64             `json:"cost" gorm:"not null;default:0"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Notes       *string           `json:"notes,omitempty" gorm:"type:text"`
	VendorID    *snowflake.ID     `json:"vendor_id,omitempty" gorm:"index:ix_components_vendor"`
	PieceID     *snowflake.ID     `json:"piece_id,omitempty" gorm:"index:ix_components_piece"`
	Image       []byte            `json:"-" gorm:"type:bytea"`
	Thumbnail   []byte            `json:"-" gorm:"type:bytea"`
	Active      bool              `json:"active" gorm:"not null;default:true"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Component) TableName() string { return "components" }
