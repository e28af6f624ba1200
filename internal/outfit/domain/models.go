package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Outfit is a curated collection of components. TotalCost is derived from the
// outfit's active links by the composition ledger; nothing else writes it
// after creation.
type Outfit struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Notes       *string           `json:"notes,omitempty" gorm:"type:text"`
	TotalCost   int64             `json:"total_cost" gorm:"column:total_cost;not null;default:0"`
	VendorID    *snowflake.ID     `json:"vendor_id,omitempty" gorm:"index:ix_outfits_vendor"`
	Image       []byte            `json:"-" gorm:"type:bytea"`
	Thumbnail   []byte            `json:"-" gorm:"type:bytea"`
	Active      bool              `json:"active" gorm:"not null;default:true"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Outfit) TableName() string { return "outfits" }
