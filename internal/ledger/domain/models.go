package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Link is one outfit↔component association. A pair has at most one row for
// its whole history: membership changes flip the active flag, they never
// delete or duplicate the row.
type Link struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	OutfitID    snowflake.ID `json:"outfit_id" gorm:"not null;uniqueIndex:ux_out2comp_outfit_component,priority:1"`
	ComponentID snowflake.ID `json:"component_id" gorm:"not null;uniqueIndex:ux_out2comp_outfit_component,priority:2;index:ix_out2comp_component"`
	Active      bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Link) TableName() string { return "out2comp" }

// Member is a component reachable through a currently active link.
type Member struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Brand *string `json:"brand,omitempty"`
	Cost  int64   `json:"cost"`
}

// Reconciliation summarizes one membership mutation. SkippedComponentIDs
// lists requested members that were missing or inactive and therefore not
// linked; the rest of the call still succeeds.
type Reconciliation struct {
	OutfitID             string   `json:"outfit_id"`
	TotalCost            int64    `json:"total_cost"`
	AddedComponentIDs    []string `json:"added_component_ids,omitempty"`
	ReactivatedIDs       []string `json:"reactivated_component_ids,omitempty"`
	DeactivatedIDs       []string `json:"deactivated_component_ids,omitempty"`
	SkippedComponentIDs  []string `json:"skipped_component_ids,omitempty"`
	ActiveComponentCount int      `json:"active_component_count"`
}
