package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Service is the composition ledger: the only writer of link rows and of an
// outfit's total_cost. Every mutation runs serialized per outfit.
type Service interface {
	SetMembers(ctx context.Context, outfitID string, componentIDs []string) (*Reconciliation, error)
	AddMember(ctx context.Context, outfitID, componentID string) (*Reconciliation, error)
	RemoveMember(ctx context.Context, outfitID, componentID string) (*Reconciliation, error)
	RecomputeCost(ctx context.Context, outfitID string) (int64, error)
	GetActiveMembers(ctx context.Context, outfitID string) ([]Member, error)
	RetireOutfit(ctx context.Context, outfitID snowflake.ID) error
}

var (
	ErrInvalidOutfitID    = errors.New("invalid_outfit_id")
	ErrInvalidComponentID = errors.New("invalid_component_id")
	ErrOutfitNotFound     = errors.New("outfit_not_found")
	ErrContention         = errors.New("ledger_contention")
)
