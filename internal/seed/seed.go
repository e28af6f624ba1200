package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/stitchfold/wardrobe/internal/clock"
	piecedomain "github.com/stitchfold/wardrobe/internal/piece/domain"
	vendordomain "github.com/stitchfold/wardrobe/internal/vendors/domain"
	"gorm.io/gorm"
)

type entry struct {
	name        string
	description string
}

var defaultVendors = []entry{
	{"Amazon", "Online marketplace"},
	{"Poshmark", "Social commerce marketplace"},
	{"Nordstrom", "Upscale department store"},
	{"Target", "Discount retail store"},
	{"Zara", "Fast fashion retailer"},
	{"H&M", "Swedish fashion retailer"},
	{"Uniqlo", "Japanese casual wear designer"},
	{"Local Store", "Physical retail store"},
}

var defaultPieces = []entry{
	{"Shirt", "Tops, blouses, t-shirts"},
	{"Pants", "Trousers, jeans, leggings"},
	{"Dress", "One-piece garments"},
	{"Skirt", "Lower body garments"},
	{"Jacket", "Outerwear, blazers, coats"},
	{"Shoes", "Footwear"},
	{"Accessories", "Jewelry, bags, belts"},
	{"Undergarments", "Underwear, bras, shapewear"},
	{"Swimwear", "Bathing suits, bikinis"},
	{"Activewear", "Athletic and workout clothing"},
}

// Run seeds the starter vendors and pieces. Each entry is keyed by its slug
// so reruns are no-ops.
func Run(db *gorm.DB, node *snowflake.Node, ck clock.Clock) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureVendors(ctx, tx, node, ck); err != nil {
			return err
		}
		return ensurePieces(ctx, tx, node, ck)
	})
}

func ensureVendors(ctx context.Context, tx *gorm.DB, node *snowflake.Node, ck clock.Clock) error {
	for _, e := range defaultVendors {
		code := slug.Make(e.name)

		var existing vendordomain.Vendor
		err := tx.WithContext(ctx).Where("code = ?", code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		description := e.description
		now := ck.Now()
		v := vendordomain.Vendor{
			ID:          node.Generate(),
			Code:        code,
			Name:        e.name,
			Description: &description,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&v).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensurePieces(ctx context.Context, tx *gorm.DB, node *snowflake.Node, ck clock.Clock) error {
	for _, e := range defaultPieces {
		code := slug.Make(e.name)

		var existing piecedomain.Piece
		err := tx.WithContext(ctx).Where("code = ?", code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		description := e.description
		now := ck.Now()
		p := piecedomain.Piece{
			ID:          node.Generate(),
			Code:        code,
			Name:        e.name,
			Description: &description,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
