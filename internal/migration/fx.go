package migration

import (
	componentdomain "github.com/stitchfold/wardrobe/internal/component/domain"
	"github.com/stitchfold/wardrobe/internal/config"
	ledgerdomain "github.com/stitchfold/wardrobe/internal/ledger/domain"
	outfitdomain "github.com/stitchfold/wardrobe/internal/outfit/domain"
	piecedomain "github.com/stitchfold/wardrobe/internal/piece/domain"
	vendordomain "github.com/stitchfold/wardrobe/internal/vendors/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite and mysql dev modes lean on gorm's schema sync.
			return conn.AutoMigrate(
				&vendordomain.Vendor{},
				&piecedomain.Piece{},
				&componentdomain.Component{},
				&outfitdomain.Outfit{},
				&ledgerdomain.Link{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
