package seed

import (
	"github.com/bwmarrin/snowflake"
	"github.com/stitchfold/wardrobe/internal/clock"
	"github.com/stitchfold/wardrobe/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, db *gorm.DB, node *snowflake.Node, ck clock.Clock, log *zap.Logger) error {
		if !cfg.SeedEnabled {
			return nil
		}
		if err := Run(db, node, ck); err != nil {
			return err
		}
		log.Info("catalog seed applied")
		return nil
	}),
)
