package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/stitchfold/wardrobe/internal/clock"
	"github.com/stitchfold/wardrobe/internal/config"
	"github.com/stitchfold/wardrobe/internal/migration"
	"github.com/stitchfold/wardrobe/internal/observability"
	"github.com/stitchfold/wardrobe/internal/seed"
	"github.com/stitchfold/wardrobe/internal/server"
	"github.com/stitchfold/wardrobe/pkg/db"
	"github.com/stitchfold/wardrobe/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		seed.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
