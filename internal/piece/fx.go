package piece

import (
	"github.com/stitchfold/wardrobe/internal/piece/repository"
	"github.com/stitchfold/wardrobe/internal/piece/service"
	"go.uber.org/fx"
)

var Module = fx.Module("piece.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
