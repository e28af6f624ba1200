package outfit

import (
	"github.com/stitchfold/wardrobe/internal/outfit/repository"
	"github.com/stitchfold/wardrobe/internal/outfit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("outfit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
