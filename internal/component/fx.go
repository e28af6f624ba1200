package component

import (
	"github.com/stitchfold/wardrobe/internal/component/repository"
	"github.com/stitchfold/wardrobe/internal/component/service"
	"go.uber.org/fx"
)

var Module = fx.Module("component.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
