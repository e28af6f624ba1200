package vendors

import (
	"github.com/stitchfold/wardrobe/internal/vendors/repository"
	"github.com/stitchfold/wardrobe/internal/vendors/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vendor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
