package ledger

import (
	ledgerdomain "github.com/stitchfold/wardrobe/internal/ledger/domain"
	"github.com/stitchfold/wardrobe/internal/ledger/service"
	outfitdomain "github.com/stitchfold/wardrobe/internal/outfit/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(service.NewService),
	fx.Provide(func(s ledgerdomain.Service) outfitdomain.LinkRetirer { return s }),
)
