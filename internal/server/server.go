package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stitchfold/wardrobe/internal/component"
	componentdomain "github.com/stitchfold/wardrobe/internal/component/domain"
	"github.com/stitchfold/wardrobe/internal/config"
	"github.com/stitchfold/wardrobe/internal/imaging"
	"github.com/stitchfold/wardrobe/internal/ledger"
	ledgerdomain "github.com/stitchfold/wardrobe/internal/ledger/domain"
	"github.com/stitchfold/wardrobe/internal/observability"
	"github.com/stitchfold/wardrobe/internal/outfit"
	outfitdomain "github.com/stitchfold/wardrobe/internal/outfit/domain"
	"github.com/stitchfold/wardrobe/internal/piece"
	piecedomain "github.com/stitchfold/wardrobe/internal/piece/domain"
	"github.com/stitchfold/wardrobe/internal/vendors"
	vendordomain "github.com/stitchfold/wardrobe/internal/vendors/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	imaging.Module,
	vendors.Module,
	piece.Module,
	component.Module,
	outfit.Module,
	ledger.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *observability.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log))
	r.Use(observability.TracingMiddleware())
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *observability.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	catalogCfg   *config.CatalogConfigHolder
	log          *zap.Logger
	imaging      *imaging.Service
	vendorSvc    vendordomain.Service
	pieceSvc     piecedomain.Service
	componentSvc componentdomain.Service
	outfitSvc    outfitdomain.Service
	ledgerSvc    ledgerdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	CatalogCfg   *config.CatalogConfigHolder
	Log          *zap.Logger
	Imaging      *imaging.Service
	VendorSvc    vendordomain.Service
	PieceSvc     piecedomain.Service
	ComponentSvc componentdomain.Service
	OutfitSvc    outfitdomain.Service
	LedgerSvc    ledgerdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		catalogCfg:   p.CatalogCfg,
		log:          p.Log.Named("http.server"),
		imaging:      p.Imaging,
		vendorSvc:    p.VendorSvc,
		pieceSvc:     p.PieceSvc,
		componentSvc: p.ComponentSvc,
		outfitSvc:    p.OutfitSvc,
		ledgerSvc:    p.LedgerSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	vendors := api.Group("/vendors")
	vendors.POST("", s.createVendor)
	vendors.GET("", s.listVendors)
	vendors.GET("/:id", s.getVendor)
	vendors.PATCH("/:id", s.updateVendor)
	vendors.DELETE("/:id", s.deactivateVendor)

	pieces := api.Group("/pieces")
	pieces.POST("", s.createPiece)
	pieces.GET("", s.listPieces)
	pieces.GET("/:id", s.getPiece)
	pieces.PATCH("/:id", s.updatePiece)
	pieces.DELETE("/:id", s.deactivatePiece)

	components := api.Group("/components")
	components.POST("", s.createComponent)
	components.GET("", s.listComponents)
	components.GET("/:id", s.getComponent)
	components.PATCH("/:id", s.updateComponent)
	components.DELETE("/:id", s.deactivateComponent)
	components.PUT("/:id/image", s.uploadComponentImage)
	components.DELETE("/:id/image", s.clearComponentImage)

	outfits := api.Group("/outfits")
	outfits.POST("", s.createOutfit)
	outfits.GET("", s.listOutfits)
	outfits.GET("/:id", s.getOutfit)
	outfits.PATCH("/:id", s.updateOutfit)
	outfits.DELETE("/:id", s.deactivateOutfit)
	outfits.PUT("/:id/image", s.uploadOutfitImage)
	outfits.DELETE("/:id/image", s.clearOutfitImage)

	outfits.PUT("/:id/components", s.setOutfitComponents)
	outfits.GET("/:id/components", s.listOutfitComponents)
	outfits.POST("/:id/components/:comid", s.addOutfitComponent)
	outfits.DELETE("/:id/components/:comid", s.removeOutfitComponent)
	outfits.POST("/:id/recompute", s.recomputeOutfitCost)

	api.GET("/images/:kind/:id", s.getImage)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
