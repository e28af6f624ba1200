package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/stitchfold/wardrobe/internal/clock"
	"github.com/stitchfold/wardrobe/internal/outfit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Retirer domain.LinkRetirer
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	retirer domain.LinkRetirer
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("outfit.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		retirer: p.Retirer,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	vendorID, err := s.resolveVendor(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	o := &domain.Outfit{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: trimPtr(req.Description),
		Notes:       trimPtr(req.Notes),
		TotalCost:   0,
		VendorID:    vendorID,
		Image:       req.Image,
		Thumbnail:   req.Thumbnail,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		o.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, o); err != nil {
		return nil, err
	}

	resp := toResponse(&domain.Row{Outfit: *o, HasImage: len(o.Image) > 0})
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	outfitID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	row, err := s.repo.FindByID(ctx, s.db, outfitID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(row)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := req
	filter.Query = strings.TrimSpace(req.Query)
	filter.VendorID = strings.TrimSpace(req.VendorID)

	rows, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toResponse(&row))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	outfitID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	row, err := s.repo.FindByID(ctx, s.db, outfitID)
	if err != nil {
		return nil, err
	}
	if row == nil || !row.Active {
		return nil, domain.ErrNotFound
	}
	item := row.Outfit

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = trimPtr(req.Description)
	}
	if req.Notes != nil {
		item.Notes = trimPtr(req.Notes)
	}
	if req.VendorID != nil {
		vendorID, err := s.resolveVendor(ctx, req.VendorID)
		if err != nil {
			return nil, err
		}
		item.VendorID = vendorID
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &item); err != nil {
		return nil, err
	}

	if req.Image != nil {
		if err := s.repo.UpdateImage(ctx, s.db, outfitID, req.Image, req.Thumbnail); err != nil {
			return nil, err
		}
	} else if req.ClearImage {
		if err := s.repo.UpdateImage(ctx, s.db, outfitID, nil, nil); err != nil {
			return nil, err
		}
	}

	refreshed, err := s.repo.FindByID(ctx, s.db, outfitID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(refreshed)
	return &resp, nil
}

// Deactivate retires an outfit through the ledger, which flips the outfit
// and its active links together, preserving the link rows as history.
func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Response, error) {
	outfitID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	row, err := s.repo.FindByID(ctx, s.db, outfitID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.retirer.RetireOutfit(ctx, outfitID); err != nil {
		return nil, err
	}

	refreshed, err := s.repo.FindByID(ctx, s.db, outfitID)
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(refreshed)
	return &resp, nil
}

func (s *Service) Image(ctx context.Context, id string, thumbnail bool) ([]byte, error) {
	outfitID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	blob, err := s.repo.FindImage(ctx, s.db, outfitID, thumbnail)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, domain.ErrNoImage
	}
	return blob, nil
}

func (s *Service) resolveVendor(ctx context.Context, raw *string) (*snowflake.ID, error) {
	value := strings.TrimSpace(ptrToString(raw))
	if value == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(value)
	if err != nil {
		return nil, domain.ErrVendorNotFound
	}
	ok, err := s.repo.ActiveVendorExists(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	return &id, nil
}

func toResponse(row *domain.Row) domain.Response {
	o := row.Outfit
	resp := domain.Response{
		ID:          o.ID.String(),
		Name:        o.Name,
		Description: o.Description,
		Notes:       o.Notes,
		TotalCost:   o.TotalCost,
		VendorName:  row.VendorName,
		HasImage:    row.HasImage,
		Active:      o.Active,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.VendorID != nil {
		id := o.VendorID.String()
		resp.VendorID = &id
	}
	if len(o.Metadata) > 0 {
		resp.Metadata = map[string]any(o.Metadata)
	}
	return resp
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
