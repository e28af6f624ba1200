package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/stitchfold/wardrobe/internal/clock"
	"github.com/stitchfold/wardrobe/internal/component/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("component.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Cost < 0 {
		return nil, domain.ErrInvalidCost
	}

	vendorID, err := s.resolveVendor(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	pieceID, err := s.resolvePiece(ctx, req.PieceID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := &domain.Component{
		ID:          s.genID.Generate(),
		Name:        name,
		Brand:       trimPtr(req.Brand),
		Cost:        req.Cost,
		Description: trimPtr(req.Description),
		Notes:       trimPtr(req.Notes),
		VendorID:    vendorID,
		PieceID:     pieceID,
		Image:       req.Image,
		Thumbnail:   req.Thumbnail,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		c.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, c); err != nil {
		return nil, err
	}

	resp := toResponse(&domain.Row{Component: *c})
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	componentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	row, err := s.repo.FindByID(ctx, s.db, componentID)
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
	filter.PieceID = strings.TrimSpace(req.PieceID)

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
	componentID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	row, err := s.repo.FindByID(ctx, s.db, componentID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	item := row.Component

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Cost != nil {
		if *req.Cost < 0 {
			return nil, domain.ErrInvalidCost
		}
		item.Cost = *req.Cost
	}
	if req.Brand != nil {
		item.Brand = trimPtr(req.Brand)
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
	if req.PieceID != nil {
		pieceID, err := s.resolvePiece(ctx, req.PieceID)
		if err != nil {
			return nil, err
		}
		item.PieceID = pieceID
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &item); err != nil {
		return nil, err
	}

	if req.Image != nil {
		if err := s.repo.UpdateImage(ctx, s.db, componentID, req.Image, req.Thumbnail); err != nil {
			return nil, err
		}
	} else if req.ClearImage {
		if err := s.repo.UpdateImage(ctx, s.db, componentID, nil, nil); err != nil {
			return nil, err
		}
	}

	refreshed, err := s.repo.FindByID(ctx, s.db, componentID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(refreshed)
	return &resp, nil
}

// Deactivate retires a component without touching any outfit links; ledger
// recomputation is responsible for refreshing affected totals afterwards.
func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Response, error) {
	componentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	row, err := s.repo.FindByID(ctx, s.db, componentID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}

	item := row.Component
	item.Active = false
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &item); err != nil {
		return nil, err
	}

	row.Component = item
	resp := toResponse(row)
	return &resp, nil
}

func (s *Service) Image(ctx context.Context, id string, thumbnail bool) ([]byte, error) {
	componentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	blob, err := s.repo.FindImage(ctx, s.db, componentID, thumbnail)
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

func (s *Service) resolvePiece(ctx context.Context, raw *string) (*snowflake.ID, error) {
	value := strings.TrimSpace(ptrToString(raw))
	if value == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(value)
	if err != nil {
		return nil, domain.ErrPieceNotFound
	}
	ok, err := s.repo.ActivePieceExists(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrPieceNotFound
	}
	return &id, nil
}

func toResponse(row *domain.Row) domain.Response {
	c := row.Component
	resp := domain.Response{
		ID:          c.ID.String(),
		Name:        c.Name,
		Brand:       c.Brand,
		Cost:        c.Cost,
		Description: c.Description,
		Notes:       c.Notes,
		VendorName:  row.VendorName,
		PieceName:   row.PieceName,
		HasImage:    row.HasImage || len(c.Image) > 0,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.VendorID != nil {
		id := c.VendorID.String()
		resp.VendorID = &id
	}
	if c.PieceID != nil {
		id := c.PieceID.String()
		resp.PieceID = &id
	}
	if len(c.Metadata) > 0 {
		resp.Metadata = map[string]any(c.Metadata)
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
