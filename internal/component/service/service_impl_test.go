package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stitchfold/wardrobe/internal/clock"
	"github.com/stitchfold/wardrobe/internal/component/domain"
	"github.com/stitchfold/wardrobe/internal/component/repository"
	piecedomain "github.com/stitchfold/wardrobe/internal/piece/domain"
	vendordomain "github.com/stitchfold/wardrobe/internal/vendors/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&vendordomain.Vendor{},
		&piecedomain.Piece{},
		&domain.Component{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.SystemClock{},
		Repo:  repository.Provide(),
	})
	return svc, conn, node
}

func seedVendor(t *testing.T, conn *gorm.DB, node *snowflake.Node, name string, active bool) snowflake.ID {
	t.Helper()
	v := vendordomain.Vendor{
		ID:     node.Generate(),
		Code:   name,
		Name:   name,
		Active: active,
	}
	require.NoError(t, conn.Select("*").Create(&v).Error)
	// gorm drops a zero-value Active behind the column's default:true
	// tag even with Select("*"), so write it explicitly.
	require.NoError(t, conn.Model(&v).Update("active", active).Error)
	return v.ID
}

func seedPiece(t *testing.T, conn *gorm.DB, node *snowflake.Node, name string, active bool) snowflake.ID {
	t.Helper()
	p := piecedomain.Piece{
		ID:     node.Generate(),
		Code:   name,
		Name:   name,
		Active: active,
	}
	require.NoError(t, conn.Select("*").Create(&p).Error)
	require.NoError(t, conn.Model(&p).Update("active", active).Error)
	return p.ID
}

func strPtr(s string) *string { return &s }

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "boots", Cost: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidCost)
}

func TestCreate_ResolvesVendorAndPiece(t *testing.T) {
	svc, conn, node := setup(t)

	vid := seedVendor(t, conn, node, "zara", true)
	pid := seedPiece(t, conn, node, "shoes", true)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "chelsea boots",
		Cost:     4500,
		VendorID: strPtr(vid.String()),
		PieceID:  strPtr(pid.String()),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.VendorID)
	assert.Equal(t, vid.String(), *resp.VendorID)

	got, err := svc.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VendorName)
	assert.Equal(t, "zara", *got.VendorName)
	require.NotNil(t, got.PieceName)
	assert.Equal(t, "shoes", *got.PieceName)
	assert.True(t, got.Active)
	assert.False(t, got.HasImage)
}

func TestCreate_RejectsRetiredVendor(t *testing.T) {
	svc, conn, node := setup(t)

	vid := seedVendor(t, conn, node, "closed-shop", false)

	var stored bool
	require.NoError(t, conn.Raw(`SELECT active FROM vendors WHERE id = ?`, vid).Scan(&stored).Error)
	require.False(t, stored)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "shirt",
		Cost:     100,
		VendorID: strPtr(vid.String()),
	})
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)

	_, err = svc.Create(context.Background(), domain.CreateRequest{
		Name:    "shirt",
		Cost:    100,
		PieceID: strPtr("not-an-id"),
	})
	assert.ErrorIs(t, err, domain.ErrPieceNotFound)
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _, _ := setup(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:  "plain tee",
		Brand: strPtr("uniqlo"),
		Cost:  990,
	})
	require.NoError(t, err)

	newCost := int64(790)
	updated, err := svc.Update(context.Background(), domain.UpdateRequest{
		ID:   created.ID,
		Cost: &newCost,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(790), updated.Cost)
	assert.Equal(t, "plain tee", updated.Name)
	require.NotNil(t, updated.Brand)
	assert.Equal(t, "uniqlo", *updated.Brand)

	_, err = svc.Update(context.Background(), domain.UpdateRequest{ID: created.ID, Name: strPtr(" ")})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestImageLifecycle(t *testing.T) {
	svc, _, _ := setup(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:      "photographed jacket",
		Cost:      12000,
		Image:     []byte("full-jpeg"),
		Thumbnail: []byte("thumb-jpeg"),
	})
	require.NoError(t, err)
	assert.True(t, created.HasImage)

	full, err := svc.Image(context.Background(), created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("full-jpeg"), full)

	thumb, err := svc.Image(context.Background(), created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []byte("thumb-jpeg"), thumb)

	cleared, err := svc.Update(context.Background(), domain.UpdateRequest{
		ID:         created.ID,
		ClearImage: true,
	})
	require.NoError(t, err)
	assert.False(t, cleared.HasImage)

	_, err = svc.Image(context.Background(), created.ID, false)
	assert.ErrorIs(t, err, domain.ErrNoImage)
}

func TestDeactivate_HidesFromDefaultList(t *testing.T) {
	svc, _, _ := setup(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{Name: "worn out sneakers", Cost: 100})
	require.NoError(t, err)

	resp, err := svc.Deactivate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, resp.Active)

	visible, err := svc.List(context.Background(), domain.ListRequest{SortBy: "name", OrderBy: "asc"})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.List(context.Background(), domain.ListRequest{SortBy: "name", OrderBy: "asc", ShowInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestList_Filters(t *testing.T) {
	svc, conn, node := setup(t)

	vid := seedVendor(t, conn, node, "target", true)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "red scarf",
		Cost:     500,
		VendorID: strPtr(vid.String()),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "blue hat", Cost: 700})
	require.NoError(t, err)

	byQuery, err := svc.List(context.Background(), domain.ListRequest{Query: "scarf", SortBy: "name", OrderBy: "asc"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "red scarf", byQuery[0].Name)

	byVendor, err := svc.List(context.Background(), domain.ListRequest{VendorID: vid.String(), SortBy: "name", OrderBy: "asc"})
	require.NoError(t, err)
	require.Len(t, byVendor, 1)
	assert.Equal(t, "red scarf", byVendor[0].Name)

	_, err = svc.Get(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
