package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stitchfold/wardrobe/internal/clock"
	componentdomain "github.com/stitchfold/wardrobe/internal/component/domain"
	"github.com/stitchfold/wardrobe/internal/vendors/domain"
	"github.com/stitchfold/wardrobe/internal/vendors/repository"
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

	require.NoError(t, conn.AutoMigrate(&domain.Vendor{}, &componentdomain.Component{}))

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

func strPtr(s string) *string { return &s }

func TestCreate_SlugsCode(t *testing.T) {
	svc, _, _ := setup(t)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:        "Local Store",
		Description: strPtr("Physical retail store"),
	})
	require.NoError(t, err)

	assert.Equal(t, "local-store", resp.Code)
	assert.Equal(t, "Local Store", resp.Name)
	assert.True(t, resp.Active)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestUpdate_StampsUpdatedAtFromClock(t *testing.T) {
	_, conn, node := setup(t)

	frozen := clock.Freeze(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: frozen,
		Repo:  repository.Provide(),
	})

	created, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Uniqlo"})
	require.NoError(t, err)
	assert.Equal(t, frozen.Now(), created.CreatedAt)

	frozen.Advance(time.Hour)
	updated, err := svc.Update(context.Background(), domain.UpdateRequest{
		ID:   created.ID,
		Name: strPtr("Uniqlo JP"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt.Add(time.Hour), updated.UpdatedAt)
}

func TestCreate_RejectsDuplicateCode(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Local Store"})
	require.NoError(t, err)

	// Same slug, different casing.
	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "local store"})
	assert.ErrorIs(t, err, domain.ErrCodeTaken)
}

func TestUpdate_TrimsAndClearsDescription(t *testing.T) {
	svc, _, _ := setup(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:        "Zara",
		Description: strPtr("Fast fashion"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), domain.UpdateRequest{
		ID:          created.ID,
		Description: strPtr("  "),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	_, err = svc.Update(context.Background(), domain.UpdateRequest{ID: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestDeactivate_RefusedWhileReferenced(t *testing.T) {
	svc, conn, node := setup(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Nordstrom"})
	require.NoError(t, err)

	vid, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)
	comp := componentdomain.Component{
		ID:       node.Generate(),
		Name:     "silk blouse",
		Cost:     8000,
		VendorID: &vid,
		Active:   true,
	}
	require.NoError(t, conn.Create(&comp).Error)

	_, err = svc.Deactivate(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrInUse)

	// Once the referencing component is retired the vendor can go too.
	require.NoError(t, conn.Exec(`UPDATE components SET active = ? WHERE id = ?`, false, comp.ID).Error)

	resp, err := svc.Deactivate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, resp.Active)
}

func TestList_DefaultExcludesInactive(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Amazon"})
	require.NoError(t, err)
	retired, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Bygone"})
	require.NoError(t, err)
	_, err = svc.Deactivate(context.Background(), retired.ID)
	require.NoError(t, err)

	visible, err := svc.List(context.Background(), domain.ListRequest{SortBy: "name", OrderBy: "asc"})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Amazon", visible[0].Name)

	all, err := svc.List(context.Background(), domain.ListRequest{SortBy: "name", OrderBy: "asc", ShowInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestList_AppliesLimitAndOffset(t *testing.T) {
	svc, _, _ := setup(t)

	for _, name := range []string{"Aritzia", "Brandy", "Cider"} {
		_, err := svc.Create(context.Background(), domain.CreateRequest{Name: name})
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), domain.ListRequest{SortBy: "name", OrderBy: "asc", Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Aritzia", page[0].Name)
	assert.Equal(t, "Brandy", page[1].Name)

	page, err = svc.List(context.Background(), domain.ListRequest{SortBy: "name", OrderBy: "asc", Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Cider", page[0].Name)
}
