package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stitchfold/wardrobe/internal/clock"
	ledgerdomain "github.com/stitchfold/wardrobe/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// SQLite support hack: remove FOR UPDATE clauses
	stripLock := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(strings.ReplaceAll(sql, "FOR UPDATE", ""))
		}
	}
	require.NoError(t, conn.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", stripLock))
	require.NoError(t, conn.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", stripLock))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE outfits (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			total_cost INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE components (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			brand TEXT,
			cost INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE out2comp (
			id INTEGER PRIMARY KEY,
			outfit_id INTEGER NOT NULL,
			component_id INTEGER NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (outfit_id, component_id)
		)`,
	} {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	return conn
}

func newLedger(t *testing.T, conn *gorm.DB, node *snowflake.Node) ledgerdomain.Service {
	t.Helper()
	return NewService(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.SystemClock{},
	})
}

func insertOutfit(t *testing.T, conn *gorm.DB, node *snowflake.Node, active bool) snowflake.ID {
	t.Helper()
	id := node.Generate()
	require.NoError(t, conn.Exec(
		`INSERT INTO outfits (id, name, total_cost, active) VALUES (?, ?, 0, ?)`,
		id, "outfit-"+id.String(), active,
	).Error)
	return id
}

func insertComponent(t *testing.T, conn *gorm.DB, node *snowflake.Node, name string, cost int64, active bool) snowflake.ID {
	t.Helper()
	id := node.Generate()
	require.NoError(t, conn.Exec(
		`INSERT INTO components (id, name, cost, active) VALUES (?, ?, ?, ?)`,
		id, name, cost, active,
	).Error)
	return id
}

func storedTotalCost(t *testing.T, conn *gorm.DB, oid snowflake.ID) int64 {
	t.Helper()
	var total int64
	require.NoError(t, conn.Raw(`SELECT total_cost FROM outfits WHERE id = ?`, oid).Scan(&total).Error)
	return total
}

func linkCount(t *testing.T, conn *gorm.DB, oid snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Raw(`SELECT COUNT(*) FROM out2comp WHERE outfit_id = ?`, oid).Scan(&count).Error)
	return count
}

func activeLinkCount(t *testing.T, conn *gorm.DB, oid snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Raw(
		`SELECT COUNT(*) FROM out2comp WHERE outfit_id = ? AND active = ?`, oid, true,
	).Scan(&count).Error)
	return count
}

func TestSetMembers_ComputesTotalCost(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	shirt := insertComponent(t, conn, node, "shirt", 1000, true)
	boots := insertComponent(t, conn, node, "boots", 500, true)

	res, err := svc.SetMembers(context.Background(), oid.String(), []string{shirt.String(), boots.String()})
	require.NoError(t, err)

	assert.Equal(t, int64(1500), res.TotalCost)
	assert.Equal(t, 2, res.ActiveComponentCount)
	assert.ElementsMatch(t, []string{shirt.String(), boots.String()}, res.AddedComponentIDs)
	assert.Empty(t, res.DeactivatedIDs)
	assert.Empty(t, res.SkippedComponentIDs)
	assert.Equal(t, int64(1500), storedTotalCost(t, conn, oid))

	// Narrowing the set deactivates the dropped link but keeps the row.
	res, err = svc.SetMembers(context.Background(), oid.String(), []string{boots.String()})
	require.NoError(t, err)

	assert.Equal(t, int64(500), res.TotalCost)
	assert.Equal(t, 1, res.ActiveComponentCount)
	assert.Equal(t, []string{shirt.String()}, res.DeactivatedIDs)
	assert.Equal(t, int64(500), storedTotalCost(t, conn, oid))
	assert.Equal(t, int64(2), linkCount(t, conn, oid))
	assert.Equal(t, int64(1), activeLinkCount(t, conn, oid))
}

func TestSetMembers_Idempotent(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	cid := insertComponent(t, conn, node, "jacket", 2500, true)

	_, err = svc.SetMembers(context.Background(), oid.String(), []string{cid.String()})
	require.NoError(t, err)

	res, err := svc.SetMembers(context.Background(), oid.String(), []string{cid.String()})
	require.NoError(t, err)

	assert.Empty(t, res.AddedComponentIDs)
	assert.Empty(t, res.ReactivatedIDs)
	assert.Empty(t, res.DeactivatedIDs)
	assert.Equal(t, int64(2500), res.TotalCost)
	assert.Equal(t, int64(1), linkCount(t, conn, oid))
}

func TestSetMembers_ReusesRowOnReactivation(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	cid := insertComponent(t, conn, node, "scarf", 300, true)

	_, err = svc.SetMembers(context.Background(), oid.String(), []string{cid.String()})
	require.NoError(t, err)
	_, err = svc.SetMembers(context.Background(), oid.String(), nil)
	require.NoError(t, err)

	res, err := svc.SetMembers(context.Background(), oid.String(), []string{cid.String()})
	require.NoError(t, err)

	assert.Equal(t, []string{cid.String()}, res.ReactivatedIDs)
	assert.Empty(t, res.AddedComponentIDs)
	assert.Equal(t, int64(300), res.TotalCost)
	assert.Equal(t, int64(1), linkCount(t, conn, oid))
}

func TestSetMembers_SkipsMissingAndInactiveComponents(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	good := insertComponent(t, conn, node, "belt", 200, true)
	retired := insertComponent(t, conn, node, "old-belt", 900, false)
	missing := node.Generate()

	res, err := svc.SetMembers(context.Background(), oid.String(), []string{
		good.String(), retired.String(), missing.String(), "not-a-number",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{good.String()}, res.AddedComponentIDs)
	assert.ElementsMatch(t, []string{retired.String(), missing.String(), "not-a-number"}, res.SkippedComponentIDs)
	assert.Equal(t, int64(200), res.TotalCost)
	assert.Equal(t, int64(1), linkCount(t, conn, oid))
}

func TestSetMembers_OutfitErrors(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	_, err = svc.SetMembers(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidOutfitID)

	_, err = svc.SetMembers(context.Background(), node.Generate().String(), nil)
	assert.ErrorIs(t, err, ledgerdomain.ErrOutfitNotFound)

	retired := insertOutfit(t, conn, node, false)
	_, err = svc.SetMembers(context.Background(), retired.String(), nil)
	assert.ErrorIs(t, err, ledgerdomain.ErrOutfitNotFound)
}

func TestAddMember_Idempotent(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	cid := insertComponent(t, conn, node, "hat", 150, true)

	res, err := svc.AddMember(context.Background(), oid.String(), cid.String())
	require.NoError(t, err)
	assert.Equal(t, []string{cid.String()}, res.AddedComponentIDs)
	assert.Equal(t, int64(150), res.TotalCost)

	res, err = svc.AddMember(context.Background(), oid.String(), cid.String())
	require.NoError(t, err)
	assert.Empty(t, res.AddedComponentIDs)
	assert.Empty(t, res.ReactivatedIDs)
	assert.Equal(t, int64(150), res.TotalCost)
	assert.Equal(t, int64(1), linkCount(t, conn, oid))
}

func TestAddMember_KeepsLinksToRetiredComponents(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	retired := insertComponent(t, conn, node, "jacket", 500, true)
	added := insertComponent(t, conn, node, "scarf", 250, true)

	_, err = svc.SetMembers(context.Background(), oid.String(), []string{retired.String()})
	require.NoError(t, err)

	// Catalog retirement leaves the link row untouched.
	require.NoError(t, conn.Exec(`UPDATE components SET active = false WHERE id = ?`, retired).Error)

	res, err := svc.AddMember(context.Background(), oid.String(), added.String())
	require.NoError(t, err)

	assert.Equal(t, []string{added.String()}, res.AddedComponentIDs)
	assert.Empty(t, res.DeactivatedIDs)
	assert.Equal(t, int64(250), res.TotalCost)

	var stillActive bool
	require.NoError(t, conn.Raw(
		`SELECT active FROM out2comp WHERE outfit_id = ? AND component_id = ?`, oid, retired,
	).Scan(&stillActive).Error)
	assert.True(t, stillActive)
	assert.Equal(t, int64(2), activeLinkCount(t, conn, oid))
}

func TestRemoveMember_PreservesHistory(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	keep := insertComponent(t, conn, node, "coat", 4000, true)
	drop := insertComponent(t, conn, node, "gloves", 600, true)

	_, err = svc.SetMembers(context.Background(), oid.String(), []string{keep.String(), drop.String()})
	require.NoError(t, err)

	res, err := svc.RemoveMember(context.Background(), oid.String(), drop.String())
	require.NoError(t, err)

	assert.Equal(t, []string{drop.String()}, res.DeactivatedIDs)
	assert.Equal(t, int64(4000), res.TotalCost)
	assert.Equal(t, 1, res.ActiveComponentCount)
	assert.Equal(t, int64(2), linkCount(t, conn, oid))
	assert.Equal(t, int64(1), activeLinkCount(t, conn, oid))

	_, err = svc.RemoveMember(context.Background(), oid.String(), "bogus")
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidComponentID)
}

func TestRecomputeCost_AfterComponentDeactivation(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	cid := insertComponent(t, conn, node, "sweater", 500, true)

	_, err = svc.SetMembers(context.Background(), oid.String(), []string{cid.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(500), storedTotalCost(t, conn, oid))

	// Retiring the component in the catalog leaves total_cost stale until a
	// recompute runs.
	require.NoError(t, conn.Exec(`UPDATE components SET active = ? WHERE id = ?`, false, cid).Error)
	assert.Equal(t, int64(500), storedTotalCost(t, conn, oid))

	total, err := svc.RecomputeCost(context.Background(), oid.String())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Equal(t, int64(0), storedTotalCost(t, conn, oid))
}

func TestGetActiveMembers_OrderedByName(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	b := insertComponent(t, conn, node, "boots", 500, true)
	a := insertComponent(t, conn, node, "anorak", 900, true)
	c := insertComponent(t, conn, node, "cardigan", 700, true)

	_, err = svc.SetMembers(context.Background(), oid.String(), []string{b.String(), a.String(), c.String()})
	require.NoError(t, err)

	// A member retired after linking drops out of the active view.
	require.NoError(t, conn.Exec(`UPDATE components SET active = ? WHERE id = ?`, false, c).Error)

	members, err := svc.GetActiveMembers(context.Background(), oid.String())
	require.NoError(t, err)

	require.Len(t, members, 2)
	assert.Equal(t, "anorak", members[0].Name)
	assert.Equal(t, "boots", members[1].Name)

	_, err = svc.GetActiveMembers(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, ledgerdomain.ErrOutfitNotFound)
}

func TestRetireOutfit_FlipsOutfitAndLinksTogether(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	c1 := insertComponent(t, conn, node, "dress", 3000, true)
	c2 := insertComponent(t, conn, node, "heels", 1200, true)

	_, err = svc.SetMembers(context.Background(), oid.String(), []string{c1.String(), c2.String()})
	require.NoError(t, err)

	require.NoError(t, svc.RetireOutfit(context.Background(), oid))

	var outfitActive bool
	require.NoError(t, conn.Raw(`SELECT active FROM outfits WHERE id = ?`, oid).Scan(&outfitActive).Error)
	assert.False(t, outfitActive)
	assert.Equal(t, int64(2), linkCount(t, conn, oid))
	assert.Equal(t, int64(0), activeLinkCount(t, conn, oid))
}

func TestAddMember_ConcurrentAdds(t *testing.T) {
	conn := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := newLedger(t, conn, node)

	oid := insertOutfit(t, conn, node, true)
	ids := make([]snowflake.ID, 4)
	var want int64
	for i := range ids {
		cost := int64(100 * (i + 1))
		ids[i] = insertComponent(t, conn, node, "item-"+node.Generate().String(), cost, true)
		want += cost
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, cid := range ids {
		wg.Add(1)
		go func(cid snowflake.ID) {
			defer wg.Done()
			_, err := svc.AddMember(context.Background(), oid.String(), cid.String())
			errs <- err
		}(cid)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	total, err := svc.RecomputeCost(context.Background(), oid.String())
	require.NoError(t, err)
	assert.Equal(t, want, total)
	assert.Equal(t, int64(len(ids)), activeLinkCount(t, conn, oid))
}
