package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stitchfold/wardrobe/internal/clock"
	ledgerdomain "github.com/stitchfold/wardrobe/internal/ledger/domain"
	"github.com/stitchfold/wardrobe/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxAttempts bounds contention retries before ErrContention surfaces.
const maxAttempts = 3

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) SetMembers(ctx context.Context, outfitID string, componentIDs []string) (*ledgerdomain.Reconciliation, error) {
	oid, err := snowflake.ParseString(strings.TrimSpace(outfitID))
	if err != nil {
		return nil, ledgerdomain.ErrInvalidOutfitID
	}

	desired, skipped := parseComponentIDs(componentIDs)

	var result *ledgerdomain.Reconciliation
	err = s.withRetry(ctx, oid, func(tx *gorm.DB) error {
		if err := s.lockActiveOutfit(ctx, tx, oid); err != nil {
			return err
		}
		res, err := s.reconcile(ctx, tx, oid, desired)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.SkippedComponentIDs = append(skipped, result.SkippedComponentIDs...)
	return result, nil
}

func (s *Service) AddMember(ctx context.Context, outfitID, componentID string) (*ledgerdomain.Reconciliation, error) {
	return s.applyDelta(ctx, outfitID, componentID, true)
}

func (s *Service) RemoveMember(ctx context.Context, outfitID, componentID string) (*ledgerdomain.Reconciliation, error) {
	return s.applyDelta(ctx, outfitID, componentID, false)
}

// applyDelta runs SetMembers with a single-component delta applied to the
// outfit's current active membership, inside the same per-outfit transaction
// so the read of the current set and the reconciliation cannot interleave
// with a concurrent mutation.
func (s *Service) applyDelta(ctx context.Context, outfitID, componentID string, add bool) (*ledgerdomain.Reconciliation, error) {
	oid, err := snowflake.ParseString(strings.TrimSpace(outfitID))
	if err != nil {
		return nil, ledgerdomain.ErrInvalidOutfitID
	}
	cid, err := snowflake.ParseString(strings.TrimSpace(componentID))
	if err != nil {
		return nil, ledgerdomain.ErrInvalidComponentID
	}

	var result *ledgerdomain.Reconciliation
	err = s.withRetry(ctx, oid, func(tx *gorm.DB) error {
		if err := s.lockActiveOutfit(ctx, tx, oid); err != nil {
			return err
		}

		current, err := s.linkedComponentIDs(ctx, tx, oid)
		if err != nil {
			return err
		}

		desired := make([]snowflake.ID, 0, len(current)+1)
		for _, id := range current {
			if id == cid {
				continue
			}
			desired = append(desired, id)
		}
		if add {
			desired = append(desired, cid)
		}

		res, err := s.reconcile(ctx, tx, oid, desired)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecomputeCost resynchronizes total_cost from the current active links
// without touching any link rows. Needed after a component's cost or active
// flag changes in the catalog, which deliberately leaves outfits stale.
func (s *Service) RecomputeCost(ctx context.Context, outfitID string) (int64, error) {
	oid, err := snowflake.ParseString(strings.TrimSpace(outfitID))
	if err != nil {
		return 0, ledgerdomain.ErrInvalidOutfitID
	}

	var total int64
	err = s.withRetry(ctx, oid, func(tx *gorm.DB) error {
		if err := s.lockOutfit(ctx, tx, oid); err != nil {
			return err
		}
		recomputed, err := s.writeTotalCost(ctx, tx, oid)
		if err != nil {
			return err
		}
		total = recomputed
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) GetActiveMembers(ctx context.Context, outfitID string) ([]ledgerdomain.Member, error) {
	oid, err := snowflake.ParseString(strings.TrimSpace(outfitID))
	if err != nil {
		return nil, ledgerdomain.ErrInvalidOutfitID
	}

	exists, err := s.outfitExists(ctx, s.db, oid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ledgerdomain.ErrOutfitNotFound
	}

	var rows []memberRow
	err = s.db.WithContext(ctx).Raw(
		`SELECT c.id, c.name, c.brand, c.cost
		 FROM out2comp l
		 JOIN components c ON c.id = l.component_id
		 WHERE l.outfit_id = ? AND l.active = ? AND c.active = ?
		 ORDER BY c.name ASC`,
		oid, true, true,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	members := make([]ledgerdomain.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, ledgerdomain.Member{
			ID:    row.ID.String(),
			Name:  row.Name,
			Brand: row.Brand,
			Cost:  row.Cost,
		})
	}
	return members, nil
}

// RetireOutfit flips the outfit inactive and every active link of it to
// inactive in one transaction, preserving the link rows as history.
func (s *Service) RetireOutfit(ctx context.Context, outfitID snowflake.ID) error {
	return s.withRetry(ctx, outfitID, func(tx *gorm.DB) error {
		if err := s.lockOutfit(ctx, tx, outfitID); err != nil {
			return err
		}
		now := s.clock.Now()
		err := tx.WithContext(ctx).Exec(
			`UPDATE outfits SET active = ?, updated_at = ? WHERE id = ?`,
			false, now, outfitID,
		).Error
		if err != nil {
			return err
		}
		return tx.WithContext(ctx).Exec(
			`UPDATE out2comp SET active = ?, updated_at = ? WHERE outfit_id = ? AND active = ?`,
			false, now, outfitID, true,
		).Error
	})
}

// reconcile moves the outfit's membership to exactly the desired set and
// rewrites total_cost, all against an already-locked outfit row.
func (s *Service) reconcile(ctx context.Context, tx *gorm.DB, oid snowflake.ID, desired []snowflake.ID) (*ledgerdomain.Reconciliation, error) {
	existing, err := s.loadLinks(ctx, tx, oid)
	if err != nil {
		return nil, err
	}

	desiredSet := make(map[snowflake.ID]struct{}, len(desired))
	for _, cid := range desired {
		desiredSet[cid] = struct{}{}
	}

	result := &ledgerdomain.Reconciliation{OutfitID: oid.String()}
	now := s.clock.Now()

	for cid, link := range existing {
		if _, wanted := desiredSet[cid]; wanted || !link.Active {
			continue
		}
		err := tx.WithContext(ctx).Exec(
			`UPDATE out2comp SET active = ?, updated_at = ? WHERE id = ?`,
			false, now, link.ID,
		).Error
		if err != nil {
			return nil, err
		}
		result.DeactivatedIDs = append(result.DeactivatedIDs, cid.String())
	}

	for _, cid := range desired {
		link, ok := existing[cid]
		if ok {
			if link.Active {
				continue
			}
			err := tx.WithContext(ctx).Exec(
				`UPDATE out2comp SET active = ?, updated_at = ? WHERE id = ?`,
				true, now, link.ID,
			).Error
			if err != nil {
				return nil, err
			}
			result.ReactivatedIDs = append(result.ReactivatedIDs, cid.String())
			continue
		}

		linkable, err := s.componentLinkable(ctx, tx, cid)
		if err != nil {
			return nil, err
		}
		if !linkable {
			// Missing or inactive components are skipped per member, they do
			// not abort the reconciliation.
			result.SkippedComponentIDs = append(result.SkippedComponentIDs, cid.String())
			continue
		}

		err = tx.WithContext(ctx).Exec(
			`INSERT INTO out2comp (id, outfit_id, component_id, active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			s.genID.Generate(), oid, cid, true, now, now,
		).Error
		if err != nil {
			return nil, err
		}
		result.AddedComponentIDs = append(result.AddedComponentIDs, cid.String())
	}

	total, err := s.writeTotalCost(ctx, tx, oid)
	if err != nil {
		return nil, err
	}
	result.TotalCost = total

	count, err := s.activeMemberIDs(ctx, tx, oid)
	if err != nil {
		return nil, err
	}
	result.ActiveComponentCount = len(count)

	return result, nil
}

func (s *Service) withRetry(ctx context.Context, oid snowflake.ID, fn func(tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = s.db.WithContext(ctx).Transaction(fn)
		if lastErr == nil {
			return nil
		}
		// A duplicate key on the link insert means a concurrent
		// reconciliation won the race for the same (outfit, component)
		// row. The rerun observes it and reactivates or no-ops.
		if !db.IsRetryableErr(lastErr) && !db.IsDuplicateKeyErr(lastErr) {
			return lastErr
		}
		s.log.Warn("ledger transaction contention",
			zap.String("outfit_id", oid.String()),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return ledgerdomain.ErrContention
}

type outfitRow struct {
	ID     snowflake.ID
	Active bool
}

type linkRow struct {
	ID          snowflake.ID
	ComponentID snowflake.ID
	Active      bool
}

type memberRow struct {
	ID    snowflake.ID
	Name  string
	Brand *string
	Cost  int64
}

// lockActiveOutfit serializes ledger mutations per outfit by locking the
// outfit row; inactive outfits reject membership changes.
func (s *Service) lockActiveOutfit(ctx context.Context, tx *gorm.DB, oid snowflake.ID) error {
	row, err := s.lockOutfitRow(ctx, tx, oid)
	if err != nil {
		return err
	}
	if row == nil || !row.Active {
		return ledgerdomain.ErrOutfitNotFound
	}
	return nil
}

func (s *Service) lockOutfit(ctx context.Context, tx *gorm.DB, oid snowflake.ID) error {
	row, err := s.lockOutfitRow(ctx, tx, oid)
	if err != nil {
		return err
	}
	if row == nil {
		return ledgerdomain.ErrOutfitNotFound
	}
	return nil
}

func (s *Service) lockOutfitRow(ctx context.Context, tx *gorm.DB, oid snowflake.ID) (*outfitRow, error) {
	var row outfitRow
	err := tx.WithContext(ctx).Raw(
		`SELECT id, active
		 FROM outfits
		 WHERE id = ?
		 FOR UPDATE`,
		oid,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (s *Service) loadLinks(ctx context.Context, tx *gorm.DB, oid snowflake.ID) (map[snowflake.ID]linkRow, error) {
	var rows []linkRow
	err := tx.WithContext(ctx).Raw(
		`SELECT id, component_id, active
		 FROM out2comp
		 WHERE outfit_id = ?`,
		oid,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	links := make(map[snowflake.ID]linkRow, len(rows))
	for _, row := range rows {
		links[row.ComponentID] = row
	}
	return links, nil
}

func (s *Service) componentLinkable(ctx context.Context, tx *gorm.DB, cid snowflake.ID) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM components WHERE id = ? AND active = ?`,
		cid, true,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// linkedComponentIDs returns the component ids behind the outfit's active
// links, regardless of each component's own catalog state. A link to a
// retired component stays in the current set until the caller removes it.
func (s *Service) linkedComponentIDs(ctx context.Context, tx *gorm.DB, oid snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := tx.WithContext(ctx).Raw(
		`SELECT component_id FROM out2comp WHERE outfit_id = ? AND active = ?`,
		oid, true,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Service) activeMemberIDs(ctx context.Context, tx *gorm.DB, oid snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := tx.WithContext(ctx).Raw(
		`SELECT l.component_id
		 FROM out2comp l
		 JOIN components c ON c.id = l.component_id
		 WHERE l.outfit_id = ? AND l.active = ? AND c.active = ?`,
		oid, true, true,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Service) writeTotalCost(ctx context.Context, tx *gorm.DB, oid snowflake.ID) (int64, error) {
	var total int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(c.cost), 0)
		 FROM out2comp l
		 JOIN components c ON c.id = l.component_id
		 WHERE l.outfit_id = ? AND l.active = ? AND c.active = ?`,
		oid, true, true,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}

	err = tx.WithContext(ctx).Exec(
		`UPDATE outfits SET total_cost = ?, updated_at = ? WHERE id = ?`,
		total, s.clock.Now(), oid,
	).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) outfitExists(ctx context.Context, conn *gorm.DB, oid snowflake.ID) (bool, error) {
	var count int64
	err := conn.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM outfits WHERE id = ?`, oid,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func parseComponentIDs(raw []string) ([]snowflake.ID, []string) {
	seen := make(map[snowflake.ID]struct{}, len(raw))
	parsed := make([]snowflake.ID, 0, len(raw))
	var skipped []string
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		id, err := snowflake.ParseString(value)
		if err != nil {
			skipped = append(skipped, value)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		parsed = append(parsed, id)
	}
	return parsed, skipped
}
