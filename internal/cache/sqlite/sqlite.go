// Package sqlite provides a SQLite-backed implementation of cache.SnapshotCache.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

// Ensure Cache implements cache.SnapshotCache
var _ cache.SnapshotCache = (*Cache)(nil)

// Cache implements cache.SnapshotCache using SQLite.
type Cache struct {
	db *sql.DB
}

// New creates a snapshot cache at the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Save replaces the stored snapshot wholesale within one transaction.
func (c *Cache) Save(ctx context.Context, snap *cache.Snapshot) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Child tables cascade from their parents.
	for _, stmt := range []string{
		"DELETE FROM groups",
		"DELETE FROM splits",
		"DELETE FROM settlements",
		"DELETE FROM snapshot_meta",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear prior snapshot: %w", err)
		}
	}

	for i, g := range snap.Groups {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO groups (id, name, group_type, created_at, position) VALUES (?, ?, ?, ?, ?)",
			g.ID, g.Name, string(g.Type), g.CreatedAt, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		for j, member := range g.Members {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO group_members (group_id, user_id, position) VALUES (?, ?, ?)",
				g.ID, member, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}
	}

	for i, s := range snap.Splits {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO splits (id, group_id, name, total_amount, created_by, created_at, position) VALUES (?, ?, ?, ?, ?, ?, ?)",
			s.ID, s.GroupID, s.Name, s.TotalAmount.Minor(), s.CreatedBy, s.CreatedAt, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
		for j, p := range s.Participants {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO split_participants (split_id, user_id, share_amount, paid_amount, position) VALUES (?, ?, ?, ?, ?)",
				s.ID, p.UserID, p.ShareAmount.Minor(), p.PaidAmount.Minor(), j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}
	}

	for i, s := range snap.Settlements {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount, created_at, note, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			s.ID, s.GroupID, s.FromUserID, s.ToUserID, s.Amount.Minor(), s.CreatedAt, s.Note, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	savedAt := snap.SavedAt
	if savedAt == 0 {
		savedAt = time.Now().Unix()
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshot_meta (id, saved_at) VALUES (1, ?)", savedAt,
	); err != nil {
		return fmt.Errorf("failed to record snapshot time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load restores the stored snapshot, or returns (nil, nil) if none exists.
func (c *Cache) Load(ctx context.Context) (*cache.Snapshot, error) {
	snap := &cache.Snapshot{}
	err := c.db.QueryRowContext(ctx, "SELECT saved_at FROM snapshot_meta WHERE id = 1").Scan(&snap.SavedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot meta: %w", err)
	}

	groups, err := c.loadGroups(ctx)
	if err != nil {
		return nil, err
	}
	snap.Groups = groups

	splits, err := c.loadSplits(ctx)
	if err != nil {
		return nil, err
	}
	snap.Splits = splits

	settlements, err := c.loadSettlements(ctx)
	if err != nil {
		return nil, err
	}
	snap.Settlements = settlements

	return snap, nil
}

func (c *Cache) loadGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, name, group_type, created_at FROM groups ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		var groupType string
		if err := rows.Scan(&g.ID, &g.Name, &groupType, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		g.Type = models.GroupType(groupType)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for i := range groups {
		memberRows, err := c.db.QueryContext(ctx,
			"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY position",
			groups[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query group members: %w", err)
		}
		for memberRows.Next() {
			var userID string
			if err := memberRows.Scan(&userID); err != nil {
				memberRows.Close()
				return nil, fmt.Errorf("failed to scan group member: %w", err)
			}
			groups[i].Members = append(groups[i].Members, userID)
		}
		memberRows.Close()
		if err := memberRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate group members: %w", err)
		}
	}
	return groups, nil
}

func (c *Cache) loadSplits(ctx context.Context) ([]models.BillSplit, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, group_id, name, total_amount, created_by, created_at FROM splits ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	var splits []models.BillSplit
	for rows.Next() {
		var s models.BillSplit
		var groupID sql.NullString
		var total int64
		if err := rows.Scan(&s.ID, &groupID, &s.Name, &total, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		s.GroupID = groupID.String
		s.TotalAmount = money.FromMinor(total)
		splits = append(splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	for i := range splits {
		pRows, err := c.db.QueryContext(ctx,
			"SELECT user_id, share_amount, paid_amount FROM split_participants WHERE split_id = ? ORDER BY position",
			splits[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query participants: %w", err)
		}
		for pRows.Next() {
			var p models.Participant
			var share, paid int64
			if err := pRows.Scan(&p.UserID, &share, &paid); err != nil {
				pRows.Close()
				return nil, fmt.Errorf("failed to scan participant: %w", err)
			}
			p.ShareAmount = money.FromMinor(share)
			p.PaidAmount = money.FromMinor(paid)
			splits[i].Participants = append(splits[i].Participants, p)
		}
		pRows.Close()
		if err := pRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate participants: %w", err)
		}
	}
	return splits, nil
}

func (c *Cache) loadSettlements(ctx context.Context) ([]models.Settlement, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, group_id, from_user_id, to_user_id, amount, created_at, note FROM settlements ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var s models.Settlement
		var groupID sql.NullString
		var amount int64
		if err := rows.Scan(&s.ID, &groupID, &s.FromUserID, &s.ToUserID, &amount, &s.CreatedAt, &s.Note); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		s.GroupID = groupID.String
		s.Amount = money.FromMinor(amount)
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
