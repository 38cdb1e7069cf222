package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "splitsync-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	c, err := New(filepath.Join(tempDir, "cache.db"))
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleSnapshot() *cache.Snapshot {
	return &cache.Snapshot{
		Groups: []models.Group{
			{
				ID:        "g1",
				Name:      "Lisbon Trip",
				Members:   []string{"u1", "u2", "u3"},
				Type:      models.GroupTypeTrip,
				CreatedAt: 1700000000,
			},
			{
				ID:        "g2",
				Name:      "Flat",
				Members:   []string{"u1", "u2"},
				Type:      models.GroupTypeHome,
				CreatedAt: 1700000100,
			},
		},
		Splits: []models.BillSplit{
			{
				ID:          "s1",
				GroupID:     "g1",
				Name:        "Dinner",
				TotalAmount: money.MustParse("100.00"),
				CreatedBy:   "u1",
				CreatedAt:   1700000200,
				Participants: []models.Participant{
					{UserID: "u1", ShareAmount: money.MustParse("50.00"), PaidAmount: money.MustParse("100.00")},
					{UserID: "u2", ShareAmount: money.MustParse("50.00"), PaidAmount: money.MustParse("0.00")},
				},
			},
		},
		Settlements: []models.Settlement{
			{
				ID:         "st1",
				GroupID:    "g1",
				FromUserID: "u2",
				ToUserID:   "u1",
				Amount:     money.MustParse("25.00"),
				CreatedAt:  1700000300,
				Note:       "partial",
			},
		},
		SavedAt: 1700000400,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	snap := sampleSnapshot()
	if err := c.Save(ctx, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil after Save")
	}

	if !reflect.DeepEqual(loaded.Groups, snap.Groups) {
		t.Errorf("groups mismatch:\n got %+v\nwant %+v", loaded.Groups, snap.Groups)
	}
	if !reflect.DeepEqual(loaded.Splits, snap.Splits) {
		t.Errorf("splits mismatch:\n got %+v\nwant %+v", loaded.Splits, snap.Splits)
	}
	if !reflect.DeepEqual(loaded.Settlements, snap.Settlements) {
		t.Errorf("settlements mismatch:\n got %+v\nwant %+v", loaded.Settlements, snap.Settlements)
	}
	if loaded.SavedAt != snap.SavedAt {
		t.Errorf("saved_at = %d, want %d", loaded.SavedAt, snap.SavedAt)
	}
}

func TestLoadEmptyCache(t *testing.T) {
	c := newTestCache(t)

	snap, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap != nil {
		t.Errorf("expected nil snapshot from empty cache, got %+v", snap)
	}
}

// A second Save must fully replace the first snapshot, not merge into it.
func TestSaveReplacesWholesale(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := &cache.Snapshot{
		Groups: []models.Group{
			{ID: "g9", Name: "New Crew", Members: []string{"u9"}, Type: models.GroupTypeOther, CreatedAt: 1700001000},
		},
		SavedAt: 1700002000,
	}
	if err := c.Save(ctx, second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Groups) != 1 || loaded.Groups[0].ID != "g9" {
		t.Errorf("groups = %+v, want only g9", loaded.Groups)
	}
	if len(loaded.Splits) != 0 {
		t.Errorf("stale splits survived the replace: %+v", loaded.Splits)
	}
	if len(loaded.Settlements) != 0 {
		t.Errorf("stale settlements survived the replace: %+v", loaded.Settlements)
	}
}

func TestAmountsSurviveExactly(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	snap := &cache.Snapshot{
		Splits: []models.BillSplit{
			{
				ID:          "s1",
				Name:        "Odd cents",
				TotalAmount: money.MustParse("0.01"),
				CreatedBy:   "u1",
				Participants: []models.Participant{
					{UserID: "u1", ShareAmount: money.MustParse("0.01"), PaidAmount: money.MustParse("33.33")},
				},
			},
		},
		SavedAt: 1,
	}
	if err := c.Save(ctx, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p := loaded.Splits[0].Participants[0]
	if p.ShareAmount != money.MustParse("0.01") || p.PaidAmount != money.MustParse("33.33") {
		t.Errorf("amounts drifted: %+v", p)
	}
	if owed := p.AmountOwed(); owed != money.MustParse("-33.32") {
		t.Errorf("owed = %s, want -33.32", owed)
	}
}
