// Package cache provides a local mirror of the last-known-good remote state.
//
// The remote ledger stays the source of truth; the cache only lets a client
// start warm (prior groups and splits visible immediately) while the first
// refresh is in flight. Cached data is always replaced wholesale by fetched
// data and never merged with it.
package cache

import (
	"context"

	"github.com/mmynk/splitsync/internal/models"
)

// Snapshot is one complete copy of the raw remote collections.
type Snapshot struct {
	Groups      []models.Group
	Splits      []models.BillSplit
	Settlements []models.Settlement

	// SavedAt is the Unix timestamp the snapshot was persisted.
	SavedAt int64
}

// SnapshotCache persists and restores snapshots. Implementations must make
// Save atomic: a reader never observes a half-replaced snapshot.
type SnapshotCache interface {
	// Save replaces the stored snapshot with snap.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the stored snapshot, or (nil, nil) if none exists.
	Load(ctx context.Context) (*Snapshot, error)

	// Close releases any resources held by the cache.
	Close() error
}
