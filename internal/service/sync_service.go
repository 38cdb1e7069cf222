// Package service owns the synchronized view of the remote ledger: the raw
// collections, their enriched derivation and the aggregate stats.
//
// One SyncService instance is the single owner of that state. Consumers get
// read-only copies via Snapshot and Stats; every mutation path goes through
// the ledger and comes back via Refresh, because settlement classification
// depends on full-split reinspection rather than local deltas.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitsync/internal/balance"
	"github.com/mmynk/splitsync/internal/cache"
	"github.com/mmynk/splitsync/internal/ledger"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/notify"
	"github.com/mmynk/splitsync/internal/observability"
)

// LedgerAPI is the slice of the ledger client the controller needs.
type LedgerAPI interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	ListSplits(ctx context.Context) ([]models.BillSplit, error)
	ListSettlements(ctx context.Context) ([]models.Settlement, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	GetSplit(ctx context.Context, id string) (*models.BillSplit, error)
}

// Enricher derives display names and classification for raw splits.
type Enricher interface {
	Enrich(ctx context.Context, splits []models.BillSplit, observerID string) ([]models.EnrichedSplit, error)
}

// Snapshot is a read-only copy of the controller's state, safe to hand to
// the presentation layer.
type Snapshot struct {
	Groups         []models.Group         `json:"groups"`
	BillSplits     []models.BillSplit     `json:"bill_splits"`
	Settlements    []models.Settlement    `json:"settlements"`
	EnrichedSplits []models.EnrichedSplit `json:"enriched_splits"`
	Stats          models.AggregateStats  `json:"stats"`

	// Generation increases with every published refresh. Generation 0 is
	// warm-start data from the local cache.
	Generation uint64 `json:"generation"`
}

// RefreshResult reports the split count before and after one refresh.
type RefreshResult struct {
	Previous int `json:"previous"`
	Current  int `json:"current"`
}

// refreshCall is one in-flight refresh that later callers can join.
type refreshCall struct {
	done   chan struct{}
	result RefreshResult
	err    error
}

// SyncService orchestrates refreshes and owns the derived view state.
type SyncService struct {
	client   LedgerAPI
	enricher Enricher
	notifier notify.Notifier
	cache    cache.SnapshotCache    // optional
	metrics  *observability.Metrics // optional
	observer string

	mu        sync.Mutex
	state     Snapshot
	published bool
	loading   bool
	lastErr   error
	inflight  *refreshCall
	nextGen   uint64

	// createdGroup is a one-shot signal: the name of a group the user just
	// created, consumed exactly once by the next focus trigger.
	createdGroup string
}

// NewSyncService creates a controller for one observer. cache and metrics
// may be nil.
func NewSyncService(client LedgerAPI, enricher Enricher, notifier notify.Notifier, c cache.SnapshotCache, m *observability.Metrics, observerID string) *SyncService {
	if notifier == nil {
		notifier = notify.SlogNotifier{}
	}
	return &SyncService{
		client:   client,
		enricher: enricher,
		notifier: notifier,
		cache:    c,
		metrics:  m,
		observer: observerID,
	}
}

// Refresh fetches groups, splits and settlements, re-derives the enriched
// view and publishes it atomically. At most one fetch is in flight per
// controller: a Refresh issued while another is pending joins the pending
// one instead of fetching again.
//
// On failure the prior state is retained in full and the error is recorded
// for Err; a later successful refresh clears it.
func (s *SyncService) Refresh(ctx context.Context) (RefreshResult, error) {
	s.mu.Lock()
	if call := s.inflight; call != nil {
		s.mu.Unlock()
		s.metrics.RefreshCoalesced()
		slog.Debug("Refresh joined in-flight refresh")
		select {
		case <-call.done:
			return call.result, call.err
		case <-ctx.Done():
			return RefreshResult{}, ctx.Err()
		}
	}

	call := &refreshCall{done: make(chan struct{})}
	s.inflight = call
	s.loading = true
	s.nextGen++
	gen := s.nextGen
	s.mu.Unlock()

	start := time.Now()
	result, err := s.doRefresh(ctx, gen)
	s.metrics.ObserveRefresh(time.Since(start), err)

	s.mu.Lock()
	s.inflight = nil
	s.loading = false
	s.lastErr = err
	s.mu.Unlock()

	call.result, call.err = result, err
	close(call.done)
	return result, err
}

func (s *SyncService) doRefresh(ctx context.Context, gen uint64) (RefreshResult, error) {
	var (
		groups      []models.Group
		splits      []models.BillSplit
		settlements []models.Settlement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = s.client.ListGroups(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		splits, err = s.client.ListSplits(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		settlements, err = s.client.ListSettlements(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("Refresh fetch failed", "error", err)
		return RefreshResult{}, fmt.Errorf("refresh: %w", err)
	}

	enriched, err := s.enricher.Enrich(ctx, splits, s.observer)
	if err != nil {
		slog.Error("Refresh enrichment failed", "error", err)
		return RefreshResult{}, fmt.Errorf("refresh: %w", err)
	}
	stats := balance.ComputeStats(enriched, s.observer)

	next := Snapshot{
		Groups:         groups,
		BillSplits:     splits,
		Settlements:    settlements,
		EnrichedSplits: enriched,
		Stats:          stats,
		Generation:     gen,
	}

	s.mu.Lock()
	if s.published && gen <= s.state.Generation {
		// A strictly newer refresh already published; this one completes
		// harmlessly without overwriting it.
		prev := len(s.state.BillSplits)
		s.mu.Unlock()
		slog.Debug("Refresh result superseded", "generation", gen)
		return RefreshResult{Previous: prev, Current: prev}, nil
	}
	prevCount := len(s.state.BillSplits)
	hadState := s.published
	s.state = next
	s.published = true
	s.mu.Unlock()

	result := RefreshResult{Previous: prevCount, Current: len(splits)}
	slog.Info("Refresh complete",
		"generation", gen,
		"groups", len(groups),
		"splits", len(splits),
		"settlements", len(settlements),
		"net_balance", stats.NetBalance,
	)

	if hadState && result.Current > result.Previous {
		delta := result.Current - result.Previous
		body := fmt.Sprintf("%d new split", delta)
		if delta > 1 {
			body = fmt.Sprintf("%d new splits", delta)
		}
		s.TriggerNotification("New expenses", body, "splits")
	}

	s.saveToCache(ctx, &next)
	return result, nil
}

// HandleFocus is the re-entrant trigger for a view regaining focus or its
// params changing. It consumes any pending one-shot signals exactly once,
// then refreshes with the same at-most-one-in-flight guarantee.
func (s *SyncService) HandleFocus(ctx context.Context) (RefreshResult, error) {
	s.mu.Lock()
	created := s.createdGroup
	s.createdGroup = ""
	s.mu.Unlock()

	if created != "" {
		s.TriggerNotification("Group created", fmt.Sprintf("Group %q is ready", created), "groups")
	}
	return s.Refresh(ctx)
}

// SignalGroupCreated records that a group was just created externally. The
// next focus trigger consumes the signal and raises a notification naming
// the group.
func (s *SyncService) SignalGroupCreated(name string) {
	s.mu.Lock()
	s.createdGroup = name
	s.mu.Unlock()
}

// TriggerNotification hands a notification to the notifier without blocking
// the caller. Delivery failure is logged and dropped.
func (s *SyncService) TriggerNotification(title, body, target string) {
	n := notify.New(title, body, target)
	s.metrics.NotificationSent()
	go func() {
		if err := s.notifier.Notify(context.Background(), n); err != nil {
			slog.Warn("Notification delivery failed", "notification_id", n.ID, "error", err)
		}
	}()
}

// ValidateGroup re-checks that a group still exists server-side before the
// presentation layer navigates into it. When the group vanished, a forced
// refresh is kicked off in the background and the not-found error is
// returned for the caller to surface.
func (s *SyncService) ValidateGroup(ctx context.Context, id string) error {
	if _, err := s.client.GetGroup(ctx, id); err != nil {
		if ledger.IsNotFound(err) {
			slog.Warn("Group vanished server-side", "group_id", id)
			s.forceRefresh()
		}
		return err
	}
	return nil
}

// ValidateSplit is ValidateGroup for bill splits.
func (s *SyncService) ValidateSplit(ctx context.Context, id string) error {
	if _, err := s.client.GetSplit(ctx, id); err != nil {
		if ledger.IsNotFound(err) {
			slog.Warn("Split vanished server-side", "split_id", id)
			s.forceRefresh()
		}
		return err
	}
	return nil
}

func (s *SyncService) forceRefresh() {
	go func() {
		if _, err := s.Refresh(context.Background()); err != nil {
			slog.Warn("Forced refresh failed", "error", err)
		}
	}()
}

// LoadCached seeds the controller from the local snapshot cache, if present.
// Cached data carries generation 0, so the first real refresh always
// replaces it; LoadCached never overwrites fetched state.
func (s *SyncService) LoadCached(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	snap, err := s.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cached snapshot: %w", err)
	}
	if snap == nil {
		return nil
	}

	enriched, err := s.enricher.Enrich(ctx, snap.Splits, s.observer)
	if err != nil {
		return fmt.Errorf("enrich cached snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.published {
		return nil
	}
	s.state = Snapshot{
		Groups:         snap.Groups,
		BillSplits:     snap.Splits,
		Settlements:    snap.Settlements,
		EnrichedSplits: enriched,
		Stats:          balance.ComputeStats(enriched, s.observer),
		Generation:     0,
	}
	s.published = true
	slog.Info("Warm start from cached snapshot",
		"groups", len(snap.Groups),
		"splits", len(snap.Splits),
		"saved_at", snap.SavedAt,
	)
	return nil
}

func (s *SyncService) saveToCache(ctx context.Context, snap *Snapshot) {
	if s.cache == nil {
		return
	}
	err := s.cache.Save(ctx, &cache.Snapshot{
		Groups:      snap.Groups,
		Splits:      snap.BillSplits,
		Settlements: snap.Settlements,
		SavedAt:     time.Now().Unix(),
	})
	if err != nil {
		// Best effort: a cold cache only costs the next warm start.
		slog.Warn("Failed to persist snapshot cache", "error", err)
	}
}

// Snapshot returns a copy of the current state. The slices are copied so
// consumers can iterate without holding any lock.
func (s *SyncService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Groups:         append([]models.Group(nil), s.state.Groups...),
		BillSplits:     append([]models.BillSplit(nil), s.state.BillSplits...),
		Settlements:    append([]models.Settlement(nil), s.state.Settlements...),
		EnrichedSplits: append([]models.EnrichedSplit(nil), s.state.EnrichedSplits...),
		Stats:          s.state.Stats,
		Generation:     s.state.Generation,
	}
}

// Stats returns the current aggregate position.
func (s *SyncService) Stats() models.AggregateStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Stats
}

// Loading reports whether a fetch is outstanding.
func (s *SyncService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the failure of the most recent refresh, or nil.
func (s *SyncService) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
