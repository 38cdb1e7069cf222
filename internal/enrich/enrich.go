// Package enrich resolves opaque participant identifiers into display
// identities and attaches per-split settlement classification.
package enrich

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitsync/internal/balance"
	"github.com/mmynk/splitsync/internal/models"
)

// Resolver looks up one user identity. A nil identity with a nil error means
// no match; the enricher degrades to a placeholder in that case.
type Resolver interface {
	SearchUser(ctx context.Context, userID string) (*models.Identity, error)
}

// Placeholder is the deterministic fallback display name for a user whose
// directory lookup failed or matched nothing.
func Placeholder(userID string) string {
	return "User " + userID
}

// Enricher turns raw bill splits into enriched splits for one observer.
// Stateless apart from its collaborators; safe for concurrent use.
type Enricher struct {
	resolver Resolver

	// OnLookupFailure, if set, is invoked once per failed directory lookup.
	// Used for metrics; failures are already contained and logged.
	OnLookupFailure func(userID string, err error)
}

// New creates an Enricher backed by the given resolver.
func New(resolver Resolver) *Enricher {
	return &Enricher{resolver: resolver}
}

// Enrich annotates every participant of every split with a display name and
// classifies each split for the observer.
//
// The observer's own rows get the fixed self label without any lookup. All
// other distinct user IDs are resolved concurrently, one lookup per ID per
// call, and the results are reassembled so output ordering always matches
// input split and participant ordering regardless of completion order. A
// failed or empty lookup degrades to Placeholder(id); enrichment only fails
// as a whole when ctx is cancelled.
//
// Already-resolved names are not consulted: enriching the output of a prior
// run (via its embedded raw splits) yields identical names.
func (e *Enricher) Enrich(ctx context.Context, splits []models.BillSplit, observerID string) ([]models.EnrichedSplit, error) {
	names, err := e.resolveAll(ctx, splits, observerID)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.EnrichedSplit, len(splits))
	for i, split := range splits {
		if drift := split.ShareDrift(); !drift.IsZero() {
			slog.Warn("Split shares do not sum to total",
				"split_id", split.ID,
				"total", split.TotalAmount,
				"drift", drift,
			)
		}

		rows := make([]models.EnrichedParticipant, len(split.Participants))
		for j, p := range split.Participants {
			name := models.SelfLabel
			if p.UserID != observerID {
				name = names[p.UserID]
			}
			rows[j] = models.EnrichedParticipant{Participant: p, DisplayName: name}
		}

		status, amount := balance.Classify(&split, observerID)
		enriched[i] = models.EnrichedSplit{
			BillSplit:    split,
			Participants: rows,
			Status:       status,
			StatusAmount: amount,
		}
	}
	return enriched, nil
}

// resolveAll resolves every distinct non-observer user ID concurrently and
// returns the ID-to-name map. Lookup failures are contained per user.
func (e *Enricher) resolveAll(ctx context.Context, splits []models.BillSplit, observerID string) (map[string]string, error) {
	distinct := make(map[string]struct{})
	for _, split := range splits {
		for _, p := range split.Participants {
			if p.UserID != observerID {
				distinct[p.UserID] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(distinct))
	for id := range distinct {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var mu sync.Mutex
	names := make(map[string]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			name := Placeholder(id)
			identity, err := e.resolver.SearchUser(gctx, id)
			switch {
			case err != nil:
				slog.Warn("Identity lookup failed", "user_id", id, "error", err)
				if e.OnLookupFailure != nil {
					e.OnLookupFailure(id, err)
				}
			case identity != nil && identity.Name != "":
				name = identity.Name
			}

			mu.Lock()
			names[id] = name
			mu.Unlock()
			return nil
		})
	}

	// Lookups never return errors, so Wait is a pure join.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
