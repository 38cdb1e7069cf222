// Package balance holds the pure calculation core: aggregate balance stats
// and per-split settlement classification. Nothing here does I/O or keeps
// state; every function is a total function over its inputs so it can be
// re-run in full after any refresh.
package balance

import (
	"github.com/mmynk/splitsync/internal/models"
)

// ComputeStats reduces a set of enriched splits to the observer's aggregate
// position.
//
// For each split the observer's own participant row is located; splits where
// the observer has no stake contribute zero. A positive outstanding amount
// (share > paid) adds to TotalOwed; a negative one (overpaid) adds its
// absolute value to TotalOwing, i.e. money owed back *to* the observer.
// NetBalance = TotalOwing - TotalOwed.
//
// The reduction is additive and order-independent.
func ComputeStats(splits []models.EnrichedSplit, observerID string) models.AggregateStats {
	var stats models.AggregateStats
	for i := range splits {
		row := splits[i].FindParticipant(observerID)
		if row == nil {
			continue
		}
		owed := row.AmountOwed()
		switch {
		case owed.Sign() > 0:
			stats.TotalOwed = stats.TotalOwed.Add(owed)
		case owed.Sign() < 0:
			stats.TotalOwing = stats.TotalOwing.Add(owed.Abs())
		}
	}
	stats.NetBalance = stats.TotalOwing.Sub(stats.TotalOwed)
	return stats
}
