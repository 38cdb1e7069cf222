package balance

import (
	"math/rand"
	"testing"

	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

func enriched(split models.BillSplit) models.EnrichedSplit {
	return models.EnrichedSplit{BillSplit: split}
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name     string
		splits   []models.EnrichedSplit
		observer string
		want     models.AggregateStats
	}{
		{
			name:     "empty set is all zeros",
			splits:   nil,
			observer: "u1",
			want:     models.AggregateStats{},
		},
		{
			name: "observer owes on one split",
			splits: []models.EnrichedSplit{
				enriched(models.BillSplit{
					Participants: []models.Participant{
						{UserID: "u1", ShareAmount: money.MustParse("50.00")},
					},
				}),
			},
			observer: "u1",
			want: models.AggregateStats{
				TotalOwed:  money.MustParse("50.00"),
				NetBalance: money.MustParse("-50.00"),
			},
		},
		{
			name: "observer overpaid is owed back",
			splits: []models.EnrichedSplit{
				enriched(models.BillSplit{
					Participants: []models.Participant{
						{UserID: "u1", ShareAmount: money.MustParse("20.00"), PaidAmount: money.MustParse("80.00")},
					},
				}),
			},
			observer: "u1",
			want: models.AggregateStats{
				TotalOwing: money.MustParse("60.00"),
				NetBalance: money.MustParse("60.00"),
			},
		},
		{
			name: "mixed debts and credits",
			splits: []models.EnrichedSplit{
				enriched(models.BillSplit{
					Participants: []models.Participant{
						{UserID: "u1", ShareAmount: money.MustParse("30.00"), PaidAmount: money.MustParse("10.00")},
					},
				}),
				enriched(models.BillSplit{
					Participants: []models.Participant{
						{UserID: "u1", ShareAmount: money.MustParse("5.00"), PaidAmount: money.MustParse("40.00")},
					},
				}),
				enriched(models.BillSplit{
					// Observer has no row here; contributes nothing.
					Participants: []models.Participant{
						{UserID: "u2", ShareAmount: money.MustParse("99.00")},
					},
				}),
			},
			observer: "u1",
			want: models.AggregateStats{
				TotalOwed:  money.MustParse("20.00"),
				TotalOwing: money.MustParse("35.00"),
				NetBalance: money.MustParse("15.00"),
			},
		},
		{
			name: "fully settled splits yield zeros",
			splits: []models.EnrichedSplit{
				enriched(models.BillSplit{
					Participants: []models.Participant{
						{UserID: "u1", ShareAmount: money.MustParse("30.00"), PaidAmount: money.MustParse("30.00")},
						{UserID: "u2", ShareAmount: money.MustParse("70.00"), PaidAmount: money.MustParse("70.00")},
					},
				}),
			},
			observer: "u1",
			want:     models.AggregateStats{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.splits, tt.observer)
			if got != tt.want {
				t.Errorf("ComputeStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// The reduction must be order-independent: shuffling the split set never
// changes the aggregate.
func TestComputeStatsOrderIndependent(t *testing.T) {
	splits := make([]models.EnrichedSplit, 0, 20)
	for i := 0; i < 20; i++ {
		splits = append(splits, enriched(models.BillSplit{
			Participants: []models.Participant{
				{
					UserID:      "u1",
					ShareAmount: money.FromMinor(int64(i * 137)),
					PaidAmount:  money.FromMinor(int64(i * 100)),
				},
			},
		}))
	}

	want := ComputeStats(splits, "u1")
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		rng.Shuffle(len(splits), func(i, j int) {
			splits[i], splits[j] = splits[j], splits[i]
		})
		if got := ComputeStats(splits, "u1"); got != want {
			t.Fatalf("shuffle %d changed stats: %+v != %+v", trial, got, want)
		}
	}
}

func TestNetBalanceIdentity(t *testing.T) {
	splits := []models.EnrichedSplit{
		enriched(models.BillSplit{
			Participants: []models.Participant{
				{UserID: "u1", ShareAmount: money.MustParse("12.34"), PaidAmount: money.MustParse("1.00")},
			},
		}),
		enriched(models.BillSplit{
			Participants: []models.Participant{
				{UserID: "u1", ShareAmount: money.MustParse("0.50"), PaidAmount: money.MustParse("9.99")},
			},
		}),
	}

	stats := ComputeStats(splits, "u1")
	if stats.NetBalance != stats.TotalOwing.Sub(stats.TotalOwed) {
		t.Errorf("net balance identity broken: %+v", stats)
	}
}
