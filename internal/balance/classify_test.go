package balance

import (
	"testing"

	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

// dinnerSplit is a $100 split between u1 (paid in full) and u2 (unpaid),
// created by u1.
func dinnerSplit() *models.BillSplit {
	return &models.BillSplit{
		ID:          "s1",
		Name:        "Dinner",
		TotalAmount: money.MustParse("100.00"),
		CreatedBy:   "u1",
		Participants: []models.Participant{
			{UserID: "u1", ShareAmount: money.MustParse("50.00"), PaidAmount: money.MustParse("50.00")},
			{UserID: "u2", ShareAmount: money.MustParse("50.00"), PaidAmount: money.MustParse("0.00")},
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		split      *models.BillSplit
		observer   string
		wantStatus models.SettlementStatus
		wantAmount money.Amount
	}{
		{
			name:       "unpaid participant who is not creator owes",
			split:      dinnerSplit(),
			observer:   "u2",
			wantStatus: models.StatusToGive,
			wantAmount: money.MustParse("50.00"),
		},
		{
			name:       "creator with settled own row is due the unpaid share",
			split:      dinnerSplit(),
			observer:   "u1",
			wantStatus: models.StatusToTake,
			wantAmount: money.MustParse("50.00"),
		},
		{
			name: "fully settled split",
			split: &models.BillSplit{
				ID:        "s2",
				CreatedBy: "u1",
				Participants: []models.Participant{
					{UserID: "u1", ShareAmount: money.MustParse("30.00"), PaidAmount: money.MustParse("30.00")},
					{UserID: "u2", ShareAmount: money.MustParse("70.00"), PaidAmount: money.MustParse("70.00")},
				},
			},
			observer:   "u1",
			wantStatus: models.StatusSettled,
			wantAmount: 0,
		},
		{
			name:       "non-participant non-creator sees the unpaid share as give",
			split:      dinnerSplit(),
			observer:   "stranger",
			wantStatus: models.StatusToGive,
			wantAmount: money.MustParse("50.00"),
		},
		{
			name: "non-participant creator is due the unpaid share",
			split: &models.BillSplit{
				ID:        "s3",
				CreatedBy: "payer",
				Participants: []models.Participant{
					{UserID: "u2", ShareAmount: money.MustParse("40.00"), PaidAmount: money.MustParse("0.00")},
				},
			},
			observer:   "payer",
			wantStatus: models.StatusToTake,
			wantAmount: money.MustParse("40.00"),
		},
		{
			name: "observer overpaid their own row",
			split: &models.BillSplit{
				ID:        "s4",
				CreatedBy: "u1",
				Participants: []models.Participant{
					{UserID: "u2", ShareAmount: money.MustParse("20.00"), PaidAmount: money.MustParse("35.00")},
				},
			},
			observer:   "u2",
			wantStatus: models.StatusToTake,
			wantAmount: money.MustParse("15.00"),
		},
		{
			name: "creator observing someone else's overpaid row gives back",
			split: &models.BillSplit{
				ID:        "s5",
				CreatedBy: "u1",
				Participants: []models.Participant{
					{UserID: "u2", ShareAmount: money.MustParse("20.00"), PaidAmount: money.MustParse("35.00")},
				},
			},
			observer:   "u1",
			wantStatus: models.StatusToGive,
			wantAmount: money.MustParse("15.00"),
		},
		{
			name: "observer's outstanding row wins over earlier rows",
			split: &models.BillSplit{
				ID:        "s6",
				CreatedBy: "u1",
				Participants: []models.Participant{
					{UserID: "u2", ShareAmount: money.MustParse("10.00"), PaidAmount: money.MustParse("0.00")},
					{UserID: "u3", ShareAmount: money.MustParse("25.00"), PaidAmount: money.MustParse("0.00")},
				},
			},
			observer:   "u3",
			wantStatus: models.StatusToGive,
			wantAmount: money.MustParse("25.00"),
		},
		{
			name: "split with no participants is settled",
			split: &models.BillSplit{
				ID:        "s7",
				CreatedBy: "u1",
			},
			observer:   "u1",
			wantStatus: models.StatusSettled,
			wantAmount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, amount := Classify(tt.split, tt.observer)
			if status != tt.wantStatus {
				t.Errorf("status = %s, want %s", status, tt.wantStatus)
			}
			if amount != tt.wantAmount {
				t.Errorf("amount = %s, want %s", amount, tt.wantAmount)
			}
		})
	}
}

// Classification must be total and exhaustive for any observer, including
// users with no stake in the split.
func TestClassifyIsTotal(t *testing.T) {
	split := dinnerSplit()
	valid := map[models.SettlementStatus]bool{
		models.StatusSettled: true,
		models.StatusToGive:  true,
		models.StatusToTake:  true,
	}

	for _, observer := range []string{"u1", "u2", "u3", ""} {
		status, amount := Classify(split, observer)
		if !valid[status] {
			t.Errorf("observer %q: unexpected status %q", observer, status)
		}
		if amount.Sign() < 0 {
			t.Errorf("observer %q: negative status amount %s", observer, amount)
		}
	}
}

func TestSettledWhenShareEqualsPaid(t *testing.T) {
	split := &models.BillSplit{
		ID:        "s8",
		CreatedBy: "u1",
		Participants: []models.Participant{
			{UserID: "u1", ShareAmount: money.MustParse("12.34"), PaidAmount: money.MustParse("12.34")},
			{UserID: "u2", ShareAmount: money.MustParse("0.00"), PaidAmount: money.MustParse("0.00")},
		},
	}
	for _, observer := range []string{"u1", "u2"} {
		if status, _ := Classify(split, observer); status != models.StatusSettled {
			t.Errorf("observer %q: status = %s, want settled", observer, status)
		}
	}
}
