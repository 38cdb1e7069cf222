package balance

import (
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/money"
)

// Classify derives the give/take/settled status of one split relative to one
// observer, together with the outstanding amount behind it.
//
// The split is examined through a single row: the observer's own row when it
// has a nonzero outstanding amount, otherwise the first row in participant
// order with a nonzero outstanding amount. If no such row exists the split is
// settled.
//
// For an examined row that still owes (share > paid):
//   - the row belongs to the observer: StatusToGive (the observer owes)
//   - the observer created the split: StatusToTake (the unpaid share is
//     money the creator is due)
//   - otherwise: StatusToGive
//
// For an examined row that overpaid (share < paid) the polarity of all three
// branches is inverted. The returned amount is always the absolute
// outstanding amount of the examined row.
//
// The relation is total: exactly one status is returned for any observer,
// participant or not.
func Classify(split *models.BillSplit, observerID string) (models.SettlementStatus, money.Amount) {
	row := examinedRow(split, observerID)
	if row == nil {
		return models.StatusSettled, 0
	}

	owed := row.AmountOwed()
	ownRow := row.UserID == observerID
	creator := split.CreatedBy == observerID

	if owed.Sign() > 0 {
		if ownRow {
			return models.StatusToGive, owed
		}
		if creator {
			return models.StatusToTake, owed
		}
		return models.StatusToGive, owed
	}

	// Overpaid row: give/take swapped.
	if ownRow {
		return models.StatusToTake, owed.Abs()
	}
	if creator {
		return models.StatusToGive, owed.Abs()
	}
	return models.StatusToTake, owed.Abs()
}

// examinedRow picks the row the classification is based on: the observer's
// row if it is outstanding, else the first outstanding row in input order.
func examinedRow(split *models.BillSplit, observerID string) *models.Participant {
	if own := split.FindParticipant(observerID); own != nil && !own.AmountOwed().IsZero() {
		return own
	}
	for i := range split.Participants {
		if !split.Participants[i].AmountOwed().IsZero() {
			return &split.Participants[i]
		}
	}
	return nil
}
