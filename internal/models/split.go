package models

import "github.com/mmynk/splitsync/internal/money"

// BillSplit represents a shared expense divided among participants.
type BillSplit struct {
	// ID is the unique identifier for the split (UUID format).
	ID string `json:"id"`

	// GroupID is the owning group, or empty for a standalone split.
	GroupID string `json:"group_id,omitempty"`

	// Name is the human-readable label for the expense (e.g., "Dinner").
	Name string `json:"name"`

	// TotalAmount is the full expense amount. Positive.
	//
	// The sum of participant share amounts should equal TotalAmount, but
	// the ledger does not guarantee it. Drift is treated as a data-quality
	// signal, never an error; see CheckShareDrift.
	TotalAmount money.Amount `json:"total_amount"`

	// CreatedBy is the user ID of the split's creator.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the Unix timestamp when the split was created.
	CreatedAt int64 `json:"created_at"`

	// Participants is the ordered list of stakes in this split.
	Participants []Participant `json:"participants"`
}

// Participant is one user's stake in a split.
type Participant struct {
	// UserID identifies the user holding this stake.
	UserID string `json:"user_id"`

	// ShareAmount is the portion of the split this user owes. Non-negative.
	ShareAmount money.Amount `json:"share_amount"`

	// PaidAmount is what this user has actually contributed. Non-negative.
	PaidAmount money.Amount `json:"paid_amount"`
}

// AmountOwed is the participant's outstanding amount: share minus paid.
// Positive means the participant still owes, negative means they have
// overpaid and are owed back, zero means they are settled on this split.
func (p Participant) AmountOwed() money.Amount {
	return p.ShareAmount.Sub(p.PaidAmount)
}

// FindParticipant returns the participant row for userID, or nil if the user
// has no stake in this split.
func (s *BillSplit) FindParticipant(userID string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].UserID == userID {
			return &s.Participants[i]
		}
	}
	return nil
}

// ShareDrift returns the difference between the sum of participant shares and
// the split total. Zero means the split is internally consistent.
func (s *BillSplit) ShareDrift() money.Amount {
	var sum money.Amount
	for _, p := range s.Participants {
		sum = sum.Add(p.ShareAmount)
	}
	return sum.Sub(s.TotalAmount)
}
