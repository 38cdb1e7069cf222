package models

import "github.com/mmynk/splitsync/internal/money"

// Settlement represents a payment between users that clears debt.
// Settlements are produced by the ledger and consumed opaquely here: the
// classifier works from split participant rows, which the ledger already
// adjusts when a settlement is recorded.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID is the group this settlement belongs to, if any.
	GroupID string `json:"group_id,omitempty"`

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string `json:"from_user_id"`

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string `json:"to_user_id"`

	// Amount is the payment amount.
	Amount money.Amount `json:"amount"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"created_at"`

	// Note is an optional free-form description.
	Note string `json:"note,omitempty"`
}
