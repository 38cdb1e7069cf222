package models

import "github.com/mmynk/splitsync/internal/money"

// Transaction is one entry in the remote transaction feed. The engine does
// not derive balances from transactions; it records them through the ledger
// and picks up their effect on splits at the next refresh.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	// UserID is the user this transaction belongs to.
	UserID string `json:"user_id"`

	// Amount is the transaction amount; negative for outflows.
	Amount money.Amount `json:"amount"`

	// Category is an optional presentation label ("food", "travel", ...).
	Category string `json:"category,omitempty"`

	// Note is an optional free-form description.
	Note string `json:"note,omitempty"`

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64 `json:"created_at"`
}
