package models

import "github.com/mmynk/splitsync/internal/money"

// SelfLabel is the display name assigned to the observer's own participant
// rows during enrichment. It is fixed and never comes from the directory.
const SelfLabel = "You"

// SettlementStatus classifies one split relative to one observer.
type SettlementStatus string

const (
	// StatusSettled means nothing is outstanding on the split.
	StatusSettled SettlementStatus = "settled"

	// StatusToGive means the observer owes money on the split.
	StatusToGive SettlementStatus = "toGive"

	// StatusToTake means the observer is due money on the split.
	StatusToTake SettlementStatus = "toTake"
)

// EnrichedParticipant is a Participant annotated with a display name.
type EnrichedParticipant struct {
	Participant

	// DisplayName is the resolved name: SelfLabel for the observer, the
	// directory name for others, or a deterministic placeholder when the
	// directory lookup fails.
	DisplayName string `json:"display_name"`
}

// EnrichedSplit is a BillSplit whose participants carry display names, plus
// the split's settlement classification for the observer. Ephemeral:
// recomputed on every refresh, never persisted.
type EnrichedSplit struct {
	BillSplit

	// Participants shadows BillSplit.Participants with enriched rows, in
	// the same order.
	Participants []EnrichedParticipant `json:"participants"`

	// Status is the give/take/settled classification for the observer.
	Status SettlementStatus `json:"status"`

	// StatusAmount is the absolute outstanding amount behind Status; zero
	// when Status is StatusSettled.
	StatusAmount money.Amount `json:"status_amount"`
}

// AggregateStats is one observer's position over a set of splits.
// Ephemeral and derived; recomputed whenever the enriched set changes.
type AggregateStats struct {
	// TotalOwed is what the observer still has to pay across all splits.
	TotalOwed money.Amount `json:"total_owed"`

	// TotalOwing is what is owed back to the observer (credits receivable).
	TotalOwing money.Amount `json:"total_owing"`

	// NetBalance is TotalOwing - TotalOwed; positive means the observer is
	// a net creditor.
	NetBalance money.Amount `json:"net_balance"`
}
