// Package models defines the core domain models for splitsync.
//
// # Raw Models
//
// The following models mirror what the remote ledger returns:
//   - Group: A named circle of users who split expenses together
//   - BillSplit: A shared expense divided among participants
//   - Participant: One user's stake in a split (share and paid amounts)
//   - Settlement: A payment between users that clears debt
//   - Identity: A resolved user identity from the directory
//
// Raw models are owned by the remote ledger. The client never mutates them;
// every change goes through the ledger and comes back on the next refresh.
//
// # Derived Models
//
// The following models are computed locally and never persisted:
//   - EnrichedSplit: A BillSplit whose participants carry display names
//   - AggregateStats: One observer's owed/owing/net position over all splits
//   - SettlementStatus: Per-split give/take/settled classification
//
// Derived models are recomputed in full on every refresh. There is no
// incremental state: correctness depends on full reinspection of the split
// set, so no code path patches derived values in place.
//
// # Design Principles
//
//  1. Amounts are money.Amount (integer minor units), never float64
//  2. Relationships use ID strings, not pointers, to avoid cycles
//  3. Derived types embed their raw counterparts rather than copying fields
package models
