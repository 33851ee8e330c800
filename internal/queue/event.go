// Package queue defines message payloads exchanged over the message broker.
package queue

// LedgerEntryEvent is published after a billing mutation commits.  It is
// the wire form of the engine's ledger intent: the downstream ledger owns
// the append-only financial record, the core only hands it the facts.
// EntryID lets the ledger deduplicate redelivered messages.
type LedgerEntryEvent struct {
    EntryID       string            `json:"entry_id"`
    TenantID      uint64            `json:"tenant_id"`
    Type          string            `json:"type"`
    AmountCents   int64             `json:"amount_cents"`
    ReferenceType string            `json:"reference_type"`
    ReferenceID   uint64            `json:"reference_id"`
    Category      string            `json:"category"`
    Metadata      map[string]string `json:"metadata,omitempty"`
    RecordedAt    string            `json:"recorded_at"`
}

// ActivityEvent is published for every lifecycle verb so the audit trail
// can be written without blocking the staff session that triggered it.
type ActivityEvent struct {
    TenantID  uint64            `json:"tenant_id"`
    RequestID uint64            `json:"request_id"`
    StaffID   uint64            `json:"staff_id"`
    Action    string            `json:"action"`
    Metadata  map[string]string `json:"metadata,omitempty"`
    LoggedAt  string            `json:"logged_at"`
}
