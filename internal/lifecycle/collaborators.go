package lifecycle

import "context"

// Ledger entry types and categories recorded against the external
// financial ledger.
const (
    LedgerTypeCredit = "credit"
    LedgerTypeDebit  = "debit"

    LedgerCategoryService       = "guest_service"
    LedgerCategoryComplimentary = "complimentary"

    ledgerReferenceType = "guest_request"
)

// LedgerEntry is the intent produced by the billing engine for the
// append-only financial ledger.  EntryID is generated by the engine so
// the recorder can deduplicate retried deliveries.
type LedgerEntry struct {
    EntryID       string            `json:"entry_id"`
    TenantID      uint64            `json:"tenant_id"`
    Type          string            `json:"type"`
    AmountCents   int64             `json:"amount_cents"`
    ReferenceType string            `json:"reference_type"`
    ReferenceID   uint64            `json:"reference_id"`
    Category      string            `json:"category"`
    Metadata      map[string]string `json:"metadata,omitempty"`
}

// LedgerRecorder appends entries to the external financial ledger.  Calls
// are best-effort: a failure is logged with full context for later
// reconciliation and never rolls back the committed billing state.
type LedgerRecorder interface {
    RecordEntry(ctx context.Context, entry LedgerEntry) error
}

// ActivityLogger writes the structured audit trail of who did what to a
// request.  Best-effort, non-blocking.
type ActivityLogger interface {
    LogAction(ctx context.Context, tenantID, requestID, staffID uint64, action string, metadata map[string]string) error
}

// ApprovalAuthority validates manager-approval tokens that authorize
// privileged actions such as write-offs.  On success it returns the
// approver's staff id; a missing or invalid token yields
// ErrApprovalRequired.
type ApprovalAuthority interface {
    ValidateApprovalToken(ctx context.Context, token, action string, amountCents int64) (approverID uint64, err error)
}
