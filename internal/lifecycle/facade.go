package lifecycle

import (
    "context"
    "log"
    "strconv"
    "time"

    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// Audit action types written to the activity trail.
const (
    ActionCreated       = "created"
    ActionAssigned      = "assigned"
    ActionStatusChanged = "status_changed"
    ActionPayment       = "payment_collected"
    ActionComplimentary = "marked_complimentary"
    ActionTransferred   = "transferred_to_frontdesk"
)

// defaultSideEffectTimeout bounds ledger and audit submission after the
// primary mutation committed.  Collaborator slowness must never stall a
// staff session.
const defaultSideEffectTimeout = 3 * time.Second

// Result is what every facade verb hands back to its caller.  Request is
// the state after the operation; NoOp marks idempotent repeats that were
// answered from the existing state; Warnings carry collaborator failures
// that accompanied an otherwise successful operation.
type Result struct {
    Request  *model.Request `json:"request"`
    NoOp     bool           `json:"no_op,omitempty"`
    Warnings []string       `json:"warnings,omitempty"`
}

// PaymentInput is the outcome supplied by the external payment collector.
// The core never initiates charges; it only records their result.
type PaymentInput struct {
    AmountCents int64  `json:"amount_cents"`
    Method      string `json:"method"`
    ProviderID  string `json:"provider_id"`
    PaymentID   string `json:"payment_id"`
}

// Facade is the single entry point of the request core.  Each verb loads
// the authoritative state, validates preconditions, applies the engine
// mutation as one atomic conditional write, and only then submits the
// ledger intent and audit entry best-effort.  Failures of those side
// calls are logged, attached as warnings and never roll the committed
// mutation back.
type Facade struct {
    store    Store
    status   *StatusEngine
    billing  *BillingEngine
    transfer *TransferCoordinator
    ledger   LedgerRecorder
    audit    ActivityLogger
    timeout  time.Duration
}

// NewFacade wires the engines over a shared store and the external
// collaborators.  ledger and audit may be nil, in which case the
// corresponding side effect is skipped entirely.
func NewFacade(store Store, approvals ApprovalAuthority, ledger LedgerRecorder, audit ActivityLogger) *Facade {
    return &Facade{
        store:    store,
        status:   NewStatusEngine(store),
        billing:  NewBillingEngine(store, approvals),
        transfer: NewTransferCoordinator(store),
        ledger:   ledger,
        audit:    audit,
        timeout:  defaultSideEffectTimeout,
    }
}

// Create persists a freshly submitted guest request.  The expected amount
// is immutable afterwards; billing starts unbilled and work starts
// pending.
func (f *Facade) Create(ctx context.Context, req *model.Request) (*Result, error) {
    req.Status = model.StatusPending
    req.BillingStatus = model.BillingUnbilled
    req.BilledAmountCents = 0
    if err := f.store.Create(ctx, req); err != nil {
        return nil, err
    }
    staffID := uint64(0) // guest submission carries no staff actor
    warnings := f.logAction(req.TenantID, req.ID, staffID, ActionCreated, map[string]string{
        "type":                  req.Type,
        "expected_amount_cents": strconv.FormatInt(req.ExpectedAmountCents, 10),
    }, nil)
    return &Result{Request: req, Warnings: warnings}, nil
}

// Get returns a single request scoped to the tenant.
func (f *Facade) Get(ctx context.Context, tenantID, requestID uint64) (*model.Request, error) {
    return f.store.GetByID(ctx, tenantID, requestID)
}

// List returns the tenant's requests filtered by f.
func (f *Facade) List(ctx context.Context, tenantID uint64, filter ListFilter) ([]model.Request, error) {
    return f.store.List(ctx, tenantID, filter)
}

// Assign gives advisory ownership of the request to staffID, starting the
// request if it was still pending.
func (f *Facade) Assign(ctx context.Context, tenantID, requestID, staffID, actorID uint64) (*Result, error) {
    req, noop, err := f.status.Assign(ctx, tenantID, requestID, staffID, actorID)
    if err != nil {
        return nil, err
    }
    if noop {
        return &Result{Request: req, NoOp: true}, nil
    }
    warnings := f.logAction(tenantID, requestID, actorID, ActionAssigned, map[string]string{
        "assigned_to": strconv.FormatUint(staffID, 10),
    }, nil)
    return &Result{Request: req, Warnings: warnings}, nil
}

// Advance moves the work status to target.
func (f *Facade) Advance(ctx context.Context, tenantID, requestID uint64, target model.RequestStatus, actorID uint64) (*Result, error) {
    req, err := f.status.Advance(ctx, tenantID, requestID, target, actorID)
    if err != nil {
        return nil, err
    }
    warnings := f.logAction(tenantID, requestID, actorID, ActionStatusChanged, map[string]string{
        "status": string(target),
    }, nil)
    return &Result{Request: req, Warnings: warnings}, nil
}

// CollectPayment records a settled payment against the request and
// submits the resulting ledger credit.
func (f *Facade) CollectPayment(ctx context.Context, tenantID, requestID uint64, in PaymentInput, actorID uint64) (*Result, error) {
    req, entry, err := f.billing.CollectPayment(ctx, tenantID, requestID, in.AmountCents, in.Method, in.PaymentID, actorID)
    if err != nil {
        return nil, err
    }
    warnings := f.logAction(tenantID, requestID, actorID, ActionPayment, map[string]string{
        "amount_cents": strconv.FormatInt(in.AmountCents, 10),
        "method":       in.Method,
    }, entry)
    return &Result{Request: req, Warnings: warnings}, nil
}

// MarkComplimentary writes off the remaining balance with manager
// approval.  Repeating the call returns the settled state without a
// second ledger credit.
func (f *Facade) MarkComplimentary(ctx context.Context, tenantID, requestID uint64, reason, approvalToken string, actorID uint64) (*Result, error) {
    req, entry, noop, err := f.billing.MarkComplimentary(ctx, tenantID, requestID, reason, approvalToken, actorID)
    if err != nil {
        return nil, err
    }
    if noop {
        return &Result{Request: req, NoOp: true}, nil
    }
    warnings := f.logAction(tenantID, requestID, actorID, ActionComplimentary, map[string]string{
        "reason": reason,
    }, entry)
    return &Result{Request: req, Warnings: warnings}, nil
}

// TransferToFrontdesk hands billing responsibility to the front desk.
// The work status is untouched and repeats return the original reference
// code.
func (f *Facade) TransferToFrontdesk(ctx context.Context, tenantID, requestID, actorID uint64) (*Result, error) {
    req, noop, err := f.transfer.TransferToFrontdesk(ctx, tenantID, requestID, actorID)
    if err != nil {
        return nil, err
    }
    if noop {
        return &Result{Request: req, NoOp: true}, nil
    }
    md := map[string]string{"billing_routed_to": "frontdesk"}
    if req.BillingReferenceCode != nil {
        md["billing_reference_code"] = *req.BillingReferenceCode
    }
    warnings := f.logAction(tenantID, requestID, actorID, ActionTransferred, md, nil)
    return &Result{Request: req, Warnings: warnings}, nil
}

// logAction submits the audit entry and, when present, the ledger intent.
// Both calls run on a detached bounded context: the primary mutation is
// already committed and must not be held hostage by a collaborator.
// Failures are logged with full context and reported back as warnings.
func (f *Facade) logAction(tenantID, requestID, staffID uint64, action string, metadata map[string]string, entry *LedgerEntry) []string {
    ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
    defer cancel()

    var warnings []string
    if entry != nil && f.ledger != nil {
        if err := f.ledger.RecordEntry(ctx, *entry); err != nil {
            log.Printf("lifecycle: ledger entry failed (entry_id=%s tenant=%d request=%d amount=%d): %v",
                entry.EntryID, tenantID, requestID, entry.AmountCents, err)
            warnings = append(warnings, "ledger entry could not be recorded; queued for reconciliation")
        }
    }
    if f.audit != nil {
        if err := f.audit.LogAction(ctx, tenantID, requestID, staffID, action, metadata); err != nil {
            log.Printf("lifecycle: audit entry failed (tenant=%d request=%d action=%s): %v",
                tenantID, requestID, action, err)
            warnings = append(warnings, "activity log entry could not be recorded")
        }
    }
    return warnings
}
