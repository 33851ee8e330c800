package lifecycle

import (
    "context"
    "time"

    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// Store is the persistence contract of the request core.  Every mutating
// method is a single atomic conditional write against the authoritative
// row: the guard is evaluated by the database at apply time, never against
// a snapshot cached in the caller's working set.  A method that finds its
// guard violated re-reads the row, maps the violation to one of the
// package sentinels and returns the current state alongside the error so
// callers can answer idempotent repeats without another round trip.
type Store interface {
    // Create persists a new request and populates its generated ID and
    // timestamps.
    Create(ctx context.Context, req *model.Request) error

    // GetByID returns the request scoped to the tenant, or
    // ErrRequestNotFound.
    GetByID(ctx context.Context, tenantID, requestID uint64) (*model.Request, error)

    // List returns the tenant's requests, newest first, filtered by f.
    List(ctx context.Context, tenantID uint64, f ListFilter) ([]model.Request, error)

    // Assign sets advisory staff ownership.  When the request is still
    // pending it also moves it to in_progress and stamps responded_at
    // exactly once.  Assigning to a completed request fails with
    // ErrInvalidTransition.
    Assign(ctx context.Context, tenantID, requestID, staffID uint64, now time.Time) (*model.Request, error)

    // AdvanceStatus moves the work status along the edge from -> to.  The
    // write is conditional on the row still being in from; losing that
    // race yields ErrConcurrentModification.  First departure from
    // pending stamps responded_at if unset.
    AdvanceStatus(ctx context.Context, tenantID, requestID uint64, from, to model.RequestStatus, now time.Time) (*model.Request, error)

    // ApplyPayment increments billed_amount by p.AmountCents as a guarded
    // single-statement update (billed_amount = billed_amount + ? with the
    // cap, transfer and terminal-state checks in the WHERE clause).
    ApplyPayment(ctx context.Context, p PaymentParams) (*model.Request, error)

    // SettleComplimentary performs the write-off as a compare-and-set on
    // the complimentary flag and the observed billed amount, so a retried
    // or double-clicked write-off can never settle twice.
    SettleComplimentary(ctx context.Context, p ComplimentaryParams) (*model.Request, error)

    // Transfer hands billing to the front desk as a compare-and-set on
    // transferred_to_frontdesk, guaranteeing exactly one reference code
    // is ever recorded per request.
    Transfer(ctx context.Context, p TransferParams) (*model.Request, error)
}

// ListFilter narrows List results.  Zero values mean "no filter".
type ListFilter struct {
    Status        model.RequestStatus
    BillingStatus model.BillingStatus
    Type          string
    AssignedTo    uint64
    Limit         int
}

// PaymentParams carries one payment collection into the store.
type PaymentParams struct {
    TenantID    uint64
    RequestID   uint64
    AmountCents int64
    Method      string
    PaymentRef  string
    ActorID     uint64
    Now         time.Time
}

// ComplimentaryParams carries a manager-approved write-off into the store.
// ObservedBilledCents is the accumulator value the engine based its credit
// amount on; the store rejects the write with ErrConcurrentModification
// when the row has moved since.
type ComplimentaryParams struct {
    TenantID            uint64
    RequestID           uint64
    ObservedBilledCents int64
    Reason              string
    ApproverID          uint64
    ActorID             uint64
    Now                 time.Time
}

// TransferParams carries a front-desk handoff into the store.  Code is
// derived deterministically from the request id before the write, so even
// two racing transfers would record the same value.
type TransferParams struct {
    TenantID  uint64
    RequestID uint64
    Code      string
    ActorID   uint64
    Now       time.Time
}
