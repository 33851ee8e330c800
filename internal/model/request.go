package model

import "time"

// RequestStatus tracks the work progress of a guest service request.
// The legal edges are pending -> in_progress -> completed; they are
// enforced centrally by the lifecycle package rather than by call sites.
type RequestStatus string

const (
    StatusPending    RequestStatus = "pending"
    StatusInProgress RequestStatus = "in_progress"
    StatusCompleted  RequestStatus = "completed"
)

// Valid reports whether s is one of the known work statuses.
func (s RequestStatus) Valid() bool {
    switch s {
    case StatusPending, StatusInProgress, StatusCompleted:
        return true
    }
    return false
}

// BillingStatus tracks the settlement state of a request's monetary
// obligation.  It is independent of the work status: a request can be
// work-completed while its billing is still pending at the front desk.
// Transitions are one-directional except cancelled, which is terminal
// from any non-terminal state.
type BillingStatus string

const (
    BillingUnbilled         BillingStatus = "unbilled"
    BillingPendingFrontdesk BillingStatus = "pending_frontdesk"
    BillingPaidDirect       BillingStatus = "paid_direct"
    BillingPostedToFolio    BillingStatus = "posted_to_folio"
    BillingCancelled        BillingStatus = "cancelled"
)

// Terminal reports whether no further billing transitions are allowed.
func (b BillingStatus) Terminal() bool {
    return b == BillingPostedToFolio || b == BillingCancelled
}

// Request is the central entity of the guest-service core.  It records a
// guest-initiated service task (room service, spa, laundry, maintenance)
// from creation through staff handling to financial settlement.  All
// monetary fields are minor currency units (cents).  Requests are never
// physically deleted; terminal states are retained for audit.
//
// Fields:
//  ID                      – primary key identifier.
//  TenantID                – owning organization; every operation is scoped to it.
//  Type                    – free-form service category tag.
//  Status                  – work-progress state.
//  AssignedTo              – advisory staff ownership, not an exclusive lock.
//  ExpectedAmountCents     – immutable order subtotal set at creation.
//  BilledAmountCents       – monotonically non-decreasing settlement accumulator.
//  BillingStatus           – settlement state of the monetary obligation.
//  TransferredToFrontdesk  – once true, direct billing by the originating
//                            department is disabled.
//  BillingReferenceCode    – human-typable code generated once at transfer.
//  Complimentary           – write-off flag; set at most once.
//  Metadata                – open bag for approval reason, approver id,
//                            payment-choice preference and routing hints.
type Request struct {
    ID                     uint64            `json:"id"`
    TenantID               uint64            `json:"tenant_id"`
    Type                   string            `json:"type"`
    Status                 RequestStatus     `json:"status"`
    AssignedTo             *uint64           `json:"assigned_to,omitempty"`
    AssignedAt             *time.Time        `json:"assigned_at,omitempty"`
    GuestID                *uint64           `json:"guest_id,omitempty"`
    BookingID              *uint64           `json:"booking_id,omitempty"`
    RoomID                 *uint64           `json:"room_id,omitempty"`
    Note                   string            `json:"note,omitempty"`
    ExpectedAmountCents    int64             `json:"expected_amount_cents"`
    BilledAmountCents      int64             `json:"billed_amount_cents"`
    BillingStatus          BillingStatus     `json:"billing_status"`
    TransferredToFrontdesk bool              `json:"transferred_to_frontdesk"`
    BillingReferenceCode   *string           `json:"billing_reference_code,omitempty"`
    BillingRoutedTo        *string           `json:"billing_routed_to,omitempty"`
    Complimentary          bool              `json:"complimentary"`
    PaymentMethod          *string           `json:"payment_method,omitempty"`
    PaymentRef             *string           `json:"payment_ref,omitempty"`
    PaidAt                 *time.Time        `json:"paid_at,omitempty"`
    BillingProcessedBy     *uint64           `json:"billing_processed_by,omitempty"`
    TransferredAt          *time.Time        `json:"transferred_at,omitempty"`
    TransferredBy          *uint64           `json:"transferred_by,omitempty"`
    RespondedAt            *time.Time        `json:"responded_at,omitempty"`
    CompletedAt            *time.Time        `json:"completed_at,omitempty"`
    Metadata               map[string]string `json:"metadata,omitempty"`
    CreatedAt              time.Time         `json:"created_at"`
    UpdatedAt              time.Time         `json:"updated_at"`
}

// RemainingBalanceCents returns expected minus billed, floored at zero.
// The invariant 0 <= billed holds after every operation, so the floor only
// matters for complimentary settlements that round the accumulator up to
// the expected amount.
func (r *Request) RemainingBalanceCents() int64 {
    rem := r.ExpectedAmountCents - r.BilledAmountCents
    if rem < 0 {
        return 0
    }
    return rem
}

// Clone returns a deep copy of the request, including the metadata bag.
// Engines hand clones to callers so that shared snapshots are never
// mutated in place.
func (r *Request) Clone() *Request {
    cp := *r
    if r.Metadata != nil {
        cp.Metadata = make(map[string]string, len(r.Metadata))
        for k, v := range r.Metadata {
            cp.Metadata[k] = v
        }
    }
    return &cp
}
