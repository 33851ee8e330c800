package lifecycle

import (
    "context"
    "strconv"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// BillingEngine governs the billing-status field and the monetary
// accumulators of a request.  Amounts are minor currency units.  All
// mutations go through the store's atomic conditional writes: the engine
// never computes a new total from a stale snapshot and writes it back.
type BillingEngine struct {
    store     Store
    approvals ApprovalAuthority
}

// NewBillingEngine returns a BillingEngine bound to the store and the
// approval authority used for write-offs.
func NewBillingEngine(store Store, approvals ApprovalAuthority) *BillingEngine {
    return &BillingEngine{store: store, approvals: approvals}
}

// CollectPayment settles amountCents against the request and returns the
// updated state plus the ledger credit intent for the recorder.
//
// Preconditions checked against the snapshot, then re-enforced by the
// store's guarded update at apply time: the request must not be
// transferred, cancelled, posted to folio or already fully paid, and the
// amount must not exceed the remaining balance.  After a successful call
// the remaining balance has decreased by exactly amountCents.
func (e *BillingEngine) CollectPayment(ctx context.Context, tenantID, requestID uint64, amountCents int64, method, paymentRef string, actorID uint64) (*model.Request, *LedgerEntry, error) {
    if amountCents <= 0 {
        return nil, nil, ErrOverpayment
    }
    cur, err := e.store.GetByID(ctx, tenantID, requestID)
    if err != nil {
        return nil, nil, err
    }
    if cur.TransferredToFrontdesk {
        return nil, nil, ErrAlreadyTransferred
    }
    if cur.BillingStatus.Terminal() || (cur.BillingStatus == model.BillingPaidDirect && cur.RemainingBalanceCents() == 0) {
        return nil, nil, ErrAlreadySettled
    }
    if amountCents > cur.RemainingBalanceCents() {
        return nil, nil, ErrOverpayment
    }
    updated, err := e.store.ApplyPayment(ctx, PaymentParams{
        TenantID:    tenantID,
        RequestID:   requestID,
        AmountCents: amountCents,
        Method:      method,
        PaymentRef:  paymentRef,
        ActorID:     actorID,
        Now:         time.Now().UTC(),
    })
    if err != nil {
        return nil, nil, err
    }
    entry := e.creditEntry(updated, amountCents, LedgerCategoryService, actorID)
    entry.Metadata["method"] = method
    if paymentRef != "" {
        entry.Metadata["payment_ref"] = paymentRef
    }
    return updated, entry, nil
}

// MarkComplimentary settles the remaining balance as a manager-approved
// write-off.  The approval token is validated first; the settlement
// itself is a compare-and-set on the complimentary flag so a retried or
// double-clicked request returns the existing state unchanged instead of
// crediting the ledger a second time.  Partially paid requests credit
// only the remainder.
func (e *BillingEngine) MarkComplimentary(ctx context.Context, tenantID, requestID uint64, reason, approvalToken string, actorID uint64) (req *model.Request, entry *LedgerEntry, noop bool, err error) {
    cur, err := e.store.GetByID(ctx, tenantID, requestID)
    if err != nil {
        return nil, nil, false, err
    }
    if cur.Complimentary {
        return cur, nil, true, nil
    }
    if cur.TransferredToFrontdesk {
        return nil, nil, false, ErrAlreadyTransferred
    }
    if cur.BillingStatus.Terminal() {
        return nil, nil, false, ErrAlreadySettled
    }
    approverID, err := e.approvals.ValidateApprovalToken(ctx, approvalToken, "complimentary", cur.RemainingBalanceCents())
    if err != nil {
        return nil, nil, false, err
    }
    credit := cur.RemainingBalanceCents()
    updated, err := e.store.SettleComplimentary(ctx, ComplimentaryParams{
        TenantID:            tenantID,
        RequestID:           requestID,
        ObservedBilledCents: cur.BilledAmountCents,
        Reason:              reason,
        ApproverID:          approverID,
        ActorID:             actorID,
        Now:                 time.Now().UTC(),
    })
    if err != nil {
        // Another session completed the write-off between our read and the
        // compare-and-set: answer idempotently with the settled state.
        if updated != nil && updated.Complimentary {
            return updated, nil, true, nil
        }
        return nil, nil, false, err
    }
    entry = e.creditEntry(updated, credit, LedgerCategoryComplimentary, actorID)
    entry.Metadata["reason"] = reason
    entry.Metadata["approved_by"] = strconv.FormatUint(approverID, 10)
    return updated, entry, false, nil
}

// IsSettled reports whether the billing obligation requires no further
// action: fully paid direct or posted to folio with nothing remaining, or
// cancelled.  The dashboard uses it to decide whether billing affordances
// are still offered.
func IsSettled(r *model.Request) bool {
    switch r.BillingStatus {
    case model.BillingCancelled:
        return true
    case model.BillingPaidDirect, model.BillingPostedToFolio:
        return r.RemainingBalanceCents() == 0
    }
    return false
}

func (e *BillingEngine) creditEntry(r *model.Request, amountCents int64, category string, actorID uint64) *LedgerEntry {
    md := map[string]string{
        "processed_by": strconv.FormatUint(actorID, 10),
        "service_type": r.Type,
    }
    if r.GuestID != nil {
        md["guest_id"] = strconv.FormatUint(*r.GuestID, 10)
    }
    return &LedgerEntry{
        EntryID:       uuid.NewString(),
        TenantID:      r.TenantID,
        Type:          LedgerTypeCredit,
        AmountCents:   amountCents,
        ReferenceType: ledgerReferenceType,
        ReferenceID:   r.ID,
        Category:      category,
        Metadata:      md,
    }
}
