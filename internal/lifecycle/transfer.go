package lifecycle

import (
    "context"
    "time"

    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// crockford is the base32 alphabet used for billing reference codes.  It
// omits I, L, O and U so codes stay unambiguous when read over the phone
// or typed from a printed folio slip.
const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ReferenceCode derives the billing reference code for a request id.  The
// code is deterministic and collision-free because it is a pure encoding
// of the id: two racing transfers of the same request always compute the
// same value, and distinct requests can never share one.
func ReferenceCode(requestID uint64) string {
    buf := make([]byte, 0, 16)
    n := requestID
    for {
        buf = append(buf, crockford[n%32])
        n /= 32
        if n == 0 {
            break
        }
    }
    for len(buf) < 6 {
        buf = append(buf, '0')
    }
    for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
        buf[i], buf[j] = buf[j], buf[i]
    }
    return "FD-" + string(buf)
}

// TransferCoordinator hands billing responsibility for a request to the
// front desk.  Transfer is a billing-authority handoff only: the work
// status is left untouched.
type TransferCoordinator struct {
    store Store
}

// NewTransferCoordinator returns a TransferCoordinator bound to the store.
func NewTransferCoordinator(store Store) *TransferCoordinator {
    return &TransferCoordinator{store: store}
}

// TransferToFrontdesk flips transferred_to_frontdesk via the store's
// compare-and-set, records the reference code and moves billing to
// pending_frontdesk.  Calling it on an already-transferred request is an
// idempotent no-op that returns the existing state, including the
// reference code recorded by the first call.
func (t *TransferCoordinator) TransferToFrontdesk(ctx context.Context, tenantID, requestID, actorID uint64) (req *model.Request, noop bool, err error) {
    cur, err := t.store.GetByID(ctx, tenantID, requestID)
    if err != nil {
        return nil, false, err
    }
    if cur.TransferredToFrontdesk {
        return cur, true, nil
    }
    if cur.BillingStatus.Terminal() {
        return nil, false, ErrAlreadySettled
    }
    updated, err := t.store.Transfer(ctx, TransferParams{
        TenantID:  tenantID,
        RequestID: requestID,
        Code:      ReferenceCode(requestID),
        ActorID:   actorID,
        Now:       time.Now().UTC(),
    })
    if err != nil {
        // Lost the check-and-set to a concurrent transfer; the state it
        // returns already carries the reference code.
        if updated != nil && updated.TransferredToFrontdesk {
            return updated, true, nil
        }
        return nil, false, err
    }
    return updated, false, nil
}
