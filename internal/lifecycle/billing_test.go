package lifecycle

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-guest-services/internal/model"
)

func TestCollectPaymentFullAmount(t *testing.T) {
    store := newMemStore()
    eng := NewBillingEngine(store, &fakeApprovals{})
    req := seedRequest(store, 1, 4500)
    ctx := context.Background()

    got, entry, err := eng.CollectPayment(ctx, 1, req.ID, 4500, "card", "pay_abc", 7)
    require.NoError(t, err)
    assert.Equal(t, int64(4500), got.BilledAmountCents)
    assert.Equal(t, model.BillingPaidDirect, got.BillingStatus)
    assert.Equal(t, int64(0), got.RemainingBalanceCents())
    assert.True(t, IsSettled(got))

    require.NotNil(t, entry)
    assert.Equal(t, LedgerTypeCredit, entry.Type)
    assert.Equal(t, int64(4500), entry.AmountCents)
    assert.Equal(t, LedgerCategoryService, entry.Category)
    assert.Equal(t, req.ID, entry.ReferenceID)
    assert.Equal(t, "card", entry.Metadata["method"])
    assert.Equal(t, "pay_abc", entry.Metadata["payment_ref"])
    assert.NotEmpty(t, entry.EntryID)
}

func TestCollectPaymentPartial(t *testing.T) {
    store := newMemStore()
    eng := NewBillingEngine(store, &fakeApprovals{})
    req := seedRequest(store, 1, 6000)
    ctx := context.Background()

    got, _, err := eng.CollectPayment(ctx, 1, req.ID, 2000, "cash", "", 7)
    require.NoError(t, err)
    assert.Equal(t, int64(2000), got.BilledAmountCents)
    assert.Equal(t, int64(4000), got.RemainingBalanceCents())
    assert.Equal(t, model.BillingPaidDirect, got.BillingStatus)
    assert.False(t, IsSettled(got), "partially paid is not settled")
}

func TestCollectPaymentOverpaymentRejected(t *testing.T) {
    store := newMemStore()
    eng := NewBillingEngine(store, &fakeApprovals{})
    req := seedRequest(store, 1, 5000)
    ctx := context.Background()

    _, _, err := eng.CollectPayment(ctx, 1, req.ID, 5001, "card", "", 7)
    assert.ErrorIs(t, err, ErrOverpayment)

    // Exactly the remaining balance is the boundary and must succeed.
    got, _, err := eng.CollectPayment(ctx, 1, req.ID, 5000, "card", "", 7)
    require.NoError(t, err)
    assert.Equal(t, int64(5000), got.BilledAmountCents)

    // Anything further exceeds the now-zero balance.
    _, _, err = eng.CollectPayment(ctx, 1, req.ID, 1, "card", "", 7)
    assert.ErrorIs(t, err, ErrAlreadySettled)
}

func TestCollectPaymentNonPositiveAmount(t *testing.T) {
    store := newMemStore()
    eng := NewBillingEngine(store, &fakeApprovals{})
    req := seedRequest(store, 1, 5000)
    ctx := context.Background()

    _, _, err := eng.CollectPayment(ctx, 1, req.ID, 0, "card", "", 7)
    assert.ErrorIs(t, err, ErrOverpayment)
    _, _, err = eng.CollectPayment(ctx, 1, req.ID, -100, "card", "", 7)
    assert.ErrorIs(t, err, ErrOverpayment)
}

func TestCollectPaymentAfterTransferRejected(t *testing.T) {
    store := newMemStore()
    eng := NewBillingEngine(store, &fakeApprovals{})
    coord := NewTransferCoordinator(store)
    req := seedRequest(store, 1, 5000)
    ctx := context.Background()

    _, _, err := coord.TransferToFrontdesk(ctx, 1, req.ID, 7)
    require.NoError(t, err)

    _, _, err = eng.CollectPayment(ctx, 1, req.ID, 1000, "card", "", 7)
    assert.ErrorIs(t, err, ErrAlreadyTransferred)
}

func TestMarkComplimentaryFullWriteOff(t *testing.T) {
    store := newMemStore()
    approvals := &fakeApprovals{approver: 55}
    eng := NewBillingEngine(store, approvals)
    req := seedRequest(store, 1, 3000)
    ctx := context.Background()

    got, entry, noop, err := eng.MarkComplimentary(ctx, 1, req.ID, "VIP guest", "approve", 7)
    require.NoError(t, err)
    assert.False(t, noop)
    assert.True(t, got.Complimentary)
    assert.Equal(t, int64(3000), got.BilledAmountCents)
    assert.Equal(t, int64(0), got.RemainingBalanceCents())
    assert.True(t, IsSettled(got))

    require.NotNil(t, entry)
    assert.Equal(t, int64(3000), entry.AmountCents)
    assert.Equal(t, LedgerCategoryComplimentary, entry.Category)
    assert.Equal(t, "VIP guest", entry.Metadata["reason"])
    assert.Equal(t, "55", entry.Metadata["approved_by"])
    assert.Equal(t, int64(3000), approvals.lastAmount, "approval covers the remaining balance")
}

func TestMarkComplimentaryAfterPartialPaymentCreditsRemainder(t *testing.T) {
    store := newMemStore()
    approvals := &fakeApprovals{}
    eng := NewBillingEngine(store, approvals)
    req := seedRequest(store, 1, 6000)
    ctx := context.Background()

    _, _, err := eng.CollectPayment(ctx, 1, req.ID, 2000, "cash", "", 7)
    require.NoError(t, err)

    got, entry, noop, err := eng.MarkComplimentary(ctx, 1, req.ID, "spilled tray", "approve", 7)
    require.NoError(t, err)
    assert.False(t, noop)
    assert.Equal(t, int64(6000), got.BilledAmountCents)
    require.NotNil(t, entry)
    assert.Equal(t, int64(4000), entry.AmountCents, "only the remainder is written off")
    assert.Equal(t, int64(4000), approvals.lastAmount)
}

func TestMarkComplimentaryIdempotent(t *testing.T) {
    store := newMemStore()
    eng := NewBillingEngine(store, &fakeApprovals{})
    req := seedRequest(store, 1, 3000)
    ctx := context.Background()

    _, entry, noop, err := eng.MarkComplimentary(ctx, 1, req.ID, "VIP guest", "approve", 7)
    require.NoError(t, err)
    assert.False(t, noop)
    require.NotNil(t, entry)

    got, entry, noop, err := eng.MarkComplimentary(ctx, 1, req.ID, "VIP guest", "approve", 7)
    require.NoError(t, err)
    assert.True(t, noop, "repeat write-off is answered from existing state")
    assert.Nil(t, entry, "no second ledger credit")
    assert.True(t, got.Complimentary)
}

func TestMarkComplimentaryWithoutApproval(t *testing.T) {
    store := newMemStore()
    eng := NewBillingEngine(store, &fakeApprovals{})
    req := seedRequest(store, 1, 3000)
    ctx := context.Background()

    _, _, _, err := eng.MarkComplimentary(ctx, 1, req.ID, "VIP guest", "", 7)
    assert.ErrorIs(t, err, ErrApprovalRequired)

    cur, err := store.GetByID(ctx, 1, req.ID)
    require.NoError(t, err)
    assert.False(t, cur.Complimentary, "rejected write-off leaves state untouched")
    assert.Equal(t, int64(0), cur.BilledAmountCents)
}

func TestMarkComplimentaryAfterTransferRejected(t *testing.T) {
    store := newMemStore()
    eng := NewBillingEngine(store, &fakeApprovals{})
    coord := NewTransferCoordinator(store)
    req := seedRequest(store, 1, 3000)
    ctx := context.Background()

    _, _, err := coord.TransferToFrontdesk(ctx, 1, req.ID, 7)
    require.NoError(t, err)

    _, _, _, err = eng.MarkComplimentary(ctx, 1, req.ID, "VIP guest", "approve", 7)
    assert.ErrorIs(t, err, ErrAlreadyTransferred)
}

func TestIsSettled(t *testing.T) {
    cases := []struct {
        name string
        req  model.Request
        want bool
    }{
        {"unbilled", model.Request{BillingStatus: model.BillingUnbilled}, false},
        {"pending frontdesk", model.Request{BillingStatus: model.BillingPendingFrontdesk}, false},
        {"cancelled", model.Request{BillingStatus: model.BillingCancelled}, true},
        {"fully paid", model.Request{BillingStatus: model.BillingPaidDirect, ExpectedAmountCents: 100, BilledAmountCents: 100}, true},
        {"partially paid", model.Request{BillingStatus: model.BillingPaidDirect, ExpectedAmountCents: 100, BilledAmountCents: 40}, false},
        {"posted with balance", model.Request{BillingStatus: model.BillingPostedToFolio, ExpectedAmountCents: 100, BilledAmountCents: 40}, false},
        {"posted settled", model.Request{BillingStatus: model.BillingPostedToFolio, ExpectedAmountCents: 100, BilledAmountCents: 100}, true},
    }
    for _, c := range cases {
        t.Run(c.name, func(t *testing.T) {
            r := c.req
            assert.Equal(t, c.want, IsSettled(&r))
        })
    }
}
