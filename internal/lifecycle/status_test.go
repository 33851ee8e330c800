package lifecycle

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-guest-services/internal/model"
)

func TestCanTransition(t *testing.T) {
    cases := []struct {
        from, to model.RequestStatus
        want     bool
    }{
        {model.StatusPending, model.StatusInProgress, true},
        {model.StatusInProgress, model.StatusCompleted, true},
        {model.StatusPending, model.StatusCompleted, false},
        {model.StatusInProgress, model.StatusPending, false},
        {model.StatusCompleted, model.StatusInProgress, false},
        {model.StatusCompleted, model.StatusPending, false},
        {model.StatusPending, model.StatusPending, false},
    }
    for _, c := range cases {
        assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
    }
}

func TestAdvanceHappyPath(t *testing.T) {
    store := newMemStore()
    eng := NewStatusEngine(store)
    req := seedRequest(store, 1, 0)
    ctx := context.Background()

    got, err := eng.Advance(ctx, 1, req.ID, model.StatusInProgress, 7)
    require.NoError(t, err)
    assert.Equal(t, model.StatusInProgress, got.Status)
    require.NotNil(t, got.RespondedAt, "first departure from pending stamps responded_at")
    firstResponded := *got.RespondedAt

    got, err = eng.Advance(ctx, 1, req.ID, model.StatusCompleted, 7)
    require.NoError(t, err)
    assert.Equal(t, model.StatusCompleted, got.Status)
    require.NotNil(t, got.CompletedAt)
    require.NotNil(t, got.RespondedAt)
    assert.Equal(t, firstResponded, *got.RespondedAt, "responded_at is stamped exactly once")
}

func TestAdvanceSkippingInProgressRejected(t *testing.T) {
    store := newMemStore()
    eng := NewStatusEngine(store)
    req := seedRequest(store, 1, 0)

    _, err := eng.Advance(context.Background(), 1, req.ID, model.StatusCompleted, 7)
    assert.ErrorIs(t, err, ErrInvalidTransition)

    cur, err := store.GetByID(context.Background(), 1, req.ID)
    require.NoError(t, err)
    assert.Equal(t, model.StatusPending, cur.Status, "rejected transition leaves state untouched")
}

func TestAdvanceFromCompletedRejected(t *testing.T) {
    store := newMemStore()
    eng := NewStatusEngine(store)
    req := seedRequest(store, 1, 0)
    ctx := context.Background()

    _, err := eng.Advance(ctx, 1, req.ID, model.StatusInProgress, 7)
    require.NoError(t, err)
    _, err = eng.Advance(ctx, 1, req.ID, model.StatusCompleted, 7)
    require.NoError(t, err)

    _, err = eng.Advance(ctx, 1, req.ID, model.StatusInProgress, 7)
    assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdvanceUnknownStatusRejected(t *testing.T) {
    store := newMemStore()
    eng := NewStatusEngine(store)
    req := seedRequest(store, 1, 0)

    _, err := eng.Advance(context.Background(), 1, req.ID, model.RequestStatus("archived"), 7)
    assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdvanceWrongTenant(t *testing.T) {
    store := newMemStore()
    eng := NewStatusEngine(store)
    req := seedRequest(store, 1, 0)

    _, err := eng.Advance(context.Background(), 2, req.ID, model.StatusInProgress, 7)
    assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestAssignStartsPendingRequest(t *testing.T) {
    store := newMemStore()
    eng := NewStatusEngine(store)
    req := seedRequest(store, 1, 0)

    got, noop, err := eng.Assign(context.Background(), 1, req.ID, 42, 42)
    require.NoError(t, err)
    assert.False(t, noop)
    assert.Equal(t, model.StatusInProgress, got.Status)
    require.NotNil(t, got.AssignedTo)
    assert.Equal(t, uint64(42), *got.AssignedTo)
    assert.NotNil(t, got.RespondedAt)
}

func TestAssignSameStaffIsNoop(t *testing.T) {
    store := newMemStore()
    eng := NewStatusEngine(store)
    req := seedRequest(store, 1, 0)
    ctx := context.Background()

    _, _, err := eng.Assign(ctx, 1, req.ID, 42, 42)
    require.NoError(t, err)

    got, noop, err := eng.Assign(ctx, 1, req.ID, 42, 42)
    require.NoError(t, err)
    assert.True(t, noop)
    require.NotNil(t, got.AssignedTo)
    assert.Equal(t, uint64(42), *got.AssignedTo)
}

func TestReassignKeepsRespondedAt(t *testing.T) {
    store := newMemStore()
    eng := NewStatusEngine(store)
    req := seedRequest(store, 1, 0)
    ctx := context.Background()

    first, _, err := eng.Assign(ctx, 1, req.ID, 42, 42)
    require.NoError(t, err)
    require.NotNil(t, first.RespondedAt)

    second, noop, err := eng.Assign(ctx, 1, req.ID, 43, 43)
    require.NoError(t, err)
    assert.False(t, noop)
    require.NotNil(t, second.AssignedTo)
    assert.Equal(t, uint64(43), *second.AssignedTo)
    require.NotNil(t, second.RespondedAt)
    assert.Equal(t, *first.RespondedAt, *second.RespondedAt)
    assert.Equal(t, model.StatusInProgress, second.Status, "reassignment does not touch status")
}

func TestAssignCompletedRejected(t *testing.T) {
    store := newMemStore()
    eng := NewStatusEngine(store)
    req := seedRequest(store, 1, 0)
    ctx := context.Background()

    _, err := eng.Advance(ctx, 1, req.ID, model.StatusInProgress, 7)
    require.NoError(t, err)
    _, err = eng.Advance(ctx, 1, req.ID, model.StatusCompleted, 7)
    require.NoError(t, err)

    _, _, err = eng.Assign(ctx, 1, req.ID, 42, 42)
    assert.ErrorIs(t, err, ErrInvalidTransition)
}
