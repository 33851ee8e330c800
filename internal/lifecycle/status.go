package lifecycle

import (
    "context"
    "time"

    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// statusEdges is the single authority over legal work-status transitions.
// Every call site goes through CanTransition instead of comparing status
// strings locally.
var statusEdges = map[model.RequestStatus]map[model.RequestStatus]bool{
    model.StatusPending:    {model.StatusInProgress: true},
    model.StatusInProgress: {model.StatusCompleted: true},
    model.StatusCompleted:  {},
}

// CanTransition reports whether the work status may move from -> to.
func CanTransition(from, to model.RequestStatus) bool {
    return statusEdges[from][to]
}

// StatusEngine governs the work-status field and staff assignment.  It
// validates edges against the transition table before any write and
// delegates the mutation itself to the store's conditional updates, so an
// invalid edge never causes a partial state change.
type StatusEngine struct {
    store Store
}

// NewStatusEngine returns a StatusEngine bound to the given store.
func NewStatusEngine(store Store) *StatusEngine {
    return &StatusEngine{store: store}
}

// Advance moves the request to target.  It loads the authoritative row,
// checks the edge, and performs a conditional write keyed on the observed
// status.  Requesting an illegal edge (including skipping in_progress)
// fails with ErrInvalidTransition; losing the conditional write to a
// concurrent session fails with ErrConcurrentModification.
func (e *StatusEngine) Advance(ctx context.Context, tenantID, requestID uint64, target model.RequestStatus, actorID uint64) (*model.Request, error) {
    if !target.Valid() {
        return nil, ErrInvalidTransition
    }
    cur, err := e.store.GetByID(ctx, tenantID, requestID)
    if err != nil {
        return nil, err
    }
    if !CanTransition(cur.Status, target) {
        return nil, ErrInvalidTransition
    }
    return e.store.AdvanceStatus(ctx, tenantID, requestID, cur.Status, target, time.Now().UTC())
}

// Assign records advisory staff ownership of the request.  Assigning a
// pending request also starts it (pending -> in_progress) and stamps
// responded_at exactly once.  Reassigning the same staff member is a
// no-op; the current state is returned unchanged with noop=true.
// Assignment is last-write-wins between racing staff, never a lock.
func (e *StatusEngine) Assign(ctx context.Context, tenantID, requestID, staffID, actorID uint64) (req *model.Request, noop bool, err error) {
    cur, err := e.store.GetByID(ctx, tenantID, requestID)
    if err != nil {
        return nil, false, err
    }
    if cur.AssignedTo != nil && *cur.AssignedTo == staffID {
        return cur, true, nil
    }
    if cur.Status == model.StatusCompleted {
        return nil, false, ErrInvalidTransition
    }
    updated, err := e.store.Assign(ctx, tenantID, requestID, staffID, time.Now().UTC())
    if err != nil {
        return nil, false, err
    }
    return updated, false, nil
}
