package lifecycle

import (
    "context"
    "sync"
    "time"

    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// memStore is an in-memory Store used by the engine tests.  It enforces
// the same guards the MySQL repository evaluates in its WHERE clauses,
// under one mutex, so concurrency tests exercise real contention.
type memStore struct {
    mu     sync.Mutex
    nextID uint64
    rows   map[uint64]*model.Request
}

func newMemStore() *memStore {
    return &memStore{rows: make(map[uint64]*model.Request)}
}

func (s *memStore) Create(ctx context.Context, req *model.Request) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextID++
    req.ID = s.nextID
    now := time.Now().UTC()
    req.CreatedAt = now
    req.UpdatedAt = now
    s.rows[req.ID] = req.Clone()
    return nil
}

func (s *memStore) get(tenantID, requestID uint64) (*model.Request, error) {
    row, ok := s.rows[requestID]
    if !ok || row.TenantID != tenantID {
        return nil, ErrRequestNotFound
    }
    return row, nil
}

func (s *memStore) GetByID(ctx context.Context, tenantID, requestID uint64) (*model.Request, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, err := s.get(tenantID, requestID)
    if err != nil {
        return nil, err
    }
    return row.Clone(), nil
}

func (s *memStore) List(ctx context.Context, tenantID uint64, f ListFilter) ([]model.Request, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]model.Request, 0)
    for id := s.nextID; id > 0; id-- {
        row, ok := s.rows[id]
        if !ok || row.TenantID != tenantID {
            continue
        }
        if f.Status != "" && row.Status != f.Status {
            continue
        }
        if f.BillingStatus != "" && row.BillingStatus != f.BillingStatus {
            continue
        }
        if f.Type != "" && row.Type != f.Type {
            continue
        }
        if f.AssignedTo != 0 && (row.AssignedTo == nil || *row.AssignedTo != f.AssignedTo) {
            continue
        }
        out = append(out, *row.Clone())
        if f.Limit > 0 && len(out) == f.Limit {
            break
        }
    }
    return out, nil
}

func (s *memStore) Assign(ctx context.Context, tenantID, requestID, staffID uint64, now time.Time) (*model.Request, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, err := s.get(tenantID, requestID)
    if err != nil {
        return nil, err
    }
    if row.Status == model.StatusCompleted {
        return nil, ErrInvalidTransition
    }
    if row.Status == model.StatusPending {
        if row.RespondedAt == nil {
            t := now
            row.RespondedAt = &t
        }
        row.Status = model.StatusInProgress
    }
    row.AssignedTo = &staffID
    row.AssignedAt = &now
    row.UpdatedAt = now
    return row.Clone(), nil
}

func (s *memStore) AdvanceStatus(ctx context.Context, tenantID, requestID uint64, from, to model.RequestStatus, now time.Time) (*model.Request, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, err := s.get(tenantID, requestID)
    if err != nil {
        return nil, err
    }
    if row.Status != from {
        return nil, ErrConcurrentModification
    }
    if row.Status == model.StatusPending && row.RespondedAt == nil {
        t := now
        row.RespondedAt = &t
    }
    row.Status = to
    if to == model.StatusCompleted {
        t := now
        row.CompletedAt = &t
    }
    row.UpdatedAt = now
    return row.Clone(), nil
}

func (s *memStore) ApplyPayment(ctx context.Context, p PaymentParams) (*model.Request, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, err := s.get(p.TenantID, p.RequestID)
    if err != nil {
        return nil, err
    }
    switch {
    case row.TransferredToFrontdesk:
        return nil, ErrAlreadyTransferred
    case row.BillingStatus.Terminal():
        return nil, ErrAlreadySettled
    case row.RemainingBalanceCents() == 0:
        return nil, ErrAlreadySettled
    case row.BilledAmountCents+p.AmountCents > row.ExpectedAmountCents:
        return nil, ErrOverpayment
    }
    row.BilledAmountCents += p.AmountCents
    row.BillingStatus = model.BillingPaidDirect
    method := p.Method
    row.PaymentMethod = &method
    if p.PaymentRef != "" {
        ref := p.PaymentRef
        row.PaymentRef = &ref
    }
    t := p.Now
    row.PaidAt = &t
    actor := p.ActorID
    row.BillingProcessedBy = &actor
    row.UpdatedAt = p.Now
    return row.Clone(), nil
}

func (s *memStore) SettleComplimentary(ctx context.Context, p ComplimentaryParams) (*model.Request, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, err := s.get(p.TenantID, p.RequestID)
    if err != nil {
        return nil, err
    }
    switch {
    case row.Complimentary:
        return row.Clone(), ErrAlreadySettled
    case row.TransferredToFrontdesk:
        return nil, ErrAlreadyTransferred
    case row.BillingStatus.Terminal():
        return nil, ErrAlreadySettled
    case row.BilledAmountCents != p.ObservedBilledCents:
        return nil, ErrConcurrentModification
    }
    row.BilledAmountCents = row.ExpectedAmountCents
    row.BillingStatus = model.BillingPaidDirect
    row.Complimentary = true
    t := p.Now
    row.PaidAt = &t
    actor := p.ActorID
    row.BillingProcessedBy = &actor
    if row.Metadata == nil {
        row.Metadata = make(map[string]string)
    }
    row.Metadata["comp_reason"] = p.Reason
    row.UpdatedAt = p.Now
    return row.Clone(), nil
}

func (s *memStore) Transfer(ctx context.Context, p TransferParams) (*model.Request, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, err := s.get(p.TenantID, p.RequestID)
    if err != nil {
        return nil, err
    }
    if row.TransferredToFrontdesk {
        return row.Clone(), ErrAlreadyTransferred
    }
    if row.BillingStatus.Terminal() {
        return nil, ErrAlreadySettled
    }
    row.TransferredToFrontdesk = true
    row.BillingStatus = model.BillingPendingFrontdesk
    code := p.Code
    row.BillingReferenceCode = &code
    routed := "frontdesk"
    row.BillingRoutedTo = &routed
    t := p.Now
    row.TransferredAt = &t
    actor := p.ActorID
    row.TransferredBy = &actor
    row.UpdatedAt = p.Now
    return row.Clone(), nil
}

// seedRequest inserts a fresh pending request and returns it.
func seedRequest(s *memStore, tenantID uint64, expectedCents int64) *model.Request {
    req := &model.Request{
        TenantID:            tenantID,
        Type:                "room_service",
        Status:              model.StatusPending,
        BillingStatus:       model.BillingUnbilled,
        ExpectedAmountCents: expectedCents,
    }
    _ = s.Create(context.Background(), req)
    return req
}

// fakeApprovals approves any request whose token equals "approve" and
// records the amount it was asked to cover.
type fakeApprovals struct {
    mu         sync.Mutex
    lastAmount int64
    approver   uint64
}

func (f *fakeApprovals) ValidateApprovalToken(ctx context.Context, token, action string, amountCents int64) (uint64, error) {
    f.mu.Lock()
    f.lastAmount = amountCents
    f.mu.Unlock()
    if token != "approve" || action != "complimentary" {
        return 0, ErrApprovalRequired
    }
    if f.approver == 0 {
        return 99, nil
    }
    return f.approver, nil
}
