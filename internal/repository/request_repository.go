// Package repository implements the persistence layer over MySQL.  The
// mutating request operations are single guarded UPDATE statements: the
// precondition travels in the WHERE clause and is evaluated by the
// database at apply time, so two staff sessions can never lose an update
// between a read and a write.  When a guard fails the repository re-reads
// the row and maps the violation onto the lifecycle sentinels.
package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/hotel-guest-services/internal/lifecycle"
    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// RequestRepo provides persistence for guest service requests.  It
// implements lifecycle.Store.  All timestamps are stored in UTC.
type RequestRepo struct {
    db *sql.DB
}

// NewRequestRepo returns a RequestRepo bound to the given database.
func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

// DB exposes the underlying handle for consumers that need to open their
// own transactions.
func (r *RequestRepo) DB() *sql.DB { return r.db }

const requestColumns = `id, tenant_id, type, status, assigned_to, assigned_at,
       guest_id, booking_id, room_id, note,
       expected_amount_cents, billed_amount_cents, billing_status,
       transferred_to_frontdesk, billing_reference_code, billing_routed_to,
       complimentary, payment_method, payment_ref, paid_at, billing_processed_by,
       transferred_at, transferred_by, responded_at, completed_at,
       metadata, created_at, updated_at`

// Create inserts a new request and populates its generated ID and
// database defaults by querying the row back.
func (r *RequestRepo) Create(ctx context.Context, req *model.Request) error {
    meta, err := marshalMetadata(req.Metadata)
    if err != nil {
        return err
    }
    const q = `INSERT INTO guest_requests
        (tenant_id, type, status, guest_id, booking_id, room_id, note,
         expected_amount_cents, billed_amount_cents, billing_status, metadata)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        req.TenantID, req.Type, req.Status, req.GuestID, req.BookingID, req.RoomID,
        req.Note, req.ExpectedAmountCents, req.BillingStatus, meta)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    created, err := r.GetByID(ctx, req.TenantID, uint64(id))
    if err != nil {
        return err
    }
    *req = *created
    return nil
}

// GetByID returns the request scoped to the tenant.
func (r *RequestRepo) GetByID(ctx context.Context, tenantID, requestID uint64) (*model.Request, error) {
    const q = `SELECT ` + requestColumns + ` FROM guest_requests WHERE id = ? AND tenant_id = ?`
    req, err := scanRequest(r.db.QueryRowContext(ctx, q, requestID, tenantID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, lifecycle.ErrRequestNotFound
    }
    return req, err
}

// List returns the tenant's requests, newest first.  Filters are applied
// only when set.
func (r *RequestRepo) List(ctx context.Context, tenantID uint64, f lifecycle.ListFilter) ([]model.Request, error) {
    q := `SELECT ` + requestColumns + ` FROM guest_requests WHERE tenant_id = ?`
    args := []interface{}{tenantID}
    if f.Status != "" {
        q += ` AND status = ?`
        args = append(args, f.Status)
    }
    if f.BillingStatus != "" {
        q += ` AND billing_status = ?`
        args = append(args, f.BillingStatus)
    }
    if f.Type != "" {
        q += ` AND type = ?`
        args = append(args, f.Type)
    }
    if f.AssignedTo != 0 {
        q += ` AND assigned_to = ?`
        args = append(args, f.AssignedTo)
    }
    limit := f.Limit
    if limit <= 0 || limit > 200 {
        limit = 100
    }
    q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
    args = append(args, limit)

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Request, 0)
    for rows.Next() {
        req, err := scanRequest(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *req)
    }
    return out, rows.Err()
}

// Assign sets advisory ownership.  Assignment order in the SET list
// matters: MySQL applies assignments left to right and later ones see the
// new values, so responded_at and status are computed from the old status
// before it is overwritten.
func (r *RequestRepo) Assign(ctx context.Context, tenantID, requestID, staffID uint64, now time.Time) (*model.Request, error) {
    const q = `UPDATE guest_requests
        SET responded_at = IF(status = 'pending' AND responded_at IS NULL, ?, responded_at),
            status = IF(status = 'pending', 'in_progress', status),
            assigned_to = ?, assigned_at = ?
        WHERE id = ? AND tenant_id = ? AND status <> 'completed'`
    res, err := r.db.ExecContext(ctx, q, now, staffID, now, requestID, tenantID)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    cur, getErr := r.GetByID(ctx, tenantID, requestID)
    if getErr != nil {
        return nil, getErr
    }
    if n == 0 {
        // Either the request completed underneath us, or the row already
        // carried identical values (same staff re-assigned in the same
        // second) and MySQL reported no change.
        if cur.Status == model.StatusCompleted {
            return nil, lifecycle.ErrInvalidTransition
        }
        if cur.AssignedTo == nil || *cur.AssignedTo != staffID {
            return nil, lifecycle.ErrConcurrentModification
        }
    }
    return cur, nil
}

// AdvanceStatus performs the edge from -> to conditionally on the row
// still being in from.
func (r *RequestRepo) AdvanceStatus(ctx context.Context, tenantID, requestID uint64, from, to model.RequestStatus, now time.Time) (*model.Request, error) {
    q := `UPDATE guest_requests
        SET responded_at = IF(status = 'pending' AND responded_at IS NULL, ?, responded_at),
            status = ?`
    args := []interface{}{now, to}
    if to == model.StatusCompleted {
        q += `, completed_at = ?`
        args = append(args, now)
    }
    q += ` WHERE id = ? AND tenant_id = ? AND status = ?`
    args = append(args, requestID, tenantID, from)

    res, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        if _, getErr := r.GetByID(ctx, tenantID, requestID); getErr != nil {
            return nil, getErr
        }
        return nil, lifecycle.ErrConcurrentModification
    }
    return r.GetByID(ctx, tenantID, requestID)
}

// ApplyPayment increments the billed accumulator in a single guarded
// statement.  The cap check (billed + applied <= expected) rides in the
// WHERE clause, so an interleaving collection can shrink the remaining
// balance but never push it negative.
func (r *RequestRepo) ApplyPayment(ctx context.Context, p lifecycle.PaymentParams) (*model.Request, error) {
    const q = `UPDATE guest_requests
        SET billed_amount_cents = billed_amount_cents + ?,
            billing_status = 'paid_direct',
            payment_method = ?, payment_ref = NULLIF(?, ''),
            paid_at = ?, billing_processed_by = ?
        WHERE id = ? AND tenant_id = ?
          AND transferred_to_frontdesk = 0
          AND billing_status NOT IN ('cancelled', 'posted_to_folio')
          AND billed_amount_cents + ? <= expected_amount_cents`
    res, err := r.db.ExecContext(ctx, q,
        p.AmountCents, p.Method, p.PaymentRef, p.Now, p.ActorID,
        p.RequestID, p.TenantID, p.AmountCents)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        cur, getErr := r.GetByID(ctx, p.TenantID, p.RequestID)
        if getErr != nil {
            return nil, getErr
        }
        switch {
        case cur.TransferredToFrontdesk:
            return nil, lifecycle.ErrAlreadyTransferred
        case cur.BillingStatus.Terminal():
            return nil, lifecycle.ErrAlreadySettled
        case cur.RemainingBalanceCents() == 0:
            return nil, lifecycle.ErrAlreadySettled
        case p.AmountCents > cur.RemainingBalanceCents():
            return nil, lifecycle.ErrOverpayment
        }
        return nil, lifecycle.ErrConcurrentModification
    }
    return r.GetByID(ctx, p.TenantID, p.RequestID)
}

// SettleComplimentary is a compare-and-set on the complimentary flag and
// the billed amount observed by the engine.  The reason and approver land
// in the metadata bag inside the same statement.
func (r *RequestRepo) SettleComplimentary(ctx context.Context, p lifecycle.ComplimentaryParams) (*model.Request, error) {
    const q = `UPDATE guest_requests
        SET billed_amount_cents = expected_amount_cents,
            billing_status = 'paid_direct',
            complimentary = 1,
            paid_at = ?, billing_processed_by = ?,
            metadata = JSON_SET(COALESCE(metadata, '{}'),
                '$.comp_reason', ?,
                '$.comp_approved_by', CAST(? AS CHAR))
        WHERE id = ? AND tenant_id = ?
          AND complimentary = 0
          AND transferred_to_frontdesk = 0
          AND billing_status NOT IN ('cancelled', 'posted_to_folio')
          AND billed_amount_cents = ?`
    res, err := r.db.ExecContext(ctx, q,
        p.Now, p.ActorID, p.Reason, p.ApproverID,
        p.RequestID, p.TenantID, p.ObservedBilledCents)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        cur, getErr := r.GetByID(ctx, p.TenantID, p.RequestID)
        if getErr != nil {
            return nil, getErr
        }
        switch {
        case cur.Complimentary:
            return cur, lifecycle.ErrAlreadySettled
        case cur.TransferredToFrontdesk:
            return nil, lifecycle.ErrAlreadyTransferred
        case cur.BillingStatus.Terminal():
            return nil, lifecycle.ErrAlreadySettled
        }
        return nil, lifecycle.ErrConcurrentModification
    }
    return r.GetByID(ctx, p.TenantID, p.RequestID)
}

// Transfer flips transferred_to_frontdesk under a compare-and-set so
// exactly one reference code is ever recorded for a request.
func (r *RequestRepo) Transfer(ctx context.Context, p lifecycle.TransferParams) (*model.Request, error) {
    const q = `UPDATE guest_requests
        SET transferred_to_frontdesk = 1,
            billing_status = 'pending_frontdesk',
            billing_reference_code = ?, billing_routed_to = 'frontdesk',
            transferred_at = ?, transferred_by = ?
        WHERE id = ? AND tenant_id = ?
          AND transferred_to_frontdesk = 0
          AND billing_status NOT IN ('cancelled', 'posted_to_folio')`
    res, err := r.db.ExecContext(ctx, q, p.Code, p.Now, p.ActorID, p.RequestID, p.TenantID)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        cur, getErr := r.GetByID(ctx, p.TenantID, p.RequestID)
        if getErr != nil {
            return nil, getErr
        }
        if cur.TransferredToFrontdesk {
            return cur, lifecycle.ErrAlreadyTransferred
        }
        if cur.BillingStatus.Terminal() {
            return nil, lifecycle.ErrAlreadySettled
        }
        return nil, lifecycle.ErrConcurrentModification
    }
    return r.GetByID(ctx, p.TenantID, p.RequestID)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*model.Request, error) {
    var (
        req            model.Request
        assignedTo     sql.NullInt64
        assignedAt     sql.NullTime
        guestID        sql.NullInt64
        bookingID      sql.NullInt64
        roomID         sql.NullInt64
        note           sql.NullString
        refCode        sql.NullString
        routedTo       sql.NullString
        payMethod      sql.NullString
        payRef         sql.NullString
        paidAt         sql.NullTime
        processedBy    sql.NullInt64
        transferredAt  sql.NullTime
        transferredBy  sql.NullInt64
        respondedAt    sql.NullTime
        completedAt    sql.NullTime
        metaRaw        sql.NullString
    )
    err := row.Scan(
        &req.ID, &req.TenantID, &req.Type, &req.Status, &assignedTo, &assignedAt,
        &guestID, &bookingID, &roomID, &note,
        &req.ExpectedAmountCents, &req.BilledAmountCents, &req.BillingStatus,
        &req.TransferredToFrontdesk, &refCode, &routedTo,
        &req.Complimentary, &payMethod, &payRef, &paidAt, &processedBy,
        &transferredAt, &transferredBy, &respondedAt, &completedAt,
        &metaRaw, &req.CreatedAt, &req.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    req.AssignedTo = nullUint64(assignedTo)
    req.AssignedAt = nullTime(assignedAt)
    req.GuestID = nullUint64(guestID)
    req.BookingID = nullUint64(bookingID)
    req.RoomID = nullUint64(roomID)
    if note.Valid {
        req.Note = note.String
    }
    req.BillingReferenceCode = nullString(refCode)
    req.BillingRoutedTo = nullString(routedTo)
    req.PaymentMethod = nullString(payMethod)
    req.PaymentRef = nullString(payRef)
    req.PaidAt = nullTime(paidAt)
    req.BillingProcessedBy = nullUint64(processedBy)
    req.TransferredAt = nullTime(transferredAt)
    req.TransferredBy = nullUint64(transferredBy)
    req.RespondedAt = nullTime(respondedAt)
    req.CompletedAt = nullTime(completedAt)
    if metaRaw.Valid && strings.TrimSpace(metaRaw.String) != "" {
        if err := json.Unmarshal([]byte(metaRaw.String), &req.Metadata); err != nil {
            return nil, err
        }
    }
    return &req, nil
}

func marshalMetadata(m map[string]string) (interface{}, error) {
    if len(m) == 0 {
        return nil, nil
    }
    b, err := json.Marshal(m)
    if err != nil {
        return nil, err
    }
    return string(b), nil
}

func nullUint64(v sql.NullInt64) *uint64 {
    if !v.Valid {
        return nil
    }
    u := uint64(v.Int64)
    return &u
}

func nullString(v sql.NullString) *string {
    if !v.Valid {
        return nil
    }
    s := v.String
    return &s
}

func nullTime(v sql.NullTime) *time.Time {
    if !v.Valid {
        return nil
    }
    t := v.Time.UTC()
    return &t
}
