package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "strings"
    "time"

    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// ActivityLogRepo persists the audit trail consumed from the message
// broker.  Entries are append-only; there is no update or delete path.
type ActivityLogRepo struct {
    db *sql.DB
}

// NewActivityLogRepo returns an ActivityLogRepo bound to the given database.
func NewActivityLogRepo(db *sql.DB) *ActivityLogRepo { return &ActivityLogRepo{db: db} }

// Create appends one audit entry and returns its generated id.
func (r *ActivityLogRepo) Create(ctx context.Context, entry *model.ActivityLog) (uint64, error) {
    meta, err := marshalMetadata(entry.Metadata)
    if err != nil {
        return 0, err
    }
    loggedAt := entry.LoggedAt
    if loggedAt.IsZero() {
        loggedAt = time.Now().UTC()
    }
    const q = `INSERT INTO activity_logs (tenant_id, request_id, staff_id, action, metadata, logged_at)
               VALUES (?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        entry.TenantID, entry.RequestID, entry.StaffID, entry.Action, meta, loggedAt)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ListByRequest returns the audit trail of a request, newest first.
func (r *ActivityLogRepo) ListByRequest(ctx context.Context, tenantID, requestID uint64, limit int) ([]model.ActivityLog, error) {
    if limit <= 0 || limit > 500 {
        limit = 100
    }
    const q = `SELECT id, tenant_id, request_id, staff_id, action, metadata, logged_at
               FROM activity_logs
               WHERE tenant_id = ? AND request_id = ?
               ORDER BY logged_at DESC, id DESC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, tenantID, requestID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ActivityLog, 0)
    for rows.Next() {
        var entry model.ActivityLog
        var metaRaw sql.NullString
        if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.RequestID,
            &entry.StaffID, &entry.Action, &metaRaw, &entry.LoggedAt); err != nil {
            return nil, err
        }
        if metaRaw.Valid && strings.TrimSpace(metaRaw.String) != "" {
            if err := json.Unmarshal([]byte(metaRaw.String), &entry.Metadata); err != nil {
                return nil, err
            }
        }
        entry.LoggedAt = entry.LoggedAt.UTC()
        out = append(out, entry)
    }
    return out, rows.Err()
}
