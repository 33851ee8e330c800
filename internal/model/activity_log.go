package model

import "time"

// ActivityLog is a single entry in the structured audit trail of who did
// what to a request.  Entries are written best-effort through the message
// broker and persisted by the background consumer; they never block the
// primary lifecycle transition.
type ActivityLog struct {
    ID        uint64            `json:"id"`
    TenantID  uint64            `json:"tenant_id"`
    RequestID uint64            `json:"request_id"`
    StaffID   uint64            `json:"staff_id"`
    Action    string            `json:"action"`
    Metadata  map[string]string `json:"metadata,omitempty"`
    LoggedAt  time.Time         `json:"logged_at"`
}
