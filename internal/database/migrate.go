package database

import (
    "context"
    "database/sql"
    "fmt"
)

// Migrate brings the schema up to date.  Statements are idempotent
// CREATE TABLE IF NOT EXISTS, executed in order on every startup, so no
// separate migration tooling is needed for this service.
func Migrate(ctx context.Context, db *sql.DB) error {
    stmts := []string{
        `CREATE TABLE IF NOT EXISTS guest_requests (
            id                       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            tenant_id                BIGINT UNSIGNED NOT NULL,
            type                     VARCHAR(64)     NOT NULL,
            status                   VARCHAR(32)     NOT NULL DEFAULT 'pending',
            assigned_to              BIGINT UNSIGNED NULL,
            assigned_at              DATETIME        NULL,
            guest_id                 BIGINT UNSIGNED NULL,
            booking_id               BIGINT UNSIGNED NULL,
            room_id                  BIGINT UNSIGNED NULL,
            note                     TEXT            NULL,
            expected_amount_cents    BIGINT          NOT NULL DEFAULT 0,
            billed_amount_cents      BIGINT          NOT NULL DEFAULT 0,
            billing_status           VARCHAR(32)     NOT NULL DEFAULT 'unbilled',
            transferred_to_frontdesk TINYINT(1)      NOT NULL DEFAULT 0,
            billing_reference_code   VARCHAR(32)     NULL,
            billing_routed_to        VARCHAR(32)     NULL,
            complimentary            TINYINT(1)      NOT NULL DEFAULT 0,
            payment_method           VARCHAR(32)     NULL,
            payment_ref              VARCHAR(128)    NULL,
            paid_at                  DATETIME        NULL,
            billing_processed_by     BIGINT UNSIGNED NULL,
            transferred_at           DATETIME        NULL,
            transferred_by           BIGINT UNSIGNED NULL,
            responded_at             DATETIME        NULL,
            completed_at             DATETIME        NULL,
            metadata                 JSON            NULL,
            created_at               DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at               DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
            PRIMARY KEY (id),
            KEY idx_requests_tenant_status (tenant_id, status),
            KEY idx_requests_tenant_billing (tenant_id, billing_status),
            KEY idx_requests_assigned (tenant_id, assigned_to)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

        `CREATE TABLE IF NOT EXISTS activity_logs (
            id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            tenant_id  BIGINT UNSIGNED NOT NULL,
            request_id BIGINT UNSIGNED NOT NULL,
            staff_id   BIGINT UNSIGNED NULL,
            action     VARCHAR(64)     NOT NULL,
            metadata   JSON            NULL,
            logged_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (id),
            KEY idx_activity_request (tenant_id, request_id, logged_at)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    }
    for i, s := range stmts {
        if _, err := db.ExecContext(ctx, s); err != nil {
            return fmt.Errorf("migration %d failed: %w", i+1, err)
        }
    }
    return nil
}
