// Package queue_publisher publishes domain events to RabbitMQ and adapts
// the broker behind the lifecycle collaborator interfaces.  Errors are
// logged and returned so callers can attach them as warnings without
// interrupting the main request flow.
package queue_publisher

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/hotel-guest-services/internal/lifecycle"
    q "github.com/iliyamo/hotel-guest-services/internal/queue"
)

// PublishLedgerEntry publishes a LedgerEntryEvent to the ledger.entries
// queue.  Messages are marked persistent so recorded charges survive a
// broker restart; any error is logged and returned for the caller to
// treat as a soft warning.
func PublishLedgerEntry(ctx context.Context, event q.LedgerEntryEvent) error {
    return publish(ctx, q.LedgerQueueName, event)
}

// PublishActivity publishes an ActivityEvent to the request.activity queue.
func PublishActivity(ctx context.Context, event q.ActivityEvent) error {
    return publish(ctx, q.ActivityQueueName, event)
}

func publish(ctx context.Context, queueName string, event interface{}) error {
    conn, err := amqp.Dial(q.BrokerURL())
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queueName, // name
        true,      // durable
        false,     // autoDelete
        false,     // exclusive
        false,     // noWait
        nil,       // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",        // default exchange
        queueName, // routing key = queue name
        false,     // mandatory
        false,     // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }

    return nil
}

// LedgerRecorder implements lifecycle.LedgerRecorder over the broker: the
// primary transaction commits first, the credit is dispatched afterwards
// and delivered by the ledger consumer with the broker's own retry
// guarantees.
type LedgerRecorder struct{}

// NewLedgerRecorder returns a broker-backed ledger recorder.
func NewLedgerRecorder() *LedgerRecorder { return &LedgerRecorder{} }

// RecordEntry publishes the ledger intent.  Failure means the entry must
// be reconciled out-of-band, which is why the facade logs the full entry
// before surfacing a warning.
func (lr *LedgerRecorder) RecordEntry(ctx context.Context, entry lifecycle.LedgerEntry) error {
    return PublishLedgerEntry(ctx, q.LedgerEntryEvent{
        EntryID:       entry.EntryID,
        TenantID:      entry.TenantID,
        Type:          entry.Type,
        AmountCents:   entry.AmountCents,
        ReferenceType: entry.ReferenceType,
        ReferenceID:   entry.ReferenceID,
        Category:      entry.Category,
        Metadata:      entry.Metadata,
        RecordedAt:    time.Now().UTC().Format(time.RFC3339),
    })
}

// ActivityLogger implements lifecycle.ActivityLogger over the broker.
type ActivityLogger struct{}

// NewActivityLogger returns a broker-backed activity logger.
func NewActivityLogger() *ActivityLogger { return &ActivityLogger{} }

// LogAction publishes the audit entry for the activity consumer.
func (al *ActivityLogger) LogAction(ctx context.Context, tenantID, requestID, staffID uint64, action string, metadata map[string]string) error {
    return PublishActivity(ctx, q.ActivityEvent{
        TenantID:  tenantID,
        RequestID: requestID,
        StaffID:   staffID,
        Action:    action,
        Metadata:  metadata,
        LoggedAt:  time.Now().UTC().Format(time.RFC3339),
    })
}
