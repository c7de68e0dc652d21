package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
	"github.com/ailearn-hub/learning-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENT LOG
// Durable audit trail of domain events. Subscribed to the bus as a global
// handler; a failed append is logged and dropped, it never blocks the
// operation that produced the event.
// ══════════════════════════════════════════════════════════════════════════════

// EventLog appends domain events to the event_log table.
type EventLog struct {
	conn *Connection
	log  *logger.Logger
}

// NewEventLog creates a new EventLog.
func NewEventLog(conn *Connection, log *logger.Logger) *EventLog {
	return &EventLog{
		conn: conn,
		log:  log.With(logger.Component("postgres.event_log")),
	}
}

// Append writes one event to the log.
func (l *EventLog) Append(ctx context.Context, event shared.Event) error {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
		INSERT INTO event_log (id, event_type, aggregate_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = l.conn.Exec(ctx, query,
		uuid.NewString(),
		string(event.EventType()),
		event.AggregateID(),
		payload,
		event.OccurredAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// Handler returns a bus handler that appends every event to the log.
func (l *EventLog) Handler() shared.EventHandler {
	return func(event shared.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.Append(ctx, event); err != nil {
			l.log.Warn("event log append failed",
				logger.String("event_type", string(event.EventType())),
				logger.Err(err),
			)
			return err
		}
		return nil
	}
}

// Recent returns the most recent events for an aggregate, newest first.
func (l *EventLog) Recent(ctx context.Context, aggregateID string, limit int) ([]shared.EventEnvelope, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, event_type, aggregate_id, payload, occurred_at
		FROM event_log
		WHERE aggregate_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := l.conn.Query(ctx, query, aggregateID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query event log: %w", err)
	}
	defer rows.Close()

	var events []shared.EventEnvelope
	for rows.Next() {
		var e shared.EventEnvelope
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.AggregateID, &payload, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}

	return events, rows.Err()
}
