package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
)

type outboxRepositoryImpl struct {
	db *database.DB
}

// Create implements outbox.OutboxRepository.
func (r *outboxRepositoryImpl) Create(ctx context.Context, event outbox.Event) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, topic, payload, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := q.Exec(ctx, query,
		event.ID, event.AggregateType, event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
	); err != nil {
		return fmt.Errorf("insert outbox event %s: %w", event.EventType, err)
	}
	return nil
}

// ListPending implements outbox.OutboxRepository.
// SKIP LOCKED lets several relays share the table without publishing a row twice in the same poll.
func (r *outboxRepositoryImpl) ListPending(ctx context.Context, limit int) ([]outbox.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id::text, aggregate_type, aggregate_id, event_type, topic, payload,
		       status, retry_count, next_retry_at, created_at
		FROM outbox_events
		WHERE status IN ($1, $2)
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED`

	rows, err := q.Query(ctx, query, outbox.StatusPending, outbox.StatusFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox events: %w", err)
	}
	defer rows.Close()

	events := make([]outbox.Event, 0, limit)
	for rows.Next() {
		var e outbox.Event
		if err := rows.Scan(
			&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Topic, &e.Payload,
			&e.Status, &e.RetryCount, &e.NextRetryAt, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// MarkSent implements outbox.OutboxRepository.
func (r *outboxRepositoryImpl) MarkSent(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE outbox_events
		SET status = $2, processed_at = NOW(), error_message = NULL, updated_at = NOW()
		WHERE id = $1`

	_, err := q.Exec(ctx, query, id, outbox.StatusSent)
	return err
}

// MarkFailed implements outbox.OutboxRepository.
func (r *outboxRepositoryImpl) MarkFailed(ctx context.Context, id string, reason string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE outbox_events
		SET status = $2,
		    retry_count = retry_count + 1,
		    error_message = LEFT($3, 500),
		    next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds'),
		    updated_at = NOW()
		WHERE id = $1`

	_, err := q.Exec(ctx, query, id, outbox.StatusFailed, reason)
	return err
}

func NewOutboxRepository(db *database.DB) outbox.OutboxRepository {
	return &outboxRepositoryImpl{db: db}
}
