package memtest

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/outbox"
)

type outboxRepository struct {
	store *Store
}

func (r *outboxRepository) Create(ctx context.Context, event outbox.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event.CreatedAt = r.store.now()
	r.store.events = append(r.store.events, event)
	return nil
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]outbox.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now()
	events := make([]outbox.Event, 0, limit)
	for _, e := range r.store.events {
		if e.Status == outbox.StatusSent {
			continue
		}
		if e.NextRetryAt != nil && e.NextRetryAt.After(now) {
			continue
		}
		events = append(events, e)
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.update(id, func(e *outbox.Event, now time.Time) {
		e.Status = outbox.StatusSent
		e.NextRetryAt = nil
	})
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.update(id, func(e *outbox.Event, now time.Time) {
		e.RetryCount++
		backoff := time.Duration(min(e.RetryCount, 10)) * 15 * time.Second
		next := now.Add(backoff)
		e.Status = outbox.StatusFailed
		e.NextRetryAt = &next
	})
}

func (r *outboxRepository) update(id string, fn func(e *outbox.Event, now time.Time)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.events {
		if r.store.events[i].ID == id {
			fn(&r.store.events[i], r.store.now())
			return nil
		}
	}
	return nil
}
