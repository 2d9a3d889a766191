package outbox

import "context"

type OutboxRepository interface {
	// Create must run inside the transaction of the state change it records.
	Create(ctx context.Context, event Event) error
	// ListPending returns pending events and failed events whose retry time has passed, oldest first.
	ListPending(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// Record builds and stores an event. A nil repo disables event recording.
func Record(ctx context.Context, repo OutboxRepository, aggregateType, aggregateID, eventType string, payload any) error {
	if repo == nil {
		return nil
	}
	event, err := NewEvent(aggregateType, aggregateID, eventType, payload)
	if err != nil {
		return err
	}
	return repo.Create(ctx, event)
}

// Publisher delivers a stored event to the broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
