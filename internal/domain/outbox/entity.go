package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Event is a domain event stored in the same transaction as the change it describes
// and relayed to the broker afterwards.
type Event struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   *time.Time
	CreatedAt     time.Time
}

// NewEvent marshals payload and addresses the event to the "<aggregate>.events" topic.
func NewEvent(aggregateType, aggregateID, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	return Event{
		ID:            id.String(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         aggregateType + ".events",
		Payload:       data,
		Status:        StatusPending,
	}, nil
}
