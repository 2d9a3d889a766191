// Package kafka publishes outbox events with segmentio/kafka-go.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/outbox"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Publisher struct {
	writer      messageWriter
	topicPrefix string
}

// NewWriter builds a writer that takes the topic from each message and keys
// partitions by aggregate id so events of one aggregate stay ordered.
func NewWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

func NewPublisher(writer messageWriter, topicPrefix string) *Publisher {
	return &Publisher{writer: writer, topicPrefix: topicPrefix}
}

// Publish implements outbox.Publisher.
func (p *Publisher) Publish(ctx context.Context, event outbox.Event) error {
	msg := kafkago.Message{
		Topic: p.topic(event.Topic),
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		},
		Time: event.CreatedAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to %s: %w", event.EventType, msg.Topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) topic(name string) string {
	if p.topicPrefix == "" {
		return name
	}
	return p.topicPrefix + "." + name
}
