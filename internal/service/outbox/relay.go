package outbox

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/metrics"
	"go.uber.org/zap"
)

const defaultBatchSize = 50

// Relay moves committed outbox events to the broker. Delivery is at least once:
// an event is marked sent only after the broker accepted it.
type Relay struct {
	txManager  database.Transactor
	outboxRepo outbox.OutboxRepository
	publisher  outbox.Publisher
	batchSize  int
	logger     *zap.Logger
}

// Result summarises one relay pass.
type Result struct {
	Sent   int
	Failed int
}

// RunOnce publishes one batch. The rows stay locked for the duration of the pass so
// concurrent relays skip them.
func (r *Relay) RunOnce(ctx context.Context) (Result, error) {
	var result Result

	err := r.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		result = Result{}

		events, err := r.outboxRepo.ListPending(ctx, r.batchSize)
		if err != nil {
			return fmt.Errorf("list pending outbox events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		r.logger.Debug("processing pending outbox events", zap.Int("count", len(events)))

		for _, event := range events {
			if err := r.publisher.Publish(ctx, event); err != nil {
				r.logger.Warn("publish outbox event failed",
					zap.String("outbox_id", event.ID),
					zap.String("event_type", event.EventType),
					zap.Int("retry_count", event.RetryCount),
					zap.Error(err),
				)
				if err := r.outboxRepo.MarkFailed(ctx, event.ID, err.Error()); err != nil {
					return fmt.Errorf("mark outbox event %s failed: %w", event.ID, err)
				}
				metrics.RecordOutboxResult(event.EventType, false)
				result.Failed++
				continue
			}

			if err := r.outboxRepo.MarkSent(ctx, event.ID); err != nil {
				return fmt.Errorf("mark outbox event %s sent: %w", event.ID, err)
			}
			metrics.RecordOutboxResult(event.EventType, true)
			result.Sent++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if result.Sent > 0 || result.Failed > 0 {
		r.logger.Info("outbox batch relayed", zap.Int("sent", result.Sent), zap.Int("failed", result.Failed))
	}
	return result, nil
}

// Job adapts RunOnce to the scheduler signature.
func (r *Relay) Job(ctx context.Context) error {
	_, err := r.RunOnce(ctx)
	return err
}

func NewRelay(
	txManager database.Transactor,
	outboxRepo outbox.OutboxRepository,
	publisher outbox.Publisher,
	batchSize int,
	log ...*zap.Logger,
) *Relay {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	var base *zap.Logger
	if len(log) > 0 {
		base = log[0]
	}
	return &Relay{
		txManager:  txManager,
		outboxRepo: outboxRepo,
		publisher:  publisher,
		batchSize:  batchSize,
		logger:     logger.Named(base, "outbox.relay"),
	}
}
