// Package outbox relays committed lifecycle events to the broker.
package outbox

import (
	"context"
	"time"

	"github.com/adhilsalahh/package-booking/internal/adapters/crdb"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultBatchSize = 50
	MaxAttempts      = 10
)

type Store interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	ClaimUnpublished(ctx context.Context, tx pgx.Tx, limit int) ([]crdb.OutboxRecord, error)
	MarkPublished(ctx context.Context, tx pgx.Tx, id uuid.UUID, publishedAt time.Time) error
	RecordFailure(ctx context.Context, tx pgx.Tx, id uuid.UUID, maxAttempts int) error
}

type Broker interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

type Publisher struct {
	store     Store
	broker    Broker
	logger    observability.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewPublisher(store Store, broker Broker, logger observability.Logger, interval time.Duration) *Publisher {
	return &Publisher{
		store:     store,
		broker:    broker,
		logger:    logger,
		interval:  interval,
		batchSize: DefaultBatchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (p *Publisher) Run(ctx context.Context) {
	p.logger.WithField("interval", p.interval.String()).Info("outbox publisher started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PublishBatch(ctx)
			if err != nil {
				p.logger.WithError(err).Error("outbox batch failed")
				continue
			}
			if n > 0 {
				p.logger.WithField("published", n).Debug("outbox batch published")
			}
		}
	}
}

// PublishBatch relays one batch in creation order. The batch stops at the
// first delivery failure so later events never overtake earlier ones.
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	published := 0
	err := p.store.WithTx(ctx, func(tx pgx.Tx) error {
		published = 0
		records, err := p.store.ClaimUnpublished(ctx, tx, p.batchSize)
		if err != nil {
			return err
		}
		for _, rec := range records {
			msg := amqp.Publishing{
				MessageId:   rec.ID.String(),
				Type:        rec.EventType,
				Timestamp:   rec.CreatedAt,
				ContentType: "application/json",
				Body:        rec.Payload,
				Headers: amqp.Table{
					"aggregate_type": rec.AggregateType,
					"aggregate_id":   rec.AggregateID.String(),
					"dedupe_key":     rec.DedupeKey,
				},
			}
			if err := p.broker.Publish(ctx, rec.EventType, msg); err != nil {
				observability.RabbitPublishRetries.Inc()
				p.logger.WithError(err).WithField("outbox_id", rec.ID).WithField("attempts", rec.Attempts+1).Warn("outbox publish failed")
				return p.store.RecordFailure(ctx, tx, rec.ID, MaxAttempts)
			}
			now := p.now()
			if err := p.store.MarkPublished(ctx, tx, rec.ID, now); err != nil {
				return err
			}
			observability.OutboxLag.Set(now.Sub(rec.CreatedAt).Seconds())
			published++
		}
		return nil
	})
	return published, err
}
