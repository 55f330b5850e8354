// Package notifier turns lifecycle events from the broker into audit
// entries.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Recorder interface {
	RecordDomainEvent(ctx context.Context, eventID uuid.UUID, eventType string, occurredAt time.Time, data map[string]interface{}) error
}

type Notifier struct {
	rec    Recorder
	logger observability.Logger
	now    func() time.Time
}

func New(rec Recorder, logger observability.Logger) *Notifier {
	return &Notifier{rec: rec, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Run handles deliveries until ctx is done or the channel closes.
func (n *Notifier) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	n.logger.Info("notifier started")
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				n.logger.Warn("delivery channel closed")
				return
			}
			n.Handle(ctx, d)
		}
	}
}

// Handle acks recorded events, rejects malformed ones without requeue and
// requeues those that failed to store.
func (n *Notifier) Handle(ctx context.Context, d amqp.Delivery) {
	log := n.logger.WithField("message_id", d.MessageId).WithField("routing_key", d.RoutingKey)

	eventID, err := uuid.Parse(d.MessageId)
	if err != nil {
		log.WithError(err).Warn("dropping event without a valid id")
		n.settle(log, d.Reject(false), "dropped")
		return
	}
	var data map[string]interface{}
	if err := json.Unmarshal(d.Body, &data); err != nil {
		log.WithError(err).Warn("dropping event with malformed payload")
		n.settle(log, d.Reject(false), "dropped")
		return
	}

	eventType := d.Type
	if eventType == "" {
		eventType = d.RoutingKey
	}
	occurredAt := d.Timestamp
	if occurredAt.IsZero() {
		occurredAt = n.now()
	}

	if err := n.rec.RecordDomainEvent(ctx, eventID, eventType, occurredAt, data); err != nil {
		log.WithError(err).Error("failed to record event, requeueing")
		n.settle(log, d.Nack(false, true), "requeued")
		return
	}
	n.settle(log, d.Ack(false), "recorded")
}

func (n *Notifier) settle(log observability.Logger, err error, outcome string) {
	observability.EventsConsumed.WithLabelValues(outcome).Inc()
	if err != nil {
		log.WithError(err).Error("failed to settle delivery")
	}
}
