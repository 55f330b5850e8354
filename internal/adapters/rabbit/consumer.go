package rabbit

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventBindings are the routing keys the audit consumer listens to.
var EventBindings = []string{"booking.*", "payment.*"}

type Consumer struct {
	ch    *amqp.Channel
	queue string
}

// NewConsumer declares a durable queue bound to the events exchange for
// each routing key.
func NewConsumer(conn *amqp.Connection, queue string, bindings []string) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, err
	}
	for _, key := range bindings {
		if err := ch.QueueBind(queue, key, EventsExchange, false, nil); err != nil {
			ch.Close()
			return nil, err
		}
	}
	if err := ch.Qos(16, 0, false); err != nil {
		ch.Close()
		return nil, err
	}
	return &Consumer{ch: ch, queue: queue}, nil
}

// Consume delivers messages with manual acks until ctx is done.
func (c *Consumer) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
}

func (c *Consumer) Close() error {
	return c.ch.Close()
}
