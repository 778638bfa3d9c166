package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

func (p *Publisher) publish(ctx context.Context, exchange, key string, body []byte, headers amqp.Table) error {
	return p.channel.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
	})
}

// PublishRequest enqueues a conversion request; used by the CLI's --queue mode and tests.
func (p *Publisher) PublishRequest(ctx context.Context, msg []byte) error {
	if err := p.publish(ctx, p.exchange, RequestRoutingKey, msg, nil); err != nil {
		return fmt.Errorf("publish request: %w", err)
	}
	return nil
}

// Declare sets up the same topology as the consumer so requests published
// before any worker has started are not dropped.
func (p *Publisher) Declare(cfg ConsumerConfig) error {
	return DeclareTopology(p.channel, cfg)
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

type StatusPublisher struct {
	pub *Publisher
}

func NewStatusPublisher(pub *Publisher) *StatusPublisher {
	return &StatusPublisher{pub: pub}
}

func (sp *StatusPublisher) PublishStatus(ctx context.Context, msg []byte) error {
	if err := sp.pub.publish(ctx, sp.pub.exchange, StatusRoutingKey, msg, nil); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}
	return nil
}

// DLQPublisher sends rejected messages straight to the dead-letter queue via the default exchange.
type DLQPublisher struct {
	pub   *Publisher
	queue string
}

func NewDLQPublisher(pub *Publisher, dlqQueue string) *DLQPublisher {
	return &DLQPublisher{pub: pub, queue: dlqQueue}
}

func (dp *DLQPublisher) PublishToDLQ(ctx context.Context, msg []byte, reason string) error {
	if err := dp.pub.publish(ctx, "", dp.queue, msg, amqp.Table{"x-dlq-reason": reason}); err != nil {
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}
