package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	RequestRoutingKey = "v2f.conversion.request"
	StatusRoutingKey  = "v2f.conversion.status"

	// AttemptHeader counts deliveries of a request; the consumer republishes
	// failed messages with it incremented.
	AttemptHeader = "x-attempt"

	maxBackoff         = 60 * time.Second
	defaultMaxAttempts = 5
)

// MessageHandler processes one delivery body. A non-nil error retries the
// message after a backoff, up to the attempt limit.
type MessageHandler func(ctx context.Context, body []byte) error

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	publisher   amqpPublisher
	queue       string
	dlq         string
	workerCount int
	maxAttempts int
	baseDelay   time.Duration
	handler     MessageHandler
	logger      *zap.Logger
	wait        func(ctx context.Context, d time.Duration) bool
	wg          sync.WaitGroup
}

type ConsumerConfig struct {
	URL          string
	RequestQueue string
	StatusQueue  string
	DLQ          string
	Exchange     string
	Prefetch     int
	WorkerCount  int
	BaseDelayMs  int
	MaxAttempts  int
}

func NewConsumer(cfg ConsumerConfig, handler MessageHandler, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := DeclareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	workers := cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}

	return &Consumer{
		conn:        conn,
		channel:     ch,
		publisher:   ch,
		queue:       cfg.RequestQueue,
		dlq:         cfg.DLQ,
		workerCount: workers,
		maxAttempts: maxAttempts,
		baseDelay:   time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		handler:     handler,
		logger:      logger,
		wait:        sleepCtx,
	}, nil
}

// DeclareTopology declares the exchange, the request, status and dead-letter
// queues, and binds the first two to the exchange. It is idempotent.
func DeclareTopology(ch *amqp.Channel, cfg ConsumerConfig) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, q := range []string{cfg.RequestQueue, cfg.DLQ, cfg.StatusQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	if err := ch.QueueBind(cfg.RequestQueue, RequestRoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind request queue: %w", err)
	}
	if err := ch.QueueBind(cfg.StatusQueue, StatusRoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind status queue: %w", err)
	}
	return nil
}

// Start blocks until ctx is cancelled and every worker has returned.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("starting worker pool",
		zap.Int("workers", c.workerCount),
		zap.String("queue", c.queue),
	)

	for i := 0; i < c.workerCount; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, deliveries)
	}

	<-ctx.Done()
	c.logger.Info("context cancelled, waiting for workers to finish")
	c.wg.Wait()
	return nil
}

func (c *Consumer) worker(ctx context.Context, id int, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.With(zap.Int("worker_id", id))
	log.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Info("delivery channel closed")
				return
			}
			c.processDelivery(ctx, d, log)
		}
	}
}

// processDelivery acks on success. On failure it waits out the backoff for
// this attempt, republishes the body with the attempt counter incremented and
// acks the original; once the limit is reached the body goes to the DLQ.
func (c *Consumer) processDelivery(ctx context.Context, d amqp.Delivery, log *zap.Logger) {
	err := c.handler(ctx, d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	attempt := attemptFromHeaders(d.Headers)
	log = log.With(zap.Uint64("delivery_tag", d.DeliveryTag), zap.Int("attempt", attempt))

	if attempt >= c.maxAttempts {
		log.Error("message failed on final attempt, dead-lettering", zap.Error(err))
		headers := copyHeaders(d.Headers)
		headers["x-dlq-reason"] = "max_attempts: " + err.Error()
		c.forward(ctx, d, c.dlq, headers, log)
		return
	}

	delay := backoff(c.baseDelay, attempt)
	log.Warn("message processing failed, retrying", zap.Error(err), zap.Duration("delay", delay))

	if !c.wait(ctx, delay) {
		_ = d.Nack(false, true)
		return
	}

	headers := copyHeaders(d.Headers)
	headers[AttemptHeader] = int32(attempt + 1)
	c.forward(ctx, d, c.queue, headers, log)
}

// forward publishes the delivery body to queue via the default exchange and
// acks the original. If publishing fails the original is requeued instead.
func (c *Consumer) forward(ctx context.Context, d amqp.Delivery, queue string, headers amqp.Table, log *zap.Logger) {
	err := c.publisher.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
	})
	if err != nil {
		log.Error("republish failed, requeueing original", zap.String("queue", queue), zap.Error(err))
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

func copyHeaders(h amqp.Table) amqp.Table {
	out := amqp.Table{}
	for k, v := range h {
		out[k] = v
	}
	return out
}

// attemptFromHeaders reads the attempt counter; a missing or malformed header
// means first delivery.
func attemptFromHeaders(headers amqp.Table) int {
	var n int64
	switch v := headers[AttemptHeader].(type) {
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case int:
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	}
	if n < 1 {
		return 1
	}
	return int(n)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// backoff doubles base per attempt, capped at one minute.
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
