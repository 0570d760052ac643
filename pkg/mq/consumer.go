package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"sprintcoach/pkg/metrics"
	"sprintcoach/pkg/trace"
	"sprintcoach/pkg/util"
)

// Message 是交给 handler 的已解码消息
type Message struct {
	Envelope
	RoutingKey  string
	Redelivered bool
}

type MessageHandler func(ctx context.Context, msg Message) error

// RetryTracker 记录每条消息的重试次数
type RetryTracker interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// DeadLetterPublisher 把失败消息投递到死信交换机
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, routingKey string, msg amqp091.Delivery, queue, errorType string, cause error) error
}

type ConsumerOption func(*Consumer)

// WithRetry 设置重试计数器和最大重试次数
func WithRetry(tracker RetryTracker, maxRetries int64) ConsumerOption {
	return func(c *Consumer) {
		c.retries = tracker
		c.maxRetries = maxRetries
	}
}

// WithDeadLetter 设置死信发布者
func WithDeadLetter(p DeadLetterPublisher) ConsumerOption {
	return func(c *Consumer) {
		c.dlq = p
	}
}

// WithPrefetch 设置 QoS prefetch
func WithPrefetch(n int) ConsumerOption {
	return func(c *Consumer) {
		c.prefetch = n
	}
}

type Consumer struct {
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	queue       string
	routingKeys []string
	handler     MessageHandler
	logger      *zap.Logger

	retries    RetryTracker
	maxRetries int64
	dlq        DeadLetterPublisher
	prefetch   int
}

// NewConsumer 创建绑定到一个或多个 routing key 的消费者。
// 队列声明了死信交换机，未能投递到 DLQ 的消息由 broker 转发。
func NewConsumer(url, queueName string, routingKeys []string, handler MessageHandler, logger *zap.Logger, opts ...ConsumerOption) (*Consumer, error) {
	c := &Consumer{
		queue:       queueName,
		routingKeys: routingKeys,
		handler:     handler,
		logger:      logger,
		maxRetries:  3,
		prefetch:    10,
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	c.conn = conn
	c.channel = ch

	if err := c.setup(); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("Consumer initialized",
		zap.Strings("routing_keys", routingKeys),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)
	return c, nil
}

func (c *Consumer) setup() error {
	if err := DeclareExchange(c.channel); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := DeclareDLQExchange(c.channel); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := DeclareDLQQueue(c.channel, c.queue, c.queue); err != nil {
		return err
	}

	q, err := c.channel.QueueDeclare(
		c.queue,
		true,
		false,
		false,
		false,
		amqp091.Table{
			"x-dead-letter-exchange":    DLQExchangeName,
			"x-dead-letter-routing-key": c.queue,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range c.routingKeys {
		if err := c.channel.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}

	if err := c.channel.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}
	return nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// IsConnected checks if the consumer connection is still alive
func (c *Consumer) IsConnected() bool {
	return c.conn != nil && !c.conn.IsClosed()
}

// Run 消费消息直到 ctx 结束或连接关闭
func (c *Consumer) Run(ctx context.Context) error {
	if c.handler == nil {
		return errors.New("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue,
		"",
		false, // 手动ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery 保证每条消息都会被 ack、requeue 或转入死信
func (c *Consumer) handleDelivery(ctx context.Context, d amqp091.Delivery) {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(d.RoutingKey, c.queue, time.Since(start))
	}()

	var env Envelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		c.deadLetter(ctx, d, "json_decode_error", err)
		return
	}
	if env.ID == "" {
		env.ID = d.MessageId
	}
	if env.Type == "" {
		env.Type = d.RoutingKey
	}

	traceID := env.TraceID
	if h, ok := d.Headers[trace.HeaderName].(string); ok && h != "" {
		traceID = h
	}
	msgCtx := trace.WithContext(ctx, traceID)
	logger := c.logger.With(
		zap.String("queue", c.queue),
		zap.String("routing_key", d.RoutingKey),
		zap.String("event_id", env.ID),
		zap.String("trace_id", traceID),
	)

	err := c.invoke(msgCtx, Message{Envelope: env, RoutingKey: d.RoutingKey, Redelivered: d.Redelivered})
	if err == nil {
		if err := d.Ack(false); err != nil {
			logger.Error("Failed to ack message", zap.Error(err))
		}
		if c.retries != nil {
			_ = c.retries.Reset(ctx, util.FormatRetryKey(c.queue, env.ID))
		}
		metrics.IncrementEventProcessed(d.RoutingKey, "success")
		return
	}

	retryable, errType := util.IsRetryableError(err)
	if retryable && c.shouldRequeue(ctx, env.ID, d.Redelivered) {
		logger.Warn("Handler failed, requeueing", zap.String("error_type", errType), zap.Error(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			logger.Error("Failed to nack message", zap.Error(nackErr))
		}
		metrics.IncrementEventProcessed(d.RoutingKey, "failed")
		return
	}

	logger.Error("Handler failed, dead-lettering", zap.String("error_type", errType), zap.Error(err))
	c.deadLetter(ctx, d, errType, err)
}

// invoke 调用 handler 并把 panic 转换为不可重试的错误
func (c *Consumer) invoke(ctx context.Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = util.Permanent(fmt.Errorf("handler panic: %v", r))
		}
	}()
	return c.handler(ctx, msg)
}

func (c *Consumer) shouldRequeue(ctx context.Context, eventID string, redelivered bool) bool {
	if c.retries == nil || eventID == "" {
		// 没有计数器时只重试一次
		return !redelivered
	}
	count, err := c.retries.IncrementAndGet(ctx, util.FormatRetryKey(c.queue, eventID))
	if err != nil {
		c.logger.Warn("Retry counter unavailable", zap.Error(err))
		return !redelivered
	}
	return util.ShouldRetry(count, c.maxRetries, true)
}

func (c *Consumer) deadLetter(ctx context.Context, d amqp091.Delivery, errType string, cause error) {
	metrics.IncrementEventProcessed(d.RoutingKey, "dead_lettered")

	if c.dlq != nil {
		if err := c.dlq.PublishToDLQ(ctx, c.queue, d, c.queue, errType, cause); err == nil {
			if err := d.Ack(false); err != nil {
				c.logger.Error("Failed to ack dead-lettered message", zap.Error(err))
			}
			return
		} else {
			c.logger.Error("Failed to publish to DLQ, rejecting to broker DLX", zap.Error(err))
		}
	}

	// 拒绝且不重新入队，由队列的 x-dead-letter-exchange 接管
	if err := d.Nack(false, false); err != nil {
		c.logger.Error("Failed to nack message", zap.Error(err))
	}
}
