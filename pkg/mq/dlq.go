package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	DLQExchangeName = "events.dlq"
)

// DeclareDLQExchange declares the dead letter exchange.
func DeclareDLQExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		DLQExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

// DeclareDLQQueue declares the dead letter queue of a consumer queue.
func DeclareDLQQueue(ch *amqp091.Channel, queueName, routingKey string) (amqp091.Queue, error) {
	q, err := ch.QueueDeclare(
		queueName+".dlq",
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, DLQExchangeName, false, nil); err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}

	return q, nil
}

// PublishToDLQ publishes a failed message to the dead letter exchange.
func (p *Publisher) PublishToDLQ(ctx context.Context, routingKey string, msg amqp091.Delivery, queue, errorType string, cause error) error {
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-original-error"] = cause.Error()
	headers["x-error-type"] = errorType
	headers["x-failed-queue"] = queue
	headers["x-failed-at"] = time.Now().UTC().Format(time.RFC3339)

	return p.publish(ctx, DLQExchangeName, routingKey, amqp091.Publishing{
		ContentType:  msg.ContentType,
		MessageId:    msg.MessageId,
		Body:         msg.Body,
		DeliveryMode: amqp091.Persistent,
		Headers:      headers,
	})
}
