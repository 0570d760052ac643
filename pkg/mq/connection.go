package mq

import (
	"fmt"
	"os"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// ExchangeName 领域事件使用的 topic 交换机
const ExchangeName = "events"

const heartbeat = 10 * time.Second

// NewConnection 连接 RabbitMQ，连接名带上主机名方便在管理台定位
func NewConnection(url string) (*amqp091.Connection, error) {
	props := amqp091.NewConnectionProperties()
	if host, err := os.Hostname(); err == nil {
		props.SetClientConnectionName("sprintcoach@" + host)
	}

	conn, err := amqp091.DialConfig(url, amqp091.Config{
		Heartbeat:  heartbeat,
		Locale:     "en_US",
		Properties: props,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// DeclareExchange 声明持久化的 topic 交换机，重复声明是幂等的
func DeclareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(ExchangeName, amqp091.ExchangeTopic, true, false, false, false, nil)
}
