package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"Lavka/config"
)

const (
	// ExchangeDispatch 投递用 direct exchange
	ExchangeDispatch = "lavka.dispatch"

	// QueueMailingDispatch 群发投递队列
	QueueMailingDispatch = "mailing.dispatch"
	// QueueSupportForward 支持请求转发队列
	QueueSupportForward = "support.forward"

	// RoutingKeyMailingDispatch 群发投递路由键
	RoutingKeyMailingDispatch = "mailing.dispatch"
	// RoutingKeySupportForward 支持请求转发路由键
	RoutingKeySupportForward = "support.forward"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
)

func Init() error {
	var initErr error

	connOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()

		c, err := amqp.Dial(url)
		if err != nil {
			initErr = fmt.Errorf("failed to dial RabbitMQ: %w", err)
			return
		}
		conn = c

		ch, err := conn.Channel()
		if err != nil {
			initErr = fmt.Errorf("failed to open channel: %w", err)
			return
		}
		defer ch.Close()

		initErr = declareTopology(ch)
	})

	return initErr
}

// declareTopology 声明 exchange、队列和绑定，幂等
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		ExchangeDispatch,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	bindings := map[string]string{
		QueueMailingDispatch: RoutingKeyMailingDispatch,
		QueueSupportForward:  RoutingKeySupportForward,
	}

	for queue, key := range bindings {
		if _, err := ch.QueueDeclare(
			queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}

		if err := ch.QueueBind(queue, key, ExchangeDispatch, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", queue, err)
		}
	}

	return nil
}

// Connection 返回底层连接，未初始化时返回 nil
func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	if conn == nil || conn.IsClosed() {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
