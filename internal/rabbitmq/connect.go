// Package rabbitmq содержит подключение к RabbitMQ и публикацию событий покупок.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Exchange имя обменника для событий покупок.
const Exchange = "payments"

// PurchasedQueue очередь событий успешных покупок курсов.
const PurchasedQueue = "course.purchased"

// Connect устанавливает соединение с RabbitMQ, повторяя попытки с паузой.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал и объявляет обменник и очередь событий покупок.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := ch.QueueDeclare(
		PurchasedQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, PurchasedQueue, err)
	}

	if err := ch.QueueBind(
		PurchasedQueue,
		PurchasedQueue,
		Exchange,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, PurchasedQueue, err)
	}

	return ch, nil
}
