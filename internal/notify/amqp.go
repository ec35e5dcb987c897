package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const dialAttempts = 10

// AMQPNotifier publishes new-order events to a durable RabbitMQ queue
// consumed by the operator notification display
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewAMQPNotifier dials the broker and declares the queue. The broker may
// still be starting, so the dial is retried.
func NewAMQPNotifier(url, queueName string) (*AMQPNotifier, error) {
	var (
		conn *amqp.Connection
		err  error
	)

	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &AMQPNotifier{
		conn:    conn,
		channel: ch,
		queue:   queueName,
	}, nil
}

// NotifyNewOrder publishes the event as a persistent JSON message
func (an *AMQPNotifier) NotifyNewOrder(ctx context.Context, event NewOrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return an.channel.PublishWithContext(ctx,
		"",       // default exchange
		an.queue, // routing key
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.OrderID,
			Body:         body,
		})
}

// Close releases the channel and connection
func (an *AMQPNotifier) Close() error {
	if err := an.channel.Close(); err != nil {
		return err
	}
	return an.conn.Close()
}
