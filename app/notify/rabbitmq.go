package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var _ Notifier = (*RabbitMQ)(nil)

// RabbitMQ publishes notifications to a durable direct exchange.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

func NewRabbitMQ(url, exchange, routingKey string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

func (n *RabbitMQ) Notify(ctx context.Context, accountID, kind, message string, metadata map[string]any) {
	body, err := json.Marshal(map[string]any{
		"account_id": accountID,
		"kind":       kind,
		"message":    message,
		"metadata":   metadata,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		slog.Warn("Failed to encode notification", "kind", kind, "error", err)
		return
	}

	err = n.channel.PublishWithContext(ctx,
		n.exchange,
		n.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		slog.Warn("Failed to publish notification", "kind", kind, "account_id", accountID, "error", err)
	}
}

func (n *RabbitMQ) Close() error {
	if err := n.channel.Close(); err != nil {
		n.conn.Close()
		return fmt.Errorf("close channel: %w", err)
	}
	return n.conn.Close()
}
