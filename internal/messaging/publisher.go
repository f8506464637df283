package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"smart-menu/internal/logger"
	"smart-menu/internal/models"
)

const publishTimeout = 10 * time.Second

// Publisher publishes order events to RabbitMQ
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// PublishOrderEvent publishes event to the orders exchange under its routing key
func (p *Publisher) PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	publishing, err := newPublishing(event)
	if err != nil {
		return err
	}
	return p.publish(ctx, ExchangeOrders, event.RoutingKey(), publishing)
}

// newPublishing encodes message as a persistent JSON delivery
func newPublishing(message interface{}) (amqp091.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func (p *Publisher) publish(ctx context.Context, exchange, routingKey string, publishing amqp091.Publishing) error {
	if p.conn.IsClosed() {
		p.conn.RedialInBackground()
		return fmt.Errorf("publish to %s: %w", exchange, amqp091.ErrClosed)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ch := p.conn.Channel()
	if ch == nil {
		return fmt.Errorf("publish to %s: %w", exchange, amqp091.ErrClosed)
	}

	err := ch.PublishWithContext(
		ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		publishing,
	)
	if err != nil {
		return fmt.Errorf("publish to %s with key %s: %w", exchange, routingKey, err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published message to exchange %s", exchange),
		"", map[string]interface{}{
			"exchange":     exchange,
			"routing_key":  routingKey,
			"message_size": len(publishing.Body),
		})
	return nil
}
