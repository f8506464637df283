package messaging

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"smart-menu/internal/config"
	"smart-menu/internal/logger"
)

const (
	// ExchangeOrders receives every order event, routed by "order.<event>"
	ExchangeOrders = "orders_topic"
	// QueueNotifications collects all order events for the notification subscriber
	QueueNotifications = "notifications_queue"

	notificationsBinding = "order.#"
	dialAttempts         = 5
	dialTimeout          = 5 * time.Second
	heartbeat            = 10 * time.Second
)

// Connection wraps a RabbitMQ connection and channel with reconnection logic
type Connection struct {
	mu        sync.Mutex
	redialing atomic.Bool
	conn      *amqp091.Connection
	channel   *amqp091.Channel
	logger    *logger.Logger
	url       string
}

// New connects to RabbitMQ and declares the order topology
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	c := &Connection{
		logger: log,
		url:    cfg.RabbitMQURL(),
	}

	if err := c.connect(ctx); err != nil {
		return nil, fmt.Errorf("establish initial connection: %w", err)
	}

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host":  cfg.RabbitMQ.Host,
		"vhost": cfg.RabbitMQ.VHost,
	})
	return c, nil
}

// connect dials with a linear backoff. Callers must not hold mu.
func (c *Connection) connect(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		if err = c.dial(); err == nil {
			return nil
		}
		if attempt == dialAttempts {
			break
		}

		wait := time.Duration(attempt) * 2 * time.Second
		c.logger.Error("rabbitmq_connection_failed",
			fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", wait),
			"startup", err, map[string]interface{}{"attempt": attempt})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("connect to RabbitMQ after %d attempts: %w", dialAttempts, err)
}

func (c *Connection) dial() error {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Dial:      amqp091.DefaultDial(dialTimeout),
		Heartbeat: heartbeat,
		Locale:    "en_US",
	})
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("set up topology: %w", err)
	}

	c.mu.Lock()
	c.conn, c.channel = conn, ch
	c.mu.Unlock()
	return nil
}

// topologyDeclarer is the subset of *amqp091.Channel used to declare the topology
type topologyDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
}

// setupTopology declares the orders exchange and the notifications queue
func setupTopology(ch topologyDeclarer) error {
	err := ch.ExchangeDeclare(
		ExchangeOrders, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare %s exchange: %w", ExchangeOrders, err)
	}

	_, err = ch.QueueDeclare(
		QueueNotifications, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		amqp091.Table{
			"x-message-ttl": int32(24 * time.Hour / time.Millisecond),
		},
	)
	if err != nil {
		return fmt.Errorf("declare %s queue: %w", QueueNotifications, err)
	}

	err = ch.QueueBind(
		QueueNotifications,   // queue name
		notificationsBinding, // routing key
		ExchangeOrders,       // exchange
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		return fmt.Errorf("bind %s to %s: %w", QueueNotifications, ExchangeOrders, err)
	}
	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn == nil || c.conn.IsClosed() || c.channel == nil || c.channel.IsClosed()
}

// Reconnect drops the current connection and dials again
func (c *Connection) Reconnect(ctx context.Context) error {
	c.Close()
	return c.connect(ctx)
}

// RedialInBackground starts a single reconnection attempt without backoff and
// returns immediately. It is a no-op while an attempt is already running.
func (c *Connection) RedialInBackground() {
	if !c.redialing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer c.redialing.Store(false)

		if !c.IsClosed() {
			return
		}
		c.Close()
		if err := c.dial(); err != nil {
			c.logger.Error("rabbitmq_redial_failed", "Failed to reconnect to RabbitMQ", "", err, nil)
			return
		}
		c.logger.Info("rabbitmq_reconnected", "Reconnected to RabbitMQ", "", nil)
	}()
}

// Close closes the channel and connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if err != nil && err != amqp091.ErrClosed {
			return err
		}
	}
	return nil
}
