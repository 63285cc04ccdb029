package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const appID = "mealplan-admin-service"

var errConnectionClosed = errors.New("rabbitmq connection closed")

// Client owns one AMQP connection and a publishing channel. Publishing is
// serialized because amqp channels are not safe for concurrent use.
type Client struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// EnsureExchange declares a durable topic exchange.
func (c *Client) EnsureExchange(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, err := c.channel()
	if err != nil {
		return err
	}
	return ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil)
}

// channel reopens the channel after a channel-level error such as a publish
// to a missing exchange; a dead connection is reported, not redialed.
// Callers hold c.mu.
func (c *Client) channel() (*amqp.Channel, error) {
	if c.ch != nil && !c.ch.IsClosed() {
		return c.ch, nil
	}
	if c.conn == nil || c.conn.IsClosed() {
		return nil, errConnectionClosed
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	c.ch = ch
	return ch, nil
}

func (c *Client) PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, err := c.channel()
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		AppId:        appID,
		Type:         routingKey,
		Body:         body,
		Timestamp:    time.Now(),
	})
}
