package rabbitmq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/config"
)

// confirmation resolves to the broker's ack (true) or nack for one publishing.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type publishFunc func(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)

type Client struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	publish publishFunc
}

// Message is one publishing with the routing data the broker needs.
type Message struct {
	Exchange      string
	Key           string
	Body          []byte
	Headers       amqp.Table
	ContentType   string
	MessageID     string
	CorrelationID string
	Persistent    bool
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func URL(cfg config.RabbitMQConfig) string {
	vhost := cfg.VHost
	if vhost == "/" {
		vhost = ""
	}
	scheme := "amqp"
	if cfg.UseTLS {
		scheme = "amqps"
	}
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + vhost,
	}
	return u.String()
}

func Dial(cfg config.RabbitMQConfig) (*Client, error) {
	addr := URL(cfg)

	var (
		conn *amqp.Connection
		err  error
	)
	if cfg.UseTLS {
		conn, err = amqp.DialTLS(addr, &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(addr)
	}
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	c := &Client{conn: conn, ch: ch}
	c.publish = func(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
		dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
		if err != nil {
			return nil, err
		}
		if dc == nil {
			return nil, errors.New("channel is not in confirm mode")
		}
		return dc, nil
	}
	return c, nil
}

// Ping reports whether the connection and channel are still open.
func (c *Client) Ping() error {
	if c == nil || c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	if c.ch == nil || c.ch.IsClosed() {
		return errors.New("rabbitmq channel is closed")
	}
	return nil
}

// DeadLetterQueue returns the queue collecting rejected messages of queue.
func DeadLetterQueue(queue string) string { return queue + ".dlq" }

// DeclareTopology declares the topic exchange for table events and binds
// queue to every table routing key. Messages rejected from queue are
// dead-lettered to DeadLetterQueue(queue) through the "dlx" exchange.
func (c *Client) DeclareTopology(exchange, queue string) error {
	if c == nil || c.ch == nil {
		return errors.New("nil channel")
	}
	if err := c.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", exchange, err)
	}
	if queue == "" {
		return nil
	}
	if err := c.ch.ExchangeDeclare("dlx", "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dlx: %w", err)
	}
	dlq := DeadLetterQueue(queue)
	if _, err := c.ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", dlq, err)
	}
	if err := c.ch.QueueBind(dlq, dlq, "dlx", false, nil); err != nil {
		return fmt.Errorf("queue bind %s: %w", dlq, err)
	}
	args := amqp.Table{
		"x-dead-letter-exchange":    "dlx",
		"x-dead-letter-routing-key": dlq,
	}
	if _, err := c.ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("queue declare %s: %w", queue, err)
	}
	if err := c.ch.QueueBind(queue, "table.#", exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind %s: %w", queue, err)
	}
	return nil
}

// Publish sends m and waits for the broker ack or nack of this publishing.
// Each publishing carries its own confirmation, so a confirm that arrives
// after ctx expired is never read by a later Publish.
func (c *Client) Publish(ctx context.Context, m Message) error {
	if c == nil || c.publish == nil {
		return errors.New("nil channel")
	}
	mode := amqp.Transient
	if m.Persistent {
		mode = amqp.Persistent
	}

	conf, err := c.publish(ctx, m.Exchange, m.Key, amqp.Publishing{
		DeliveryMode:  mode,
		ContentType:   m.ContentType,
		MessageId:     m.MessageID,
		CorrelationId: m.CorrelationID,
		Timestamp:     time.Now().UTC(),
		Headers:       m.Headers,
		Body:          m.Body,
	})
	if err != nil {
		return err
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("publish NACK from broker for message %q", m.MessageID)
	}
	return nil
}

func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}
