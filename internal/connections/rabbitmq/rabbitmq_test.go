package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/config"
)

func TestURL(t *testing.T) {
	cfg := config.RabbitMQConfig{Host: "mq", Port: 5672, User: "guest", Password: "secret", VHost: "/"}
	u := URL(cfg)
	assert.Equal(t, "amqp://guest:secret@mq:5672/", u)

	uri, err := amqp.ParseURI(u)
	require.NoError(t, err)
	assert.Equal(t, "/", uri.Vhost)

	cfg.VHost = "pos"
	cfg.UseTLS = true
	cfg.Port = 5671
	assert.Equal(t, "amqps://guest:secret@mq:5671/pos", URL(cfg))
}

func TestNilClient(t *testing.T) {
	var c *Client
	c.Close()
	assert.Error(t, c.DeclareTopology("tables_topic", "tickets.q"))
}

func TestDeadLetterQueue(t *testing.T) {
	assert.Equal(t, "tickets.q.dlq", DeadLetterQueue("tickets.q"))
}

func TestURLEscapesCredentials(t *testing.T) {
	cfg := config.RabbitMQConfig{Host: "mq", Port: 5672, User: "pos", Password: "p@ss/w#rd", VHost: "/"}
	uri, err := amqp.ParseURI(URL(cfg))
	require.NoError(t, err)
	assert.Equal(t, "mq", uri.Host)
	assert.Equal(t, "pos", uri.Username)
	assert.Equal(t, "p@ss/w#rd", uri.Password)
}

// heldConfirm resolves only when release is closed.
type heldConfirm struct {
	release chan struct{}
	ack     bool
}

func (h *heldConfirm) WaitContext(ctx context.Context) (bool, error) {
	select {
	case <-h.release:
		return h.ack, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func TestPublishPairsEachConfirmWithItsMessage(t *testing.T) {
	late := &heldConfirm{release: make(chan struct{}), ack: true}
	nacked := &heldConfirm{release: make(chan struct{}), ack: false}
	acked := &heldConfirm{release: make(chan struct{}), ack: true}
	close(nacked.release)
	close(acked.release)

	confirms := map[string]*heldConfirm{"a": late, "b": nacked, "c": acked}
	var sent []amqp.Publishing
	c := &Client{publish: func(_ context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
		sent = append(sent, msg)
		return confirms[msg.MessageId], nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	err := c.Publish(ctx, Message{Exchange: "tables_topic", Key: "table.updated.1", MessageID: "a", Persistent: true})
	cancel()
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the first broker ack arrives only now, after its publisher gave up
	close(late.release)

	err = c.Publish(context.Background(), Message{MessageID: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)

	assert.NoError(t, c.Publish(context.Background(), Message{MessageID: "c"}))

	require.Len(t, sent, 3)
	assert.Equal(t, amqp.Persistent, sent[0].DeliveryMode)
	assert.Equal(t, amqp.Transient, sent[1].DeliveryMode)
}

func TestPublishReportsSendFailure(t *testing.T) {
	c := &Client{publish: func(context.Context, string, string, amqp.Publishing) (confirmation, error) {
		return nil, errors.New("channel closed")
	}}
	assert.EqualError(t, c.Publish(context.Background(), Message{MessageID: "x"}), "channel closed")

	var nilClient *Client
	assert.Error(t, nilClient.Publish(context.Background(), Message{}))
	assert.Error(t, nilClient.Ping())
	assert.Error(t, (&Client{}).Ping())
}
