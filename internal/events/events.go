package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/ledger"
)

type EventType string

const (
	TableUpdated    EventType = "updated"
	TableCleared    EventType = "cleared"
	TableCheckedOut EventType = "checked_out"
)

// TableEvent announces that one table's check changed.
type TableEvent struct {
	ID          string             `json:"event_id"`
	Type        EventType          `json:"event_type"`
	Command     string             `json:"command"`
	TableNumber int                `json:"table_number"`
	Table       *ledger.TableOrder `json:"table,omitempty"`
	Bill        *ledger.Bill       `json:"bill,omitempty"`
	GrandTotal  decimal.Decimal    `json:"grand_total"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

func (e TableEvent) RoutingKey() string {
	return fmt.Sprintf("table.%s.%d", e.Type, e.TableNumber)
}

// FromChange builds one event per table touched by a committed command.
func FromChange(ch ledger.Change) []TableEvent {
	now := time.Now().UTC()
	out := make([]TableEvent, 0, len(ch.Tables))
	for _, n := range ch.Tables {
		ev := TableEvent{
			ID:          uuid.NewString(),
			Type:        TableCleared,
			Command:     string(ch.Command),
			TableNumber: n,
			GrandTotal:  ch.Ledger.GrandTotal,
			OccurredAt:  now,
		}
		if t, ok := ch.Ledger.Table(n); ok {
			t := t
			ev.Type = TableUpdated
			ev.Table = &t
		}
		out = append(out, ev)
	}
	return out
}

type Publisher interface {
	Publish(ctx context.Context, ev TableEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, TableEvent) error { return nil }

type amqpSender interface {
	Publish(ctx context.Context, m rabbitmq.Message) error
}

// AMQPPublisher sends events to a topic exchange, one routing key per table.
type AMQPPublisher struct {
	client   amqpSender
	exchange string
}

func NewAMQPPublisher(client amqpSender, exchange string) *AMQPPublisher {
	return &AMQPPublisher{client: client, exchange: exchange}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev TableEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal table event: %w", err)
	}
	err = p.client.Publish(ctx, rabbitmq.Message{
		Exchange:      p.exchange,
		Key:           ev.RoutingKey(),
		Body:          body,
		ContentType:   "application/json",
		MessageID:     ev.ID,
		CorrelationID: fmt.Sprintf("table-%d", ev.TableNumber),
		Persistent:    true,
		Headers: amqp.Table{
			"x-source":  "ledger-service",
			"x-command": ev.Command,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish table event: %w", err)
	}
	return nil
}
