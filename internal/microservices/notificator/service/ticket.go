package service

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/events"
)

// TicketService turns table events into kitchen ticket log lines.
type TicketService struct {
	log *logger.Logger
}

func NewTicketService(log *logger.Logger) *TicketService {
	return &TicketService{log: log}
}

// HandleDelivery decodes one table event and records the ticket. A decode
// error means the message can never be processed.
func (ts *TicketService) HandleDelivery(body []byte) (events.TableEvent, error) {
	var ev events.TableEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return events.TableEvent{}, fmt.Errorf("decode table event: %w", err)
	}
	if ev.TableNumber <= 0 {
		return events.TableEvent{}, fmt.Errorf("decode table event: invalid table number %d", ev.TableNumber)
	}

	fields := map[string]any{
		"event_id":     ev.ID,
		"event_type":   string(ev.Type),
		"command":      ev.Command,
		"table_number": ev.TableNumber,
		"grand_total":  ev.GrandTotal.String(),
	}
	switch {
	case ev.Table != nil:
		lines := make([]string, 0, len(ev.Table.Items))
		for _, it := range ev.Table.Items {
			line := fmt.Sprintf("%dx %s", it.Quantity, it.Name)
			if it.SpecialInstructions != "" {
				line += " (" + it.SpecialInstructions + ")"
			}
			lines = append(lines, line)
		}
		fields["status"] = string(ev.Table.Status)
		fields["items"] = lines
		fields["table_total"] = ev.Table.TableTotal.String()
	case ev.Bill != nil:
		fields["bill_total"] = ev.Bill.Total.StringFixed(2)
	}
	ts.log.Info("ticket_received", fields)
	return ev, nil
}

// Consume acks processed deliveries and rejects undecodable ones without
// requeue. It returns when ctx is done or the channel closes.
func (ts *TicketService) Consume(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if _, err := ts.HandleDelivery(m.Body); err != nil {
				ts.log.Error("ticket_rejected", err, map[string]any{"message_id": m.MessageId})
				_ = m.Nack(false, false)
				continue
			}
			_ = m.Ack(false)
		}
	}
}
