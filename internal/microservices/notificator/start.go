package notificator

import (
	"context"
	"fmt"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/microservices/notificator/service"
)

// Start consumes the ticket queue until ctx is done.
func Start(ctx context.Context, cfg config.RabbitMQConfig, log *logger.Logger) error {
	client, err := rabbitmq.Dial(cfg)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer client.Close()

	if err := client.DeclareTopology(cfg.Exchange, cfg.Queue); err != nil {
		return fmt.Errorf("rabbitmq topology: %w", err)
	}
	msgs, err := client.Consume(cfg.Queue, "ticket-subscriber", cfg.Prefetch)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}
	log.Info("ticket_subscriber_started", map[string]any{"queue": cfg.Queue})
	return service.NewTicketService(log).Consume(ctx, msgs)
}
