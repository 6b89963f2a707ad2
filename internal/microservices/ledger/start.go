package ledger

import (
	"context"
	"fmt"

	"restaurant-pos/internal/common/httpx"
	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/events"
	ledgerstore "restaurant-pos/internal/ledger"
	"restaurant-pos/internal/microservices/ledger/handlers"
	"restaurant-pos/internal/microservices/ledger/service"
	"restaurant-pos/internal/snapshot"
	"restaurant-pos/internal/storage"
)

// Run restores the ledger, serves the HTTP API and blocks until ctx is done.
// Pending snapshot writes and events are flushed before it returns.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	kv, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer kv.Close()
	log.Info("storage_opened", map[string]any{"driver": cfg.Storage.Driver})

	store := ledgerstore.NewStore()
	adapter := snapshot.New(kv, log.Component("snapshot"))
	if l, ok := adapter.Load(ctx); ok {
		store.Restore(l)
		log.Info("ledger_restored", map[string]any{"tables": len(l.Tables), "grand_total": l.GrandTotal.String()})
	}

	writer := snapshot.NewWriter(adapter, log.Component("snapshot"))
	defer writer.Close()
	store.Subscribe(writer.Observe)

	pub, mq, err := publisher(cfg.RabbitMQ, log)
	if err != nil {
		return err
	}
	if mq != nil {
		defer mq.Close()
	}
	dispatcher := events.NewDispatcher(pub, log.Component("events"), 256)
	defer dispatcher.Close()
	store.Subscribe(dispatcher.Observe)

	svc := service.NewLedgerService(store, dispatcher, log, cfg.Ledger.Tables, cfg.Ledger.TaxRateDecimal())
	if _, err := svc.InitializeTables(nil); err != nil {
		return fmt.Errorf("initialize tables: %w", err)
	}

	h := handlers.New(svc, log.Component("http")).WithCheck("storage", kv.Ping)
	if mq != nil {
		h.WithCheck("rabbitmq", func(context.Context) error { return mq.Ping() })
	}
	router := handlers.Router(h)
	srv := httpx.New(fmt.Sprintf(":%d", cfg.Server.Port), router, log)
	return srv.Run(ctx)
}

// publisher returns the event sink and, when rabbitmq is enabled, the
// client behind it.
func publisher(cfg config.RabbitMQConfig, log *logger.Logger) (events.Publisher, *rabbitmq.Client, error) {
	if !cfg.Enabled {
		log.Info("events_disabled", nil)
		return events.NopPublisher{}, nil, nil
	}
	client, err := rabbitmq.Dial(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	if err := client.DeclareTopology(cfg.Exchange, cfg.Queue); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("rabbitmq topology: %w", err)
	}
	log.Info("rabbitmq_connected", map[string]any{"exchange": cfg.Exchange, "queue": cfg.Queue})
	return events.NewAMQPPublisher(client, cfg.Exchange), client, nil
}
