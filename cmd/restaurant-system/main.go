package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/microservices/ledger"
	"restaurant-pos/internal/microservices/notificator"
)

func main() {
	mode := flag.String("mode", "", "ledger-service | ticket-subscriber")
	cfgPath := flag.String("config", "config.yaml", "path to YAML config")
	port := flag.Int("port", 0, "ledger-service: http port (overrides server.port)")
	storageDriver := flag.String("storage", "", "ledger-service: memory | file | postgres | sqlite (overrides storage.driver)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *storageDriver != "" {
		cfg.Storage.Driver = *storageDriver
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	lg := logger.NewWithLevel("bootstrap", cfg.Log.Level)
	defer lg.Sync()
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "ledger-service":
		lg.Info("service_started", map[string]any{"service": "ledger-service", "port": cfg.Server.Port, "storage": cfg.Storage.Driver})
		if err := ledger.Run(ctx, cfg, lg.Named("ledger-service")); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	case "ticket-subscriber":
		lg.Info("service_started", map[string]any{"service": "ticket-subscriber", "queue": cfg.RabbitMQ.Queue})
		if err := notificator.Start(ctx, cfg.RabbitMQ, lg.Named("ticket-subscriber")); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: ledger-service | ticket-subscriber")
		os.Exit(2)
	}
	lg.Info("service_stopped", map[string]any{"mode": *mode})
}
