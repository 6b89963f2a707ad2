package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"restaurant-pos/internal/config"
	"restaurant-pos/internal/connections/database"
)

// Open builds the KV store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (KV, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(cfg.Storage.Path)
	case "sqlite":
		path := cfg.Storage.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "ledger.db")
		}
		return OpenSQLite(path)
	case "postgres":
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		pg := NewPostgres(pool, pool.Close)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
