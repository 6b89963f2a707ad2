package database

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/config"
)

func TestDSNKeepsCredentialsIntact(t *testing.T) {
	cases := map[string]config.DatabaseConfig{
		"plain":         {Host: "db", Port: 5432, User: "pos", Password: "secret", Database: "pos"},
		"at slash hash": {Host: "db", Port: 5432, User: "pos", Password: "p@ss/w#rd", Database: "pos"},
		"colon in user": {Host: "db", Port: 5433, User: "a:b", Password: "x?y=z&w", Database: "ledger", SSLMode: "require"},
		"ipv6 host":     {Host: "::1", Port: 5432, User: "pos", Password: "pw", Database: "pos"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			pc, err := pgxpool.ParseConfig(DSN(cfg))
			require.NoError(t, err)
			assert.Equal(t, cfg.Host, pc.ConnConfig.Host)
			assert.EqualValues(t, cfg.Port, pc.ConnConfig.Port)
			assert.Equal(t, cfg.User, pc.ConnConfig.User)
			assert.Equal(t, cfg.Password, pc.ConnConfig.Password)
			assert.Equal(t, cfg.Database, pc.ConnConfig.Database)
		})
	}
}

func TestDSNDefaultsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d"})
	assert.Contains(t, dsn, "sslmode=disable")
}
