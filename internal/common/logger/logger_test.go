package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsCarryActionAndError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := newLogger("test", zap.New(core))

	l.Info("table_updated", map[string]any{"table_number": 3})
	l.Error("snapshot_save_failed", errors.New("disk full"), nil)
	l.Debug("noise", nil)

	entries := logs.All()
	assert.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "table_updated", first["action"])
	assert.EqualValues(t, 3, first["table_number"])

	second := entries[1].ContextMap()
	assert.Equal(t, "disk full", second["error"])
}

func TestNewWithLevelFallsBackOnBadLevel(t *testing.T) {
	l := NewWithLevel("svc", "loud")
	assert.NotNil(t, l)
	l.Info("started", nil)
	NewNop().Error("ignored", errors.New("x"), nil)
}

func TestNamedReplacesService(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	boot := newLogger("bootstrap", zap.New(core))

	svc := boot.Named("ledger-service")
	svc.Info("service_started", nil)
	svc.Component("snapshot").Info("snapshot_saved", nil)
	boot.Info("service_stopped", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "ledger-service", first["service"])

	second := entries[1].ContextMap()
	assert.Equal(t, "ledger-service", second["service"])
	assert.Equal(t, "snapshot", second["component"])

	assert.Equal(t, "bootstrap", entries[2].ContextMap()["service"])
	for _, e := range entries {
		n := 0
		for _, f := range e.Context {
			if f.Key == "service" {
				n++
			}
		}
		assert.Equal(t, 1, n, "one service field per entry")
	}
}
