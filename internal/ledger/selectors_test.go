package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSelectors(t *testing.T) {
	s := NewStore()
	s.InitializeTables(1, 2, 3, 4, 5, 6, 7, 8)
	s.AddToOrder(1, line("a", "Soup", "5", 1))
	s.AddToOrder(2, line("b", "Tea", "2", 2))
	s.SetTableStatus(3, StatusReserved)
	s.ClearTableOrder(8)

	l := s.Snapshot()
	universe := []int{1, 2, 3, 4, 5, 6, 7, 8}

	assert.Equal(t, 5, l.AvailableCount(universe), "4..8 are available, 8 by absence")
	assert.Equal(t, 5, l.AvailableCount(append(universe, 4, 4)))
	assert.Equal(t, 2, l.ActiveOrderCount())
	assert.Equal(t, StatusOccupied, l.CurrentStatus(1))
	assert.Equal(t, StatusReserved, l.CurrentStatus(3))
	assert.Equal(t, StatusAvailable, l.CurrentStatus(8))
	assert.Empty(t, l.CurrentItems(8))
	assert.NotNil(t, l.CurrentItems(42))
	assert.Len(t, l.CurrentItems(2), 1)
}

func TestLedgerBill(t *testing.T) {
	s := NewStore()
	s.AddToOrder(2, line("b", "Tea", "2.50", 4))
	l := s.Snapshot()

	b := l.Bill(2, decimal.RequireFromString("0.08"))
	assertMoney(t, "10", b.Subtotal)
	assertMoney(t, "0.8", b.Tax)
	assertMoney(t, "10.8", b.Total)

	empty := l.Bill(7, decimal.RequireFromString("0.08"))
	assert.Equal(t, 7, empty.TableNumber)
	assertMoney(t, "0", empty.Total)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("reserved")
	assert.NoError(t, err)
	assert.Equal(t, StatusReserved, st)

	_, err = ParseStatus("closed")
	assert.Error(t, err)
}
