package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecalculate(t *testing.T) {
	in := TableOrder{
		TableNumber: 3,
		Status:      StatusOccupied,
		Items: []OrderLine{
			{ID: "a", UnitPrice: decimal.RequireFromString("4.50"), Quantity: 2, LineTotal: decimal.NewFromInt(999)},
			{ID: "b", UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3},
		},
		TableTotal: decimal.NewFromInt(-1),
	}

	out := Recalculate(in)
	assertMoney(t, "9", out.Items[0].LineTotal)
	assertMoney(t, "0.3", out.Items[1].LineTotal)
	assertMoney(t, "9.3", out.TableTotal)
	assert.Equal(t, StatusOccupied, out.Status)

	assertMoney(t, "999", in.Items[0].LineTotal, "input must not be mutated")
	assert.True(t, out.Equal(Recalculate(out)), "recalculation is idempotent")
}

func TestRecalculate_Empty(t *testing.T) {
	out := Recalculate(TableOrder{TableNumber: 1})
	assertMoney(t, "0", out.TableTotal)
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
}

func TestComputeBill(t *testing.T) {
	table := Recalculate(TableOrder{TableNumber: 2, Items: []OrderLine{line("a", "Soup", "5", 3)}})
	b := ComputeBill(table, decimal.RequireFromString("0.08"))

	assert.Equal(t, 2, b.TableNumber)
	assertMoney(t, "15", b.Subtotal)
	assertMoney(t, "1.2", b.Tax)
	assertMoney(t, "16.2", b.Total)
}
