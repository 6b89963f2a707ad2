package ledger

import "github.com/shopspring/decimal"

// Recalculate returns a copy of t with every line total and the table total
// derived from unit prices and quantities.
func Recalculate(t TableOrder) TableOrder {
	out := t
	out.Items = make([]OrderLine, len(t.Items))
	total := decimal.Zero
	for i, line := range t.Items {
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(line.LineTotal)
		out.Items[i] = line
	}
	out.TableTotal = total
	return out
}

func sumTables(tables map[int]TableOrder) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tables {
		total = total.Add(t.TableTotal)
	}
	return total
}

// Bill is the checkout breakdown for one table.
type Bill struct {
	TableNumber int             `json:"table_number"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

func ComputeBill(t TableOrder, taxRate decimal.Decimal) Bill {
	tax := t.TableTotal.Mul(taxRate)
	return Bill{
		TableNumber: t.TableNumber,
		Subtotal:    t.TableTotal,
		TaxRate:     taxRate,
		Tax:         tax,
		Total:       t.TableTotal.Add(tax),
	}
}
