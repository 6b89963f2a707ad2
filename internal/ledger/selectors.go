package ledger

import "github.com/shopspring/decimal"

func (l Ledger) Table(tableNumber int) (TableOrder, bool) {
	for _, t := range l.Tables {
		if t.TableNumber == tableNumber {
			return t, true
		}
	}
	return TableOrder{}, false
}

// CurrentItems returns the lines of a table in insertion order, or an empty
// slice for an unknown table.
func (l Ledger) CurrentItems(tableNumber int) []OrderLine {
	t, ok := l.Table(tableNumber)
	if !ok {
		return []OrderLine{}
	}
	out := make([]OrderLine, len(t.Items))
	copy(out, t.Items)
	return out
}

// CurrentStatus treats absent tables as available.
func (l Ledger) CurrentStatus(tableNumber int) Status {
	t, ok := l.Table(tableNumber)
	if !ok {
		return StatusAvailable
	}
	return t.Status
}

// AvailableCount counts the tables of universe that are available. Tables
// missing from the ledger count as available.
func (l Ledger) AvailableCount(universe []int) int {
	seen := make(map[int]struct{}, len(universe))
	n := 0
	for _, num := range universe {
		if _, dup := seen[num]; dup {
			continue
		}
		seen[num] = struct{}{}
		if l.CurrentStatus(num) == StatusAvailable {
			n++
		}
	}
	return n
}

func (l Ledger) ActiveOrderCount() int {
	n := 0
	for _, t := range l.Tables {
		if len(t.Items) > 0 {
			n++
		}
	}
	return n
}

func (l Ledger) Bill(tableNumber int, taxRate decimal.Decimal) Bill {
	t, ok := l.Table(tableNumber)
	if !ok {
		t = TableOrder{TableNumber: tableNumber, TableTotal: decimal.Zero}
	}
	return ComputeBill(t, taxRate)
}
