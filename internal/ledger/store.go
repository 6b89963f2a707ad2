package ledger

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

type Command string

const (
	CmdInitializeTables Command = "initialize_tables"
	CmdAddToOrder       Command = "add_to_order"
	CmdUpdateOrderItem  Command = "update_order_item"
	CmdRemoveFromOrder  Command = "remove_from_order"
	CmdClearTableOrder  Command = "clear_table_order"
	CmdSetTableStatus   Command = "set_table_status"
)

// Change describes one committed command. Ledger is a private copy of the
// state right after the command was applied.
type Change struct {
	Command Command
	Tables  []int
	Ledger  Ledger
}

// Observer is invoked after every committed command while the store still
// holds its write lock, so observers see changes in commit order. Observers
// must not block and must not call back into the store.
type Observer func(Change)

// Store owns the table orders. All methods are safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	tables     map[int]TableOrder
	grandTotal decimal.Decimal
	observers  []Observer
}

func NewStore() *Store {
	return &Store{tables: make(map[int]TableOrder), grandTotal: decimal.Zero}
}

func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Restore replaces the current state with l. Derived totals are recomputed
// rather than trusted. Observers are not notified.
func (s *Store) Restore(l Ledger) {
	tables := make(map[int]TableOrder, len(l.Tables))
	for _, t := range l.Tables {
		tables[t.TableNumber] = Recalculate(t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = tables
	s.grandTotal = sumTables(tables)
}

func (s *Store) Snapshot() Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Ledger {
	out := Ledger{Tables: make([]TableOrder, 0, len(s.tables)), GrandTotal: s.grandTotal}
	for _, t := range s.tables {
		out.Tables = append(out.Tables, t.clone())
	}
	sort.Slice(out.Tables, func(i, j int) bool { return out.Tables[i].TableNumber < out.Tables[j].TableNumber })
	return out
}

// commitLocked recomputes the grand total and notifies observers.
func (s *Store) commitLocked(cmd Command, tables ...int) {
	s.grandTotal = sumTables(s.tables)
	if len(s.observers) == 0 {
		return
	}
	ch := Change{Command: cmd, Tables: tables, Ledger: s.snapshotLocked()}
	for _, o := range s.observers {
		o(ch)
	}
}

// InitializeTables creates every missing table as an empty available table.
// It reports whether any table was created.
func (s *Store) InitializeTables(numbers ...int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created []int
	for _, n := range numbers {
		if _, ok := s.tables[n]; ok {
			continue
		}
		s.tables[n] = TableOrder{TableNumber: n, Items: []OrderLine{}, TableTotal: decimal.Zero, Status: StatusAvailable}
		created = append(created, n)
	}
	if len(created) == 0 {
		return false
	}
	s.commitLocked(CmdInitializeTables, created...)
	return true
}

// AddToOrder puts item on the table's check. A line with the same id
// accumulates the incoming quantity. The table always ends up occupied.
func (s *Store) AddToOrder(tableNumber int, item OrderLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableNumber]
	if !ok {
		t = TableOrder{TableNumber: tableNumber}
	}
	t = t.clone()
	if i := t.itemIndex(item.ID); i >= 0 {
		t.Items[i].Quantity += item.Quantity
	} else {
		t.Items = append(t.Items, item)
	}
	t = Recalculate(t)
	t.Status = StatusOccupied
	s.tables[tableNumber] = t
	s.commitLocked(CmdAddToOrder, tableNumber)
}

// UpdateOrderItem merges u into the matching line. Missing tables or items
// are ignored and reported as false. Quantities are stored as given, zero
// included; removing a line is the caller's decision. An update that leaves
// the line as it was reports true but commits nothing.
func (s *Store) UpdateOrderItem(tableNumber int, itemID string, u ItemUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableNumber]
	if !ok {
		return false
	}
	i := t.itemIndex(itemID)
	if i < 0 {
		return false
	}
	if u.Empty() {
		return true
	}
	t = t.clone()
	before := t.Items[i]
	t.Items[i] = u.apply(before)
	t = Recalculate(t)
	if t.Items[i].Equal(before) {
		return true
	}
	s.tables[tableNumber] = t
	s.commitLocked(CmdUpdateOrderItem, tableNumber)
	return true
}

// RemoveFromOrder drops the matching line. A table left without items is
// deleted from the ledger.
func (s *Store) RemoveFromOrder(tableNumber int, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableNumber]
	if !ok {
		return false
	}
	i := t.itemIndex(itemID)
	if i < 0 {
		return false
	}
	items := make([]OrderLine, 0, len(t.Items)-1)
	items = append(items, t.Items[:i]...)
	items = append(items, t.Items[i+1:]...)
	if len(items) == 0 {
		delete(s.tables, tableNumber)
	} else {
		t.Items = items
		s.tables[tableNumber] = Recalculate(t)
	}
	s.commitLocked(CmdRemoveFromOrder, tableNumber)
	return true
}

// ClearTableOrder deletes the table record whatever it holds.
func (s *Store) ClearTableOrder(tableNumber int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[tableNumber]; !ok {
		return false
	}
	delete(s.tables, tableNumber)
	s.commitLocked(CmdClearTableOrder, tableNumber)
	return true
}

// SetTableStatus overwrites the status of a table, creating an empty record
// when the table is unknown. Items and totals are untouched.
func (s *Store) SetTableStatus(tableNumber int, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableNumber]
	if ok && t.Status == status {
		return false
	}
	if !ok {
		t = TableOrder{TableNumber: tableNumber, Items: []OrderLine{}, TableTotal: decimal.Zero}
	}
	t.Status = status
	s.tables[tableNumber] = t
	s.commitLocked(CmdSetTableStatus, tableNumber)
	return true
}
