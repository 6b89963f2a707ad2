package service

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/events"
	"restaurant-pos/internal/ledger"
)

type ItemInput struct {
	ID                  string
	Name                string
	UnitPrice           decimal.Decimal
	Quantity            int
	SpecialInstructions string
}

type TableView struct {
	TableNumber int                `json:"table_number"`
	Status      ledger.Status      `json:"status"`
	Items       []ledger.OrderLine `json:"items"`
	Bill        ledger.Bill        `json:"bill"`
}

type Summary struct {
	Tables           []int           `json:"tables"`
	AvailableCount   int             `json:"available_count"`
	ActiveOrderCount int             `json:"active_order_count"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
}

type LedgerServiceInterface interface {
	InitializeTables(numbers []int) ([]int, error)
	AddItem(table int, in ItemInput) (TableView, error)
	UpdateItem(table int, itemID string, u ledger.ItemUpdate) (TableView, bool, error)
	SetNote(table int, itemID, note string) (TableView, bool, error)
	IncrementItem(table int, itemID string) (TableView, bool, error)
	DecrementItem(table int, itemID string) (TableView, bool, error)
	RemoveItem(table int, itemID string) (TableView, bool, error)
	ClearTable(table int) (bool, error)
	SetStatus(table int, status string) (TableView, error)
	Table(table int) (TableView, error)
	Ledger() ledger.Ledger
	Checkout(table int) (ledger.Bill, error)
	Summary() Summary
}

// Emitter receives events that do not come from a store command.
type Emitter interface {
	Emit(ev events.TableEvent)
}

// LedgerService validates caller input and forwards it to the store. Every
// mutation holds mu so read-then-write operations (increment, decrement,
// checkout) see no interleaved command.
type LedgerService struct {
	mu      sync.Mutex
	store   *ledger.Store
	emitter Emitter
	log     *logger.Logger
	tables  []int
	taxRate decimal.Decimal
}

func NewLedgerService(store *ledger.Store, emitter Emitter, log *logger.Logger, tables []int, taxRate decimal.Decimal) *LedgerService {
	return &LedgerService{store: store, emitter: emitter, log: log, tables: tables, taxRate: taxRate}
}

func validTable(n int) error {
	if n <= 0 {
		return invalid("table_number", "must be a positive integer, got %d", n)
	}
	return nil
}

func validItemID(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("item_id", "is required")
	}
	return nil
}

func (s *LedgerService) view(l ledger.Ledger, table int) TableView {
	return TableView{
		TableNumber: table,
		Status:      l.CurrentStatus(table),
		Items:       l.CurrentItems(table),
		Bill:        l.Bill(table, s.taxRate),
	}
}

// InitializeTables creates the given tables, or the configured floor plan
// when numbers is empty. It returns the numbers it was asked to ensure.
func (s *LedgerService) InitializeTables(numbers []int) ([]int, error) {
	if len(numbers) == 0 {
		numbers = s.tables
	}
	for _, n := range numbers {
		if err := validTable(n); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.InitializeTables(numbers...) {
		s.log.Info("tables_initialized", map[string]any{"tables": numbers})
	}
	return numbers, nil
}

func (s *LedgerService) AddItem(table int, in ItemInput) (TableView, error) {
	if err := validTable(table); err != nil {
		return TableView{}, err
	}
	if err := validItemID(in.ID); err != nil {
		return TableView{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return TableView{}, invalid("name", "is required")
	}
	if in.UnitPrice.IsNegative() {
		return TableView{}, invalid("unit_price", "must not be negative")
	}
	if in.Quantity < 1 {
		return TableView{}, invalid("quantity", "must be at least 1, got %d", in.Quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.AddToOrder(table, ledger.OrderLine{
		ID:                  in.ID,
		Name:                in.Name,
		UnitPrice:           in.UnitPrice,
		Quantity:            in.Quantity,
		SpecialInstructions: in.SpecialInstructions,
	})
	s.log.Info("item_added", map[string]any{"table_number": table, "item_id": in.ID, "quantity": in.Quantity})
	return s.view(s.store.Snapshot(), table), nil
}

// UpdateItem merges u into a line. Quantities below 1 are refused: dropping
// a line goes through RemoveItem or DecrementItem.
func (s *LedgerService) UpdateItem(table int, itemID string, u ledger.ItemUpdate) (TableView, bool, error) {
	if err := validTable(table); err != nil {
		return TableView{}, false, err
	}
	if err := validItemID(itemID); err != nil {
		return TableView{}, false, err
	}
	if u.Quantity != nil && *u.Quantity < 1 {
		return TableView{}, false, invalid("quantity", "must be at least 1, got %d", *u.Quantity)
	}
	if u.UnitPrice != nil && u.UnitPrice.IsNegative() {
		return TableView{}, false, invalid("unit_price", "must not be negative")
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return TableView{}, false, invalid("name", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.store.UpdateOrderItem(table, itemID, u)
	return s.view(s.store.Snapshot(), table), ok, nil
}

func (s *LedgerService) SetNote(table int, itemID, note string) (TableView, bool, error) {
	return s.UpdateItem(table, itemID, ledger.ItemUpdate{SpecialInstructions: &note})
}

func (s *LedgerService) IncrementItem(table int, itemID string) (TableView, bool, error) {
	return s.adjust(table, itemID, 1)
}

// DecrementItem lowers the quantity by one and removes the line when it
// would drop below 1.
func (s *LedgerService) DecrementItem(table int, itemID string) (TableView, bool, error) {
	return s.adjust(table, itemID, -1)
}

func (s *LedgerService) adjust(table int, itemID string, delta int) (TableView, bool, error) {
	if err := validTable(table); err != nil {
		return TableView{}, false, err
	}
	if err := validItemID(itemID); err != nil {
		return TableView{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := -1
	for _, it := range s.store.Snapshot().CurrentItems(table) {
		if it.ID == itemID {
			current = it.Quantity
			break
		}
	}
	if current < 0 {
		return s.view(s.store.Snapshot(), table), false, nil
	}

	next := current + delta
	if next < 1 {
		s.store.RemoveFromOrder(table, itemID)
		s.log.Info("item_removed", map[string]any{"table_number": table, "item_id": itemID})
	} else {
		s.store.UpdateOrderItem(table, itemID, ledger.ItemUpdate{Quantity: &next})
	}
	return s.view(s.store.Snapshot(), table), true, nil
}

func (s *LedgerService) RemoveItem(table int, itemID string) (TableView, bool, error) {
	if err := validTable(table); err != nil {
		return TableView{}, false, err
	}
	if err := validItemID(itemID); err != nil {
		return TableView{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.store.RemoveFromOrder(table, itemID)
	if ok {
		s.log.Info("item_removed", map[string]any{"table_number": table, "item_id": itemID})
	}
	return s.view(s.store.Snapshot(), table), ok, nil
}

func (s *LedgerService) ClearTable(table int) (bool, error) {
	if err := validTable(table); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.store.ClearTableOrder(table)
	if ok {
		s.log.Info("table_cleared", map[string]any{"table_number": table})
	}
	return ok, nil
}

func (s *LedgerService) SetStatus(table int, status string) (TableView, error) {
	if err := validTable(table); err != nil {
		return TableView{}, err
	}
	st, err := ledger.ParseStatus(status)
	if err != nil {
		return TableView{}, invalid("status", "%v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.SetTableStatus(table, st) {
		s.log.Info("table_status_set", map[string]any{"table_number": table, "status": string(st)})
	}
	return s.view(s.store.Snapshot(), table), nil
}

func (s *LedgerService) Table(table int) (TableView, error) {
	if err := validTable(table); err != nil {
		return TableView{}, err
	}
	return s.view(s.store.Snapshot(), table), nil
}

func (s *LedgerService) Ledger() ledger.Ledger {
	return s.store.Snapshot()
}

// Checkout settles a table: it computes the bill, clears the table and
// announces the settlement. Payment itself happens elsewhere.
func (s *LedgerService) Checkout(table int) (ledger.Bill, error) {
	if err := validTable(table); err != nil {
		return ledger.Bill{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.store.Snapshot()
	if len(l.CurrentItems(table)) == 0 {
		return ledger.Bill{}, invalid("table_number", "table %d has no items to check out", table)
	}
	bill := l.Bill(table, s.taxRate)
	s.store.ClearTableOrder(table)

	s.emitter.Emit(events.TableEvent{
		ID:          uuid.NewString(),
		Type:        events.TableCheckedOut,
		Command:     "checkout",
		TableNumber: table,
		Bill:        &bill,
		GrandTotal:  s.store.Snapshot().GrandTotal,
		OccurredAt:  time.Now().UTC(),
	})
	s.log.Info("table_checked_out", map[string]any{"table_number": table, "total": bill.Total.StringFixed(2)})
	return bill, nil
}

func (s *LedgerService) Summary() Summary {
	l := s.store.Snapshot()
	return Summary{
		Tables:           s.tables,
		AvailableCount:   l.AvailableCount(s.tables),
		ActiveOrderCount: l.ActiveOrderCount(),
		GrandTotal:       l.GrandTotal,
		TaxRate:          s.taxRate,
	}
}
