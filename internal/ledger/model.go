package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusReserved  Status = "reserved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusReserved:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown table status %q", s)
	}
	return st, nil
}

// OrderLine is one menu item on a table's check. LineTotal is derived.
type OrderLine struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
	LineTotal           decimal.Decimal `json:"lineTotal"`
}

func (l OrderLine) Equal(o OrderLine) bool {
	return l.ID == o.ID &&
		l.Name == o.Name &&
		l.UnitPrice.Equal(o.UnitPrice) &&
		l.Quantity == o.Quantity &&
		l.SpecialInstructions == o.SpecialInstructions &&
		l.LineTotal.Equal(o.LineTotal)
}

// TableOrder is the current check of one physical table.
type TableOrder struct {
	TableNumber int             `json:"tableNumber"`
	Items       []OrderLine     `json:"items"`
	TableTotal  decimal.Decimal `json:"tableTotal"`
	Status      Status          `json:"status"`
}

func (t TableOrder) Equal(o TableOrder) bool {
	if t.TableNumber != o.TableNumber || t.Status != o.Status || !t.TableTotal.Equal(o.TableTotal) {
		return false
	}
	if len(t.Items) != len(o.Items) {
		return false
	}
	for i := range t.Items {
		if !t.Items[i].Equal(o.Items[i]) {
			return false
		}
	}
	return true
}

func (t TableOrder) itemIndex(id string) int {
	for i := range t.Items {
		if t.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (t TableOrder) clone() TableOrder {
	out := t
	out.Items = make([]OrderLine, len(t.Items))
	copy(out.Items, t.Items)
	return out
}

// Ledger is a point-in-time copy of every table order, sorted by table number.
type Ledger struct {
	Tables     []TableOrder    `json:"tables"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

func (l Ledger) Equal(o Ledger) bool {
	if !l.GrandTotal.Equal(o.GrandTotal) || len(l.Tables) != len(o.Tables) {
		return false
	}
	for i := range l.Tables {
		if !l.Tables[i].Equal(o.Tables[i]) {
			return false
		}
	}
	return true
}

// ItemUpdate carries the fields to merge into an existing line; nil fields are left alone.
type ItemUpdate struct {
	Name                *string
	UnitPrice           *decimal.Decimal
	Quantity            *int
	SpecialInstructions *string
}

// Empty reports whether u sets no field at all.
func (u ItemUpdate) Empty() bool {
	return u.Name == nil && u.UnitPrice == nil && u.Quantity == nil && u.SpecialInstructions == nil
}

func (u ItemUpdate) apply(line OrderLine) OrderLine {
	if u.Name != nil {
		line.Name = *u.Name
	}
	if u.UnitPrice != nil {
		line.UnitPrice = *u.UnitPrice
	}
	if u.Quantity != nil {
		line.Quantity = *u.Quantity
	}
	if u.SpecialInstructions != nil {
		line.SpecialInstructions = *u.SpecialInstructions
	}
	return line
}
