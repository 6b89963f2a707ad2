package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/ledger"
	"restaurant-pos/internal/microservices/ledger/service"
)

type initTablesRequest struct {
	TableNumbers []int `json:"table_numbers"`
}

type addItemRequest struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions string          `json:"special_instructions"`
}

type updateItemRequest struct {
	Name                *string          `json:"name"`
	UnitPrice           *decimal.Decimal `json:"unit_price"`
	Quantity            *int             `json:"quantity"`
	SpecialInstructions *string          `json:"special_instructions"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type LedgerHandler struct {
	service service.LedgerServiceInterface
}

func NewLedgerHandler(svc service.LedgerServiceInterface) *LedgerHandler {
	return &LedgerHandler{service: svc}
}

func (h *LedgerHandler) InitTables(w http.ResponseWriter, r *http.Request) {
	var req initTablesRequest
	if !decode(w, r, &req, true) {
		return
	}
	tables, err := h.service.InitializeTables(req.TableNumbers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"table_numbers": tables})
}

func (h *LedgerHandler) ListTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Ledger())
}

func (h *LedgerHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	v, err := h.service.Table(table)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *LedgerHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	v, err := h.service.Table(table)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v.Bill)
}

func (h *LedgerHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if !decode(w, r, &req, false) {
		return
	}
	v, err := h.service.AddItem(table, service.ItemInput{
		ID:                  req.ID,
		Name:                req.Name,
		UnitPrice:           req.UnitPrice,
		Quantity:            req.Quantity,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *LedgerHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if !decode(w, r, &req, false) {
		return
	}
	v, found, err := h.service.UpdateItem(table, chi.URLParam(r, "item_id"), ledger.ItemUpdate{
		Name:                req.Name,
		UnitPrice:           req.UnitPrice,
		Quantity:            req.Quantity,
		SpecialInstructions: req.SpecialInstructions,
	})
	h.respondItem(w, v, found, err)
}

func (h *LedgerHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	v, found, err := h.service.IncrementItem(table, chi.URLParam(r, "item_id"))
	h.respondItem(w, v, found, err)
}

func (h *LedgerHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	v, found, err := h.service.DecrementItem(table, chi.URLParam(r, "item_id"))
	h.respondItem(w, v, found, err)
}

func (h *LedgerHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	v, found, err := h.service.RemoveItem(table, chi.URLParam(r, "item_id"))
	h.respondItem(w, v, found, err)
}

func (h *LedgerHandler) respondItem(w http.ResponseWriter, v service.TableView, found bool, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeProblem(w, http.StatusNotFound, "not_found", "item not found on table")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *LedgerHandler) ClearTable(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	cleared, err := h.service.ClearTable(table)
	if err != nil {
		writeError(w, err)
		return
	}
	if !cleared {
		writeProblem(w, http.StatusNotFound, "not_found", "table has no record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req, false) {
		return
	}
	v, err := h.service.SetStatus(table, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *LedgerHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	bill, err := h.service.Checkout(table)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (h *LedgerHandler) Summary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Summary())
}
