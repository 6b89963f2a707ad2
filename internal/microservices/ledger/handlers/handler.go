package handlers

import (
	"context"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/microservices/ledger/service"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type namedCheck struct {
	name  string
	check HealthCheck
}

type Handler struct {
	LedgerHandler *LedgerHandler
	log           *logger.Logger
	checks        []namedCheck
}

func New(svc service.LedgerServiceInterface, log *logger.Logger) *Handler {
	return &Handler{
		LedgerHandler: NewLedgerHandler(svc),
		log:           log,
	}
}

// WithCheck adds a dependency reported by GET /healthz.
func (h *Handler) WithCheck(name string, check HealthCheck) *Handler {
	h.checks = append(h.checks, namedCheck{name: name, check: check})
	return h
}
