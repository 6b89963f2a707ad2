package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func Router(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.accessLog)

	r.Get("/healthz", h.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		lh := h.LedgerHandler
		r.Get("/summary", lh.Summary)
		r.Route("/tables", func(r chi.Router) {
			r.Get("/", lh.ListTables)
			r.Post("/init", lh.InitTables)
			r.Route("/{table}", func(r chi.Router) {
				r.Get("/", lh.GetTable)
				r.Delete("/", lh.ClearTable)
				r.Put("/status", lh.SetStatus)
				r.Get("/bill", lh.GetBill)
				r.Post("/checkout", lh.Checkout)
				r.Post("/items", lh.AddItem)
				r.Patch("/items/{item_id}", lh.UpdateItem)
				r.Delete("/items/{item_id}", lh.RemoveItem)
				r.Post("/items/{item_id}/increment", lh.IncrementItem)
				r.Post("/items/{item_id}/decrement", lh.DecrementItem)
			})
		})
	})
	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("http_request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
	})
}
