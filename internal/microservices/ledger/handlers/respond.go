package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"restaurant-pos/internal/microservices/ledger/service"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem writes a simplified RFC 7807 body.
func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	writeJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

func writeError(w http.ResponseWriter, err error) {
	if service.IsValidation(err) {
		writeProblem(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	writeProblem(w, http.StatusInternalServerError, "internal_error", err.Error())
}

// tableParam parses {table}. A malformed number is reported and false is
// returned; range checks stay in the service.
func tableParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "table"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_input", "table must be an integer")
		return 0, false
	}
	return n, true
}

// decode reads a JSON body into v. An empty body leaves v untouched when
// allowEmpty is set.
func decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		writeProblem(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}
