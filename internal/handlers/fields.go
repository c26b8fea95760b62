package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/filterdeck/filterdeck/internal/models"
)

// Fields handles GET /api/v1/fields: the filterable field catalog.
func (h *Handler) Fields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}
	fields, err := h.svc.Fields(r.Context())
	if err != nil {
		h.writeServiceError(w, "fields_unavailable", err)
		return
	}
	h.writeJSON(w, http.StatusOK, models.FieldsResponse{Fields: fields})
}

// FieldValues handles GET /api/v1/fields/{field}/values.
func (h *Handler) FieldValues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/fields/")
	field, sub, found := strings.Cut(rest, "/")
	if !found || sub != "values" || field == "" {
		h.writeError(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}

	q := r.URL.Query()
	values, err := h.svc.SuggestValues(
		r.Context(),
		q.Get("session"),
		field,
		q.Get("query"),
		parseIntQuery(r, "size", 0),
	)
	if err != nil {
		h.writeServiceError(w, "values_unavailable", err)
		return
	}
	h.writeJSON(w, http.StatusOK, models.ValuesResponse{Field: field, Values: values})
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
