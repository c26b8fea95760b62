package handlers

import (
	"net/http"
	"strings"

	"github.com/filterdeck/filterdeck/internal/models"
	"github.com/filterdeck/filterdeck/pkg/filter"
)

// Sessions handles POST /api/v1/sessions.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.svc.CreateSession())
}

// SessionByID dispatches /api/v1/sessions/{id} and its sub-resources.
func (h *Handler) SessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if parts[0] == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_session_id", "session id must be provided")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		h.session(w, r, id)
	case len(parts) == 2 && parts[1] == "filters":
		h.addFilter(w, r, id)
	case len(parts) == 2 && parts[1] == "preview":
		h.sessionPreview(w, r, id)
	case len(parts) == 2 && parts[1] == "query":
		h.sessionQuery(w, r, id)
	case len(parts) == 2 && parts[1] == "submit":
		h.sessionSubmit(w, r, id)
	case len(parts) == 2 && parts[1] == "reset":
		h.sessionReset(w, r, id)
	case len(parts) == 2 && parts[1] == "search":
		h.sessionSearch(w, r, id)
	case len(parts) == 3 && parts[1] == "filters":
		h.filterNode(w, r, id, parts[2])
	case len(parts) == 4 && parts[1] == "filters" && parts[3] == "toggle":
		h.toggleFilter(w, r, id, parts[2])
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		resp, err := h.svc.GetSession(id)
		if err != nil {
			h.writeServiceError(w, "session_unavailable", err)
			return
		}
		h.writeJSON(w, http.StatusOK, resp)
	case http.MethodDelete:
		if err := h.svc.DeleteSession(id); err != nil {
			h.writeServiceError(w, "session_unavailable", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (h *Handler) addFilter(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}
	var req models.AddFilterRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	rel := filter.RelationAnd
	if req.Relation != "" {
		parsed, ok := filter.ParseRelation(req.Relation)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "invalid_relation", "relation must be AND or OR")
			return
		}
		rel = parsed
	}
	cond := req.Condition
	if err := h.validator.ValidateCondition(&cond); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_condition", err.Error())
		return
	}
	resp, err := h.svc.AddFilter(id, req.ParentID, rel, &cond)
	if err != nil {
		h.writeServiceError(w, "add_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) filterNode(w http.ResponseWriter, r *http.Request, id, nodeID string) {
	switch r.Method {
	case http.MethodPatch:
		h.modifyFilter(w, r, id, nodeID)
	case http.MethodDelete:
		resp, err := h.svc.RemoveFilter(id, nodeID)
		if err != nil {
			h.writeServiceError(w, "remove_failed", err)
			return
		}
		h.writeJSON(w, http.StatusOK, resp)
	default:
		h.methodNotAllowed(w, http.MethodPatch, http.MethodDelete)
	}
}

func (h *Handler) modifyFilter(w http.ResponseWriter, r *http.Request, id, nodeID string) {
	var req models.ModifyFilterRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var rel filter.Relation
	if req.Relation != "" {
		parsed, ok := filter.ParseRelation(req.Relation)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "invalid_relation", "relation must be AND or OR")
			return
		}
		rel = parsed
	}
	var op filter.Operator
	if req.Operator != "" {
		parsed, ok := filter.ParseOperator(req.Operator)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "invalid_operator", "unknown operator")
			return
		}
		op = parsed
	}
	resp, err := h.svc.ModifyFilter(id, nodeID, rel, filter.ConditionPatch{
		Field:       req.Field,
		Operator:    op,
		Value:       req.Value,
		MinOperator: req.MinOperator,
		MinValue:    req.MinValue,
		MaxOperator: req.MaxOperator,
		MaxValue:    req.MaxValue,
	})
	if err != nil {
		h.writeServiceError(w, "modify_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) toggleFilter(w http.ResponseWriter, r *http.Request, id, nodeID string) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}
	resp, err := h.svc.ToggleRelation(id, nodeID)
	if err != nil {
		h.writeServiceError(w, "toggle_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) sessionPreview(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}
	resp, err := h.svc.Compile(id)
	if err != nil {
		h.writeServiceError(w, "preview_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"preview":        resp.Preview,
		"preview_markup": resp.PreviewMarkup,
	})
}

func (h *Handler) sessionQuery(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}
	resp, err := h.svc.Compile(id)
	if err != nil {
		h.writeServiceError(w, "compile_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) sessionSubmit(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}
	var req models.SubmitRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r.Body, &req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}
	group, err := h.svc.Submit(id, req.CustomLabel)
	if err != nil {
		h.writeServiceError(w, "submit_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, group)
}

func (h *Handler) sessionReset(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}
	resp, err := h.svc.ResetSession(id)
	if err != nil {
		h.writeServiceError(w, "reset_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) sessionSearch(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}
	limit := parseIntQuery(r, "limit", 100)
	resp, err := h.svc.Execute(r.Context(), id, limit)
	if err != nil {
		h.writeServiceError(w, "search_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}
