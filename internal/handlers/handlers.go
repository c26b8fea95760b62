package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/filterdeck/filterdeck/internal/models"
	"github.com/filterdeck/filterdeck/internal/service"
	"github.com/filterdeck/filterdeck/internal/validator"
	"github.com/filterdeck/filterdeck/pkg/filter"
)

// Handler wires HTTP routes to the filter service.
type Handler struct {
	svc       *service.FilterService
	validator *validator.FilterValidator
}

// New creates a Handler instance.
func New(svc *service.FilterService) *Handler {
	return &Handler{svc: svc, validator: validator.New()}
}

// Health handles GET /healthz for liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.Health())
}

// Compile handles POST /api/v1/compile: stateless compilation of either
// representation into the query document plus previews.
func (h *Handler) Compile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}
	var req models.CompileRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	resp, ok := h.compile(w, &req)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Search handles POST /api/v1/search: compile the given representation and
// execute it against the backend.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}
	var req models.SearchRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	compiled, ok := h.compile(w, &req.CompileRequest)
	if !ok {
		return
	}
	resp, err := h.svc.ExecuteQuery(r.Context(), compiled.QueryDSL, req.Limit)
	if err != nil {
		h.writeServiceError(w, "search_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// compile resolves a CompileRequest into a response, writing the error
// itself when the payload is unusable.
func (h *Handler) compile(w http.ResponseWriter, req *models.CompileRequest) (models.CompileResponse, bool) {
	switch {
	case req.Tree != nil && req.Flat != nil:
		h.writeError(w, http.StatusBadRequest, "invalid_request", "tree and flat are mutually exclusive")
	case req.Tree != nil:
		tree, err := parseTreePayload(*req.Tree)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
			return models.CompileResponse{}, false
		}
		return h.svc.CompileTree(tree), true
	case req.Flat != nil:
		list, err := filter.ParseFlatList(*req.Flat)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
			return models.CompileResponse{}, false
		}
		return h.svc.CompileFlat(list), true
	default:
		h.writeError(w, http.StatusBadRequest, "invalid_request", "either tree or flat must be provided")
	}
	return models.CompileResponse{}, false
}

// parseTreePayload accepts either a full tree document or a bare node.
func parseTreePayload(raw json.RawMessage) (filter.Tree, error) {
	var probe struct {
		Root json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Root != nil {
		return filter.ParseTree(raw)
	}
	node, err := filter.ParseNode(raw)
	if err != nil {
		return filter.Tree{}, err
	}
	tree := filter.NewTree()
	tree.Root = node
	return tree, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		h.writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, service.ErrSearchUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, "search_unavailable", err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, code, err.Error())
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method is not allowed")
}

func decodeJSON(body io.ReadCloser, dst any) error {
	defer body.Close()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}
