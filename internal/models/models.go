package models

import (
	"encoding/json"
	"time"

	"github.com/filterdeck/filterdeck/pkg/filter"
)

// SessionResponse describes an editing session and its current tree.
type SessionResponse struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Tree      filter.Tree `json:"tree"`
}

// AddFilterRequest attaches a condition relative to a parent node. ParentID
// is ignored on an empty tree.
type AddFilterRequest struct {
	ParentID  string           `json:"parent_id,omitempty"`
	Relation  string           `json:"relation,omitempty"`
	Condition filter.Condition `json:"condition"`
}

// ModifyFilterRequest patches a condition or changes a group's relation.
type ModifyFilterRequest struct {
	Relation    string `json:"relation,omitempty"`
	Field       string `json:"field,omitempty"`
	Operator    string `json:"operator,omitempty"`
	Value       any    `json:"value,omitempty"`
	MinOperator string `json:"minOperator,omitempty"`
	MinValue    any    `json:"minValue,omitempty"`
	MaxOperator string `json:"maxOperator,omitempty"`
	MaxValue    any    `json:"maxValue,omitempty"`
}

// CompileRequest carries either a filter tree (or bare node) or a flat
// relation-tagged list; exactly one must be set.
type CompileRequest struct {
	Tree *json.RawMessage `json:"tree,omitempty"`
	Flat *json.RawMessage `json:"flat,omitempty"`
}

// CompileResponse pairs the compiled document with its previews.
type CompileResponse struct {
	QueryDSL      map[string]any `json:"queryDSL"`
	Preview       string         `json:"preview"`
	PreviewMarkup string         `json:"preview_markup"`
}

// SubmitRequest confirms the session's filter with an optional label.
type SubmitRequest struct {
	CustomLabel string `json:"customLabel,omitempty"`
}

// SearchRequest compiles the given representation and executes it.
type SearchRequest struct {
	CompileRequest
	Limit int `json:"limit,omitempty"`
}

// SearchResponse is returned after executing a compiled filter.
type SearchResponse struct {
	RequestID    string           `json:"request_id"`
	LatencyMS    int              `json:"latency_ms"`
	ResultCount  int              `json:"result_count"`
	TotalMatches int              `json:"total_matches"`
	Results      []map[string]any `json:"results"`
	QueryDSL     map[string]any   `json:"queryDSL"`
}

// FieldsResponse lists the filterable field catalog.
type FieldsResponse struct {
	Fields []string `json:"fields"`
}

// ValuesResponse lists suggested values for one field.
type ValuesResponse struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int    `json:"uptime_seconds"`
	Sessions int    `json:"sessions"`
	Search   bool   `json:"search_available"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
