// Package suggest defines the field-value suggestion boundary: given an
// exact field and an optional search term, a Suggester returns values for
// populating the value-entry dropdown. Suggestions are a convenience for the
// UI and are never required for compilation.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/filterdeck/filterdeck/internal/client"
)

const (
	// DefaultSize is the number of values returned when none is requested.
	DefaultSize = 100
	// MaxSize caps the number of values a single lookup may return.
	MaxSize = 1000
)

// Request describes one value lookup.
type Request struct {
	// Field is the exact field to aggregate; required.
	Field string
	// Query optionally narrows values to those starting with the term,
	// case-insensitively.
	Query string
	// Size bounds the result; clamped to [1, MaxSize], DefaultSize when 0.
	Size int
	// Context optionally scopes the lookup to documents matching an
	// existing compiled query document. Malformed context is ignored.
	Context json.RawMessage
}

// Suggester returns a deduplicated ordered sequence of values for a field.
type Suggester interface {
	Suggest(ctx context.Context, req Request) ([]string, error)
}

// searcher is the slice of the transport client a lookup needs.
type searcher interface {
	Search(ctx context.Context, body map[string]any, size int) (*client.SearchResult, error)
}

// OpenSearchSuggester resolves lookups with a terms aggregation.
type OpenSearchSuggester struct {
	search searcher
	logger *slog.Logger
}

// New creates a suggester backed by the given client.
func New(search searcher, logger *slog.Logger) *OpenSearchSuggester {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenSearchSuggester{search: search, logger: logger}
}

// Suggest runs the lookup. Values come back in descending document-count
// order, already unique per aggregation semantics.
func (s *OpenSearchSuggester) Suggest(ctx context.Context, req Request) ([]string, error) {
	if req.Field == "" {
		return nil, fmt.Errorf("suggest: field is required")
	}

	size := ClampSize(req.Size)

	terms := map[string]any{
		"field": req.Field,
		"size":  size,
	}
	if req.Query != "" {
		terms["include"] = prefixPattern(req.Query)
	}

	body := map[string]any{
		"size":  0,
		"query": s.contextQuery(req.Context),
		"aggs": map[string]any{
			"values": map[string]any{
				"terms": terms,
			},
		},
	}

	result, err := s.search.Search(ctx, body, 0)
	if err != nil {
		return nil, fmt.Errorf("suggest lookup: %w", err)
	}

	return bucketKeys(result.Aggregations), nil
}

// ClampSize bounds a requested size to the supported window.
func ClampSize(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// contextQuery extracts the boolean clause from a compiled query document.
// Anything unparsable degrades to match_all rather than failing the lookup.
func (s *OpenSearchSuggester) contextQuery(raw json.RawMessage) map[string]any {
	matchAll := map[string]any{"match_all": map[string]any{}}
	if len(raw) == 0 {
		return matchAll
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("ignoring malformed suggestion context", slog.String("error", err.Error()))
		return matchAll
	}
	if clause, ok := doc["query"].(map[string]any); ok && len(clause) > 0 {
		return clause
	}
	// A bare clause document without the query wrapper is accepted too.
	if len(doc) > 0 {
		return doc
	}
	return matchAll
}

// prefixPattern builds a case-insensitive include regexp for a prefix term.
// The terms aggregation's include parameter has no inline flags, so each
// letter becomes a character class: "ge" -> "[gG][eE].*".
func prefixPattern(term string) string {
	var b strings.Builder
	for _, r := range term {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune('[')
			b.WriteRune(unicode.ToLower(r))
			b.WriteRune(unicode.ToUpper(r))
			b.WriteRune(']')
		case strings.ContainsRune(`.?+*|{}[]()"\#@&<>~`, r):
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(".*")
	return b.String()
}

// bucketKeys pulls the ordered value list out of the aggregation response.
func bucketKeys(aggs map[string]any) []string {
	values, ok := aggs["values"].(map[string]any)
	if !ok {
		return nil
	}
	buckets, ok := values["buckets"].([]any)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(buckets))
	out := make([]string, 0, len(buckets))
	for _, raw := range buckets {
		bucket, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		key := bucketKey(bucket["key"])
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

func bucketKey(v any) string {
	switch key := v.(type) {
	case string:
		return key
	case float64:
		return strconv.FormatFloat(key, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(key)
	default:
		return ""
	}
}

// Catalog lists the filterable fields of the backing index.
type Catalog interface {
	Fields(ctx context.Context) ([]string, error)
}

// StaticCatalog serves a fixed field list, for tests and offline use.
type StaticCatalog []string

// Fields returns the catalog sorted.
func (c StaticCatalog) Fields(_ context.Context) ([]string, error) {
	out := append([]string(nil), c...)
	sort.Strings(out)
	return out, nil
}
