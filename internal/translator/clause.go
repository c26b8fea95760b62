package translator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/filterdeck/filterdeck/pkg/filter"
)

// clause builds the single boolean clause for a leaf condition, or nil when
// the condition cannot produce one. A row still being filled in (missing
// field or operator) is skipped silently; unknown or unsatisfiable operators
// are skipped with a warning so compilation always continues.
func (t *OpenSearchTranslator) clause(c *filter.Condition) map[string]any {
	if c == nil || c.Field == "" || c.Operator == "" {
		return nil
	}

	exact := filter.IsExactField(c.Field) || filter.IsTimeField(c.Field)

	switch c.Operator {
	case filter.OpIs:
		value, ok := t.scalarValue(c, exact)
		if !ok {
			return nil
		}
		return t.termOrMatch(c.Field, value, exact)

	case filter.OpIsNot:
		value, ok := t.scalarValue(c, exact)
		if !ok {
			return nil
		}
		return mustNot(t.termOrMatch(c.Field, value, exact))

	case filter.OpIsOneOf:
		values := t.listValue(c, exact)
		if values == nil {
			return nil
		}
		return map[string]any{"terms": map[string]any{c.Field: values}}

	case filter.OpIsNotOneOf:
		values := t.listValue(c, exact)
		if values == nil {
			return nil
		}
		return mustNot(map[string]any{"terms": map[string]any{c.Field: values}})

	case filter.OpExists:
		return map[string]any{"exists": map[string]any{"field": c.Field}}

	case filter.OpDoesNotExist:
		return mustNot(map[string]any{"exists": map[string]any{"field": c.Field}})

	case filter.OpRange:
		return t.rangeClause(c, exact)

	case filter.OpPrefix:
		value, ok := t.stringValue(c)
		if !ok {
			return nil
		}
		if exact {
			return map[string]any{"prefix": map[string]any{c.Field: map[string]any{"value": value}}}
		}
		return wildcardClause(c.Field, value+"*")

	case filter.OpWildcard:
		value, ok := t.stringValue(c)
		if !ok {
			return nil
		}
		return wildcardClause(c.Field, value)

	case filter.OpQueryString:
		value, ok := t.stringValue(c)
		if !ok {
			return nil
		}
		return map[string]any{
			"query_string": map[string]any{
				"query":         value,
				"default_field": c.Field,
			},
		}
	}

	t.logger.Warn("skipping condition with unknown operator",
		slog.String("field", c.Field),
		slog.String("operator", string(c.Operator)),
	)
	return nil
}

// termOrMatch picks the clause kind per the field's exactness. Numbers and
// booleans always match verbatim, even on analyzed fields.
func (t *OpenSearchTranslator) termOrMatch(field string, value any, exact bool) map[string]any {
	if exact || filter.IsNumeric(value) {
		return map[string]any{"term": map[string]any{field: value}}
	}
	return map[string]any{"match": map[string]any{field: value}}
}

func (t *OpenSearchTranslator) rangeClause(c *filter.Condition, exact bool) map[string]any {
	bounds := make(map[string]any, 2)
	t.addBound(bounds, c, strings.ToLower(c.MinOperator), c.MinValue, exact)
	t.addBound(bounds, c, strings.ToLower(c.MaxOperator), c.MaxValue, exact)
	if len(bounds) == 0 {
		t.logger.Warn("skipping range condition without bounds", slog.String("field", c.Field))
		return nil
	}
	return map[string]any{"range": map[string]any{c.Field: bounds}}
}

func (t *OpenSearchTranslator) addBound(bounds map[string]any, c *filter.Condition, op string, value any, exact bool) {
	if op == "" && value == nil {
		return
	}
	if !filter.ValidRangeBound(op) || value == nil {
		t.logger.Warn("skipping malformed range bound",
			slog.String("field", c.Field),
			slog.String("bound", op),
		)
		return
	}
	if !exact {
		value = filter.CoerceNumber(value)
	}
	bounds[op] = value
}

// scalarValue prepares a single value, coercing lexical numbers on analyzed
// fields so numeric comparisons are not treated as text matches.
func (t *OpenSearchTranslator) scalarValue(c *filter.Condition, exact bool) (any, bool) {
	if c.Value == nil {
		t.logger.Warn("skipping condition without value",
			slog.String("field", c.Field),
			slog.String("operator", string(c.Operator)),
		)
		return nil, false
	}
	if exact {
		return c.Value, true
	}
	return filter.CoerceNumber(c.Value), true
}

// listValue normalizes a multi-value operand to an array, coercing each
// element on analyzed fields.
func (t *OpenSearchTranslator) listValue(c *filter.Condition, exact bool) []any {
	values := filter.ValueList(c.Value)
	if len(values) == 0 {
		t.logger.Warn("skipping condition without values",
			slog.String("field", c.Field),
			slog.String("operator", string(c.Operator)),
		)
		return nil
	}
	if exact {
		return values
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = filter.CoerceNumber(v)
	}
	return out
}

func (t *OpenSearchTranslator) stringValue(c *filter.Condition) (string, bool) {
	if c.Value == nil || c.Value == "" {
		t.logger.Warn("skipping condition without value",
			slog.String("field", c.Field),
			slog.String("operator", string(c.Operator)),
		)
		return "", false
	}
	if s, ok := c.Value.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", c.Value), true
}

func wildcardClause(field, pattern string) map[string]any {
	return map[string]any{
		"wildcard": map[string]any{
			field: map[string]any{
				"value":            pattern,
				"case_insensitive": true,
			},
		},
	}
}

func mustNot(clause map[string]any) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"must_not": []any{clause},
		},
	}
}
