package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// IsExactField reports whether the field path names an exact-match
// (aggregatable) field. Exact fields carry a trailing ".keyword" suffix;
// everything else is analyzed text.
func IsExactField(field string) bool {
	return strings.HasSuffix(field, ".keyword")
}

// IsTimeField reports whether the field name denotes a timestamp or date.
// Time fields are matched verbatim like exact fields regardless of suffix.
func IsTimeField(field string) bool {
	f := strings.ToLower(strings.TrimSuffix(field, ".keyword"))
	if f == "timestamp" || f == "@timestamp" || f == "time" || f == "date" {
		return true
	}
	for _, suffix := range []string{".timestamp", "_timestamp", ".time", "_time", ".date", "_date", "_at"} {
		if strings.HasSuffix(f, suffix) {
			return true
		}
	}
	return false
}

// CoerceNumber converts a string that lexically looks like an integer or
// decimal into a number. Any other value passes through unchanged. Exact
// fields never go through coercion; callers apply it to analyzed fields only.
func CoerceNumber(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if !numberPattern.MatchString(s) {
		return v
	}
	if !strings.Contains(s, ".") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return v
}

// IsNumeric reports whether v carries a numeric (or boolean) type that
// OpenSearch matches verbatim.
func IsNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool:
		return true
	}
	return false
}

// ValueList normalizes a scalar, array, or comma-separated string into a
// flat value array for multi-value operators.
func ValueList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if item != nil {
				out = append(out, item)
			}
		}
		return out
	case []string:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, item)
		}
		return out
	case string:
		parts := strings.Split(val, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return []any{val}
	}
}

// ValueStrings renders the normalized value list as display strings.
func ValueStrings(v any) []string {
	list := ValueList(v)
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, Display(item))
	}
	return out
}

// Display renders a single value for previews.
func Display(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
