package filter

import "strings"

// Operator is the canonical comparison kind of a Condition.
type Operator string

const (
	OpIs           Operator = "is"
	OpIsNot        Operator = "is_not"
	OpIsOneOf      Operator = "is_one_of"
	OpIsNotOneOf   Operator = "is_not_one_of"
	OpExists       Operator = "exists"
	OpDoesNotExist Operator = "does_not_exist"
	OpRange        Operator = "range"
	OpPrefix       Operator = "prefix"
	OpWildcard     Operator = "wildcard"
	OpQueryString  Operator = "query_string"
)

// operatorAliases maps squashed surface spellings to canonical operators.
// Spellings like "isNot", "IS_NOT" and "is not" all squash to "isnot".
var operatorAliases = map[string]Operator{
	"is":           OpIs,
	"isnot":        OpIsNot,
	"isoneof":      OpIsOneOf,
	"oneof":        OpIsOneOf,
	"isnotoneof":   OpIsNotOneOf,
	"notoneof":     OpIsNotOneOf,
	"exists":       OpExists,
	"doesnotexist": OpDoesNotExist,
	"notexists":    OpDoesNotExist,
	"range":        OpRange,
	"between":      OpRange,
	"prefix":       OpPrefix,
	"startswith":   OpPrefix,
	"wildcard":     OpWildcard,
	"querystring":  OpQueryString,
}

// ParseOperator resolves a surface spelling to its canonical operator.
// Resolution happens once at the input boundary; the rest of the system only
// sees canonical values.
func ParseOperator(s string) (Operator, bool) {
	op, ok := operatorAliases[squash(s)]
	return op, ok
}

func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether o is a canonical operator.
func (o Operator) Valid() bool {
	switch o {
	case OpIs, OpIsNot, OpIsOneOf, OpIsNotOneOf, OpExists, OpDoesNotExist,
		OpRange, OpPrefix, OpWildcard, OpQueryString:
		return true
	}
	return false
}

// rangeBoundOps are the comparison keys accepted on range condition bounds.
var rangeBoundOps = map[string]bool{"gt": true, "gte": true, "lt": true, "lte": true}

// ValidRangeBound reports whether op names a range bound comparison.
func ValidRangeBound(op string) bool {
	return rangeBoundOps[strings.ToLower(op)]
}

// Negates reports whether the operator inverts its clause.
func (o Operator) Negates() bool {
	return o == OpIsNot || o == OpIsNotOneOf || o == OpDoesNotExist
}

// MultiValue reports whether the operator takes an array of values.
func (o Operator) MultiValue() bool {
	return o == OpIsOneOf || o == OpIsNotOneOf
}

// NeedsValue reports whether the operator is unsatisfiable without a value.
func (o Operator) NeedsValue() bool {
	switch o {
	case OpExists, OpDoesNotExist, OpRange:
		return false
	}
	return true
}
