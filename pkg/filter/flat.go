package filter

// FlatCondition is one entry of a FlatList: a condition tagged with the
// relation connecting it to the immediately preceding entry. The first
// entry's relation is ignored.
type FlatCondition struct {
	Condition
	Relation Relation `json:"relation,omitempty"`
}

// FlatList is the degenerate ordered representation of a filter. It never
// nests; grouping is implied by runs of identical relations and resolved by
// the compiler's right-associative fold.
type FlatList []FlatCondition

// Uniform reports whether every connective from the second entry on is the
// same relation. A uniform list compiles and renders flat, with no nesting.
func (l FlatList) Uniform() bool {
	if len(l) < 3 {
		return true
	}
	rel := l[1].Relation
	for _, fc := range l[2:] {
		if fc.Relation != rel {
			return false
		}
	}
	return true
}

// FilterGroup is the submission contract exposed to the UI layer once the
// user confirms an edited filter. Filters holds either a FlatList or the
// tree's root Node; QueryDSL is always present and always a valid document,
// at minimum match_all.
type FilterGroup struct {
	Filters     any            `json:"filters"`
	CustomLabel string         `json:"customLabel,omitempty"`
	QueryDSL    map[string]any `json:"queryDSL"`
}
