package preview

import (
	"strings"
	"testing"

	"github.com/filterdeck/filterdeck/pkg/filter"
)

func cond(field string, op filter.Operator, value any) *filter.Condition {
	return &filter.Condition{Field: field, Operator: op, Value: value}
}

func TestTreeSingleCondition(t *testing.T) {
	got := Tree(cond("host.keyword", filter.OpIs, "web01"))
	if got != "host.keyword: web01" {
		t.Errorf("Expected %q, got %q", "host.keyword: web01", got)
	}
}

func TestTreeEmpty(t *testing.T) {
	if got := Tree(nil); got != "" {
		t.Errorf("Expected empty preview, got %q", got)
	}
}

func TestTreeMixedRelationsParenthesize(t *testing.T) {
	// host AND (status OR verb): the nested OR group is parenthesized
	// because its relation differs from the enclosing AND.
	root := &filter.Group{
		Relation: filter.RelationAnd,
		Children: []filter.Node{
			cond("host.keyword", filter.OpIs, "web01"),
			&filter.Group{
				Relation: filter.RelationOr,
				Children: []filter.Node{
					cond("status", filter.OpIs, 500),
					cond("verb.keyword", filter.OpIsOneOf, []any{"GET", "POST"}),
				},
			},
		},
	}

	got := Tree(root)
	want := "host.keyword: web01 AND (status: 500 OR verb.keyword: GET,POST)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestTreeNegatedConditionInsideGroup(t *testing.T) {
	// Negated leaves carry the NOT prefix wherever they sit; the grouping is
	// decided by relations alone, so the parentheses still mirror the
	// compiled document's nested should.
	root := &filter.Group{
		Relation: filter.RelationAnd,
		Children: []filter.Node{
			cond("host.keyword", filter.OpIs, "web01"),
			&filter.Group{
				Relation: filter.RelationOr,
				Children: []filter.Node{
					cond("status", filter.OpIsNot, "500"),
					cond("verb.keyword", filter.OpIsOneOf, []any{"GET", "POST"}),
				},
			},
		},
	}

	got := Tree(root)
	want := "host.keyword: web01 AND (NOT status: 500 OR verb.keyword: GET,POST)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestTreeSameRelationChildNotParenthesized(t *testing.T) {
	root := &filter.Group{
		Relation: filter.RelationAnd,
		Children: []filter.Node{
			cond("host.keyword", filter.OpIs, "web01"),
			&filter.Group{
				Relation: filter.RelationAnd,
				Children: []filter.Node{
					cond("status", filter.OpIs, 500),
					cond("dc.keyword", filter.OpIs, "us-east"),
				},
			},
		},
	}

	got := Tree(root)
	want := "host.keyword: web01 AND status: 500 AND dc.keyword: us-east"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestTreeRootGroupNeverParenthesized(t *testing.T) {
	root := &filter.Group{
		Relation: filter.RelationOr,
		Children: []filter.Node{
			cond("status", filter.OpIs, 500),
			cond("status", filter.OpIs, 503),
		},
	}
	got := Tree(root)
	if strings.HasPrefix(got, "(") {
		t.Errorf("Root group must not be parenthesized, got %q", got)
	}
}

func TestTreeSkipsIncompleteConditions(t *testing.T) {
	root := &filter.Group{
		Relation: filter.RelationAnd,
		Children: []filter.Node{
			cond("host.keyword", filter.OpIs, "web01"),
			cond("", filter.OpIs, "dropped"),
			cond("status", filter.OpIs, nil),
		},
	}
	got := Tree(root)
	if got != "host.keyword: web01" {
		t.Errorf("Expected only the complete condition, got %q", got)
	}
}

func TestTreeSkipsConditionsTheCompilerDrops(t *testing.T) {
	// Conditions that produce no clause must not surface in the preview
	// either, or the rendered expression would misrepresent the document.
	root := &filter.Group{
		Relation: filter.RelationAnd,
		Children: []filter.Node{
			cond("host.keyword", filter.OpIs, "web01"),
			cond("app", filter.Operator("near"), "x"),
			cond("url", filter.OpPrefix, ""),
		},
	}
	if got := Tree(root); got != "host.keyword: web01" {
		t.Errorf("Expected only the satisfiable condition, got %q", got)
	}
}

func TestConditionLabels(t *testing.T) {
	tests := []struct {
		name string
		cond *filter.Condition
		want string
	}{
		{"Negated", cond("user.keyword", filter.OpIsNot, "system"), "NOT user.keyword: system"},
		{"OneOf", cond("verb.keyword", filter.OpIsOneOf, "GET, POST"), "verb.keyword: GET,POST"},
		{"NotOneOf", cond("verb.keyword", filter.OpIsNotOneOf, []any{"PUT"}), "NOT verb.keyword: PUT"},
		{"Exists", cond("error", filter.OpExists, nil), "error: exists"},
		{"DoesNotExist", cond("error", filter.OpDoesNotExist, nil), "NOT error: exists"},
		{"Number", cond("status", filter.OpIs, float64(500)), "status: 500"},
		{"Bool", cond("secure", filter.OpIs, true), "secure: true"},
		{"Prefix", cond("url", filter.OpPrefix, "/api"), "url: /api"},
		{
			"Range",
			&filter.Condition{
				Field: "bytes", Operator: filter.OpRange,
				MinOperator: "gte", MinValue: 1024,
				MaxOperator: "lt", MaxValue: 4096,
			},
			"bytes: gte 1024 and lt 4096",
		},
		{
			"RangeOneBound",
			&filter.Condition{
				Field: "bytes", Operator: filter.OpRange,
				MinOperator: "gt", MinValue: 0,
			},
			"bytes: gt 0",
		},
		{"UnknownOperator", cond("app", filter.Operator("near"), "x"), ""},
		{"EmptyPrefix", cond("url", filter.OpPrefix, ""), ""},
		{"EmptyQueryString", cond("message", filter.OpQueryString, ""), ""},
		{
			"RangeBadBound",
			&filter.Condition{
				Field: "bytes", Operator: filter.OpRange,
				MinOperator: "around", MinValue: 5,
			},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tree(tt.cond); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFlatUniform(t *testing.T) {
	list := filter.FlatList{
		{Condition: *cond("host.keyword", filter.OpIs, "web01")},
		{Condition: *cond("status", filter.OpIs, 500), Relation: filter.RelationAnd},
		{Condition: *cond("dc.keyword", filter.OpIs, "us-east"), Relation: filter.RelationAnd},
	}
	got := Flat(list)
	want := "host.keyword: web01 AND status: 500 AND dc.keyword: us-east"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFlatMixedParenthesizesTail(t *testing.T) {
	// A AND B OR C previews as A AND (B OR C), mirroring the compiled
	// document's nested bool.
	list := filter.FlatList{
		{Condition: *cond("host.keyword", filter.OpIs, "web01")},
		{Condition: *cond("status", filter.OpIs, 500), Relation: filter.RelationAnd},
		{Condition: *cond("verb.keyword", filter.OpIsOneOf, []any{"GET", "POST"}), Relation: filter.RelationOr},
	}
	got := Flat(list)
	want := "host.keyword: web01 AND (status: 500 OR verb.keyword: GET,POST)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFlatMixedWithNegation(t *testing.T) {
	// A AND NOT-B OR C folds to A AND (NOT B OR C), matching the compiled
	// must:[A, should:[must_not[B], C]] boundary for boundary.
	list := filter.FlatList{
		{Condition: *cond("host.keyword", filter.OpIs, "web01")},
		{Condition: *cond("status", filter.OpIsNot, "500"), Relation: filter.RelationAnd},
		{Condition: *cond("verb.keyword", filter.OpIsOneOf, []any{"GET", "POST"}), Relation: filter.RelationOr},
	}
	got := Flat(list)
	want := "host.keyword: web01 AND (NOT status: 500 OR verb.keyword: GET,POST)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFlatRunsStayFlat(t *testing.T) {
	list := filter.FlatList{
		{Condition: *cond("a.keyword", filter.OpIs, "1")},
		{Condition: *cond("b.keyword", filter.OpIs, "2"), Relation: filter.RelationOr},
		{Condition: *cond("c.keyword", filter.OpIs, "3"), Relation: filter.RelationOr},
		{Condition: *cond("d.keyword", filter.OpIs, "4"), Relation: filter.RelationAnd},
	}
	got := Flat(list)
	want := "a.keyword: 1 OR b.keyword: 2 OR (c.keyword: 3 AND d.keyword: 4)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFlatDroppedConditionDoesNotShiftGrouping(t *testing.T) {
	// The middle entry produces no clause, so the remaining pair joins
	// directly under OR with no parentheses: the compiled document is a
	// single two-clause should, not a nested bool.
	list := filter.FlatList{
		{Condition: *cond("host.keyword", filter.OpIs, "web01")},
		{Condition: *cond("app", filter.Operator("near"), "x"), Relation: filter.RelationAnd},
		{Condition: *cond("dc.keyword", filter.OpIs, "us-east"), Relation: filter.RelationOr},
	}
	got := Flat(list)
	want := "host.keyword: web01 OR dc.keyword: us-east"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFlatSingleAndEmpty(t *testing.T) {
	if got := Flat(nil); got != "" {
		t.Errorf("Expected empty preview, got %q", got)
	}
	list := filter.FlatList{{Condition: *cond("host.keyword", filter.OpIs, "web01")}}
	if got := Flat(list); got != "host.keyword: web01" {
		t.Errorf("Expected single label, got %q", got)
	}
}

func TestTreeMarkupEscapesAndDecorates(t *testing.T) {
	got := TreeMarkup(cond("message", filter.OpIs, `<script>"x"`))

	if strings.Contains(got, "<script>") {
		t.Fatalf("Markup must escape values, got %q", got)
	}
	if !strings.Contains(got, `<span class="filter-field">message</span>`) {
		t.Errorf("Expected field span, got %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("Expected escaped value, got %q", got)
	}
}

func TestTreeMarkupNegation(t *testing.T) {
	got := TreeMarkup(cond("user.keyword", filter.OpIsNot, "system"))
	if !strings.HasPrefix(got, `<span class="filter-negate">NOT</span> `) {
		t.Errorf("Expected negation span prefix, got %q", got)
	}
}

func TestFlatMarkupRelationSpan(t *testing.T) {
	list := filter.FlatList{
		{Condition: *cond("host.keyword", filter.OpIs, "web01")},
		{Condition: *cond("status", filter.OpIs, 500), Relation: filter.RelationOr},
	}
	got := FlatMarkup(list)
	if !strings.Contains(got, `<span class="filter-relation">OR</span>`) {
		t.Errorf("Expected relation span, got %q", got)
	}
}
