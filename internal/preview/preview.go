// Package preview renders human-readable filter previews whose
// parenthesization is isomorphic to the translator's grouping decisions:
// a parenthesized segment corresponds exactly to a nested bool boundary in
// the compiled document.
package preview

import (
	"strings"

	"github.com/filterdeck/filterdeck/pkg/filter"
)

// style parameterizes rendering so the text and markup variants share one
// grouping skeleton and can never drift apart.
type style struct {
	label    func(*filter.Condition) string
	relation func(filter.Relation) string
}

var textStyle = style{
	label:    textLabel,
	relation: func(r filter.Relation) string { return string(r) },
}

// Tree renders a tree node as plain text.
func Tree(n filter.Node) string {
	return renderNode(n, "", textStyle)
}

// Flat renders a relation-tagged flat list as plain text.
func Flat(list filter.FlatList) string {
	return renderFlat(list, textStyle)
}

func renderNode(n filter.Node, ambient filter.Relation, s style) string {
	switch v := n.(type) {
	case *filter.Condition:
		return s.label(v)
	case *filter.Group:
		parts := make([]string, 0, len(v.Children))
		for _, child := range v.Children {
			if rendered := renderNode(child, v.Relation, s); rendered != "" {
				parts = append(parts, rendered)
			}
		}
		switch len(parts) {
		case 0:
			return ""
		case 1:
			return parts[0]
		}
		joined := strings.Join(parts, " "+s.relation(v.Relation)+" ")
		// Parentheses appear exactly where the compiled document opens a
		// nested bool: under a parent with a different relation.
		if ambient != "" && ambient != v.Relation {
			return "(" + joined + ")"
		}
		return joined
	}
	return ""
}

// renderFlat mirrors the translator's right-to-left fold: the rightmost
// entry is the base, and the accumulated tail is parenthesized only when the
// relation that produced it differs from the relation being applied.
func renderFlat(list filter.FlatList, s style) string {
	labels := make([]string, 0, len(list))
	relations := make([]filter.Relation, 0, len(list))
	for _, fc := range list {
		cond := fc.Condition
		if rendered := s.label(&cond); rendered != "" {
			rel := fc.Relation
			if !rel.Valid() {
				rel = filter.RelationAnd
			}
			labels = append(labels, rendered)
			relations = append(relations, rel)
		}
	}
	n := len(labels)
	switch n {
	case 0:
		return ""
	case 1:
		return labels[0]
	}

	acc := labels[n-1]
	var accRel filter.Relation
	for i := n - 2; i >= 0; i-- {
		rel := relations[i+1]
		if accRel != "" && rel != accRel {
			acc = "(" + acc + ")"
		}
		acc = labels[i] + " " + s.relation(rel) + " " + acc
		accRel = rel
	}
	return acc
}

func textLabel(c *filter.Condition) string {
	if c.Field == "" || c.Operator == "" {
		return ""
	}
	body := describe(c)
	if body == "" {
		return ""
	}
	if c.Operator.Negates() {
		return "NOT " + body
	}
	return body
}

// describe renders "field: value" with per-operator value formatting. A
// condition the translator would drop renders as "" so the preview and the
// compiled document always agree on which rows are present.
func describe(c *filter.Condition) string {
	switch c.Operator {
	case filter.OpExists, filter.OpDoesNotExist:
		return c.Field + ": exists"
	case filter.OpIsOneOf, filter.OpIsNotOneOf:
		values := filter.ValueStrings(c.Value)
		if len(values) == 0 {
			return ""
		}
		return c.Field + ": " + strings.Join(values, ",")
	case filter.OpRange:
		bounds := make([]string, 0, 2)
		if op := strings.ToLower(c.MinOperator); filter.ValidRangeBound(op) && c.MinValue != nil {
			bounds = append(bounds, op+" "+filter.Display(c.MinValue))
		}
		if op := strings.ToLower(c.MaxOperator); filter.ValidRangeBound(op) && c.MaxValue != nil {
			bounds = append(bounds, op+" "+filter.Display(c.MaxValue))
		}
		if len(bounds) == 0 {
			return ""
		}
		return c.Field + ": " + strings.Join(bounds, " and ")
	case filter.OpPrefix, filter.OpWildcard, filter.OpQueryString:
		if c.Value == nil || c.Value == "" {
			return ""
		}
		return c.Field + ": " + filter.Display(c.Value)
	case filter.OpIs, filter.OpIsNot:
		if c.Value == nil {
			return ""
		}
		return c.Field + ": " + filter.Display(c.Value)
	}
	// Unknown operators never reach the compiled document.
	return ""
}
