package filter

import (
	"github.com/google/uuid"
)

// Relation is the boolean connective of a Group.
type Relation string

const (
	RelationAnd Relation = "AND"
	RelationOr  Relation = "OR"
)

// Toggled returns the opposite relation.
func (r Relation) Toggled() Relation {
	if r == RelationAnd {
		return RelationOr
	}
	return RelationAnd
}

// Valid reports whether r is one of the two supported relations.
func (r Relation) Valid() bool {
	return r == RelationAnd || r == RelationOr
}

// ParseRelation resolves a relation spelling case-insensitively.
func ParseRelation(s string) (Relation, bool) {
	switch s {
	case "AND", "and", "And", "&&":
		return RelationAnd, true
	case "OR", "or", "Or", "||":
		return RelationOr, true
	}
	return "", false
}

// Node is a filter expression node: either a Condition leaf or a Group.
type Node interface {
	NodeID() string
	Clone() Node

	node()
}

// Condition is a single field test.
//
// Value may be a scalar, an array, or a comma-separated string; multi-value
// operators normalize it to an array at compile time. The Min/Max fields are
// used only by the range operator.
type Condition struct {
	ID       string   `json:"id"`
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`

	MinOperator string `json:"minOperator,omitempty"`
	MinValue    any    `json:"minValue,omitempty"`
	MaxOperator string `json:"maxOperator,omitempty"`
	MaxValue    any    `json:"maxValue,omitempty"`
}

// NewCondition builds a Condition with a fresh id.
func NewCondition(field string, op Operator, value any) *Condition {
	return &Condition{
		ID:       uuid.NewString(),
		Field:    field,
		Operator: op,
		Value:    value,
	}
}

func (c *Condition) NodeID() string { return c.ID }

// Clone returns a deep copy of the condition.
func (c *Condition) Clone() Node {
	out := *c
	out.Value = cloneValue(c.Value)
	out.MinValue = cloneValue(c.MinValue)
	out.MaxValue = cloneValue(c.MaxValue)
	return &out
}

func (c *Condition) node() {}

// Group is an internal node combining two or more children under one relation.
type Group struct {
	ID       string   `json:"id"`
	Relation Relation `json:"relation"`
	Children []Node   `json:"children"`
}

// NewGroup builds a Group with a fresh id.
func NewGroup(rel Relation, children ...Node) *Group {
	return &Group{
		ID:       uuid.NewString(),
		Relation: rel,
		Children: children,
	}
}

func (g *Group) NodeID() string { return g.ID }

// Clone returns a deep copy of the group and its subtree.
func (g *Group) Clone() Node {
	out := &Group{
		ID:       g.ID,
		Relation: g.Relation,
		Children: make([]Node, len(g.Children)),
	}
	for i, c := range g.Children {
		out.Children[i] = c.Clone()
	}
	return out
}

func (g *Group) node() {}

func cloneValue(v any) any {
	arr, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(arr))
	copy(out, arr)
	return out
}
