package filter

import (
	"encoding/json"
	"fmt"
)

// conditionJSON is the wire form of a Condition. Operator spellings are
// resolved to canonical values while decoding, so downstream code never
// branches on raw strings.
type conditionJSON struct {
	ID          string          `json:"id"`
	Field       string          `json:"field"`
	Operator    string          `json:"operator"`
	Value       any             `json:"value,omitempty"`
	MinOperator string          `json:"minOperator,omitempty"`
	MinValue    any             `json:"minValue,omitempty"`
	MaxOperator string          `json:"maxOperator,omitempty"`
	MaxValue    any             `json:"maxValue,omitempty"`
	Relation    string          `json:"relation,omitempty"`
	Children    json.RawMessage `json:"children,omitempty"`
}

func (raw *conditionJSON) condition() Condition {
	op := Operator(raw.Operator)
	if canonical, ok := ParseOperator(raw.Operator); ok {
		op = canonical
	}
	return Condition{
		ID:          raw.ID,
		Field:       raw.Field,
		Operator:    op,
		Value:       raw.Value,
		MinOperator: raw.MinOperator,
		MinValue:    raw.MinValue,
		MaxOperator: raw.MaxOperator,
		MaxValue:    raw.MaxValue,
	}
}

// UnmarshalJSON decodes a condition, resolving operator aliases.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = raw.condition()
	return nil
}

// UnmarshalJSON decodes a group, dispatching each child on shape.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string            `json:"id"`
		Relation string            `json:"relation"`
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rel, ok := ParseRelation(raw.Relation)
	if !ok {
		return fmt.Errorf("unknown relation %q", raw.Relation)
	}
	g.ID = raw.ID
	g.Relation = rel
	g.Children = make([]Node, 0, len(raw.Children))
	for _, child := range raw.Children {
		node, err := decodeNode(child)
		if err != nil {
			return err
		}
		g.Children = append(g.Children, node)
	}
	return nil
}

// decodeNode discriminates a node by the presence of relation and children.
func decodeNode(data json.RawMessage) (Node, error) {
	var probe struct {
		Relation string          `json:"relation"`
		Children json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Relation != "" && probe.Children != nil {
		g := &Group{}
		if err := json.Unmarshal(data, g); err != nil {
			return nil, err
		}
		return g, nil
	}
	c := &Condition{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UnmarshalJSON decodes a tree with a polymorphic root. A JSON null root
// yields an empty tree.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   string          `json:"id"`
		Root json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.ID = raw.ID
	t.Root = nil
	if len(raw.Root) == 0 || string(raw.Root) == "null" {
		return nil
	}
	node, err := decodeNode(raw.Root)
	if err != nil {
		return err
	}
	t.Root = node
	return nil
}

// UnmarshalJSON decodes a tagged flat-list entry.
func (fc *FlatCondition) UnmarshalJSON(data []byte) error {
	var raw conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fc.Condition = raw.condition()
	fc.Relation = ""
	if rel, ok := ParseRelation(raw.Relation); ok {
		fc.Relation = rel
	}
	return nil
}

// ParseTree decodes a filter tree from JSON.
func ParseTree(data []byte) (Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return Tree{}, fmt.Errorf("parse filter tree: %w", err)
	}
	return t, nil
}

// ParseNode decodes a single filter node from JSON.
func ParseNode(data []byte) (Node, error) {
	node, err := decodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("parse filter node: %w", err)
	}
	return node, nil
}

// ParseFlatList decodes a relation-tagged flat list from JSON.
func ParseFlatList(data []byte) (FlatList, error) {
	var list FlatList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse flat filter list: %w", err)
	}
	return list, nil
}
