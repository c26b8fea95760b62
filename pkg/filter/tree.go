package filter

import (
	"github.com/google/uuid"
)

// Tree is a filter expression owned by one editing session. Every mutation
// returns a fresh value; the previous tree is never touched, so the session
// can replace its current tree atomically without any lock discipline inside
// this package.
type Tree struct {
	ID   string `json:"id"`
	Root Node   `json:"root"`
}

// NewTree creates an empty tree.
func NewTree() Tree {
	return Tree{ID: uuid.NewString()}
}

// Empty reports whether the tree has no root.
func (t Tree) Empty() bool { return t.Root == nil }

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	out := Tree{ID: t.ID}
	if t.Root != nil {
		out.Root = t.Root.Clone()
	}
	return out
}

// AddFilter attaches cond relative to the node identified by parentID.
//
// An empty tree adopts cond as its root. A condition target is replaced by a
// new group of the requested relation holding the target and cond. A group
// target with the same relation grows in place; one with a different relation
// is wrapped, unchanged, together with cond in a new outer group carrying the
// requested relation. Unknown ids leave the tree as-is.
func (t Tree) AddFilter(parentID string, rel Relation, cond *Condition) Tree {
	leaf := cond.Clone().(*Condition)
	if leaf.ID == "" {
		leaf.ID = uuid.NewString()
	}
	out := t.Clone()
	if out.Root == nil {
		out.Root = leaf
		return out
	}
	root, ok := attach(out.Root, parentID, rel, leaf)
	if !ok {
		return t
	}
	out.Root = root
	return out
}

func attach(n Node, parentID string, rel Relation, leaf *Condition) (Node, bool) {
	switch v := n.(type) {
	case *Condition:
		if v.ID != parentID {
			return n, false
		}
		return NewGroup(rel, v, leaf), true
	case *Group:
		if v.ID == parentID {
			if v.Relation == rel {
				v.Children = append(v.Children, leaf)
				return v, true
			}
			return NewGroup(rel, v, leaf), true
		}
		for i, child := range v.Children {
			if replaced, ok := attach(child, parentID, rel, leaf); ok {
				v.Children[i] = replaced
				return v, true
			}
		}
	}
	return n, false
}

// ConditionPatch carries partial updates for ModifyFilter. Zero-valued
// fields are left unchanged on the target condition.
type ConditionPatch struct {
	Field       string
	Operator    Operator
	Value       any
	MinOperator string
	MinValue    any
	MaxOperator string
	MaxValue    any
}

// ModifyFilter merges patch into the condition identified by nodeID, or
// replaces the relation of the group identified by nodeID when rel is set.
// Unknown ids leave the tree as-is.
func (t Tree) ModifyFilter(nodeID string, rel Relation, patch ConditionPatch) Tree {
	out := t.Clone()
	switch v := findNode(out.Root, nodeID).(type) {
	case *Condition:
		applyPatch(v, patch)
		return out
	case *Group:
		if rel.Valid() {
			v.Relation = rel
			return out
		}
	}
	return t
}

func applyPatch(c *Condition, patch ConditionPatch) {
	if patch.Field != "" {
		c.Field = patch.Field
	}
	if patch.Operator != "" {
		c.Operator = patch.Operator
	}
	if patch.Value != nil {
		c.Value = cloneValue(patch.Value)
	}
	if patch.MinOperator != "" {
		c.MinOperator = patch.MinOperator
	}
	if patch.MinValue != nil {
		c.MinValue = patch.MinValue
	}
	if patch.MaxOperator != "" {
		c.MaxOperator = patch.MaxOperator
	}
	if patch.MaxValue != nil {
		c.MaxValue = patch.MaxValue
	}
}

// RemoveFilter deletes the identified node. Removing the root empties the
// tree; any other removal re-normalizes bottom-up so every surviving group
// keeps at least two children. Unknown ids leave the tree as-is.
func (t Tree) RemoveFilter(nodeID string) Tree {
	if t.Root == nil {
		return t
	}
	out := t.Clone()
	if out.Root.NodeID() == nodeID {
		out.Root = nil
		return out
	}
	root, removed := detach(out.Root, nodeID)
	if !removed {
		return t
	}
	out.Root = Normalize(root)
	return out
}

func detach(n Node, id string) (Node, bool) {
	g, ok := n.(*Group)
	if !ok {
		return n, false
	}
	for i, child := range g.Children {
		if child.NodeID() == id {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			return g, true
		}
		if replaced, ok := detach(child, id); ok {
			g.Children[i] = replaced
			return g, true
		}
	}
	return n, false
}

// ToggleRelation flips the relation of the identified group between AND and
// OR. Conditions and unknown ids are left untouched.
func (t Tree) ToggleRelation(nodeID string) Tree {
	out := t.Clone()
	if g, ok := findNode(out.Root, nodeID).(*Group); ok {
		g.Relation = g.Relation.Toggled()
		return out
	}
	return t
}

// FindNode returns the node with the given id, or nil. The returned node
// belongs to this tree snapshot and must be treated as read-only.
func (t Tree) FindNode(id string) Node {
	return findNode(t.Root, id)
}

func findNode(n Node, id string) Node {
	switch v := n.(type) {
	case *Condition:
		if v.ID == id {
			return v
		}
	case *Group:
		if v.ID == id {
			return v
		}
		for _, child := range v.Children {
			if found := findNode(child, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// NodePath returns the ids of the ancestors of the identified node from the
// root down to the node itself, or nil when the id is absent.
func (t Tree) NodePath(id string) []string {
	return nodePath(t.Root, id, nil)
}

func nodePath(n Node, id string, prefix []string) []string {
	if n == nil {
		return nil
	}
	path := append(append([]string(nil), prefix...), n.NodeID())
	if n.NodeID() == id {
		return path
	}
	if g, ok := n.(*Group); ok {
		for _, child := range g.Children {
			if found := nodePath(child, id, path); found != nil {
				return found
			}
		}
	}
	return nil
}

// Normalize collapses degenerate structure bottom-up: empty groups vanish,
// single-child groups are replaced by their sole child. Children are
// normalized first so cascading collapses resolve in one pass.
func Normalize(n Node) Node {
	g, ok := n.(*Group)
	if !ok {
		return n
	}
	kept := make([]Node, 0, len(g.Children))
	for _, child := range g.Children {
		if normalized := Normalize(child); normalized != nil {
			kept = append(kept, normalized)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	g.Children = kept
	return g
}

// Normalized returns a normalized copy of the tree.
func (t Tree) Normalized() Tree {
	out := t.Clone()
	if out.Root != nil {
		out.Root = Normalize(out.Root)
	}
	return out
}
