package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/filterdeck/filterdeck/pkg/filter"
)

var (
	ErrEmptyField      = errors.New("field must not be empty")
	ErrBadFieldPath    = errors.New("malformed field path")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrBadRelation     = errors.New("relation must be AND or OR")
)

// FilterValidator checks externally supplied filter input at the HTTP
// boundary. The core mutator and translator tolerate anything structurally
// valid; this layer exists to give callers actionable errors before a
// condition silently compiles to nothing.
type FilterValidator struct{}

// New creates a FilterValidator.
func New() *FilterValidator {
	return &FilterValidator{}
}

// ValidateCondition checks a single condition's field path and operator.
func (v *FilterValidator) ValidateCondition(c *filter.Condition) error {
	if err := v.validateFieldPath(c.Field); err != nil {
		return err
	}
	if !c.Operator.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, c.Operator)
	}
	return nil
}

// ValidateRelation checks a relation spelling.
func (v *FilterValidator) ValidateRelation(rel filter.Relation) error {
	if !rel.Valid() {
		return fmt.Errorf("%w: %q", ErrBadRelation, rel)
	}
	return nil
}

// ValidateNode walks a node recursively, checking every condition and group.
func (v *FilterValidator) ValidateNode(n filter.Node) error {
	switch node := n.(type) {
	case *filter.Condition:
		return v.ValidateCondition(node)
	case *filter.Group:
		if err := v.ValidateRelation(node.Relation); err != nil {
			return err
		}
		for _, child := range node.Children {
			if err := v.ValidateNode(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateFlat checks every entry of a flat list. The first entry's relation
// is ignored per the representation's contract.
func (v *FilterValidator) ValidateFlat(list filter.FlatList) error {
	for i := range list {
		if err := v.ValidateCondition(&list[i].Condition); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if i > 0 && list[i].Relation != "" {
			if err := v.ValidateRelation(list[i].Relation); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
		}
	}
	return nil
}

func (v *FilterValidator) validateFieldPath(field string) error {
	if field == "" {
		return ErrEmptyField
	}
	if strings.Contains(field, "..") || strings.HasPrefix(field, ".") || strings.HasSuffix(field, ".") {
		return fmt.Errorf("%w: %q", ErrBadFieldPath, field)
	}
	return nil
}
