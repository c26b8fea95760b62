package translator

import (
	"log/slog"

	"github.com/filterdeck/filterdeck/pkg/filter"
)

// OpenSearchTranslator lowers filter expressions into OpenSearch Query DSL.
//
// Both front ends (the explicit tree and the relation-tagged flat list)
// share one clause-construction table; only the grouping logic differs.
// Translation never fails: conditions that cannot produce a clause are
// dropped with a logged warning and the worst-case output is match_all.
type OpenSearchTranslator struct {
	logger *slog.Logger
}

// NewOpenSearchTranslator creates a translator logging through the default
// structured logger.
func NewOpenSearchTranslator() *OpenSearchTranslator {
	return &OpenSearchTranslator{logger: slog.Default()}
}

// NewOpenSearchTranslatorWithLogger creates a translator with an explicit logger.
func NewOpenSearchTranslatorWithLogger(logger *slog.Logger) *OpenSearchTranslator {
	return &OpenSearchTranslator{logger: logger}
}

// Translate lowers a tree into a full query document. An empty tree, or a
// tree whose conditions all drop, yields match_all.
func (t *OpenSearchTranslator) Translate(tree filter.Tree) map[string]any {
	return wrapQuery(t.TranslateNode(tree.Root))
}

// TranslateNode lowers a single node into its boolean clause, or nil when
// nothing survives.
func (t *OpenSearchTranslator) TranslateNode(n filter.Node) map[string]any {
	switch v := n.(type) {
	case *filter.Condition:
		return t.clause(v)
	case *filter.Group:
		return t.lowerGroup(v)
	}
	return nil
}

func (t *OpenSearchTranslator) lowerGroup(g *filter.Group) map[string]any {
	clauses := make([]any, 0, len(g.Children))
	for _, child := range g.Children {
		lowered := t.TranslateNode(child)
		if lowered == nil {
			continue
		}
		// A child group carrying the parent's relation contributes its
		// clauses directly, so the document nests exactly where the
		// preview shows parentheses.
		if cg, ok := child.(*filter.Group); ok && cg.Relation == g.Relation {
			if inner := boolClauses(lowered, g.Relation); inner != nil {
				clauses = append(clauses, inner...)
				continue
			}
		}
		clauses = append(clauses, lowered)
	}
	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0].(map[string]any)
	}
	return combine(g.Relation, clauses)
}

// TranslateFlat lowers a relation-tagged flat list. Uniform relations yield
// one flat must/should group; mixed relations fold right to left, opening a
// nested bool boundary only where the relation changes.
func (t *OpenSearchTranslator) TranslateFlat(list filter.FlatList) map[string]any {
	clauses, relations := t.flatClauses(list)
	n := len(clauses)
	switch n {
	case 0:
		return wrapQuery(nil)
	case 1:
		return wrapQuery(clauses[0])
	}

	uniform := true
	for _, rel := range relations[2:] {
		if rel != relations[1] {
			uniform = false
			break
		}
	}
	if uniform {
		all := make([]any, n)
		for i, c := range clauses {
			all[i] = c
		}
		return wrapQuery(combine(relations[1], all))
	}

	acc := clauses[n-1]
	var accRel filter.Relation
	for i := n - 2; i >= 0; i-- {
		rel := relations[i+1]
		if rel == accRel {
			key := relationKey(rel)
			boolPart := acc["bool"].(map[string]any)
			boolPart[key] = append([]any{clauses[i]}, boolPart[key].([]any)...)
		} else {
			acc = combine(rel, []any{clauses[i], acc})
		}
		accRel = rel
	}
	return wrapQuery(acc)
}

// flatClauses compiles each list entry, keeping surviving clauses paired
// with their declared relation. Missing relations default to AND.
func (t *OpenSearchTranslator) flatClauses(list filter.FlatList) ([]map[string]any, []filter.Relation) {
	clauses := make([]map[string]any, 0, len(list))
	relations := make([]filter.Relation, 0, len(list))
	for _, fc := range list {
		clause := t.clause(&fc.Condition)
		if clause == nil {
			continue
		}
		rel := fc.Relation
		if !rel.Valid() {
			rel = filter.RelationAnd
		}
		clauses = append(clauses, clause)
		relations = append(relations, rel)
	}
	return clauses, relations
}

func combine(rel filter.Relation, clauses []any) map[string]any {
	if rel == filter.RelationOr {
		return map[string]any{
			"bool": map[string]any{
				"should":               clauses,
				"minimum_should_match": 1,
			},
		}
	}
	return map[string]any{
		"bool": map[string]any{
			"must": clauses,
		},
	}
}

func relationKey(rel filter.Relation) string {
	if rel == filter.RelationOr {
		return "should"
	}
	return "must"
}

// boolClauses extracts the clause array of a pure must/should bool built by
// combine, or nil when the clause has any other shape.
func boolClauses(clause map[string]any, rel filter.Relation) []any {
	boolPart, ok := clause["bool"].(map[string]any)
	if !ok {
		return nil
	}
	inner, ok := boolPart[relationKey(rel)].([]any)
	if !ok {
		return nil
	}
	if _, negated := boolPart["must_not"]; negated {
		return nil
	}
	return inner
}

func wrapQuery(clause map[string]any) map[string]any {
	if clause == nil {
		clause = map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{"query": clause}
}
