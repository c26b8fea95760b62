package preview

import (
	"html"
	"strings"

	"github.com/filterdeck/filterdeck/pkg/filter"
)

var markupStyle = style{
	label: markupLabel,
	relation: func(r filter.Relation) string {
		return `<span class="filter-relation">` + string(r) + `</span>`
	},
}

// TreeMarkup renders a tree node as HTML markup. Grouping is identical to
// the text variant; only the leaf and relation decoration differs.
func TreeMarkup(n filter.Node) string {
	return renderNode(n, "", markupStyle)
}

// FlatMarkup renders a flat list as HTML markup.
func FlatMarkup(list filter.FlatList) string {
	return renderFlat(list, markupStyle)
}

func markupLabel(c *filter.Condition) string {
	plain := describe(c)
	if c.Field == "" || c.Operator == "" || plain == "" {
		return ""
	}
	value := strings.TrimPrefix(plain, c.Field+": ")
	body := `<span class="filter-field">` + html.EscapeString(c.Field) + `</span>: ` +
		`<span class="filter-value">` + html.EscapeString(value) + `</span>`
	if c.Operator.Negates() {
		return `<span class="filter-negate">NOT</span> ` + body
	}
	return body
}
