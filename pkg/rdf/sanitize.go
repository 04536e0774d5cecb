package rdf

import (
	"github.com/microcosm-cc/bluemonday"
)

// literalPolicy is the allow-list applied to literal values before they can
// be embedded into rendered HTML. Only basic text markup survives.
func literalPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"a", "b", "br", "em",
		"h1", "h2", "h3", "hr",
		"i", "li", "ol", "p",
		"strong", "sub", "sup", "ul",
	)
	p.AllowAttrs("href", "name", "target", "title", "rel").OnElements("a")
	p.AllowStandardURLs()
	return p
}

// Sanitize rewrites every literal in the graph whose value contains markup
// outside the fixed allow-list, preserving datatype and language tags.
func Sanitize(g *Graph) {
	policy := literalPolicy()

	var dirty []Triple
	for _, t := range g.Triples() {
		l, ok := t.Object.(Literal)
		if !ok {
			continue
		}
		clean := policy.Sanitize(l.Value)
		if clean == l.Value {
			continue
		}
		dirty = append(dirty, t)
	}
	for _, t := range dirty {
		l := t.Object.(Literal)
		g.Remove(t)
		g.Add(Triple{
			Subject:   t.Subject,
			Predicate: t.Predicate,
			Object:    Literal{Value: policy.Sanitize(l.Value), Language: l.Language, Datatype: l.Datatype},
		})
	}
}

// SanitizeHTML applies the literal allow-list policy to a standalone string.
func SanitizeHTML(s string) string {
	return literalPolicy().Sanitize(s)
}
