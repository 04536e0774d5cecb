package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHTML(t *testing.T) {
	assert.Equal(t, "plain text", SanitizeHTML("plain text"))
	assert.Equal(t, "a <b>thing</b>", SanitizeHTML("a <b>thing</b>"))
	assert.NotContains(t, SanitizeHTML(`before<script>alert(1)</script>after`), "script")
	assert.NotContains(t, SanitizeHTML(`<img src=x onerror=alert(1)>text`), "img")
}

func TestSanitizeGraph(t *testing.T) {
	g := NewGraph()
	s := IRI("http://example.org/s")
	clean := Triple{Subject: s, Predicate: DCTermsTitle, Object: NewLangLiteral("safe <em>text</em>", "en")}
	g.Add(clean)
	g.Add(Triple{Subject: s, Predicate: DCTerms.IRI("description"), Object: NewLangLiteral(`hi<script>alert(1)</script>`, "en")})

	Sanitize(g)

	assert.True(t, g.Has(clean), "clean literals are untouched")

	desc := g.Value(s, DCTerms.IRI("description"))
	require.NotNil(t, desc)
	lit, ok := desc.(Literal)
	require.True(t, ok)
	assert.NotContains(t, lit.Value, "script")
	assert.Equal(t, "en", lit.Language, "language tags survive sanitization")
}
