package docs

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/tkw1536/lontod/pkg/rdf"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderLiteral renders a literal value as sanitized markdown, annotated
// with its language tag when present.
func (ctx *RenderContext) RenderLiteral(lit rdf.Literal) Node {
	content := lit.Value

	// the language indicator goes through the markdown renderer so that it
	// ends up inside the leading paragraph
	if lit.Language != "" {
		sup := El("sup", A("class", "sup-lang"), A("lang", "en"), lit.Language)
		content = RenderString(sup) + content
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		// fall back to plain escaped text
		inner := El("div", lit.Value)
		if lit.Language != "" {
			inner.Append(A("lang", lit.Language))
		}
		return El("div", inner)
	}

	inner := El("div", Raw(rdf.SanitizeHTML(buf.String())))
	if lit.Language != "" {
		inner.Append(A("lang", lit.Language))
	}
	return El("div", inner)
}
