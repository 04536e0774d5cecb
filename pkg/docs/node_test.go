package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderString(t *testing.T) {
	n := El("div",
		A("class", "entity"),
		El("h3", "A <Title>"),
		Void("br"),
		Raw("<em>raw</em>"),
	)
	assert.Equal(t, `<div class="entity"><h3>A &lt;Title&gt;</h3><br><em>raw</em></div>`, RenderString(n))
}

func TestElementAttrs(t *testing.T) {
	assert.Equal(t, `<a href="#x" download>text</a>`, RenderString(El("a", A("href", "#x"), Bare("download"), "text")))
	assert.Equal(t, `<a title="a &#34;quote&#34;"></a>`, RenderString(El("a", A("title", `a "quote"`))))
}

func TestFragmentSkipsNil(t *testing.T) {
	f := Fragment{Text("a"), nil, Text("b")}
	assert.Equal(t, "ab", RenderString(f))
}

func TestDocument(t *testing.T) {
	doc := Document([]Node{El("title", "T")}, []Node{El("p", "body")})
	assert.Equal(t, "<!DOCTYPE html>\n<html><head><title>T</title></head><body><p>body</p></body></html>", RenderString(doc))
}
