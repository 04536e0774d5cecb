package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkw1536/lontod/pkg/rdf"
)

func newTestContext(t *testing.T, languages ...string) *RenderContext {
	t.Helper()
	return NewRenderContext(&Ontology{Graph: rdf.NewGraph()}, languages...)
}

func TestFragmentStable(t *testing.T) {
	ctx := newTestContext(t)
	iri := rdf.IRI("http://example.org/ns#Thing")

	first, err := ctx.Fragment(iri, "Thing", "")
	require.NoError(t, err)
	assert.Equal(t, "Thing", first)

	again, err := ctx.Fragment(iri, "Thing", "")
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestFragmentCollisions(t *testing.T) {
	ctx := newTestContext(t)

	a, err := ctx.Fragment(rdf.IRI("http://example.org/a#Thing"), "Thing", "")
	require.NoError(t, err)
	b, err := ctx.Fragment(rdf.IRI("http://example.org/b#Thing"), "Thing", "")
	require.NoError(t, err)
	c, err := ctx.Fragment(rdf.IRI("http://example.org/c#Thing"), "Thing", "")
	require.NoError(t, err)

	assert.Equal(t, "Thing", a)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
	assert.NotEqual(t, a, c)
}

func TestFragmentGroups(t *testing.T) {
	ctx := newTestContext(t)
	iri := rdf.IRI("http://example.org/ns#Thing")

	plain, err := ctx.Fragment(iri, "Thing", "")
	require.NoError(t, err)
	section, err := ctx.Fragment(iri, "Thing", "section")
	require.NoError(t, err)

	assert.NotEqual(t, plain, section)
	assert.Equal(t, "section_Thing", section)

	fragments := ctx.Fragments()
	assert.Equal(t, plain, fragments[iri], "only default-group fragments are exported")
}

func TestFragmentTitlePreferred(t *testing.T) {
	ctx := newTestContext(t)

	fid, err := ctx.Fragment(rdf.IRI("http://example.org/ns#x1"), "Some Title", "")
	require.NoError(t, err)
	assert.Equal(t, "SomeTitle", fid)
}

func TestFragmentDegenerateIRI(t *testing.T) {
	ctx := newTestContext(t)

	// no usable segment and no title: fall back to a digest
	fid, err := ctx.Fragment(rdf.IRI("http://example.org"), "", "")
	require.NoError(t, err)
	assert.Len(t, fid, 32)
}

func TestQNameFallback(t *testing.T) {
	ctx := newTestContext(t)

	assert.Equal(t, "owl:Class", ctx.QName(rdf.OWL.IRI("Class")))
	assert.Equal(t, "http://nothing.example/x", ctx.QName(rdf.IRI("http://nothing.example/x")))
}

func TestIRIToTitle(t *testing.T) {
	for iri, want := range map[rdf.IRI]string{
		"http://example.org/ns#hasPart":      "has part",
		"http://example.org/ns#ModelElement": "Model Element",
		"http://example.org/ns#Thing":        "Thing",
		"http://purl.org/dc/terms/title":     "title",
		"http://example.org":                 "",
	} {
		assert.Equal(t, want, IRIToTitle(iri), string(iri))
	}
}

func TestPickTitleLanguages(t *testing.T) {
	titles := []rdf.Literal{
		rdf.NewLangLiteral("Exemple", "fr"),
		rdf.NewLangLiteral("Example", "en"),
	}

	ctx := newTestContext(t)
	assert.Equal(t, "Example", pickTitle(ctx, "http://example.org/x", titles).Value)

	ctx = newTestContext(t, "fr")
	assert.Equal(t, "Exemple", pickTitle(ctx, "http://example.org/x", titles).Value)

	// no titles: the IRI itself, typed as anyURI
	got := pickTitle(ctx, "http://example.org/x", nil)
	assert.Equal(t, "http://example.org/x", got.Value)
	assert.Equal(t, rdf.XSD.IRI("anyURI"), got.Datatype)
}
