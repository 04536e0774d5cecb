package ontologies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaTypes(t *testing.T) {
	types := MediaTypes()
	require.Len(t, types, 7)
	assert.Equal(t, MediaType{"xml", "application/rdf+xml"}, types[0])

	// the returned slice is a copy
	types[0] = MediaType{}
	assert.Equal(t, MediaType{"xml", "application/rdf+xml"}, MediaTypes()[0])
}

func TestExtensionFromType(t *testing.T) {
	assert.Equal(t, "turtle", ExtensionFromType("text/turtle"))
	assert.Equal(t, "nt", ExtensionFromType("text/plain"))
	assert.Equal(t, "json-ld", ExtensionFromType("application/ld+json"))
	assert.Equal(t, "", ExtensionFromType("text/html"))
}

func TestSlugFromPath(t *testing.T) {
	assert.Equal(t, "pizza", SlugFromPath("/data/ontologies/pizza.ttl"))
	assert.Equal(t, "pizza", SlugFromPath("pizza.owl"))
	assert.Equal(t, "pizza", SlugFromPath("pizza"))
}

func TestURIs(t *testing.T) {
	o := &Ontology{
		URI:           "http://example.org/o",
		AlternateURIs: []string{"http://example.org/o/1.0"},
	}

	uris := o.URIs()
	require.Len(t, uris, 2)
	assert.Equal(t, ResolvedDefiniendum{URI: "http://example.org/o", Canonical: true}, uris[0])
	assert.Equal(t, ResolvedDefiniendum{URI: "http://example.org/o/1.0"}, uris[1])
}

func TestAllDefinienda(t *testing.T) {
	o := &Ontology{
		URI:           "http://example.org/o#",
		AlternateURIs: []string{"http://example.org/o/1.0#"},
		Definienda: []Definiendum{
			{URI: "http://example.org/o#Thing", Fragment: "Thing"},
			{URI: "http://elsewhere.example/x", Fragment: "x"},
		},
	}

	all := o.AllDefinienda()
	assert.Equal(t, []ResolvedDefiniendum{
		{URI: "http://example.org/o#Thing", Fragment: "Thing", Canonical: true},
		{URI: "http://example.org/o/1.0#Thing", Fragment: "Thing"},
		{URI: "http://elsewhere.example/x", Fragment: "x", Canonical: true},
	}, all)
}
