package ontologies

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tkw1536/lontod/pkg/rdf"
)

const exampleTurtle = `
@prefix ex: <http://example.org/o#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix dcterms: <http://purl.org/dc/terms/> .

<http://example.org/o> a owl:Ontology ;
    owl:versionIRI <http://example.org/o/1.0> ;
    dcterms:title "Example"@en , "Beispiel"@de .

ex:Thing a owl:Class ;
    rdfs:label "Thing"@en .

ex:partOf a owl:ObjectProperty ;
    rdfs:label "part of"@en ;
    rdfs:domain ex:Thing .
`

func exampleOntology(t *testing.T, htmlLanguages []string) *Ontology {
	t.Helper()
	graph, err := rdf.DecodeTurtle(strings.NewReader(exampleTurtle))
	require.NoError(t, err)
	o, err := FromGraph(zap.NewNop(), graph, htmlLanguages)
	require.NoError(t, err)
	return o
}

func TestFromGraph(t *testing.T) {
	o := exampleOntology(t, nil)

	assert.Equal(t, "http://example.org/o", o.URI)
	assert.Equal(t, []string{"http://example.org/o/1.0"}, o.AlternateURIs)

	require.Len(t, o.Encodings, 8)
	for _, mt := range MediaTypes() {
		assert.NotEmpty(t, o.Encodings[mt.Type], mt.Type)
	}

	html := string(o.Encodings["text/html"])
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, `id="Thing"`)

	assert.Contains(t, string(o.Encodings["text/turtle"]), "owl:Ontology")
}

func TestFromGraphDefinienda(t *testing.T) {
	o := exampleOntology(t, nil)

	byURI := make(map[string]string)
	for _, d := range o.Definienda {
		byURI[d.URI] = d.Fragment
	}
	assert.Equal(t, "Thing", byURI["http://example.org/o#Thing"])
	assert.Contains(t, byURI, "http://example.org/o#partOf")

	// every anchor occurs in the rendered page
	html := string(o.Encodings["text/html"])
	for _, d := range o.Definienda {
		assert.Contains(t, html, `id="`+d.Fragment+`"`)
	}
}

func TestFromGraphLanguageRestriction(t *testing.T) {
	o := exampleOntology(t, []string{"de"})

	html := string(o.Encodings["text/html"])
	assert.Contains(t, html, "Beispiel")
	assert.NotContains(t, html, ">Example<")

	// data encodings keep all languages
	turtle := string(o.Encodings["text/turtle"])
	assert.Contains(t, turtle, "Example")
	assert.Contains(t, turtle, "Beispiel")
}

func TestFromGraphNoOntology(t *testing.T) {
	graph, err := rdf.DecodeTurtle(strings.NewReader(`<http://example.org/x> a <http://www.w3.org/2002/07/owl#Class> .`))
	require.NoError(t, err)

	_, err = FromGraph(zap.NewNop(), graph, nil)
	assert.ErrorIs(t, err, ErrNoOntology)
}
