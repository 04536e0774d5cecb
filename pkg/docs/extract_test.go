package docs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkw1536/lontod/pkg/rdf"
)

const exampleTurtle = `
@prefix ex: <http://example.org/ns#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix dcterms: <http://purl.org/dc/terms/> .
@prefix sdo: <https://schema.org/> .

<http://example.org/o> a owl:Ontology ;
    dcterms:title "Example Ontology"@en ;
    dcterms:description "Documents things."@en ;
    dcterms:creator [ a sdo:Person ; sdo:name "Jane Doe" ; sdo:email "jane@example.org" ] .

ex:Thing a owl:Class ;
    rdfs:label "Thing"@en ;
    rdfs:comment "A thing."@en .

ex:SubThing a owl:Class ;
    rdfs:label "Sub Thing"@en ;
    rdfs:subClassOf ex:Thing .

ex:hasPart a owl:ObjectProperty ;
    rdfs:label "has part"@en ;
    rdfs:domain ex:Thing ;
    rdfs:range ex:Thing .
`

func exampleModel(t *testing.T) *Ontology {
	t.Helper()
	g, err := rdf.DecodeTurtle(strings.NewReader(exampleTurtle))
	require.NoError(t, err)
	model, err := ExtractOntology(g)
	require.NoError(t, err)
	return model
}

func TestExtractMetadata(t *testing.T) {
	model := exampleModel(t)

	assert.Equal(t, rdf.IRI("http://example.org/o"), model.Metadata.IRI)
	require.NotEmpty(t, model.Metadata.Titles)
	assert.Equal(t, "Example Ontology", model.Metadata.Titles[0].Value)

	// creator resolves to an agent with a name
	var creator *AgentResource
	for _, pair := range model.Metadata.Properties {
		if pair.Prop.IRI != rdf.DCTerms.IRI("creator") {
			continue
		}
		require.Len(t, pair.Resources.Resources, 1)
		agent, ok := pair.Resources.Resources[0].(AgentResource)
		require.True(t, ok)
		creator = &agent
	}
	require.NotNil(t, creator)
	require.Len(t, creator.Names, 1)
	assert.Equal(t, "Jane Doe", creator.Names[0].Value)
	assert.Equal(t, []string{"jane@example.org"}, creator.Emails)
}

func TestExtractSections(t *testing.T) {
	model := exampleModel(t)

	byKind := make(map[string]*TypeDefinienda)
	for _, sec := range model.Sections {
		byKind[sec.Kind.Abbrev] = sec
	}

	classes, ok := byKind["c"]
	require.True(t, ok)
	require.Len(t, classes.Definienda, 2)
	assert.Equal(t, rdf.IRI("http://example.org/ns#SubThing"), classes.Definienda[0].IRI)
	assert.Equal(t, rdf.IRI("http://example.org/ns#Thing"), classes.Definienda[1].IRI)

	props, ok := byKind["op"]
	require.True(t, ok)
	require.Len(t, props.Definienda, 1)
	assert.Equal(t, "has part", props.Definienda[0].Titles[0].Value)

	// subClassOf is inverted onto the superclass
	thing := model.Definiendum(rdf.IRI("http://example.org/ns#Thing"))
	require.NotNil(t, thing)
	var superClassOf bool
	for _, pair := range thing.Properties {
		if pair.Prop.IRI == rdf.OntDoc.IRI("superClassOf") {
			superClassOf = true
		}
	}
	assert.True(t, superClassOf)

	assert.Nil(t, model.Definiendum(rdf.IRI("http://example.org/ns#Missing")))
}

func TestExtractLiteralPromotion(t *testing.T) {
	const turtle = `
@prefix ex: <http://example.org/ns#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix dcterms: <http://purl.org/dc/terms/> .

<http://example.org/o> a owl:Ontology ;
    dcterms:source "http://example.org/ns#Origin" , "http://unbound.example/origin" .
`
	g, err := rdf.DecodeTurtle(strings.NewReader(turtle))
	require.NoError(t, err)
	model, err := ExtractOntology(g)
	require.NoError(t, err)

	var resources []Resource
	for _, pair := range model.Metadata.Properties {
		if pair.Prop.IRI == rdf.DCTerms.IRI("source") {
			resources = pair.Resources.Resources
		}
	}
	require.Len(t, resources, 2)

	// a value under a bound prefix becomes a reference
	_, isRef := resources[0].(ResourceReference)
	assert.True(t, isRef)

	// an http value with no computable prefixed name stays a literal
	lit, isLit := resources[1].(LiteralResource)
	require.True(t, isLit)
	assert.Equal(t, "http://unbound.example/origin", lit.Literal.Value)
}

func TestSchemaOrgJSON(t *testing.T) {
	model := exampleModel(t)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(model.SchemaJSON), &doc))

	graph, ok := doc["@graph"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, graph)

	var found bool
	for _, node := range graph {
		obj, ok := node.(map[string]any)
		if !ok || obj["@id"] != "http://example.org/o" {
			continue
		}
		found = true
		types, _ := obj["@type"].([]any)
		assert.Contains(t, types, "https://schema.org/DefinedTermSet")
	}
	assert.True(t, found)
}

func TestOntologyToHTML(t *testing.T) {
	model := exampleModel(t)
	ctx := NewRenderContext(model)

	node, err := model.ToHTML(ctx)
	require.NoError(t, err)
	html := RenderString(node)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "Example Ontology")
	assert.Contains(t, html, `id="Thing"`)
	assert.Contains(t, html, `id="section_Metadata"`)
	assert.Contains(t, html, "Table of Contents")
	assert.Contains(t, html, `id="schema.org"`)

	// every definiendum received an anchor
	fragments := ctx.Fragments()
	model.Definienda(func(d *Definiendum) bool {
		assert.Contains(t, fragments, d.IRI)
		return true
	})
}
