package rdf

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() *Graph {
	g := NewGraph()
	o := IRI("http://example.org/o")
	g.Add(Triple{Subject: o, Predicate: RDFType, Object: OWLOntology})
	g.Add(Triple{Subject: o, Predicate: DCTermsTitle, Object: NewLangLiteral("Example", "en")})
	g.Add(Triple{Subject: o, Predicate: IRI("http://example.org/count"), Object: NewTypedLiteral("3", XSD.IRI("integer"))})
	g.Add(Triple{Subject: IRI("http://example.org/Thing"), Predicate: RDFType, Object: OWL.IRI("Class")})
	g.Add(Triple{Subject: IRI("http://example.org/Thing"), Predicate: RDFS.IRI("isDefinedBy"), Object: o})
	return g
}

func TestEncodeNTriples(t *testing.T) {
	var b strings.Builder
	require.NoError(t, EncodeNTriples(testGraph(), &b))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t,
		"<http://example.org/o> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Ontology> .",
		lines[0],
	)
	assert.Contains(t, b.String(), `"Example"@en`)
}

func TestTurtleRoundTrip(t *testing.T) {
	g := testGraph()

	var b strings.Builder
	require.NoError(t, EncodeTurtle(g, &b))
	assert.Contains(t, b.String(), "@prefix owl: <http://www.w3.org/2002/07/owl#> .")

	back, err := DecodeTurtle(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, g.Len(), back.Len())
	for _, triple := range g.Triples() {
		assert.True(t, back.Has(triple), triple.String())
	}
}

func TestEncodeTriG(t *testing.T) {
	var b strings.Builder
	require.NoError(t, EncodeTriG(testGraph(), &b))
	out := b.String()
	assert.Contains(t, out, "{")
	assert.Contains(t, out, "}")
	assert.Contains(t, out, "owl:Ontology")
}

func TestEncodeHext(t *testing.T) {
	var b strings.Builder
	require.NoError(t, EncodeHext(testGraph(), &b))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 5)

	var row []string
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &row))
	assert.Equal(t, []string{
		"http://example.org/o",
		"http://purl.org/dc/terms/title",
		"Example",
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#langString",
		"en",
		"",
	}, row)
}

func TestEncodeJSONLD(t *testing.T) {
	var b strings.Builder
	require.NoError(t, EncodeJSONLD(testGraph(), &b))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(b.String()), &doc))

	graph, ok := doc["@graph"].([]any)
	require.True(t, ok)
	require.Len(t, graph, 2)

	// nodes are sorted by @id
	first, ok := graph[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "http://example.org/Thing", first["@id"])
}

func TestEncodeJSONLDList(t *testing.T) {
	g, err := DecodeTurtle(strings.NewReader(`
@prefix ex: <http://example.org/ns#> .
ex:s ex:members (ex:a ex:b ex:c) .
`))
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, EncodeJSONLD(g, &b))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(b.String()), &doc))

	// cons cells appear only inside @list, not as standalone nodes
	graph, ok := doc["@graph"].([]any)
	require.True(t, ok)
	require.Len(t, graph, 1)

	node, ok := graph[0].(map[string]any)
	require.True(t, ok)
	values, ok := node["http://example.org/ns#members"].([]any)
	require.True(t, ok)
	require.Len(t, values, 1)

	list, ok := values[0].(map[string]any)["@list"].([]any)
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, map[string]any{"@id": "http://example.org/ns#a"}, list[0])
}

func TestEncodeRDFXMLRoundTrip(t *testing.T) {
	g := testGraph()

	var b strings.Builder
	require.NoError(t, EncodeRDFXML(g, &b))
	assert.Contains(t, b.String(), `rdf:about="http://example.org/o"`)

	back, err := DecodeRDFXML(strings.NewReader(b.String()))
	require.NoError(t, err)
	for _, triple := range g.Triples() {
		assert.True(t, back.Has(triple), triple.String())
	}
}

func TestEncodeRDFXMLUnboundPredicate(t *testing.T) {
	g := NewGraph()
	o := IRI("http://example.org/o")
	count := Triple{Subject: o, Predicate: IRI("http://example.org/count"), Object: NewTypedLiteral("3", XSD.IRI("integer"))}
	g.Add(Triple{Subject: o, Predicate: RDFType, Object: OWLOntology})
	g.Add(count)

	var b strings.Builder
	require.NoError(t, EncodeRDFXML(g, &b))

	// the unbound predicate gets a generated xmlns binding
	assert.Contains(t, b.String(), `xmlns:ns1="http://example.org/"`)
	assert.Contains(t, b.String(), "<ns1:count")

	back, err := DecodeRDFXML(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.True(t, back.Has(count), count.String())
}

func TestEncodeRDFXMLBadPredicate(t *testing.T) {
	g := NewGraph()
	g.Add(Triple{
		Subject:   IRI("http://example.org/o"),
		Predicate: IRI("http://example.org/"),
		Object:    NewLiteral("x"),
	})

	var b strings.Builder
	assert.Error(t, EncodeRDFXML(g, &b))
}

func TestSerialize(t *testing.T) {
	g := testGraph()
	for _, format := range []string{"turtle", "nt", "n3", "trig", "xml", "json-ld", "hext"} {
		data, err := Serialize(g, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, data, format)
	}

	_, err := Serialize(g, "pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
