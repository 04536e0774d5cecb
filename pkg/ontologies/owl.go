package ontologies

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tkw1536/lontod/pkg/docs"
	"github.com/tkw1536/lontod/pkg/rdf"
)

// FromGraph processes a parsed graph into an Ontology: it serializes the
// graph in every supported format, renders the HTML documentation and
// collects its anchors. htmlLanguages restricts which literal languages
// appear in the HTML encoding; the other encodings keep all languages.
func FromGraph(logger *zap.Logger, graph *rdf.Graph, htmlLanguages []string) (*Ontology, error) {
	var uri string
	for _, s := range graph.SubjectsOfType(rdf.OWLOntology) {
		if iri, ok := s.(rdf.IRI); ok {
			uri = string(iri)
		}
	}
	if uri == "" {
		return nil, ErrNoOntology
	}

	encodings := make(map[string][]byte, len(mediaTypes)+1)
	for _, mt := range mediaTypes {
		data, err := rdf.Serialize(graph, mt.Format)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %q as %s: %w", uri, mt.Format, err)
		}
		encodings[mt.Type] = data
	}

	// the data encodings are captured above; restriction and sanitizing
	// mutate the graph in place from here on
	if len(htmlLanguages) > 0 {
		graph.RestrictLanguages(htmlLanguages)
	}
	insertFallbackTitle(graph, rdf.NewTypedLiteral("", rdf.XSD.IRI("string")))
	rdf.Sanitize(graph)

	model, err := docs.ExtractOntology(graph)
	if err != nil {
		return nil, fmt.Errorf("failed to extract documentation for %q: %w", uri, err)
	}

	ctx := docs.NewRenderContext(model, htmlLanguages...)
	page, err := model.ToHTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render documentation for %q: %w", uri, err)
	}
	encodings["text/html"] = []byte(docs.RenderString(page))

	// fragments are cached from rendering, so collecting them here sees
	// exactly the anchors present in the page, in document order
	var definienda []Definiendum
	for _, sec := range model.Sections {
		for _, d := range sec.Definienda {
			fragment, err := ctx.Fragment(d.IRI, d.Title(ctx).Value, "")
			if err != nil {
				return nil, fmt.Errorf("failed to allocate fragment for %q: %w", string(d.IRI), err)
			}
			definienda = append(definienda, Definiendum{URI: string(d.IRI), Fragment: fragment})
		}
	}

	alternates := alternateURIs(graph)
	logger.Debug("processed ontology",
		zap.String("uri", uri),
		zap.Int("encodings", len(encodings)),
		zap.Int("definienda", len(definienda)),
		zap.Strings("alternate_uris", alternates),
	)

	return &Ontology{
		URI:           uri,
		AlternateURIs: alternates,
		Encodings:     encodings,
		Definienda:    definienda,
	}, nil
}

var ontologyTypes = []rdf.IRI{
	rdf.OWLOntology,
	rdf.PROF.IRI("Profile"),
	rdf.SKOS.IRI("ConceptScheme"),
}

// insertFallbackTitle gives the first declared ontology subject the given
// titles unless it already has one. Reports whether titles were inserted.
func insertFallbackTitle(g *rdf.Graph, titles ...rdf.Literal) bool {
	for _, typ := range ontologyTypes {
		for _, s := range g.SubjectsOfType(typ) {
			if len(g.Objects(s, rdf.DCTermsTitle)) > 0 {
				return false
			}
			for _, title := range titles {
				g.Add(rdf.Triple{Subject: s, Predicate: rdf.DCTermsTitle, Object: title})
			}
			return true
		}
	}
	return false
}

// alternateURIs returns the owl:versionIRI values of the first declared
// ontology subject.
func alternateURIs(g *rdf.Graph) []string {
	for _, typ := range ontologyTypes {
		for _, s := range g.SubjectsOfType(typ) {
			var out []string
			for _, o := range g.Objects(s, rdf.OWLVersionIRI) {
				if iri, ok := o.(rdf.IRI); ok {
					out = append(out, string(iri))
				}
			}
			return out
		}
	}
	return nil
}
