package docs

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/tkw1536/lontod/pkg/rdf"
)

//go:embed meta/*.ttl
var metaFS embed.FS

// MetaOntology identifies one of the bundled vocabularies.
type MetaOntology struct {
	IRI    rdf.IRI
	Titles []rdf.Literal
}

// Contains reports whether the given IRI belongs to this vocabulary.
func (m MetaOntology) Contains(iri rdf.IRI) bool {
	return strings.HasPrefix(string(iri), string(m.IRI))
}

// MetaProperty is the human-readable description of a well-known predicate,
// assembled from the bundled vocabularies.
type MetaProperty struct {
	IRI          rdf.IRI
	Titles       []rdf.Literal
	Descriptions []rdf.Literal
	Ontologies   []MetaOntology
}

// Meta is the fully loaded meta-ontology: titles, descriptions and types of
// well-known IRIs plus a MetaProperty for every predicate in the closed
// property set. Values are immutable and shared between callers.
type Meta struct {
	types        map[rdf.IRI][]rdf.IRI
	titles       map[rdf.IRI][]rdf.Literal
	descriptions map[rdf.IRI][]rdf.Literal
	ontologies   []MetaOntology
	props        map[rdf.IRI]MetaProperty
}

var (
	metaOnce  sync.Once
	metaValue *Meta
	metaErr   error
)

// LoadMeta parses the bundled Turtle vocabularies on first call and returns
// the shared Meta instance afterwards.
func LoadMeta() (*Meta, error) {
	metaOnce.Do(func() {
		metaValue, metaErr = buildMeta()
	})
	return metaValue, metaErr
}

func buildMeta() (*Meta, error) {
	g := rdf.NewGraph()
	entries, err := metaFS.ReadDir("meta")
	if err != nil {
		return nil, fmt.Errorf("failed to list bundled vocabularies: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ttl") {
			continue
		}
		f, err := metaFS.Open("meta/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %w", entry.Name(), err)
		}
		part, err := rdf.DecodeTurtle(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", entry.Name(), err)
		}
		for _, t := range part.Triples() {
			g.Add(t)
		}
	}

	m := &Meta{
		types:        make(map[rdf.IRI][]rdf.IRI),
		titles:       make(map[rdf.IRI][]rdf.Literal),
		descriptions: make(map[rdf.IRI][]rdf.Literal),
		props:        make(map[rdf.IRI]MetaProperty),
	}

	titlePreds := []rdf.IRI{
		rdf.DC.IRI("title"),
		rdf.RDFS.IRI("label"),
		rdf.SKOS.IRI("prefLabel"),
		rdf.SDO.IRI("name"),
		rdf.DCTerms.IRI("title"),
	}
	descriptionPreds := []rdf.IRI{
		rdf.DC.IRI("description"),
		rdf.RDFS.IRI("comment"),
		rdf.SKOS.IRI("definition"),
		rdf.SDO.IRI("description"),
		rdf.DCTerms.IRI("description"),
	}

	for _, t := range g.Triples() {
		subject, ok := t.Subject.(rdf.IRI)
		if !ok {
			continue
		}
		if t.Predicate == rdf.RDFType {
			if typ, ok := t.Object.(rdf.IRI); ok {
				m.types[subject] = append(m.types[subject], typ)
			}
			continue
		}
		lit, isLit := t.Object.(rdf.Literal)
		if !isLit {
			continue
		}
		for _, p := range titlePreds {
			if t.Predicate == p {
				m.titles[subject] = append(m.titles[subject], lit)
				break
			}
		}
		for _, p := range descriptionPreds {
			if t.Predicate == p {
				m.descriptions[subject] = append(m.descriptions[subject], lit)
				break
			}
		}
	}

	for _, s := range g.SubjectsOfType(rdf.OWLOntology) {
		iri, ok := s.(rdf.IRI)
		if !ok {
			continue
		}
		titles := m.titles[iri]
		if len(titles) == 0 {
			continue
		}
		m.ontologies = append(m.ontologies, MetaOntology{IRI: iri, Titles: titles})
	}

	for _, prop := range AllMetaProps() {
		info, err := m.propInfo(prop)
		if err != nil {
			return nil, err
		}
		m.props[prop] = info
	}
	return m, nil
}

func (m *Meta) propInfo(prop rdf.IRI) (MetaProperty, error) {
	titles := m.titles[prop]
	if len(titles) == 0 {
		auto := IRIToTitle(prop)
		if auto == "" {
			return MetaProperty{}, fmt.Errorf("unable to generate title for property %q", string(prop))
		}
		titles = []rdf.Literal{rdf.NewLiteral(auto)}
	}
	var onts []MetaOntology
	for _, ont := range m.ontologies {
		if ont.Contains(prop) {
			onts = append(onts, ont)
		}
	}
	return MetaProperty{
		IRI:          prop,
		Titles:       titles,
		Descriptions: m.descriptions[prop],
		Ontologies:   onts,
	}, nil
}

// Property returns the MetaProperty for a predicate in the closed set.
func (m *Meta) Property(iri rdf.IRI) (MetaProperty, bool) {
	p, ok := m.props[iri]
	return p, ok
}

// TypesOf returns the known rdf:type objects of an IRI.
func (m *Meta) TypesOf(iri rdf.IRI) []rdf.IRI { return m.types[iri] }

// TitleOf returns the first known title of an IRI.
func (m *Meta) TitleOf(iri rdf.IRI) (rdf.Literal, bool) {
	titles := m.titles[iri]
	if len(titles) == 0 {
		return rdf.Literal{}, false
	}
	return titles[0], true
}
