package rdf

// Namespace is an IRI prefix that well-known vocabulary terms hang off.
type Namespace string

// IRI returns the full IRI for the given local name.
func (ns Namespace) IRI(local string) IRI { return IRI(string(ns) + local) }

// Contains reports whether the given IRI falls under this namespace.
func (ns Namespace) Contains(iri IRI) bool {
	return len(iri) > len(ns) && string(iri[:len(ns)]) == string(ns)
}

// Well-known vocabularies.
const (
	RDF     Namespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS    Namespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWL     Namespace = "http://www.w3.org/2002/07/owl#"
	XSD     Namespace = "http://www.w3.org/2001/XMLSchema#"
	DC      Namespace = "http://purl.org/dc/elements/1.1/"
	DCTerms Namespace = "http://purl.org/dc/terms/"
	SKOS    Namespace = "http://www.w3.org/2004/02/skos/core#"
	SDO     Namespace = "https://schema.org/"
	FOAF    Namespace = "http://xmlns.com/foaf/0.1/"
	ORG     Namespace = "http://www.w3.org/ns/org#"
	PROV    Namespace = "http://www.w3.org/ns/prov#"
	PROF    Namespace = "http://www.w3.org/ns/dx/prof/"
	VANN    Namespace = "http://purl.org/vocab/vann/"

	// OntDoc is the documentation vocabulary used for inferred inverse
	// relations (superClassOf, inDomainOf and friends).
	OntDoc Namespace = "https://w3id.org/profile/ontdoc/"

	// Lontod is used only internally, for the fixed document sections.
	Lontod Namespace = "https://github.com/tkw1536/lontod#"
)

// Frequently used terms.
var (
	RDFType  = RDF.IRI("type")
	RDFFirst = RDF.IRI("first")
	RDFRest  = RDF.IRI("rest")
	RDFNil   = RDF.IRI("nil")

	OWLOntology   = OWL.IRI("Ontology")
	OWLVersionIRI = OWL.IRI("versionIRI")

	DCTermsTitle = DCTerms.IRI("title")
)

// coreNamespaces are bound on every new Graph.
var coreNamespaces = []struct {
	Prefix string
	NS     Namespace
}{
	{"rdf", RDF},
	{"rdfs", RDFS},
	{"owl", OWL},
	{"xsd", XSD},
	{"dc", DC},
	{"dcterms", DCTerms},
	{"skos", SKOS},
	{"sdo", SDO},
	{"foaf", FOAF},
	{"org", ORG},
	{"prov", PROV},
	{"prof", PROF},
	{"vann", VANN},
	{"ontdoc", OntDoc},
}
