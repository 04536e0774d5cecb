package docs

import (
	"github.com/tkw1536/lontod/pkg/rdf"
)

// Predicates rendered for the ontology metadata block, in display order.
var ontProps = []rdf.IRI{
	rdf.DCTerms.IRI("title"),
	rdf.DCTerms.IRI("publisher"),
	rdf.DCTerms.IRI("creator"),
	rdf.DCTerms.IRI("contributor"),
	rdf.DCTerms.IRI("created"),
	rdf.DCTerms.IRI("dateAccepted"),
	rdf.DCTerms.IRI("modified"),
	rdf.DCTerms.IRI("issued"),
	rdf.DCTerms.IRI("license"),
	rdf.DCTerms.IRI("rights"),
	rdf.SDO.IRI("category"),
	rdf.OWL.IRI("versionIRI"),
	rdf.OWL.IRI("versionInfo"),
	rdf.OWL.IRI("priorVersion"),
	rdf.SDO.IRI("identifier"),
	rdf.VANN.IRI("preferredNamespacePrefix"),
	rdf.VANN.IRI("preferredNamespaceUri"),
	rdf.SKOS.IRI("historyNote"),
	rdf.SKOS.IRI("scopeNote"),
	rdf.DCTerms.IRI("source"),
	rdf.DCTerms.IRI("provenance"),
	rdf.SKOS.IRI("note"),
	rdf.DCTerms.IRI("description"),
	rdf.OntDoc.IRI("restriction"),
}

// Predicates rendered for classes.
var classProps = []rdf.IRI{
	rdf.RDFS.IRI("isDefinedBy"),
	rdf.DCTerms.IRI("title"),
	rdf.DCTerms.IRI("description"),
	rdf.SKOS.IRI("scopeNote"),
	rdf.SKOS.IRI("example"),
	rdf.DCTerms.IRI("source"),
	rdf.DCTerms.IRI("provenance"),
	rdf.SKOS.IRI("note"),
	rdf.RDFS.IRI("subClassOf"),
	rdf.OWL.IRI("equivalentClass"),
	rdf.OntDoc.IRI("inDomainOf"),
	rdf.OntDoc.IRI("inDomainIncludesOf"),
	rdf.OntDoc.IRI("inRangeOf"),
	rdf.OntDoc.IRI("inRangeIncludesOf"),
	rdf.OntDoc.IRI("restriction"),
	rdf.OntDoc.IRI("hasInstance"),
	rdf.OntDoc.IRI("superClassOf"),
}

// Predicates rendered for properties of any flavor.
var propProps = []rdf.IRI{
	rdf.RDFS.IRI("isDefinedBy"),
	rdf.DCTerms.IRI("title"),
	rdf.DCTerms.IRI("description"),
	rdf.SKOS.IRI("scopeNote"),
	rdf.SKOS.IRI("example"),
	rdf.DCTerms.IRI("source"),
	rdf.DCTerms.IRI("provenance"),
	rdf.SKOS.IRI("note"),
	rdf.RDFS.IRI("subPropertyOf"),
	rdf.OntDoc.IRI("superPropertyOf"),
	rdf.RDFS.IRI("domain"),
	rdf.SDO.IRI("domainIncludes"),
	rdf.RDFS.IRI("range"),
	rdf.SDO.IRI("rangeIncludes"),
}

// Predicates recognized on agent nodes.
var agentProps = []rdf.IRI{
	rdf.SDO.IRI("name"),
	rdf.SDO.IRI("affiliation"),
	rdf.SDO.IRI("identifier"),
	rdf.SDO.IRI("email"),
	rdf.SDO.IRI("honorificPrefix"),
	rdf.SDO.IRI("url"),
}

// Predicates recognized on restriction nodes.
var restrictionProps = []rdf.IRI{
	rdf.OWL.IRI("allValuesFrom"),
	rdf.OWL.IRI("someValuesFrom"),
	rdf.OWL.IRI("hasValue"),
	rdf.OWL.IRI("onProperty"),
	rdf.OWL.IRI("onClass"),
	rdf.OWL.IRI("cardinality"),
	rdf.OWL.IRI("qualifiedCardinality"),
	rdf.OWL.IRI("minCardinality"),
	rdf.OWL.IRI("minQualifiedCardinality"),
	rdf.OWL.IRI("maxCardinality"),
	rdf.OWL.IRI("maxQualifiedCardinality"),
}

// AllMetaProps is the closed set of predicates the meta-ontology describes.
func AllMetaProps() []rdf.IRI {
	seen := make(map[rdf.IRI]struct{})
	var out []rdf.IRI
	for _, group := range [][]rdf.IRI{ontProps, classProps, propProps, agentProps, restrictionProps} {
		for _, p := range group {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// PropertyKind classifies definienda into documentation sections.
type PropertyKind struct {
	IRI rdf.IRI

	InlineTitle string
	PluralTitle string

	Abbrev string

	// Specializations are the kinds whose instances are excluded from this
	// section so they only appear under their most specific kind.
	Specializations []rdf.IRI
	Properties      []rdf.IRI
}

// PropertyKinds lists all kinds in section order.
var PropertyKinds = []PropertyKind{
	{rdf.OWL.IRI("Class"), "OWL/RDFS Class", "Classes", "c", nil, classProps},
	{rdf.RDF.IRI("Property"), "RDF Property", "Properties", "p", []rdf.IRI{
		rdf.OWL.IRI("ObjectProperty"),
		rdf.OWL.IRI("DatatypeProperty"),
		rdf.OWL.IRI("AnnotationProperty"),
		rdf.OWL.IRI("FunctionalProperty"),
		rdf.OWL.IRI("InverseFunctionalProperty"),
	}, propProps},
	{rdf.OWL.IRI("ObjectProperty"), "OWL Object Property", "Object Properties", "op", nil, propProps},
	{rdf.OWL.IRI("DatatypeProperty"), "OWL Datatype Property", "Datatype Properties", "dp", nil, propProps},
	{rdf.OWL.IRI("AnnotationProperty"), "OWL Annotation Property", "Annotation Properties", "ap", nil, propProps},
	{rdf.OWL.IRI("FunctionalProperty"), "OWL Functional Property", "Functional Properties", "fp", nil, propProps},
	{rdf.OWL.IRI("InverseFunctionalProperty"), "OWL Inverse Functional Property", "Inverse Functional Properties", "ifp", nil, propProps},
	{rdf.OWL.IRI("NamedIndividual"), "OWL Named Individual", "Named Individuals", "ni", nil, propProps},
}

// KindForIRI returns the PropertyKind with the given IRI.
func KindForIRI(iri rdf.IRI) (PropertyKind, bool) {
	for _, kind := range PropertyKinds {
		if kind.IRI == iri {
			return kind, true
		}
	}
	return PropertyKind{}, false
}

var numericCardinalityProps = map[rdf.IRI]string{
	rdf.OWL.IRI("minCardinality"):          "min",
	rdf.OWL.IRI("minQualifiedCardinality"): "min",
	rdf.OWL.IRI("maxCardinality"):          "max",
	rdf.OWL.IRI("maxQualifiedCardinality"): "max",
	rdf.OWL.IRI("cardinality"):             "exactly",
	rdf.OWL.IRI("qualifiedCardinality"):    "exactly",
}

var referenceCardinalityProps = map[rdf.IRI]string{
	rdf.OWL.IRI("allValuesFrom"):  "only",
	rdf.OWL.IRI("someValuesFrom"): "some",
	rdf.OWL.IRI("hasValue"):       "value",
	rdf.OWL.IRI("unionOf"):        "union",
	rdf.OWL.IRI("intersectionOf"): "intersection",
}
