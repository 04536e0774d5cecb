package ontologies

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoOntology is returned when a graph does not declare an owl:Ontology.
var ErrNoOntology = errors.New("no ontology found in graph")

// Definiendum is an anchor defined in the rendered documentation: the IRI
// of the thing being defined and the page fragment pointing at it.
type Definiendum struct {
	URI      string
	Fragment string
}

// ResolvedDefiniendum is a Definiendum under a specific ontology URI.
// Canonical is false for entries derived from alternate ontology URIs.
type ResolvedDefiniendum struct {
	URI       string
	Fragment  string
	Canonical bool
}

// Ontology is a fully processed ontology ready for indexing.
type Ontology struct {
	// URI identifies the ontology; AlternateURIs are additional URIs such
	// as the owl:versionIRI under which it is also known.
	URI           string
	AlternateURIs []string

	// Encodings maps media types to the serialized ontology.
	Encodings map[string][]byte

	// Definienda lists the anchors of the HTML encoding in document order.
	Definienda []Definiendum
}

// URIs returns all URIs of the ontology, the canonical one first.
func (o *Ontology) URIs() []ResolvedDefiniendum {
	out := []ResolvedDefiniendum{{URI: o.URI, Canonical: true}}
	for _, uri := range o.AlternateURIs {
		out = append(out, ResolvedDefiniendum{URI: uri})
	}
	return out
}

// AllDefinienda expands the definienda with alternate-URI variants:
// anchors relative to the canonical ontology URI are repeated under each
// alternate URI with Canonical false.
func (o *Ontology) AllDefinienda() []ResolvedDefiniendum {
	var out []ResolvedDefiniendum
	for _, d := range o.Definienda {
		out = append(out, ResolvedDefiniendum{URI: d.URI, Fragment: d.Fragment, Canonical: true})

		if !strings.HasPrefix(d.URI, o.URI) {
			continue
		}
		relative := d.URI[len(o.URI):]
		for _, base := range o.AlternateURIs {
			out = append(out, ResolvedDefiniendum{URI: base + relative, Fragment: d.Fragment})
		}
	}
	return out
}

// SlugFromPath derives an ontology identifier from a file path: the base
// name without its extension.
func SlugFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
