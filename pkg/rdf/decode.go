package rdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gonumrdf "gonum.org/v1/gonum/graph/formats/rdf"
)

// Format names an RDF serialization.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "nt"
	FormatNQuads   Format = "nquads"
	FormatRDFXML   Format = "xml"
)

// ErrUnknownFormat is returned when a file extension maps to no supported
// input format.
var ErrUnknownFormat = errors.New("unknown RDF format")

// DetectFormat guesses the input format from a filename extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl", ".turtle":
		return FormatTurtle, nil
	case ".nt":
		return FormatNTriples, nil
	case ".nq", ".nquads":
		return FormatNQuads, nil
	case ".rdf", ".xml", ".owl":
		return FormatRDFXML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Decode reads a graph from r in the given format.
func Decode(r io.Reader, format Format) (*Graph, error) {
	switch format {
	case FormatTurtle:
		return DecodeTurtle(r)
	case FormatNTriples, FormatNQuads:
		return decodeNQuads(r)
	case FormatRDFXML:
		return DecodeRDFXML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ParseFile detects the format of the file at path and decodes it.
func ParseFile(path string) (*Graph, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	g, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	return g, nil
}

// decodeNQuads parses N-Triples or N-Quads input. Graph labels of quads are
// discarded; all statements land in the one returned graph.
func decodeNQuads(r io.Reader) (*Graph, error) {
	g := NewGraph()
	dec := gonumrdf.NewDecoder(r)
	for {
		s, err := dec.Unmarshal()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode statement: %w", err)
		}
		t, err := fromStatement(s)
		if err != nil {
			return nil, err
		}
		g.Add(t)
	}
}

// fromStatement converts a gonum statement into the local triple model.
func fromStatement(s *gonumrdf.Statement) (Triple, error) {
	subject, err := fromTerm(s.Subject)
	if err != nil {
		return Triple{}, fmt.Errorf("bad subject: %w", err)
	}
	predicate, err := fromTerm(s.Predicate)
	if err != nil {
		return Triple{}, fmt.Errorf("bad predicate: %w", err)
	}
	pred, ok := predicate.(IRI)
	if !ok {
		return Triple{}, fmt.Errorf("predicate %s is not an IRI", s.Predicate.Value)
	}
	object, err := fromTerm(s.Object)
	if err != nil {
		return Triple{}, fmt.Errorf("bad object: %w", err)
	}
	return Triple{Subject: subject, Predicate: pred, Object: object}, nil
}

func fromTerm(term gonumrdf.Term) (Node, error) {
	text, qual, kind, err := term.Parts()
	if err != nil {
		return nil, err
	}
	switch kind {
	case gonumrdf.IRI:
		return IRI(text), nil
	case gonumrdf.Blank:
		return BlankNode(strings.TrimPrefix(text, "_:")), nil
	case gonumrdf.Literal:
		if lang, ok := strings.CutPrefix(qual, "@"); ok {
			return NewLangLiteral(text, lang), nil
		}
		if qual != "" {
			return NewTypedLiteral(text, IRI(qual)), nil
		}
		return NewLiteral(text), nil
	default:
		return nil, fmt.Errorf("unsupported term kind for %q", term.Value)
	}
}
