// Package rdf provides the in-memory RDF graph model used throughout lontod:
// typed nodes, a triple store with namespace management, parsing of the
// supported input formats and serialization into the supported output formats.
package rdf

import (
	"fmt"
	"strings"
)

// Kind enumerates the kinds of RDF nodes.
type Kind int

const (
	// KindInvalid marks the zero Node.
	KindInvalid Kind = iota
	// KindIRI is a named node.
	KindIRI
	// KindBlank is a blank node.
	KindBlank
	// KindLiteral is a literal value.
	KindLiteral
)

// Node is a single RDF node. The three implementations (IRI, BlankNode,
// Literal) are all comparable with ==, so Nodes may be used as map keys.
type Node interface {
	Kind() Kind
	// String returns the N-Triples text form of this node.
	String() string
}

// IRI is a named RDF node.
type IRI string

// Kind returns KindIRI.
func (IRI) Kind() Kind { return KindIRI }

func (i IRI) String() string { return "<" + string(i) + ">" }

// BlankNode is a blank RDF node, identified by its label (without the "_:"
// prefix).
type BlankNode string

// Kind returns KindBlank.
func (BlankNode) Kind() Kind { return KindBlank }

func (b BlankNode) String() string { return "_:" + string(b) }

// Literal is a literal RDF node. At most one of Language and Datatype is
// set; a plain literal has neither.
type Literal struct {
	Value    string
	Language string
	Datatype IRI
}

// Kind returns KindLiteral.
func (Literal) Kind() Kind { return KindLiteral }

func (l Literal) String() string {
	s := `"` + escapeLiteral(l.Value) + `"`
	if l.Language != "" {
		return s + "@" + l.Language
	}
	if l.Datatype != "" && l.Datatype != XSD.IRI("string") {
		return s + "^^" + l.Datatype.String()
	}
	return s
}

// NewLiteral returns a plain literal with the given value.
func NewLiteral(value string) Literal {
	return Literal{Value: value}
}

// NewLangLiteral returns a language-tagged literal.
func NewLangLiteral(value, lang string) Literal {
	return Literal{Value: value, Language: lang}
}

// NewTypedLiteral returns a literal with an explicit datatype.
func NewTypedLiteral(value string, datatype IRI) Literal {
	return Literal{Value: value, Datatype: datatype}
}

// Triple is a single RDF statement.
type Triple struct {
	Subject   Node // IRI or BlankNode
	Predicate IRI
	Object    Node
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// key returns a deterministic sort key for the triple.
func (t Triple) key() string {
	return t.Subject.String() + "\x00" + t.Predicate.String() + "\x00" + t.Object.String()
}

func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescapeLiteral(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'u':
			if i+4 < len(s) {
				var r rune
				if _, err := fmt.Sscanf(s[i+1:i+5], "%04x", &r); err == nil {
					b.WriteRune(r)
					i += 4
					continue
				}
			}
			b.WriteByte(s[i])
		case 'U':
			if i+8 < len(s) {
				var r rune
				if _, err := fmt.Sscanf(s[i+1:i+9], "%08x", &r); err == nil {
					b.WriteRune(r)
					i += 8
					continue
				}
			}
			b.WriteByte(s[i])
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
