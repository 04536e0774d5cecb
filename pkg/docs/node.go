// Package docs renders an ontology graph into a self-contained HTML
// documentation page: a typed HTML tree, a render context that allocates
// stable fragment identifiers, the bundled meta-ontology, and extractors
// that turn RDF nodes into renderable values.
package docs

import (
	"html"
	"io"
	"strings"
)

// Node is one node of the HTML tree.
type Node interface {
	writeTo(w io.Writer) error
}

// Text is character data; it is escaped on output.
type Text string

func (t Text) writeTo(w io.Writer) error {
	_, err := io.WriteString(w, html.EscapeString(string(t)))
	return err
}

// Raw is markup emitted verbatim.
type Raw string

func (r Raw) writeTo(w io.Writer) error {
	_, err := io.WriteString(w, string(r))
	return err
}

// Fragment renders its children in sequence with no surrounding tag.
type Fragment []Node

func (f Fragment) writeTo(w io.Writer) error {
	for _, c := range f {
		if c == nil {
			continue
		}
		if err := c.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

// Attr is a single attribute. A nil-valued attribute renders without a
// value; use Attrs' helpers for the common cases.
type Attr struct {
	Name  string
	Value string
	Bare  bool
}

// Element is a tag with attributes and children. Void elements render
// without a closing tag.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
	Void     bool
}

func (e *Element) writeTo(w io.Writer) error {
	if _, err := io.WriteString(w, "<"+e.Tag); err != nil {
		return err
	}
	for _, a := range e.Attrs {
		if a.Bare {
			if _, err := io.WriteString(w, " "+a.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := io.WriteString(w, " "+a.Name+`="`+html.EscapeString(a.Value)+`"`); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if e.Void {
		return nil
	}
	for _, c := range e.Children {
		if c == nil {
			continue
		}
		if err := c.writeTo(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+e.Tag+">")
	return err
}

// Append adds children to the element and returns it.
func (e *Element) Append(children ...any) *Element {
	e.add(children)
	return e
}

func (e *Element) add(children []any) {
	for _, c := range children {
		switch c := c.(type) {
		case nil:
		case Attr:
			e.Attrs = append(e.Attrs, c)
		case Node:
			e.Children = append(e.Children, c)
		case string:
			e.Children = append(e.Children, Text(c))
		case []Node:
			e.Children = append(e.Children, c...)
		case []any:
			e.add(c)
		default:
			panic("docs: unsupported child type")
		}
	}
}

// El builds an element from heterogenous children: Attr values become
// attributes, strings become escaped text, Nodes and slices are appended.
func El(tag string, children ...any) *Element {
	e := &Element{Tag: tag}
	e.add(children)
	return e
}

// Void builds a void element (no closing tag).
func Void(tag string, attrs ...Attr) *Element {
	return &Element{Tag: tag, Attrs: attrs, Void: true}
}

// A names an attribute with a value.
func A(name, value string) Attr { return Attr{Name: name, Value: value} }

// Bare names a value-less attribute.
func Bare(name string) Attr { return Attr{Name: name, Bare: true} }

// Render writes the node tree to w.
func Render(n Node, w io.Writer) error {
	return n.writeTo(w)
}

// RenderString renders the node tree into a string.
func RenderString(n Node) string {
	var b strings.Builder
	// strings.Builder never fails
	_ = n.writeTo(&b)
	return b.String()
}

// Document renders a complete HTML document: doctype, html element with the
// given head and body content.
func Document(head, body []Node) Node {
	return Fragment{
		Raw("<!DOCTYPE html>\n"),
		El("html", El("head", head), El("body", body)),
	}
}
