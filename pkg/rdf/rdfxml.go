package rdf

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
)

const (
	rdfXMLNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xmlNS    = "http://www.w3.org/XML/1998/namespace"
)

// DecodeRDFXML parses the striped RDF/XML syntax into a graph. Namespace
// declarations on the document element are bound as graph prefixes.
func DecodeRDFXML(r io.Reader) (*Graph, error) {
	p := &rdfxmlParser{
		dec:   xml.NewDecoder(r),
		graph: NewGraph(),
	}
	if err := p.parse(); err != nil {
		return nil, fmt.Errorf("rdf/xml: %w", err)
	}
	return p.graph, nil
}

type rdfxmlParser struct {
	dec    *xml.Decoder
	graph  *Graph
	base   string
	nextID int
}

func (p *rdfxmlParser) parse() error {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Space == rdfXMLNS && start.Name.Local == "RDF" {
			p.bindNamespaces(start.Attr)
			return p.parseNodeElements(start, "")
		}
		// document element is itself a node element
		_, err = p.parseNodeElement(start, "")
		return err
	}
}

func (p *rdfxmlParser) bindNamespaces(attrs []xml.Attr) {
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			p.graph.Bind(a.Name.Local, Namespace(a.Value))
		case a.Name.Space == xmlNS && a.Name.Local == "base":
			p.base = a.Value
		}
	}
}

// parseNodeElements consumes node elements until the end tag of parent.
func (p *rdfxmlParser) parseNodeElements(parent xml.StartElement, lang string) error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if _, err := p.parseNodeElement(tok, lang); err != nil {
				return err
			}
		case xml.EndElement:
			if tok.Name == parent.Name {
				return nil
			}
		}
	}
}

// parseNodeElement parses one resource description and returns its subject.
func (p *rdfxmlParser) parseNodeElement(start xml.StartElement, lang string) (Node, error) {
	var subject Node
	var propAttrs []xml.Attr
	for _, a := range start.Attr {
		switch {
		case a.Name.Space == rdfXMLNS && a.Name.Local == "about":
			subject = p.resolve(a.Value)
		case a.Name.Space == rdfXMLNS && a.Name.Local == "ID":
			subject = p.resolve("#" + a.Value)
		case a.Name.Space == rdfXMLNS && a.Name.Local == "nodeID":
			subject = BlankNode(a.Value)
		case a.Name.Space == xmlNS && a.Name.Local == "lang":
			lang = a.Value
		case a.Name.Space == xmlNS && a.Name.Local == "base":
			p.base = a.Value
		case a.Name.Space == "xmlns" || a.Name.Local == "xmlns":
		default:
			propAttrs = append(propAttrs, a)
		}
	}
	if subject == nil {
		subject = p.newBlankNode()
	}

	if !(start.Name.Space == rdfXMLNS && start.Name.Local == "Description") {
		p.graph.Add(Triple{Subject: subject, Predicate: RDFType, Object: IRI(start.Name.Space + start.Name.Local)})
	}
	for _, a := range propAttrs {
		if a.Name.Space == rdfXMLNS && a.Name.Local == "type" {
			p.graph.Add(Triple{Subject: subject, Predicate: RDFType, Object: p.resolve(a.Value)})
			continue
		}
		object := Node(NewLiteral(a.Value))
		if lang != "" {
			object = NewLangLiteral(a.Value, lang)
		}
		p.graph.Add(Triple{Subject: subject, Predicate: IRI(a.Name.Space + a.Name.Local), Object: object})
	}

	// property elements up to the node's end tag
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if err := p.parsePropertyElement(subject, tok, lang); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return subject, nil
		}
	}
}

func (p *rdfxmlParser) parsePropertyElement(subject Node, start xml.StartElement, lang string) error {
	predicate := IRI(start.Name.Space + start.Name.Local)

	var resource, nodeID, datatype, parseType string
	var propAttrs []xml.Attr
	for _, a := range start.Attr {
		switch {
		case a.Name.Space == rdfXMLNS && a.Name.Local == "resource":
			resource = a.Value
		case a.Name.Space == rdfXMLNS && a.Name.Local == "nodeID":
			nodeID = a.Value
		case a.Name.Space == rdfXMLNS && a.Name.Local == "datatype":
			datatype = a.Value
		case a.Name.Space == rdfXMLNS && a.Name.Local == "parseType":
			parseType = a.Value
		case a.Name.Space == xmlNS && a.Name.Local == "lang":
			lang = a.Value
		case a.Name.Space == rdfXMLNS && a.Name.Local == "ID":
		default:
			propAttrs = append(propAttrs, a)
		}
	}

	switch {
	case resource != "":
		p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: p.resolve(resource)})
		return p.dec.Skip()
	case nodeID != "":
		p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: BlankNode(nodeID)})
		return p.dec.Skip()
	case len(propAttrs) > 0:
		// property attributes describe an implicit blank object
		object := p.newBlankNode()
		p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: object})
		for _, a := range propAttrs {
			p.graph.Add(Triple{Subject: object, Predicate: IRI(a.Name.Space + a.Name.Local), Object: NewLiteral(a.Value)})
		}
		return p.dec.Skip()
	case parseType == "Resource":
		object := p.newBlankNode()
		p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: object})
		for {
			tok, err := p.dec.Token()
			if err != nil {
				return err
			}
			switch tok := tok.(type) {
			case xml.StartElement:
				if err := p.parsePropertyElement(object, tok, lang); err != nil {
					return err
				}
			case xml.EndElement:
				return nil
			}
		}
	case parseType == "Collection":
		return p.parseCollection(subject, predicate, lang)
	case parseType == "Literal":
		raw, err := p.readRawXML(start)
		if err != nil {
			return err
		}
		p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: NewTypedLiteral(raw, RDF.IRI("XMLLiteral"))})
		return nil
	}

	// literal text or one nested node element
	var text strings.Builder
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.CharData:
			text.Write(tok)
		case xml.StartElement:
			object, err := p.parseNodeElement(tok, lang)
			if err != nil {
				return err
			}
			p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: object})
			return p.skipToEnd(start)
		case xml.EndElement:
			var object Node
			switch {
			case datatype != "":
				object = NewTypedLiteral(text.String(), IRI(datatype))
			case lang != "":
				object = NewLangLiteral(text.String(), lang)
			default:
				object = NewLiteral(text.String())
			}
			p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: object})
			return nil
		}
	}
}

func (p *rdfxmlParser) parseCollection(subject Node, predicate IRI, lang string) error {
	var items []Node
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			item, err := p.parseNodeElement(tok, lang)
			if err != nil {
				return err
			}
			items = append(items, item)
		case xml.EndElement:
			if len(items) == 0 {
				p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: RDFNil})
				return nil
			}
			head := p.newBlankNode()
			p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: head})
			current := head
			for i, item := range items {
				p.graph.Add(Triple{Subject: current, Predicate: RDFFirst, Object: item})
				if i == len(items)-1 {
					p.graph.Add(Triple{Subject: current, Predicate: RDFRest, Object: RDFNil})
					break
				}
				next := p.newBlankNode()
				p.graph.Add(Triple{Subject: current, Predicate: RDFRest, Object: next})
				current = next
			}
			return nil
		}
	}
}

// readRawXML re-serializes the children of start verbatim, for XMLLiteral
// values.
func (p *rdfxmlParser) readRawXML(start xml.StartElement) (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return "", err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			depth++
			b.WriteString("<" + tok.Name.Local)
			for _, a := range tok.Attr {
				b.WriteString(fmt.Sprintf(" %s=%q", a.Name.Local, a.Value))
			}
			b.WriteString(">")
		case xml.EndElement:
			if depth == 0 {
				if tok.Name != start.Name {
					return "", fmt.Errorf("unbalanced XML literal in %s", start.Name.Local)
				}
				return b.String(), nil
			}
			depth--
			b.WriteString("</" + tok.Name.Local + ">")
		case xml.CharData:
			var escaped strings.Builder
			xml.EscapeText(&escaped, tok)
			b.WriteString(escaped.String())
		}
	}
}

// skipToEnd discards tokens up to the end tag matching start.
func (p *rdfxmlParser) skipToEnd(start xml.StartElement) error {
	depth := 0
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				if tok.Name != start.Name {
					return fmt.Errorf("unexpected end tag %s", tok.Name.Local)
				}
				return nil
			}
			depth--
		}
	}
}

func (p *rdfxmlParser) resolve(raw string) IRI {
	if p.base == "" || strings.Contains(raw, "://") || strings.HasPrefix(raw, "urn:") || strings.HasPrefix(raw, "mailto:") {
		return IRI(raw)
	}
	base, err := url.Parse(p.base)
	if err != nil {
		return IRI(raw)
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return IRI(raw)
	}
	return IRI(base.ResolveReference(ref).String())
}

func (p *rdfxmlParser) newBlankNode() BlankNode {
	p.nextID++
	return BlankNode(fmt.Sprintf("genid%d", p.nextID))
}
