package rdf

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// EncodeNTriples writes the graph as N-Triples, one statement per line.
func EncodeNTriples(g *Graph, w io.Writer) error {
	for _, t := range g.Triples() {
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	return nil
}

// EncodeTurtle writes the graph as Turtle: prefix directives for every used
// namespace, then triples grouped by subject.
func EncodeTurtle(g *Graph, w io.Writer) error {
	used := g.UsedNamespaces()
	for _, b := range used {
		if _, err := fmt.Fprintf(w, "@prefix %s: <%s> .\n", b.Prefix, string(b.NS)); err != nil {
			return err
		}
	}
	if len(used) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return encodeTurtleBody(g, w, "")
}

func encodeTurtleBody(g *Graph, w io.Writer, indent string) error {
	var subjects []Node
	seen := make(map[Node]struct{})
	for _, t := range g.Triples() {
		if _, ok := seen[t.Subject]; ok {
			continue
		}
		seen[t.Subject] = struct{}{}
		subjects = append(subjects, t.Subject)
	}

	for i, s := range subjects {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s%s ", indent, g.turtleTerm(s)); err != nil {
			return err
		}
		pos := g.PredicateObjects(s)
		byPred := make(map[IRI][]Node)
		var preds []IRI
		for _, po := range pos {
			if _, ok := byPred[po.Predicate]; !ok {
				preds = append(preds, po.Predicate)
			}
			byPred[po.Predicate] = append(byPred[po.Predicate], po.Object)
		}
		for j, p := range preds {
			if j > 0 {
				if _, err := fmt.Fprintf(w, " ;\n%s    ", indent); err != nil {
					return err
				}
			}
			pname := "a"
			if p != RDFType {
				pname = g.turtleTerm(p)
			}
			objects := make([]string, 0, len(byPred[p]))
			for _, o := range byPred[p] {
				objects = append(objects, g.turtleTerm(o))
			}
			if _, err := fmt.Fprintf(w, "%s %s", pname, strings.Join(objects, ", ")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, " .\n"); err != nil {
			return err
		}
	}
	return nil
}

// turtleTerm formats a node for Turtle output, preferring prefixed names.
func (g *Graph) turtleTerm(n Node) string {
	switch n := n.(type) {
	case IRI:
		if q, ok := g.qname(n); ok {
			return q
		}
		return n.String()
	case Literal:
		if n.Datatype != "" && n.Datatype != XSD.IRI("string") {
			if q, ok := g.qname(n.Datatype); ok {
				return `"` + escapeLiteral(n.Value) + `"^^` + q
			}
		}
		return n.String()
	default:
		return n.String()
	}
}

// EncodeN3 writes Notation3. The graph carries no N3-specific constructs, so
// the output is the Turtle form.
func EncodeN3(g *Graph, w io.Writer) error {
	return EncodeTurtle(g, w)
}

// EncodeTriG writes the graph as the default graph of a TriG document.
func EncodeTriG(g *Graph, w io.Writer) error {
	used := g.UsedNamespaces()
	for _, b := range used {
		if _, err := fmt.Fprintf(w, "@prefix %s: <%s> .\n", b.Prefix, string(b.NS)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "\n{"); err != nil {
		return err
	}
	if err := encodeTurtleBody(g, w, "    "); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// EncodeHext writes the graph in the Hextuples newline-delimited JSON form:
// one [subject, predicate, value, datatype, language, graph] array per line.
func EncodeHext(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, t := range g.Triples() {
		row := make([]string, 6)
		switch s := t.Subject.(type) {
		case IRI:
			row[0] = string(s)
		case BlankNode:
			row[0] = s.String()
		}
		row[1] = string(t.Predicate)
		switch o := t.Object.(type) {
		case IRI:
			row[2] = string(o)
			row[3] = "globalId"
		case BlankNode:
			row[2] = o.String()
			row[3] = "localId"
		case Literal:
			row[2] = o.Value
			switch {
			case o.Language != "":
				row[3] = string(RDF.IRI("langString"))
				row[4] = o.Language
			case o.Datatype != "":
				row[3] = string(o.Datatype)
			default:
				row[3] = string(XSD.IRI("string"))
			}
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// EncodeJSONLD writes the graph as a JSON-LD document with a prefix
// @context and an @graph array of node objects sorted by @id.
func EncodeJSONLD(g *Graph, w io.Writer) error {
	doc := jsonLDDocument(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

func jsonLDDocument(g *Graph) map[string]any {
	context := make(map[string]any)
	for _, b := range g.UsedNamespaces() {
		context[b.Prefix] = string(b.NS)
	}

	// list cons cells are inlined as @list values, not standalone nodes
	listNodes := make(map[Node]struct{})
	for _, t := range g.Triples() {
		if t.Predicate != RDFFirst {
			continue
		}
		if b, ok := t.Subject.(BlankNode); ok {
			listNodes[b] = struct{}{}
		}
	}

	nodes := make(map[Node]map[string]any)
	var order []Node
	for _, t := range g.Triples() {
		if _, ok := listNodes[t.Subject]; ok {
			continue
		}
		obj, ok := nodes[t.Subject]
		if !ok {
			obj = map[string]any{"@id": jsonLDID(t.Subject)}
			nodes[t.Subject] = obj
			order = append(order, t.Subject)
		}
		if t.Predicate == RDFType {
			if iri, ok := t.Object.(IRI); ok {
				types, _ := obj["@type"].([]any)
				obj["@type"] = append(types, string(iri))
				continue
			}
		}
		key := string(t.Predicate)
		values, _ := obj[key].([]any)
		obj[key] = append(values, jsonLDValue(g, t.Object))
	}

	graph := make([]any, 0, len(order))
	for _, s := range order {
		graph = append(graph, nodes[s])
	}
	SortJSONLDByID(graph)
	return map[string]any{"@context": context, "@graph": graph}
}

func jsonLDID(n Node) string {
	switch n := n.(type) {
	case IRI:
		return string(n)
	default:
		return n.String()
	}
}

func jsonLDValue(g *Graph, n Node) any {
	switch n := n.(type) {
	case IRI:
		return map[string]any{"@id": string(n)}
	case BlankNode:
		// embed list structure where the blank node heads an rdf list
		if items := g.List(n); len(items) > 0 {
			list := make([]any, 0, len(items))
			for _, item := range items {
				list = append(list, jsonLDValue(g, item))
			}
			return map[string]any{"@list": list}
		}
		return map[string]any{"@id": n.String()}
	case Literal:
		out := map[string]any{"@value": n.Value}
		if n.Language != "" {
			out["@language"] = n.Language
		} else if n.Datatype != "" && n.Datatype != XSD.IRI("string") {
			out["@type"] = string(n.Datatype)
		}
		return out
	default:
		return nil
	}
}

// SortJSONLDByID recursively sorts JSON-LD arrays of node objects by their
// @id value. Arrays under @list keys keep their order, which is semantic.
func SortJSONLDByID(doc any) {
	switch doc := doc.(type) {
	case []any:
		sort.SliceStable(doc, func(i, j int) bool {
			return jsonLDSortKey(doc[i]) < jsonLDSortKey(doc[j])
		})
		for _, item := range doc {
			SortJSONLDByID(item)
		}
	case map[string]any:
		for key, value := range doc {
			if key == "@list" {
				if items, ok := value.([]any); ok {
					for _, item := range items {
						SortJSONLDByID(item)
					}
				}
				continue
			}
			SortJSONLDByID(value)
		}
	}
}

func jsonLDSortKey(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := obj["@id"].(string)
	return id
}

// EncodeRDFXML writes the graph in RDF/XML, one rdf:Description per subject.
// Predicates outside every bound namespace get generated xmlns bindings, so
// no triple is lost in this serialization.
func EncodeRDFXML(g *Graph, w io.Writer) error {
	bindings := g.UsedNamespaces(RDF)
	prefixFor := make(map[Namespace]string, len(bindings))
	taken := make(map[string]struct{}, len(bindings))
	for _, b := range bindings {
		prefixFor[b.NS] = b.Prefix
		taken[b.Prefix] = struct{}{}
	}
	if _, ok := prefixFor[RDF]; !ok {
		prefixFor[RDF] = "rdf"
		taken["rdf"] = struct{}{}
		bindings = append(bindings, Binding{Prefix: "rdf", NS: RDF})
	}

	synth := 0
	for _, t := range g.Triples() {
		if _, ok := xmlQName(t.Predicate, prefixFor); ok {
			continue
		}
		ns, _, ok := splitPredicateIRI(t.Predicate)
		if !ok {
			return fmt.Errorf("cannot serialize predicate %q as RDF/XML", string(t.Predicate))
		}
		if _, bound := prefixFor[ns]; bound {
			continue
		}
		var prefix string
		for {
			synth++
			prefix = fmt.Sprintf("ns%d", synth)
			if _, ok := taken[prefix]; !ok {
				break
			}
		}
		prefixFor[ns] = prefix
		taken[prefix] = struct{}{}
		bindings = append(bindings, Binding{Prefix: prefix, NS: ns})
	}

	var header strings.Builder
	header.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n<rdf:RDF")
	for _, b := range bindings {
		header.WriteString(fmt.Sprintf("\n    xmlns:%s=%q", b.Prefix, string(b.NS)))
	}
	header.WriteString(">\n")
	if _, err := io.WriteString(w, header.String()); err != nil {
		return err
	}

	var subjects []Node
	seen := make(map[Node]struct{})
	for _, t := range g.Triples() {
		if _, ok := seen[t.Subject]; ok {
			continue
		}
		seen[t.Subject] = struct{}{}
		subjects = append(subjects, t.Subject)
	}

	for _, s := range subjects {
		about := ""
		switch s := s.(type) {
		case IRI:
			about = fmt.Sprintf(" rdf:about=%q", string(s))
		case BlankNode:
			about = fmt.Sprintf(" rdf:nodeID=%q", string(s))
		}
		if _, err := fmt.Fprintf(w, "  <rdf:Description%s>\n", about); err != nil {
			return err
		}
		for _, po := range g.PredicateObjects(s) {
			tag, ok := xmlQName(po.Predicate, prefixFor)
			if !ok {
				return fmt.Errorf("cannot serialize predicate %q as RDF/XML", string(po.Predicate))
			}
			if err := writeXMLProperty(w, tag, po.Object); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "  </rdf:Description>"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "</rdf:RDF>")
	return err
}

func xmlQName(iri IRI, prefixFor map[Namespace]string) (string, bool) {
	var bestNS Namespace
	for ns := range prefixFor {
		if strings.HasPrefix(string(iri), string(ns)) && len(ns) > len(bestNS) {
			bestNS = ns
		}
	}
	if bestNS == "" {
		return "", false
	}
	local := string(iri[len(bestNS):])
	if local == "" || strings.ContainsAny(local, "/#:") {
		return "", false
	}
	return prefixFor[bestNS] + ":" + local, true
}

// splitPredicateIRI splits an IRI into a namespace ending at its last "/" or
// "#" and a local XML name.
func splitPredicateIRI(iri IRI) (Namespace, string, bool) {
	s := string(iri)
	i := strings.LastIndexAny(s, "/#")
	if i < 0 || i+1 >= len(s) {
		return "", "", false
	}
	local := s[i+1:]
	if strings.Contains(local, ":") {
		return "", "", false
	}
	return Namespace(s[:i+1]), local, true
}

func writeXMLProperty(w io.Writer, tag string, object Node) error {
	switch o := object.(type) {
	case IRI:
		_, err := fmt.Fprintf(w, "    <%s rdf:resource=%q/>\n", tag, string(o))
		return err
	case BlankNode:
		_, err := fmt.Fprintf(w, "    <%s rdf:nodeID=%q/>\n", tag, string(o))
		return err
	case Literal:
		attrs := ""
		if o.Language != "" {
			attrs = fmt.Sprintf(" xml:lang=%q", o.Language)
		} else if o.Datatype != "" && o.Datatype != XSD.IRI("string") {
			attrs = fmt.Sprintf(" rdf:datatype=%q", string(o.Datatype))
		}
		var escaped strings.Builder
		escapeXMLText(&escaped, o.Value)
		_, err := fmt.Fprintf(w, "    <%s%s>%s</%s>\n", tag, attrs, escaped.String(), tag)
		return err
	default:
		return fmt.Errorf("cannot serialize object %v", object)
	}
}

func escapeXMLText(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		default:
			b.WriteRune(r)
		}
	}
}

// Serialize renders the graph in the named format and returns its bytes.
// Supported formats: turtle, nt, n3, trig, xml, json-ld, hext.
func Serialize(g *Graph, format string) ([]byte, error) {
	var b strings.Builder
	var err error
	switch format {
	case "turtle", "ttl":
		err = EncodeTurtle(g, &b)
	case "nt", "ntriples":
		err = EncodeNTriples(g, &b)
	case "n3":
		err = EncodeN3(g, &b)
	case "trig":
		err = EncodeTriG(g, &b)
	case "xml", "rdf":
		err = EncodeRDFXML(g, &b)
	case "json-ld", "jsonld":
		err = EncodeJSONLD(g, &b)
	case "hext":
		err = EncodeHext(g, &b)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
