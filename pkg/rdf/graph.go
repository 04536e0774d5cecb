package rdf

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is an in-memory triple store. It preserves insertion order, keeps a
// set for O(1) membership checks, and maintains lookup indexes by subject and
// by predicate. A Graph is not safe for concurrent mutation.
type Graph struct {
	order   []Triple
	set     map[Triple]struct{}
	bySubj  map[Node][]int
	byPred  map[IRI][]int
	prefix  map[string]Namespace // prefix -> namespace
	reverse []Binding            // kept ordered by insertion for stable iteration
}

// Binding is a (prefix, namespace) pair bound on a graph.
type Binding struct {
	Prefix string
	NS     Namespace
}

// NewGraph returns an empty graph with the core namespaces bound.
func NewGraph() *Graph {
	g := &Graph{
		set:    make(map[Triple]struct{}),
		bySubj: make(map[Node][]int),
		byPred: make(map[IRI][]int),
		prefix: make(map[string]Namespace),
	}
	for _, b := range coreNamespaces {
		g.Bind(b.Prefix, b.NS)
	}
	return g
}

// Len returns the number of triples in the graph.
func (g *Graph) Len() int { return len(g.order) }

// Add inserts a triple. Duplicates are ignored.
func (g *Graph) Add(t Triple) {
	if _, ok := g.set[t]; ok {
		return
	}
	idx := len(g.order)
	g.order = append(g.order, t)
	g.set[t] = struct{}{}
	g.bySubj[t.Subject] = append(g.bySubj[t.Subject], idx)
	g.byPred[t.Predicate] = append(g.byPred[t.Predicate], idx)
}

// Remove deletes a triple if present.
func (g *Graph) Remove(t Triple) {
	if _, ok := g.set[t]; !ok {
		return
	}
	delete(g.set, t)
	for i, have := range g.order {
		if have == t {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.reindex()
}

func (g *Graph) reindex() {
	g.bySubj = make(map[Node][]int, len(g.bySubj))
	g.byPred = make(map[IRI][]int, len(g.byPred))
	for idx, t := range g.order {
		g.bySubj[t.Subject] = append(g.bySubj[t.Subject], idx)
		g.byPred[t.Predicate] = append(g.byPred[t.Predicate], idx)
	}
}

// Has reports whether the triple is in the graph.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.set[t]
	return ok
}

// HasType reports whether the graph contains (subject, rdf:type, typ).
func (g *Graph) HasType(subject Node, typ IRI) bool {
	return g.Has(Triple{Subject: subject, Predicate: RDFType, Object: typ})
}

// Triples returns the triples in insertion order. The returned slice is
// shared; callers must not mutate it.
func (g *Graph) Triples() []Triple { return g.order }

// Objects returns all objects of (subject, predicate, ?) in triple order.
func (g *Graph) Objects(subject Node, predicate IRI) []Node {
	var out []Node
	for _, idx := range g.bySubj[subject] {
		if t := g.order[idx]; t.Predicate == predicate {
			out = append(out, t.Object)
		}
	}
	return out
}

// Value returns the first object of (subject, predicate, ?), or nil.
func (g *Graph) Value(subject Node, predicate IRI) Node {
	for _, idx := range g.bySubj[subject] {
		if t := g.order[idx]; t.Predicate == predicate {
			return t.Object
		}
	}
	return nil
}

// Subjects returns all subjects of (?, predicate, object) in triple order,
// without duplicates.
func (g *Graph) Subjects(predicate IRI, object Node) []Node {
	var out []Node
	seen := make(map[Node]struct{})
	for _, idx := range g.byPred[predicate] {
		t := g.order[idx]
		if t.Object != object {
			continue
		}
		if _, ok := seen[t.Subject]; ok {
			continue
		}
		seen[t.Subject] = struct{}{}
		out = append(out, t.Subject)
	}
	return out
}

// SubjectsOfType returns all subjects typed as typ, in triple order.
func (g *Graph) SubjectsOfType(typ IRI) []Node {
	return g.Subjects(RDFType, typ)
}

// PredicateObject is one (predicate, object) pair of a subject.
type PredicateObject struct {
	Predicate IRI
	Object    Node
}

// PredicateObjects returns the (predicate, object) pairs for the given
// subject in triple order.
func (g *Graph) PredicateObjects(subject Node) []PredicateObject {
	var out []PredicateObject
	for _, idx := range g.bySubj[subject] {
		t := g.order[idx]
		out = append(out, PredicateObject{t.Predicate, t.Object})
	}
	return out
}

// List resolves an rdf:first/rdf:rest chain starting at head. Malformed
// lists terminate at the first missing link.
func (g *Graph) List(head Node) []Node {
	var out []Node
	seen := make(map[Node]struct{})
	for head != nil && head != Node(RDFNil) {
		if _, ok := seen[head]; ok {
			break
		}
		seen[head] = struct{}{}
		first := g.Value(head, RDFFirst)
		if first == nil {
			break
		}
		out = append(out, first)
		head = g.Value(head, RDFRest)
	}
	return out
}

// Bind associates a prefix with a namespace, replacing any earlier binding
// of the same prefix.
func (g *Graph) Bind(prefix string, ns Namespace) {
	if old, ok := g.prefix[prefix]; ok {
		if old == ns {
			return
		}
		for i := range g.reverse {
			if g.reverse[i].Prefix == prefix {
				g.reverse[i].NS = ns
				break
			}
		}
		g.prefix[prefix] = ns
		return
	}
	g.prefix[prefix] = ns
	g.reverse = append(g.reverse, Binding{Prefix: prefix, NS: ns})
}

// Namespaces returns all bound (prefix, namespace) pairs in binding order.
func (g *Graph) Namespaces() []Binding { return g.reverse }

// NamespaceFor returns the bound namespace for a prefix.
func (g *Graph) NamespaceFor(prefix string) (Namespace, bool) {
	ns, ok := g.prefix[prefix]
	return ns, ok
}

// QName formats an IRI as prefix:local using the longest matching bound
// namespace. When no binding matches an IRI ending in "/", the lookup is
// retried with the trailing slash stripped.
func (g *Graph) QName(iri IRI) (string, error) {
	if q, ok := g.qname(iri); ok {
		return q, nil
	}
	if strings.HasSuffix(string(iri), "/") {
		if q, ok := g.qname(IRI(strings.TrimRight(string(iri), "/"))); ok {
			return q, nil
		}
	}
	return "", fmt.Errorf("no namespace binding matches %q", string(iri))
}

func (g *Graph) qname(iri IRI) (string, bool) {
	var best Binding
	for _, b := range g.reverse {
		if !strings.HasPrefix(string(iri), string(b.NS)) {
			continue
		}
		if len(b.NS) > len(best.NS) {
			best = b
		}
	}
	if best.NS == "" {
		return "", false
	}
	local := string(iri[len(best.NS):])
	if strings.ContainsAny(local, "/#") {
		return "", false
	}
	return best.Prefix + ":" + local, true
}

// Sorted returns a copy of the graph with its triples in deterministic
// order. Namespace bindings carry over.
func (g *Graph) Sorted() *Graph {
	out := NewGraph()
	for _, b := range g.reverse {
		out.Bind(b.Prefix, b.NS)
	}
	triples := make([]Triple, len(g.order))
	copy(triples, g.order)
	sort.Slice(triples, func(i, j int) bool {
		return triples[i].key() < triples[j].key()
	})
	for _, t := range triples {
		out.Add(t)
	}
	return out
}

// UsedNamespaces yields every bound (prefix, namespace) pair whose namespace
// prefixes at least one IRI occurring in the graph, unioned with always.
func (g *Graph) UsedNamespaces(always ...Namespace) []Binding {
	want := make(map[Namespace]struct{}, len(always))
	for _, ns := range always {
		want[ns] = struct{}{}
	}
	used := func(ns Namespace) bool {
		if _, ok := want[ns]; ok {
			return true
		}
		for _, t := range g.order {
			if s, ok := t.Subject.(IRI); ok && strings.HasPrefix(string(s), string(ns)) {
				return true
			}
			if strings.HasPrefix(string(t.Predicate), string(ns)) {
				return true
			}
			if o, ok := t.Object.(IRI); ok && strings.HasPrefix(string(o), string(ns)) {
				return true
			}
			if l, ok := t.Object.(Literal); ok && l.Datatype != "" && strings.HasPrefix(string(l.Datatype), string(ns)) {
				return true
			}
		}
		return false
	}
	var out []Binding
	for _, b := range g.reverse {
		if used(b.NS) {
			out = append(out, b)
		}
	}
	return out
}

// TypeQuery selects the subjects of one rdf:type and the predicates whose
// objects should be collected for each subject.
type TypeQuery struct {
	Type       IRI
	Predicates []IRI
}

// SubjectObjectDicts answers each query with a map from subject IRI to the
// objects found under the query's predicates, preserving triple order.
func (g *Graph) SubjectObjectDicts(queries []TypeQuery) []map[IRI][]Node {
	out := make([]map[IRI][]Node, len(queries))
	for i, q := range queries {
		result := make(map[IRI][]Node)
		for _, s := range g.SubjectsOfType(q.Type) {
			iri, ok := s.(IRI)
			if !ok {
				continue
			}
			var values []Node
			for _, p := range q.Predicates {
				values = append(values, g.Objects(s, p)...)
			}
			result[iri] = values
		}
		out[i] = result
	}
	return out
}

// RestrictLanguages reduces language-tagged literals per (subject, predicate)
// pair to a single language: the first preference present among the offered
// tags, else the lexicographically smallest tag. Untagged literals and
// non-literal objects are always retained.
func (g *Graph) RestrictLanguages(preferences []string) {
	type sp struct {
		s Node
		p IRI
	}
	seen := make(map[sp]struct{})
	var pairs []sp
	for _, t := range g.order {
		k := sp{t.Subject, t.Predicate}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		pairs = append(pairs, k)
	}

	for _, k := range pairs {
		objects := g.Objects(k.s, k.p)
		langs := make(map[string]struct{})
		for _, o := range objects {
			if l, ok := o.(Literal); ok && l.Language != "" {
				langs[l.Language] = struct{}{}
			}
		}
		choice := pickLanguage(langs, preferences)
		if choice == "" {
			continue
		}
		for _, o := range objects {
			l, ok := o.(Literal)
			if !ok || l.Language == "" || l.Language == choice {
				continue
			}
			g.Remove(Triple{Subject: k.s, Predicate: k.p, Object: l})
		}
	}
}

func pickLanguage(offers map[string]struct{}, preferences []string) string {
	if len(offers) == 0 {
		return ""
	}
	for _, lang := range preferences {
		if _, ok := offers[lang]; ok {
			return lang
		}
	}
	tags := make([]string, 0, len(offers))
	for lang := range offers {
		tags = append(tags, lang)
	}
	sort.Strings(tags)
	return tags[0]
}
