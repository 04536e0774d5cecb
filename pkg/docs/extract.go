package docs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tkw1536/lontod/pkg/rdf"
)

var (
	owlClass       = rdf.OWL.IRI("Class")
	owlRestriction = rdf.OWL.IRI("Restriction")
	owlOnProperty  = rdf.OWL.IRI("onProperty")
	owlUnionOf     = rdf.OWL.IRI("unionOf")
	owlIntersectOf = rdf.OWL.IRI("intersectionOf")
	provAgent      = rdf.PROV.IRI("Agent")
	skosExample    = rdf.SKOS.IRI("example")
	dctermsTitle   = rdf.DCTerms.IRI("title")
)

// ExtractOntology builds the documentation model of an ontology graph. The
// input graph is not modified; extraction works on a sorted copy expanded
// with inferred inverse and normalization triples.
func ExtractOntology(g *rdf.Graph) (*Ontology, error) {
	meta, err := LoadMeta()
	if err != nil {
		return nil, err
	}

	ont := g.Sorted()
	inferForDocs(ont)

	ex := &resourceExtractor{graph: ont, meta: meta}

	metadata, err := extractMetadata(ont, meta, ex)
	if err != nil {
		return nil, err
	}

	sections, err := extractSections(ont, meta, ex)
	if err != nil {
		return nil, err
	}

	namespaces := ont.UsedNamespaces()
	sort.Slice(namespaces, func(i, j int) bool {
		return namespaces[i].Prefix < namespaces[j].Prefix
	})

	schemaJSON, err := schemaOrgJSON(ont)
	if err != nil {
		return nil, err
	}

	return &Ontology{
		SchemaJSON: schemaJSON,
		Metadata:   metadata,
		Sections:   sections,
		Namespaces: namespaces,
		Graph:      ont,
	}, nil
}

// subjectObjects returns all (subject, object) pairs with the given
// predicate, in graph order.
func subjectObjects(g *rdf.Graph, predicate rdf.IRI) [][2]rdf.Node {
	var out [][2]rdf.Node
	for _, t := range g.Triples() {
		if t.Predicate == predicate {
			out = append(out, [2]rdf.Node{t.Subject, t.Object})
		}
	}
	return out
}

// inferForDocs expands the graph so that rendering only needs to look at a
// single normalized predicate per concern: titles and descriptions collapse
// onto dcterms, inverse navigation triples are materialized, and agent
// nodes are typed and annotated.
func inferForDocs(g *rdf.Graph) {
	// rdfs classes are owl classes
	for _, s := range g.Subjects(rdf.RDFType, rdf.RDFS.IRI("Class")) {
		g.Add(rdf.Triple{Subject: s, Predicate: rdf.RDFType, Object: owlClass})
	}

	copyTo := func(target rdf.IRI, sources ...rdf.IRI) {
		for _, src := range sources {
			for _, pair := range subjectObjects(g, src) {
				g.Add(rdf.Triple{Subject: pair[0], Predicate: target, Object: pair[1]})
			}
		}
	}
	copyTo(dctermsTitle,
		rdf.DC.IRI("title"), rdf.RDFS.IRI("label"), rdf.SKOS.IRI("prefLabel"), rdf.SDO.IRI("name"))
	copyTo(rdf.DCTerms.IRI("description"),
		rdf.DC.IRI("description"), rdf.RDFS.IRI("comment"), rdf.SKOS.IRI("definition"), rdf.SDO.IRI("description"))
	copyTo(rdf.DCTerms.IRI("source"), rdf.DC.IRI("source"))
	copyTo(rdf.DCTerms.IRI("license"), rdf.SDO.IRI("license"))

	// blank node shapes
	for _, pair := range subjectObjects(g, owlOnProperty) {
		g.Add(rdf.Triple{Subject: pair[0], Predicate: rdf.RDFType, Object: owlRestriction})
	}
	for _, pred := range []rdf.IRI{owlUnionOf, owlIntersectOf} {
		for _, pair := range subjectObjects(g, pred) {
			g.Add(rdf.Triple{Subject: pair[0], Predicate: rdf.RDFType, Object: owlClass})
		}
	}

	// inverse navigation
	invert := func(pred, inverse rdf.IRI) {
		for _, pair := range subjectObjects(g, pred) {
			g.Add(rdf.Triple{Subject: pair[1], Predicate: inverse, Object: pair[0]})
		}
	}
	invert(rdf.RDFS.IRI("subClassOf"), rdf.OntDoc.IRI("superClassOf"))
	invert(rdf.RDFS.IRI("subPropertyOf"), rdf.OntDoc.IRI("superPropertyOf"))
	invert(rdf.RDFS.IRI("domain"), rdf.OntDoc.IRI("inDomainOf"))
	invert(rdf.SDO.IRI("domainIncludes"), rdf.OntDoc.IRI("inDomainIncludesOf"))
	invert(rdf.RDFS.IRI("range"), rdf.OntDoc.IRI("inRangeOf"))
	invert(rdf.SDO.IRI("rangeIncludes"), rdf.OntDoc.IRI("inRangeIncludesOf"))
	// membership back-links materialize on hasInstance, the predicate the
	// class pages render, rather than a separate hasMember that nothing reads
	invert(rdf.RDFType, rdf.OntDoc.IRI("hasInstance"))

	// normalize agent predicates onto dcterms
	rewrite := func(target rdf.IRI, sources ...rdf.IRI) {
		for _, src := range sources {
			for _, pair := range subjectObjects(g, src) {
				g.Remove(rdf.Triple{Subject: pair[0], Predicate: src, Object: pair[1]})
				g.Add(rdf.Triple{Subject: pair[0], Predicate: target, Object: pair[1]})
			}
		}
	}
	rewrite(rdf.DCTerms.IRI("creator"),
		rdf.DC.IRI("creator"), rdf.SDO.IRI("creator"), rdf.SDO.IRI("author"))
	rewrite(rdf.DCTerms.IRI("contributor"),
		rdf.DC.IRI("contributor"), rdf.SDO.IRI("contributor"))
	rewrite(rdf.DCTerms.IRI("publisher"),
		rdf.DC.IRI("publisher"), rdf.SDO.IRI("publisher"))

	for _, pred := range []rdf.IRI{
		rdf.DCTerms.IRI("publisher"), rdf.DCTerms.IRI("creator"), rdf.DCTerms.IRI("contributor"),
	} {
		for _, pair := range subjectObjects(g, pred) {
			g.Add(rdf.Triple{Subject: pair[1], Predicate: rdf.RDFType, Object: provAgent})
		}
	}

	copyTo(rdf.SDO.IRI("name"), rdf.FOAF.IRI("name"))
	copyTo(rdf.SDO.IRI("email"), rdf.FOAF.IRI("mbox"))
	copyTo(rdf.SDO.IRI("affiliation"), rdf.ORG.IRI("memberOf"))
}

// ontologySubjects returns the IRIs declared as an ontology, concept scheme
// or profile.
func ontologySubjects(g *rdf.Graph) []rdf.IRI {
	var out []rdf.IRI
	for _, typ := range []rdf.IRI{
		rdf.OWLOntology,
		rdf.SKOS.IRI("ConceptScheme"),
		rdf.PROF.IRI("Profile"),
	} {
		for _, s := range g.SubjectsOfType(typ) {
			if iri, ok := s.(rdf.IRI); ok {
				out = append(out, iri)
			}
		}
	}
	return out
}

func extractMetadata(g *rdf.Graph, meta *Meta, ex *resourceExtractor) (OntologyDefinienda, error) {
	values := make(map[rdf.IRI][]rdf.Node)
	inSet := make(map[rdf.IRI]struct{})
	for _, p := range ontProps {
		inSet[p] = struct{}{}
	}

	var iri rdf.IRI
	for _, subject := range ontologySubjects(g) {
		iri = subject
		for _, po := range g.PredicateObjects(subject) {
			if _, ok := inSet[po.Predicate]; ok {
				values[po.Predicate] = append(values[po.Predicate], po.Object)
			}
		}
	}

	var pairs []PropertyResourcePair
	for _, prop := range ontProps {
		nodes, ok := values[prop]
		if !ok {
			continue
		}
		mp, ok := meta.Property(prop)
		if !ok {
			return OntologyDefinienda{}, fmt.Errorf("no metadata for property %q", string(prop))
		}
		pairs = append(pairs, PropertyResourcePair{
			Prop:      mp,
			Resources: ex.Extract(prop, nodes...),
		})
	}

	return OntologyDefinienda{
		IRI:        iri,
		Titles:     literalsOf(values[dctermsTitle]),
		Properties: pairs,
	}, nil
}

func literalsOf(nodes []rdf.Node) []rdf.Literal {
	var out []rdf.Literal
	for _, n := range nodes {
		if lit, ok := n.(rdf.Literal); ok {
			out = append(out, lit)
		}
	}
	return out
}

func extractSections(g *rdf.Graph, meta *Meta, ex *resourceExtractor) ([]*TypeDefinienda, error) {
	var sections []*TypeDefinienda
	for i := range PropertyKinds {
		kind := &PropertyKinds[i]
		subjects := g.SubjectsOfType(kind.IRI)
		if len(subjects) == 0 {
			continue
		}
		section, err := extractSection(g, meta, ex, kind, subjects)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func extractSection(g *rdf.Graph, meta *Meta, ex *resourceExtractor, kind *PropertyKind, subjects []rdf.Node) (*TypeDefinienda, error) {
	inSet := make(map[rdf.IRI]struct{})
	for _, p := range kind.Properties {
		inSet[p] = struct{}{}
	}
	subClassOf := rdf.RDFS.IRI("subClassOf")
	restriction := rdf.OntDoc.IRI("restriction")

	var definienda []*Definiendum
subjects:
	for _, subject := range subjects {
		iri, ok := subject.(rdf.IRI)
		if !ok {
			continue
		}

		// instances of a more specific kind appear only under that kind
		for _, special := range kind.Specializations {
			if g.HasType(subject, special) {
				continue subjects
			}
		}

		values := make(map[rdf.IRI][]rdf.Node)
		for _, po := range g.PredicateObjects(subject) {
			if _, ok := inSet[po.Predicate]; !ok {
				continue
			}
			key := po.Predicate
			if key == subClassOf && g.HasType(po.Object, owlRestriction) {
				key = restriction
			}
			values[key] = append(values[key], po.Object)
		}

		var pairs []PropertyResourcePair
		for _, prop := range kind.Properties {
			nodes, ok := values[prop]
			if !ok {
				continue
			}
			mp, ok := meta.Property(prop)
			if !ok {
				return nil, fmt.Errorf("no metadata for property %q", string(prop))
			}
			pairs = append(pairs, PropertyResourcePair{
				Prop:      mp,
				Resources: ex.Extract(prop, nodes...),
			})
		}

		titles := literalsOf(values[dctermsTitle])
		if len(titles) == 0 {
			if title := IRIToTitle(iri); title != "" {
				titles = []rdf.Literal{rdf.NewLiteral(title)}
			} else {
				titles = []rdf.Literal{rdf.NewTypedLiteral(string(iri), rdf.XSD.IRI("anyURI"))}
			}
		}

		definienda = append(definienda, &Definiendum{
			IRI:        iri,
			Titles:     titles,
			Properties: pairs,
			Kind:       kind,
		})
	}

	return &TypeDefinienda{Kind: kind, Definienda: definienda}, nil
}

// schemaOrgJSON projects the ontology header onto schema.org terms and
// serializes the result as sorted JSON-LD.
func schemaOrgJSON(g *rdf.Graph) (string, error) {
	agentSet := make(map[rdf.IRI]struct{})
	for _, p := range agentProps {
		agentSet[p] = struct{}{}
	}

	copyAgent := func(sdo *rdf.Graph, node rdf.Node) {
		if _, isLit := node.(rdf.Literal); isLit {
			return
		}
		for _, po := range g.PredicateObjects(node) {
			if _, ok := agentSet[po.Predicate]; ok {
				sdo.Add(rdf.Triple{Subject: node, Predicate: po.Predicate, Object: po.Object})
			}
		}
	}

	mapping := map[rdf.IRI]rdf.IRI{
		dctermsTitle:                   rdf.SDO.IRI("name"),
		rdf.DCTerms.IRI("description"): rdf.SDO.IRI("description"),
		rdf.DCTerms.IRI("created"):     rdf.SDO.IRI("dateCreated"),
		rdf.DCTerms.IRI("modified"):    rdf.SDO.IRI("dateModified"),
		rdf.DCTerms.IRI("issued"):      rdf.SDO.IRI("dateIssued"),
		rdf.DCTerms.IRI("license"):     rdf.SDO.IRI("license"),
		rdf.DCTerms.IRI("rights"):      rdf.SDO.IRI("copyrightNotice"),
	}
	agentMapping := map[rdf.IRI]rdf.IRI{
		rdf.DCTerms.IRI("publisher"):   rdf.SDO.IRI("publisher"),
		rdf.DCTerms.IRI("creator"):     rdf.SDO.IRI("creator"),
		rdf.DCTerms.IRI("contributor"): rdf.SDO.IRI("contributor"),
	}

	sdo := rdf.NewGraph()
	for _, iri := range ontologySubjects(g) {
		sdo.Add(rdf.Triple{Subject: iri, Predicate: rdf.RDFType, Object: rdf.SDO.IRI("DefinedTermSet")})
		for _, po := range g.PredicateObjects(iri) {
			if target, ok := mapping[po.Predicate]; ok {
				sdo.Add(rdf.Triple{Subject: iri, Predicate: target, Object: po.Object})
				continue
			}
			if target, ok := agentMapping[po.Predicate]; ok {
				sdo.Add(rdf.Triple{Subject: iri, Predicate: target, Object: po.Object})
				copyAgent(sdo, po.Object)
			}
		}
	}

	data, err := rdf.Serialize(sdo, "json-ld")
	if err != nil {
		return "", fmt.Errorf("failed to serialize schema.org description: %w", err)
	}
	return string(data), nil
}

// resourceExtractor turns object nodes into renderable resources.
type resourceExtractor struct {
	graph *rdf.Graph
	meta  *Meta
}

// Extract builds the resources for the objects of one predicate.
func (ex *resourceExtractor) Extract(prop rdf.IRI, objects ...rdf.Node) RDFResources {
	resources := make([]Resource, 0, len(objects))
	for _, obj := range objects {
		resources = append(resources, ex.extract(obj, prop))
	}
	return RDFResources{Resources: resources}
}

func (ex *resourceExtractor) extract(obj rdf.Node, prop rdf.IRI) Resource {
	switch obj := obj.(type) {
	case rdf.IRI:
		return ex.extractIRI(obj)
	case rdf.BlankNode:
		return ex.extractBlank(obj)
	case rdf.Literal:
		return ex.extractLiteral(obj, prop)
	}
	return BlankNodeResource{}
}

func (ex *resourceExtractor) extractBlank(node rdf.BlankNode) Resource {
	switch {
	case ex.graph.HasType(node, provAgent):
		return ex.extractAgent(node)
	case ex.graph.HasType(node, owlRestriction):
		return ex.extractRestriction(node)
	case ex.graph.HasType(node, owlClass):
		return ex.extractSetClass(node)
	}
	return BlankNodeResource{Node: node}
}

func (ex *resourceExtractor) extractIRI(iri rdf.IRI) Resource {
	if ex.graph.HasType(iri, provAgent) {
		return ex.extractAgent(iri)
	}

	var title string
	if lit, ok := ex.meta.TitleOf(iri); ok {
		title = lit.Value
	} else if lit, ok := ex.graph.Value(iri, dctermsTitle).(rdf.Literal); ok {
		title = lit.Value
	} else {
		title = string(iri)
	}

	return ResourceReference{IRI: iri, Title: title}
}

func (ex *resourceExtractor) extractSetClass(node rdf.BlankNode) Resource {
	kind := SetClassNone
	if len(ex.graph.Objects(node, owlUnionOf)) > 0 {
		kind = SetClassUnion
	} else if len(ex.graph.Objects(node, owlIntersectOf)) > 0 {
		kind = SetClassIntersection
	}

	var resources []Resource
	for _, pred := range []rdf.IRI{owlUnionOf, owlIntersectOf} {
		for _, head := range ex.graph.Objects(node, pred) {
			for _, member := range ex.graph.List(head) {
				resources = append(resources, ex.extract(member, ""))
			}
		}
	}
	return SetClassResource{Kind: kind, Resources: resources}
}

func (ex *resourceExtractor) extractRestriction(node rdf.BlankNode) Resource {
	var properties []Resource
	var cardinalities []Resource

	for _, po := range ex.graph.PredicateObjects(node) {
		if po.Predicate == rdf.RDFType {
			continue
		}

		if po.Predicate == owlOnProperty {
			iri, ok := po.Object.(rdf.IRI)
			if !ok {
				continue
			}
			if ref, ok := ex.extractIRI(iri).(ResourceReference); ok {
				properties = append(properties, ref)
			}
			continue
		}

		if kind, ok := numericCardinalityProps[po.Predicate]; ok {
			var value string
			if lit, isLit := po.Object.(rdf.Literal); isLit {
				value = lit.Value
			} else {
				value = po.Object.String()
			}
			cardinalities = append(cardinalities, CardinalityNumeric{
				Kind:  NumericCardinalityKind(kind),
				Value: value,
			})
			continue
		}

		if kind, ok := referenceCardinalityProps[po.Predicate]; ok {
			iri, isIRI := po.Object.(rdf.IRI)
			if !isIRI {
				continue
			}
			ref, isRef := ex.extractIRI(iri).(ResourceReference)
			if !isRef {
				continue
			}
			cardinalities = append(cardinalities, CardinalityReference{
				Kind: ReferenceCardinalityKind(kind),
				Ref:  ref,
			})
		}
	}

	return RestrictionResource{Properties: properties, Cardinalities: cardinalities}
}

func (ex *resourceExtractor) extractLiteral(lit rdf.Literal, prop rdf.IRI) Resource {
	if ex.looksLikeIRI(lit.Value) {
		return ex.extractIRI(rdf.IRI(lit.Value))
	}
	return LiteralResource{
		IsExample: prop == skosExample,
		Literal:   lit,
	}
}

// looksLikeIRI reports whether a literal value is promoted to a reference:
// it must be an http(s) IRI for which the graph can compute a prefixed name.
func (ex *resourceExtractor) looksLikeIRI(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	if strings.ContainsAny(s, " \t\n\"<>") {
		return false
	}
	_, err := ex.graph.QName(rdf.IRI(s))
	return err == nil
}

func (ex *resourceExtractor) extractAgent(node rdf.Node) Resource {
	agent := AgentResource{Node: node}
	for _, po := range ex.graph.PredicateObjects(node) {
		switch po.Predicate {
		case rdf.SDO.IRI("name"):
			if lit, ok := po.Object.(rdf.Literal); ok {
				agent.Names = append(agent.Names, lit)
			}
		case rdf.SDO.IRI("honorificPrefix"):
			if lit, ok := po.Object.(rdf.Literal); ok {
				agent.Prefixes = append(agent.Prefixes, lit)
			}
		case rdf.SDO.IRI("identifier"):
			agent.Identifiers = append(agent.Identifiers, nodeText(po.Object))
		case rdf.SDO.IRI("url"):
			agent.URLs = append(agent.URLs, nodeText(po.Object))
		case rdf.SDO.IRI("email"):
			agent.Emails = append(agent.Emails, nodeText(po.Object))
		case rdf.SDO.IRI("affiliation"):
			agent.Affiliations = append(agent.Affiliations, ex.extractAffiliation(po.Object))
		}
	}
	return agent
}

func (ex *resourceExtractor) extractAffiliation(node rdf.Node) Affiliation {
	var af Affiliation
	for _, po := range ex.graph.PredicateObjects(node) {
		switch po.Predicate {
		case rdf.SDO.IRI("name"):
			if lit, ok := po.Object.(rdf.Literal); ok {
				af.Names = append(af.Names, lit)
			}
		case rdf.SDO.IRI("url"):
			af.URLs = append(af.URLs, nodeText(po.Object))
		}
	}
	return af
}

func nodeText(n rdf.Node) string {
	if lit, ok := n.(rdf.Literal); ok {
		return lit.Value
	}
	if iri, ok := n.(rdf.IRI); ok {
		return string(iri)
	}
	return n.String()
}
