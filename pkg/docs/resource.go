package docs

import (
	"strings"

	"github.com/tkw1536/lontod/pkg/rdf"
)

// Resource is a value extracted from an ontology graph that renders itself
// into the documentation page.
type Resource interface {
	ToHTML(ctx *RenderContext) (Node, error)
}

// RDFResources bundles the objects of a single (subject, predicate) pair.
type RDFResources struct {
	Resources []Resource
}

func (r RDFResources) ToHTML(ctx *RenderContext) (Node, error) {
	switch len(r.Resources) {
	case 0:
		return Fragment{}, nil
	case 1:
		return r.Resources[0].ToHTML(ctx)
	}

	list := El("ul")
	for _, res := range r.Resources {
		n, err := res.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		list.Append(El("li", n))
	}
	return list, nil
}

// ResourceReference links to another resource by IRI. When the target is
// defined on the same page, the link points at its fragment and carries the
// kind abbreviation; otherwise it opens the IRI externally.
type ResourceReference struct {
	IRI   rdf.IRI
	Title string
}

func (r ResourceReference) ToHTML(ctx *RenderContext) (Node, error) {
	defn := ctx.ontology.Definiendum(r.IRI)
	if defn == nil {
		return El("a",
			A("href", string(r.IRI)),
			A("target", "_blank"),
			A("rel", "noreferrer noopener"),
			r.Title,
		), nil
	}

	fragment, err := ctx.Fragment(r.IRI, defn.Title(ctx).Value, "")
	if err != nil {
		return nil, err
	}
	return El("div", A("class", "resource-ref"),
		El("a",
			A("title", string(r.IRI)),
			A("href", "#"+fragment),
			El("code", ctx.QName(r.IRI)),
		),
		El("sup",
			A("class", "sup-"+defn.Kind.Abbrev),
			A("title", defn.Kind.InlineTitle),
			defn.Kind.Abbrev,
		),
	), nil
}

// LiteralResource is a literal object. Examples render as preformatted
// text, everything else as sanitized markdown.
type LiteralResource struct {
	IsExample bool
	Literal   rdf.Literal
}

func (l LiteralResource) ToHTML(ctx *RenderContext) (Node, error) {
	if l.IsExample {
		return El("pre", l.Literal.Value), nil
	}
	return ctx.RenderLiteral(l.Literal), nil
}

// BlankNodeResource is a blank node of no recognized shape.
type BlankNodeResource struct {
	Node rdf.BlankNode
}

func (b BlankNodeResource) ToHTML(_ *RenderContext) (Node, error) {
	return El("pre", b.Node.String()), nil
}

// SetClassKind says how the members of a SetClassResource combine.
type SetClassKind int

const (
	SetClassNone SetClassKind = iota
	SetClassUnion
	SetClassIntersection
)

// SetClassResource is an anonymous class built as a union or intersection
// of other classes.
type SetClassResource struct {
	Kind      SetClassKind
	Resources []Resource
}

func (s SetClassResource) ToHTML(ctx *RenderContext) (Node, error) {
	joiner := ","
	switch s.Kind {
	case SetClassUnion:
		joiner = "or"
	case SetClassIntersection:
		joiner = "and"
	}

	var out Fragment
	for i, res := range s.Resources {
		if i > 0 {
			out = append(out, El("span", A("class", "_cardinality"), joiner))
		}
		n, err := res.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// RestrictionResource is an owl:Restriction: the restricted properties plus
// the cardinality constraints placed on them.
type RestrictionResource struct {
	Properties    []Resource
	Cardinalities []Resource
}

func (r RestrictionResource) ToHTML(ctx *RenderContext) (Node, error) {
	if len(r.Properties) == 0 && len(r.Cardinalities) == 0 {
		return Text("None"), nil
	}

	span := El("span")
	for _, p := range r.Properties {
		n, err := p.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		span.Append(n)
	}
	for _, c := range r.Cardinalities {
		n, err := c.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		span.Append(n)
	}
	if len(r.Properties) > 0 && len(r.Cardinalities) > 0 {
		span.Append(Void("br"))
	}
	return span, nil
}

// NumericCardinalityKind is one of min, max or exactly.
type NumericCardinalityKind string

const (
	CardinalityMin     NumericCardinalityKind = "min"
	CardinalityMax     NumericCardinalityKind = "max"
	CardinalityExactly NumericCardinalityKind = "exactly"
)

// CardinalityNumeric is a numeric cardinality constraint.
type CardinalityNumeric struct {
	Kind  NumericCardinalityKind
	Value string
}

func (c CardinalityNumeric) ToHTML(_ *RenderContext) (Node, error) {
	return El("span",
		El("span", A("class", "cardinality"), string(c.Kind)),
		El("span", c.Value),
	), nil
}

// ReferenceCardinalityKind is one of only, some, value, union or
// intersection.
type ReferenceCardinalityKind string

const (
	CardinalityOnly         ReferenceCardinalityKind = "only"
	CardinalitySome         ReferenceCardinalityKind = "some"
	CardinalityValue        ReferenceCardinalityKind = "value"
	CardinalityUnion        ReferenceCardinalityKind = "union"
	CardinalityIntersection ReferenceCardinalityKind = "intersection"
)

// CardinalityReference is a cardinality constraint referencing a class.
type CardinalityReference struct {
	Kind ReferenceCardinalityKind
	Ref  ResourceReference
}

func (c CardinalityReference) ToHTML(ctx *RenderContext) (Node, error) {
	ref, err := c.Ref.ToHTML(ctx)
	if err != nil {
		return nil, err
	}
	return El("span",
		El("span", A("class", "cardinality"), string(c.Kind)),
		El("span", ref),
	), nil
}

// AgentResource is a person or organization, typically the object of a
// creator, contributor or publisher property.
type AgentResource struct {
	Node         rdf.Node
	Names        []rdf.Literal
	Prefixes     []rdf.Literal
	Identifiers  []string
	URLs         []string
	Emails       []string
	Affiliations []Affiliation
}

func (a AgentResource) ToHTML(ctx *RenderContext) (Node, error) {
	if len(a.Names) == 0 {
		return El("span", a.Node.String()), nil
	}

	span := El("span")

	var nameSpans []Node
	for _, group := range partitionByLanguage(append(append([]rdf.Literal{}, a.Prefixes...), a.Names...)) {
		s := El("span")
		if group.Lang != "" {
			s.Append(A("lang", group.Lang))
		}
		for _, lit := range group.Literals {
			s.Append(lit.Value)
		}
		nameSpans = append(nameSpans, s)
	}

	var name Node = intersperse(nameSpans, func() Node { return Void("br") })
	if len(a.URLs) > 0 {
		name = El("a",
			A("href", a.URLs[0]),
			A("target", "_blank"),
			A("rel", "noopener noreferer"),
			name,
		)
	}
	span.Append(name)

	if iri, ok := a.Node.(rdf.IRI); ok && strings.Contains(string(iri), "orcid.org") {
		span.Append(El("a", A("href", string(iri)), Raw(orcidLogo)))
	}

	for _, id := range a.Identifiers {
		link := El("a", A("href", id))
		if strings.Contains(id, "orcid.org") {
			link.Append(Raw(orcidLogo))
		} else {
			link.Append(El("pre", id))
		}
		span.Append(link)
	}

	if len(a.Emails) > 0 {
		span.Append(Text("("))
		for i, email := range a.Emails {
			if i > 0 {
				span.Append(Text(","))
			}
			addr := strings.TrimPrefix(email, "mailto:")
			span.Append(El("a", A("href", "mailto:"+addr), addr))
		}
		span.Append(Text(")"))
	}

	for _, af := range a.Affiliations {
		n, err := af.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		span.Append(n)
	}

	return span, nil
}

// Affiliation is the organization an agent belongs to.
type Affiliation struct {
	Names []rdf.Literal
	URLs  []string
}

func (a Affiliation) ToHTML(_ *RenderContext) (Node, error) {
	var url string
	if len(a.URLs) > 0 {
		url = a.URLs[0]
	}

	if len(a.Names) > 0 {
		span := El("span")
		for _, group := range partitionByLanguage(a.Names) {
			inner := El("span")
			if group.Lang != "" {
				inner.Append(A("lang", group.Lang))
			}
			for i, name := range group.Literals {
				if i > 0 {
					inner.Append(Text(","))
				}
				if url != "" {
					inner.Append(El("a", A("href", url), name.Value))
				} else {
					inner.Append(name.Value)
				}
			}
			span.Append(El("em", " of ", inner))
		}
		return span, nil
	}

	if url != "" {
		return El("span", El("em", " of ", El("a", A("href", url), url))), nil
	}
	return El("span"), nil
}

type languageGroup struct {
	Lang     string
	Literals []rdf.Literal
}

// partitionByLanguage groups literals by language tag, preserving the order
// in which each language first appears.
func partitionByLanguage(lits []rdf.Literal) []languageGroup {
	var groups []languageGroup
	index := make(map[string]int)
	for _, lit := range lits {
		i, ok := index[lit.Language]
		if !ok {
			i = len(groups)
			index[lit.Language] = i
			groups = append(groups, languageGroup{Lang: lit.Language})
		}
		groups[i].Literals = append(groups[i].Literals, lit)
	}
	return groups
}

func intersperse(nodes []Node, sep func() Node) Fragment {
	var out Fragment
	for i, n := range nodes {
		if i > 0 {
			out = append(out, sep())
		}
		out = append(out, n)
	}
	return out
}

const orcidLogo = `<svg width="15px" height="15px" viewBox="0 0 72 72" version="1.1"
xmlns="http://www.w3.org/2000/svg"
xmlns:xlink="http://www.w3.org/1999/xlink">
<title>Orcid logo</title>
<g id="Symbols" stroke="none" stroke-width="1" fill="none" fill-rule="evenodd">
    <g id="hero" transform="translate(-924.000000, -72.000000)" fill-rule="nonzero">
        <g id="Group-4">
            <g id="vector_iD_icon" transform="translate(924.000000, 72.000000)">
                <path d="M72,36 C72,55.884375 55.884375,72 36,72 C16.115625,72 0,55.884375 0,36 C0,16.115625 16.115625,0 36,0 C55.884375,0 72,16.115625 72,36 Z" id="Path" fill="#A6CE39"></path>
                <g id="Group" transform="translate(18.868966, 12.910345)" fill="#FFFFFF">
                    <polygon id="Path" points="5.03734929 39.1250878 0.695429861 39.1250878 0.695429861 9.14431787 5.03734929 9.14431787 5.03734929 22.6930505 5.03734929 39.1250878"></polygon>
                    <path d="M11.409257,9.14431787 L23.1380784,9.14431787 C34.303014,9.14431787 39.2088191,17.0664074 39.2088191,24.1486995 C39.2088191,31.846843 33.1470485,39.1530811 23.1944669,39.1530811 L11.409257,39.1530811 L11.409257,9.14431787 Z M15.7511765,35.2620194 L22.6587756,35.2620194 C32.49858,35.2620194 34.7541226,27.8438084 34.7541226,24.1486995 C34.7541226,18.1301509 30.8915059,13.0353795 22.4332213,13.0353795 L15.7511765,13.0353795 L15.7511765,35.2620194 Z" id="Shape"></path>
                    <path d="M5.71401206,2.90182329 C5.71401206,4.441452 4.44526937,5.72914146 2.86638958,5.72914146 C1.28750978,5.72914146 0.0187670918,4.441452 0.0187670918,2.90182329 C0.0187670918,1.33420133 1.28750978,0.0745051096 2.86638958,0.0745051096 C4.44526937,0.0745051096 5.71401206,1.36219458 5.71401206,2.90182329 Z" id="Path"></path>
                </g>
            </g>
        </g>
    </g>
</g>
</svg>`
