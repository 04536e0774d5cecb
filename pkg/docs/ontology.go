package docs

import (
	_ "embed"
	"sort"

	"github.com/tkw1536/lontod/pkg/rdf"
)

//go:embed assets/style.css
var styleCSS string

var (
	lontodMetadata   = rdf.Lontod.IRI("Metadata")
	lontodNamespaces = rdf.Lontod.IRI("Namespaces")
	lontodLegend     = rdf.Lontod.IRI("Legend")
)

// PropertyResourcePair is a property together with its extracted values.
type PropertyResourcePair struct {
	Prop      MetaProperty
	Resources RDFResources
}

// ToHTML renders the property as a link annotated with its descriptions.
func (p MetaProperty) ToHTML(_ *RenderContext) (Node, error) {
	var description string
	for _, d := range p.Descriptions {
		if description != "" {
			description += " "
		}
		description += trimDot(d.Value) + "."
	}
	for _, ont := range p.Ontologies {
		if description != "" {
			description += " "
		}
		description += "Defined in "
		for i, title := range ont.Titles {
			if i > 0 {
				description += ", "
			}
			description += title.Value
		}
		description += "."
	}

	link := El("a", A("class", "hover_property"), A("href", string(p.IRI)))
	if description != "" {
		link.Append(A("title", description))
	}
	for _, title := range p.Titles {
		s := El("span", titleCase(title.Value))
		if title.Language != "" {
			s.Append(A("lang", title.Language))
		}
		link.Append(s)
	}
	return link, nil
}

func trimDot(s string) string {
	for len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// Definiendum is a single thing the ontology defines.
type Definiendum struct {
	IRI        rdf.IRI
	Titles     []rdf.Literal
	Properties []PropertyResourcePair
	Kind       *PropertyKind
}

// Title picks the primary title by the context's language preferences,
// falling back to the IRI itself.
func (d *Definiendum) Title(ctx *RenderContext) rdf.Literal {
	return pickTitle(ctx, d.IRI, d.Titles)
}

func pickTitle(ctx *RenderContext, iri rdf.IRI, titles []rdf.Literal) rdf.Literal {
	if len(titles) == 0 {
		return rdf.NewTypedLiteral(string(iri), rdf.XSD.IRI("anyURI"))
	}

	sorted := append([]rdf.Literal{}, titles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Language < sorted[j].Language
	})

	best := sorted[0]
	bestRank := ctx.languageRank(best.Language)
	for _, lit := range sorted[1:] {
		if rank := ctx.languageRank(lit.Language); rank < bestRank {
			best, bestRank = lit, rank
		}
	}
	return best
}

func (d *Definiendum) ToHTML(ctx *RenderContext) (Node, error) {
	title := d.Title(ctx)
	fragment, err := ctx.Fragment(d.IRI, title.Value, "")
	if err != nil {
		return nil, err
	}

	titleSpan := El("span", title.Value)
	if title.Language != "" {
		titleSpan.Append(A("lang", title.Language))
	}

	div := El("div",
		A("id", fragment),
		A("class", "property entity"),
		El("h3",
			titleSpan,
			El("sup",
				A("class", "sup-"+d.Kind.Abbrev),
				A("title", d.Kind.InlineTitle),
				d.Kind.Abbrev,
			),
		),
	)

	table := El("table", El("tr", El("th", "IRI"), El("td", El("code", string(d.IRI)))))
	for _, pair := range d.Properties {
		prop, err := pair.Prop.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		values, err := pair.Resources.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		table.Append(El("tr", El("th", prop), El("td", values)))
	}
	div.Append(table)

	return div, nil
}

// OntologyDefinienda is the metadata block about the ontology as a whole.
type OntologyDefinienda struct {
	IRI        rdf.IRI
	Titles     []rdf.Literal
	Properties []PropertyResourcePair
}

// Title picks the primary title by the context's language preferences.
func (o *OntologyDefinienda) Title(ctx *RenderContext) rdf.Literal {
	return pickTitle(ctx, o.IRI, o.Titles)
}

func (o *OntologyDefinienda) ToHTML(ctx *RenderContext) (Node, error) {
	metadataID, err := ctx.Fragment(lontodMetadata, "", "section")
	if err != nil {
		return nil, err
	}
	title := o.Title(ctx)

	titleSpan := El("span", title.Value)
	if title.Language != "" {
		titleSpan.Append(A("lang", title.Language))
	}

	div := El("div",
		A("id", metadataID),
		A("class", "section metadata"),
		El("h1", titleSpan),
		El("h2", "Metadata"),
	)

	defs := El("dl", El("div",
		El("dt", El("strong", "IRI")),
		El("dd", El("code", string(o.IRI))),
	))
	for _, pair := range o.Properties {
		prop, err := pair.Prop.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		values, err := pair.Resources.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		defs.Append(El("div", El("dt", prop), El("dd", values)))
	}
	div.Append(defs)

	return div, nil
}

// TypeDefinienda groups the definienda of a single kind into a section.
type TypeDefinienda struct {
	Kind       *PropertyKind
	Definienda []*Definiendum
}

func (t *TypeDefinienda) ToHTML(ctx *RenderContext) (Node, error) {
	id, err := ctx.Fragment(t.Kind.IRI, "", "section")
	if err != nil {
		return nil, err
	}

	section := El("section",
		A("id", id),
		A("class", "section classes"),
		El("h2", t.Kind.PluralTitle),
	)
	for _, d := range t.Definienda {
		n, err := d.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		section.Append(n)
	}
	return section, nil
}

// Ontology is the fully extracted documentation model of one ontology.
type Ontology struct {
	SchemaJSON string
	Metadata   OntologyDefinienda
	Sections   []*TypeDefinienda
	Namespaces []rdf.Binding
	Graph      *rdf.Graph

	index map[rdf.IRI]*Definiendum
}

// Definiendum returns the first definiendum for the given IRI, or nil when
// the ontology does not define it.
func (o *Ontology) Definiendum(iri rdf.IRI) *Definiendum {
	if o.index == nil {
		o.index = make(map[rdf.IRI]*Definiendum)
		for _, sec := range o.Sections {
			for _, d := range sec.Definienda {
				if _, ok := o.index[d.IRI]; !ok {
					o.index[d.IRI] = d
				}
			}
		}
	}
	return o.index[iri]
}

// Definienda iterates over all definienda in section order.
func (o *Ontology) Definienda(yield func(*Definiendum) bool) {
	for _, sec := range o.Sections {
		for _, d := range sec.Definienda {
			if !yield(d) {
				return
			}
		}
	}
}

// ToHTML renders the complete standalone documentation page.
func (o *Ontology) ToHTML(ctx *RenderContext) (Node, error) {
	head := []Node{
		El("title", o.Metadata.Title(ctx).Value),
		El("style", Raw("\n"+styleCSS+"\n")),
		Void("meta", A("http-equiv", "Content-Type"), A("content", "text/html; charset=utf-8")),
		El("script",
			A("type", "application/ld+json"),
			A("id", "schema.org"),
			Raw("\n"+o.SchemaJSON+"\n"),
		),
	}

	content := El("div", A("id", "content"))

	metadata, err := o.Metadata.ToHTML(ctx)
	if err != nil {
		return nil, err
	}
	content.Append(metadata)

	for _, sec := range o.Sections {
		n, err := sec.ToHTML(ctx)
		if err != nil {
			return nil, err
		}
		content.Append(n)
	}

	for _, build := range []func(*RenderContext) (Node, error){o.namespacesHTML, o.legendHTML, o.tocHTML} {
		n, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if n != nil {
			content.Append(n)
		}
	}

	return Document(head, []Node{content}), nil
}

func (o *Ontology) namespacesHTML(ctx *RenderContext) (Node, error) {
	if len(o.Namespaces) == 0 {
		return nil, nil
	}
	id, err := ctx.Fragment(lontodNamespaces, "", "section")
	if err != nil {
		return nil, err
	}

	defs := El("dl")
	for _, binding := range o.Namespaces {
		prefix := binding.Prefix
		if prefix == "" {
			prefix = ":"
		}
		defs.Append(
			El("dt", A("id", prefix), prefix),
			El("dd", El("code", string(binding.NS))),
		)
	}
	return El("div", A("id", id), El("h2", "Namespaces"), defs), nil
}

func (o *Ontology) legendHTML(ctx *RenderContext) (Node, error) {
	if len(o.Sections) == 0 {
		return nil, nil
	}
	id, err := ctx.Fragment(lontodLegend, "", "section")
	if err != nil {
		return nil, err
	}

	table := El("table", A("class", "entity"))
	for _, sec := range o.Sections {
		if len(sec.Definienda) == 0 {
			continue
		}
		table.Append(El("tr",
			El("td", El("sup",
				A("class", "sup-"+sec.Kind.Abbrev),
				A("title", sec.Kind.InlineTitle),
				sec.Kind.Abbrev,
			)),
			El("td", sec.Kind.PluralTitle),
		))
	}
	return El("div", A("class", "legend"), El("h2", A("id", id), "Legend"), table), nil
}

func (o *Ontology) tocHTML(ctx *RenderContext) (Node, error) {
	toc := El("div", A("class", "toc"), El("h3", "Table of Contents"))
	first := El("ul", A("class", "first"))
	toc.Append(first)

	metadataID, err := ctx.Fragment(lontodMetadata, "", "section")
	if err != nil {
		return nil, err
	}
	first.Append(El("li", El("h4", El("a", A("href", "#"+metadataID), "Metadata"))))

	for _, sec := range o.Sections {
		if len(sec.Definienda) == 0 {
			continue
		}
		sectionID, err := ctx.Fragment(sec.Kind.IRI, "", "section")
		if err != nil {
			return nil, err
		}
		second := El("ul", A("class", "second"))
		for _, d := range sec.Definienda {
			title := d.Title(ctx)
			fragment, err := ctx.Fragment(d.IRI, title.Value, "")
			if err != nil {
				return nil, err
			}
			second.Append(El("li", El("a", A("href", "#"+fragment), title.Value)))
		}
		first.Append(El("li",
			El("h4", El("a", A("href", "#"+sectionID), sec.Kind.PluralTitle)),
			second,
		))
	}

	if len(o.Namespaces) > 0 {
		namespaceID, err := ctx.Fragment(lontodNamespaces, "", "section")
		if err != nil {
			return nil, err
		}
		first.Append(El("li", El("h4", El("a", A("href", "#"+namespaceID), "Namespaces"))))
	}

	if len(o.Sections) > 0 {
		legendID, err := ctx.Fragment(lontodLegend, "", "section")
		if err != nil {
			return nil, err
		}
		first.Append(El("li", El("h4", El("a", A("href", "#"+legendID), "Legend"))))
	}

	return toc, nil
}
