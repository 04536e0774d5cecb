// Package ontologies turns parsed RDF graphs into indexable ontologies:
// every supported serialization of the graph plus the rendered HTML
// documentation and the anchors it defines.
package ontologies

// MediaType pairs a serialization format name with its media type. The
// format name doubles as the file extension.
type MediaType struct {
	Format string
	Type   string
}

var mediaTypes = []MediaType{
	{"xml", "application/rdf+xml"},
	{"n3", "text/n3"},
	{"turtle", "text/turtle"},
	{"nt", "text/plain"},
	{"trig", "application/trig"},
	{"json-ld", "application/ld+json"},
	{"hext", "application/x-ndjson"},
}

// MediaTypes returns all (format, media type) pairs in canonical order.
func MediaTypes() []MediaType {
	out := make([]MediaType, len(mediaTypes))
	copy(out, mediaTypes)
	return out
}

// ExtensionFromType returns the file extension for a media type, without a
// leading period, or "" when the media type is not known.
func ExtensionFromType(typ string) string {
	for _, mt := range mediaTypes {
		if mt.Type == typ {
			return mt.Format
		}
	}
	return ""
}
