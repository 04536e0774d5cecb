package docs

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tkw1536/lontod/pkg/rdf"
)

// maxFragmentTries bounds the search for a free fragment identifier.
const maxFragmentTries = 1000

type fragmentKey struct {
	group string
	iri   rdf.IRI
}

// RenderContext holds the per-render state: the fragment registry and a
// cache of prefix:local formattings. It lives for exactly one HTML
// serialization of one ontology.
type RenderContext struct {
	ontology *Ontology

	// preferred title languages in order, "" for untagged literals
	languages []string

	fragments map[fragmentKey]string
	taken     map[string]struct{}

	qnames map[rdf.IRI]string
}

// NewRenderContext creates a context for rendering the given ontology.
// Languages are the preferred title languages in order; when empty,
// untagged literals followed by English are preferred.
func NewRenderContext(ontology *Ontology, languages ...string) *RenderContext {
	if len(languages) == 0 {
		languages = []string{"", "en"}
	}
	return &RenderContext{
		ontology:  ontology,
		languages: languages,
		fragments: make(map[fragmentKey]string),
		taken:     make(map[string]struct{}),
		qnames:    make(map[rdf.IRI]string),
	}
}

// languageRank orders languages by preference; unknown languages sort last.
func (ctx *RenderContext) languageRank(lang string) int {
	for i, l := range ctx.languages {
		if l == lang {
			return i
		}
	}
	return len(ctx.languages)
}

// Ontology returns the ontology being rendered.
func (ctx *RenderContext) Ontology() *Ontology { return ctx.ontology }

// Fragment returns the fragment identifier for the given IRI within a
// group. Two calls return the same identifier exactly when both iri and
// group are equal. The title node, when given, is preferred as the basis of
// the identifier.
func (ctx *RenderContext) Fragment(iri rdf.IRI, title string, group string) (string, error) {
	key := fragmentKey{group: group, iri: iri}
	if fid, ok := ctx.fragments[key]; ok {
		return fid, nil
	}

	var pure []string
	if title != "" {
		pure = append(pure, removeNonASCII(strings.ReplaceAll(title, " ", "")))
	}
	if seg := fragmentSegment(string(iri)); seg != "" {
		pure = append(pure, seg)
	}
	if len(pure) == 0 {
		sum := md5.Sum([]byte(iri))
		pure = []string{hex.EncodeToString(sum[:])}
	}

	count := 0
	try := func(fid string) (string, bool) {
		candidate := fid
		if group != "" {
			candidate = group + "_" + fid
		}
		if _, used := ctx.taken[candidate]; !used {
			return candidate, true
		}
		return "", false
	}

	var chosen string
	var found bool
	for _, fid := range pure {
		if count++; count > maxFragmentTries {
			return "", fmt.Errorf("exceeded maximum tries when generating fragment identifier for %q", string(iri))
		}
		if chosen, found = try(fid); found {
			break
		}
	}
	for suffix := 2; !found; suffix++ {
		for _, fid := range pure {
			if count++; count > maxFragmentTries {
				return "", fmt.Errorf("exceeded maximum tries when generating fragment identifier for %q", string(iri))
			}
			if chosen, found = try(fmt.Sprintf("%s_%d", fid, suffix)); found {
				break
			}
		}
	}

	ctx.fragments[key] = chosen
	ctx.taken[chosen] = struct{}{}
	return chosen, nil
}

// Fragments returns a copy of the (iri, fragment) pairs allocated in the
// default group. These are the anchors of definienda in the rendered page.
func (ctx *RenderContext) Fragments() map[rdf.IRI]string {
	out := make(map[rdf.IRI]string)
	for key, fid := range ctx.fragments {
		if key.group == "" {
			out[key.iri] = fid
		}
	}
	return out
}

// QName formats an IRI as prefix:local against the ontology graph,
// memoized per context. Falls back to the full IRI text.
func (ctx *RenderContext) QName(iri rdf.IRI) string {
	if q, ok := ctx.qnames[iri]; ok {
		return q
	}
	q, err := ctx.ontology.Graph.QName(iri)
	if err != nil {
		q = string(iri)
	}
	ctx.qnames[iri] = q
	return q
}

// fragmentSegment extracts the final path or hash segment of an IRI, or ""
// when the IRI has no usable segment.
func fragmentSegment(iri string) string {
	segments := strings.Split(iri, "/")
	last := segments[len(segments)-1]
	if last == "" {
		return ""
	}
	// bare domains have no path segments
	if len(segments) < 4 {
		return ""
	}
	if strings.HasSuffix(last, "#") {
		return ""
	}
	parts := strings.Split(last, "#")
	if final := parts[len(parts)-1]; final != "" {
		return final
	}
	return parts[len(parts)-2]
}

func removeNonASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 && r != '&' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IRIToTitle derives a human-readable title from an IRI by splitting the
// final segment on camel-case boundaries. Returns "" when the IRI has no
// usable segment.
func IRIToTitle(iri rdf.IRI) string {
	seg := fragmentSegment(string(iri))
	if seg == "" {
		return ""
	}
	words := splitCamelCase(seg)
	if len(words) == 0 {
		return ""
	}
	joined := strings.Join(words, " ")
	if first := []rune(words[0]); len(first) > 0 && first[0] >= 'A' && first[0] <= 'Z' {
		return titleCase(joined)
	}
	return strings.ToLower(joined)
}

func splitCamelCase(s string) []string {
	var words []string
	runes := []rune(s)
	start := 0
	for i := 1; i < len(runes); i++ {
		lowerToUpper := isLower(runes[i-1]) && isUpper(runes[i])
		acronymEnd := i+1 < len(runes) && isUpper(runes[i-1]) && isUpper(runes[i]) && isLower(runes[i+1])
		if lowerToUpper || acronymEnd {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))
	return words
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if isLower(r[0]) {
			r[0] = r[0] - 'a' + 'A'
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
