// Package daemon is the HTTP surface of lontod: routing, content
// negotiation, IRI dereferencing and the streamed index page.
package daemon

import (
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/gorilla/mux"
	"github.com/munnerz/goautoneg"
	"go.uber.org/zap"

	"github.com/tkw1536/lontod/pkg/index"
	"github.com/tkw1536/lontod/pkg/ontologies"
)

const defaultIndexHTMLHeader = `
<!DOCTYPE html>
<html lang="en">
<head>
<style>
    main { margin: 1em }
    span { display: block; margin-bottom: 1em; }
    ul { margin-top: 0; margin-bottom: 0; }
    main a, main a:visited{ color:blue; }
    footer { font-size:small; color: gray; }
    footer a, footer a:visited { color: black; }
    fieldset { margin-bottom: 1em; }
</style>
<title>Ontologies</title>
</head>
<h1>Ontologies</h1>
<main>
`

const defaultIndexTXTHeader = "# Ontologies:\n"

const defaultIndexHTMLFooter = `
</main>
<footer>
    Powered by <a href='https://github.com/tkw1536/lontod' target='_blank' rel='noopener noreferer'>lontod</a>
</footer>
`

const defaultIndexTXTFooter = "\n---\nPowered by lontod: https://github.com/tkw1536/lontod\n"

// Handler serves the ontology catalog.
type Handler struct {
	pool   *index.Pool
	logger *zap.Logger

	// OntologyRoute is the route ontologies are served under, "/" by
	// default. PublicDomain, when set, replaces the request host during
	// IRI dereferencing.
	OntologyRoute      string
	PublicDomain       string
	InsecureSkipRoutes bool
	Debug              bool

	IndexHTMLHeader string
	IndexHTMLFooter string
	IndexTXTHeader  string
	IndexTXTFooter  string
}

// NewHandler creates a handler reading from the given pool.
func NewHandler(pool *index.Pool, logger *zap.Logger) *Handler {
	return &Handler{
		pool:   pool,
		logger: logger,

		OntologyRoute: "/",

		IndexHTMLHeader: defaultIndexHTMLHeader,
		IndexHTMLFooter: defaultIndexHTMLFooter,
		IndexTXTHeader:  defaultIndexTXTHeader,
		IndexTXTFooter:  defaultIndexTXTFooter,
	}
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(h.OntologyRoute, h.wrap(h.handle)).Methods(http.MethodGet)

	if !h.InsecureSkipRoutes {
		// for safety
		r.PathPrefix("/.well-known/").HandlerFunc(h.notFound).Methods(http.MethodGet)

		// for speed, don't bother with these
		r.HandleFunc("/favicon.ico", h.notFound).Methods(http.MethodGet)
		r.HandleFunc("/robots.txt", h.notFound).Methods(http.MethodGet)
	}

	r.PathPrefix("/").HandlerFunc(h.wrap(h.handleFallback)).Methods(http.MethodGet)
	return r
}

// wrap catches errors and panics from a handler and turns them into 500
// responses. The response carries the stack trace only in debug mode.
func (h *Handler) wrap(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic in handler", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				h.serveError(w, rec)
			}
		}()

		if err := fn(w, r); err != nil {
			h.logger.Error("handler error", zap.Error(err), zap.String("path", r.URL.Path))
			h.serveError(w, err)
		}
	}
}

func (h *Handler) serveError(w http.ResponseWriter, cause any) {
	body := "Internal Server Error"
	if h.Debug {
		body = fmt.Sprintf("%v\n\n%s", cause, debug.Stack())
	}
	h.errorResponse(w, http.StatusInternalServerError, body)
}

func (h *Handler) notFound(w http.ResponseWriter, _ *http.Request) {
	h.errorResponse(w, http.StatusNotFound, "Not Found")
}

func (h *Handler) errorResponse(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprint(w, message)
}

func (h *Handler) redirectResponse(w http.ResponseWriter, dest string, code int) {
	w.Header().Set("Location", dest)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprintf(w, "Redirecting to %s...", dest)
}

// ReverseURL builds the server-local URL retrieving an ontology: route,
// identifier, optional format and download flag, optional fragment.
func (h *Handler) ReverseURL(identifier, format, fragment string, download bool) string {
	var query []string
	if identifier != "" {
		query = append(query, "identifier="+url.QueryEscape(identifier))
	}
	if format != "" {
		query = append(query, "format="+url.QueryEscape(format))
	}
	if download {
		query = append(query, "download=1")
	}

	out := h.OntologyRoute
	if len(query) > 0 {
		out += "?" + strings.Join(query, "&")
	}
	if fragment != "" {
		out += "#" + fragment
	}
	return out
}

// negotiate picks the best offered media type for the request, or the
// default when the request expresses no usable preference.
func negotiate(r *http.Request, offers []string, fallback string) string {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return fallback
	}
	if best := goautoneg.Negotiate(accept, offers); best != "" {
		return best
	}
	return fallback
}

// handle serves the main ontology route: the index page, or a single
// ontology when an identifier is given.
func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	params := r.URL.Query()
	identifier := params.Get("identifier")
	format := params.Get("format")
	download := params.Get("download") == "1"

	if identifier == "" {
		return h.handleRoot(w, r, format)
	}
	return h.handleOntology(w, r, identifier, format, download)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request, format string) error {
	h.logger.Debug("handle root", zap.String("format", format))

	if format == "" {
		format = negotiate(r, []string{"text/plain", "text/html"}, "text/plain")
	}
	return h.serveIndex(w, r, format)
}

func (h *Handler) handleOntology(w http.ResponseWriter, r *http.Request, identifier, format string, download bool) error {
	h.logger.Debug("handle ontology",
		zap.String("identifier", identifier),
		zap.String("format", format),
		zap.Bool("download", download),
	)

	return h.pool.Use(func(q *index.Query) error {
		decision := format
		if decision == "" {
			offers, err := q.GetMimeTypes(r.Context(), identifier)
			if err != nil {
				return err
			}
			if len(offers) == 0 {
				h.errorResponse(w, http.StatusNotFound, "Ontology not found")
				return nil
			}

			decision = negotiate(r, offers, "")
			if decision == "" {
				for _, offer := range offers {
					if offer == "text/plain" {
						decision = "text/plain"
						break
					}
				}
			}
			if decision == "" {
				h.errorResponse(w, http.StatusNotAcceptable, "No available content type")
				return nil
			}
		} else {
			ok, err := q.HasMimeType(r.Context(), identifier, decision)
			if err != nil {
				return err
			}
			if !ok {
				h.errorResponse(w, http.StatusNotFound, "Ontology not found")
				return nil
			}
		}

		return h.serveOntology(w, r, q, identifier, decision, download)
	})
}

func (h *Handler) serveOntology(w http.ResponseWriter, r *http.Request, q *index.Query, identifier, mimeType string, download bool) error {
	data, err := q.GetData(r.Context(), identifier, mimeType)
	if err != nil {
		return err
	}
	// race: the database may change between negotiation and retrieval
	if data == nil {
		h.errorResponse(w, http.StatusInternalServerError, "Negotiated content type went away")
		return nil
	}

	filename := identifierStem(identifier)
	if ext := ontologies.ExtensionFromType(mimeType); ext != "" {
		filename += "." + ext
	}

	kind := "inline"
	if download {
		kind = "attachment"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename*=UTF-8''%s", kind, url.PathEscape(filename)))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}

// identifierStem is the final path segment of an identifier, used as the
// base of download filenames.
func identifierStem(identifier string) string {
	trimmed := strings.TrimRight(identifier, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return identifier
	}
	return trimmed
}

// handleFallback dereferences arbitrary request IRIs: it looks up the
// request path under both schemes with and without a trailing slash and
// redirects to the fragment of the defining ontology.
func (h *Handler) handleFallback(w http.ResponseWriter, r *http.Request) error {
	host := h.PublicDomain
	if host == "" {
		host = requestHostname(r)
	}
	if host == "" {
		h.errorResponse(w, http.StatusNotFound, "not found")
		return nil
	}

	noProto := "://" + host + strings.TrimRight(r.URL.Path, "/")
	h.logger.Debug("looking up IRIs", zap.String("iri", noProto))

	candidates := []string{
		"http" + noProto,
		"https" + noProto,
		"http" + noProto + "/",
		"https" + noProto + "/",
	}

	return h.pool.Use(func(q *index.Query) error {
		rows, err := q.GetDefinienda(r.Context(), candidates...)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			if r.URL.Path != "/" {
				h.errorResponse(w, http.StatusNotFound, "not found")
				return nil
			}
			h.redirectResponse(w, h.ReverseURL("", "", "", false), http.StatusSeeOther)
			return nil
		}

		primary, err := q.PrimaryURI(r.Context(), rows[0].OntologyID)
		if err != nil {
			return err
		}
		if primary == "" {
			h.errorResponse(w, http.StatusNotFound, "not found")
			return nil
		}

		h.redirectResponse(w, h.ReverseURL(primary, "", rows[0].Fragment, false), http.StatusSeeOther)
		return nil
	})
}

func requestHostname(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.Host); err == nil {
		return host
	}
	return r.Host
}

// serveIndex streams the catalog of indexed ontologies.
func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request, mimeType string) error {
	h.logger.Debug("serve index", zap.String("format", mimeType))

	isHTML := mimeType == "text/html"
	if !isHTML && mimeType != "text/plain" {
		h.errorResponse(w, http.StatusNotFound, "Not Found")
		return nil
	}

	var infos []index.OntologyInfo
	err := h.pool.Use(func(q *index.Query) error {
		var err error
		infos, err = q.ListOntologies(r.Context())
		return err
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", mimeType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if isHTML {
		fmt.Fprint(w, h.IndexHTMLHeader)
	} else {
		fmt.Fprint(w, h.IndexTXTHeader)
	}

	flusher, _ := w.(http.Flusher)
	for _, info := range infos {
		if isHTML {
			h.writeIndexEntryHTML(w, info)
		} else {
			h.writeIndexEntryText(w, info)
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if isHTML {
		fmt.Fprint(w, h.IndexHTMLFooter)
	} else {
		fmt.Fprint(w, h.IndexTXTFooter)
	}
	return nil
}

func (h *Handler) writeIndexEntryHTML(w http.ResponseWriter, info index.OntologyInfo) {
	fmt.Fprint(w, "<fieldset>")
	fmt.Fprintf(w, "<legend>%s</legend>", html.EscapeString(info.URI))

	fmt.Fprint(w, "<span>")
	fmt.Fprintf(w, `<a href="%s">View In Default Format</a>`, html.EscapeString(h.ReverseURL(info.URI, "", "", false)))
	fmt.Fprint(w, "<br>")
	fmt.Fprintf(w, "%d Definienda", info.DefiniendaCount)
	fmt.Fprint(w, "</span>")

	fmt.Fprint(w, "Download in other formats:")
	fmt.Fprint(w, "<ul>")
	for _, typ := range info.MimeTypes {
		link := h.ReverseURL(info.URI, typ, "", true)
		fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`, html.EscapeString(link), html.EscapeString(typ))
	}
	fmt.Fprint(w, "</ul>")
	fmt.Fprint(w, "</fieldset>")
}

func (h *Handler) writeIndexEntryText(w http.ResponseWriter, info index.OntologyInfo) {
	fmt.Fprintf(w, "## Ontology %s:\n", info.URI)
	fmt.Fprintf(w, "[%s]\n", h.ReverseURL(info.URI, "", "", false))
	fmt.Fprintf(w, "%d Definienda\n\n", info.DefiniendaCount)

	fmt.Fprint(w, "Available Formats:\n")
	for _, typ := range info.MimeTypes {
		fmt.Fprintf(w, "* %s [%s]\n", typ, h.ReverseURL(info.URI, typ, "", true))
	}
	fmt.Fprint(w, "\n")
}
