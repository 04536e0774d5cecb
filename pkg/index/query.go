package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Query performs read operations against the ontology store over a single
// dedicated connection. Instances are not safe for concurrent use; share
// them through a Pool.
type Query struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuery wraps a database handle for reading.
func NewQuery(db *sql.DB, logger *zap.Logger) *Query {
	return &Query{db: db, logger: logger}
}

// Close releases the underlying connection.
func (q *Query) Close() error {
	return q.db.Close()
}

// OntologyInfo is one row of the ONTOLOGIES view.
type OntologyInfo struct {
	ID              string
	URI             string
	AlternateURIs   []string
	MimeTypes       []string
	DefiniendaCount int
}

// ListOntologies returns all indexed ontologies ordered by identifier.
func (q *Query) ListOntologies(ctx context.Context) ([]OntologyInfo, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT ONTOLOGY_ID, URI, ALTERNATE_URIS, MIME_TYPES, DEFINIENDA_COUNT FROM ONTOLOGIES ORDER BY ONTOLOGY_ID",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ontologies: %w", err)
	}
	defer rows.Close()

	var out []OntologyInfo
	for rows.Next() {
		var info OntologyInfo
		var uri sql.NullString
		var alternates, mimeTypes string
		if err := rows.Scan(&info.ID, &uri, &alternates, &mimeTypes, &info.DefiniendaCount); err != nil {
			return nil, fmt.Errorf("failed to scan ontology row: %w", err)
		}
		info.URI = uri.String
		if err := json.Unmarshal([]byte(alternates), &info.AlternateURIs); err != nil {
			return nil, fmt.Errorf("failed to decode alternate uris of %q: %w", info.ID, err)
		}
		if err := json.Unmarshal([]byte(mimeTypes), &info.MimeTypes); err != nil {
			return nil, fmt.Errorf("failed to decode mime types of %q: %w", info.ID, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// identityJoin matches DATA rows through the ontology-identity rows of
// DEFINIENDA, so lookups accept any URI the ontology is known under.
const identityJoin = `FROM DATA INNER JOIN DEFINIENDA
	ON DATA.ONTOLOGY_ID = DEFINIENDA.ONTOLOGY_ID
	WHERE DEFINIENDA.URI = ? AND DEFINIENDA.FRAGMENT IS NULL`

// GetData returns the stored bytes for the given ontology identifier and
// media type, or nil when no such encoding exists.
func (q *Query) GetData(ctx context.Context, identifier, mimeType string) ([]byte, error) {
	var data []byte
	err := q.db.QueryRowContext(ctx,
		"SELECT DATA.DATA "+identityJoin+" AND DATA.MIME_TYPE = ? LIMIT 1",
		identifier, mimeType,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data for %q: %w", identifier, err)
	}
	return data, nil
}

// HasMimeType reports whether the ontology offers the given media type.
func (q *Query) HasMimeType(ctx context.Context, identifier, mimeType string) (bool, error) {
	var one int
	err := q.db.QueryRowContext(ctx,
		"SELECT 1 "+identityJoin+" AND DATA.MIME_TYPE = ? LIMIT 1",
		identifier, mimeType,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check mime type for %q: %w", identifier, err)
	}
	return true, nil
}

// GetMimeTypes returns the media types available for the ontology, ordered.
func (q *Query) GetMimeTypes(ctx context.Context, identifier string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT DISTINCT DATA.MIME_TYPE "+identityJoin+" ORDER BY DATA.MIME_TYPE",
		identifier,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get mime types for %q: %w", identifier, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var mt string
		if err := rows.Scan(&mt); err != nil {
			return nil, fmt.Errorf("failed to scan mime type: %w", err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

// DefiniendumRow is one match of a candidate IRI against the store.
// Fragment is "" for ontology-identity rows.
type DefiniendumRow struct {
	URI        string
	OntologyID string
	Canonical  bool
	Fragment   string
}

// GetDefinienda returns all rows matching any of the candidate URIs,
// preferred matches first. The first row is the redirect target.
func (q *Query) GetDefinienda(ctx context.Context, uris ...string) ([]DefiniendumRow, error) {
	if len(uris) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(uris)), ",")
	args := make([]any, len(uris))
	for i, u := range uris {
		args[i] = u
	}

	rows, err := q.db.QueryContext(ctx,
		"SELECT URI, ONTOLOGY_ID, CANONICAL, FRAGMENT FROM DEFINIENDA WHERE URI IN ("+placeholders+") ORDER BY CANONICAL DESC, SORT_KEY DESC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get definienda: %w", err)
	}
	defer rows.Close()

	var out []DefiniendumRow
	for rows.Next() {
		var row DefiniendumRow
		var fragment sql.NullString
		if err := rows.Scan(&row.URI, &row.OntologyID, &row.Canonical, &fragment); err != nil {
			return nil, fmt.Errorf("failed to scan definiendum: %w", err)
		}
		row.Fragment = fragment.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// PrimaryURI returns the canonical URI of the ontology with the given
// identifier, or "" when the ontology is not indexed.
func (q *Query) PrimaryURI(ctx context.Context, ontologyID string) (string, error) {
	var uri string
	err := q.db.QueryRowContext(ctx,
		"SELECT URI FROM DEFINIENDA WHERE ONTOLOGY_ID = ? AND FRAGMENT IS NULL AND CANONICAL = 1 LIMIT 1",
		ontologyID,
	).Scan(&uri)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get primary uri of %q: %w", ontologyID, err)
	}
	return uri, nil
}
