package index

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/tkw1536/lontod/pkg/ontologies"
)

// Execer is the subset of database operations the indexer needs. Both
// *sql.DB and *sql.Tx satisfy it, so mutations can run inside a
// caller-owned transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Indexer performs all write operations against the ontology store. It
// never begins or commits transactions; that is the caller's concern.
type Indexer struct {
	conn   Execer
	logger *zap.Logger
}

// NewIndexer creates an indexer writing through the given connection.
func NewIndexer(conn Execer, logger *zap.Logger) *Indexer {
	return &Indexer{conn: conn, logger: logger}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS DEFINIENDA (
	URI TEXT NOT NULL,
	ONTOLOGY_ID TEXT NOT NULL,
	SORT_KEY INTEGER NOT NULL,
	CANONICAL INTEGER NOT NULL,
	FRAGMENT TEXT
);
CREATE INDEX IF NOT EXISTS DEFINIENDA_URI ON DEFINIENDA (URI);
CREATE INDEX IF NOT EXISTS DEFINIENDA_ONTOLOGY ON DEFINIENDA (ONTOLOGY_ID);

CREATE TABLE IF NOT EXISTS DATA (
	ONTOLOGY_ID TEXT NOT NULL,
	MIME_TYPE TEXT NOT NULL,
	DATA BLOB NOT NULL,
	UNIQUE (ONTOLOGY_ID, MIME_TYPE)
);

DROP VIEW IF EXISTS ONTOLOGIES;
CREATE VIEW ONTOLOGIES AS
SELECT
	IDS.ONTOLOGY_ID AS ONTOLOGY_ID,
	(
		SELECT URI FROM DEFINIENDA
		WHERE ONTOLOGY_ID = IDS.ONTOLOGY_ID AND FRAGMENT IS NULL AND CANONICAL = 1
		LIMIT 1
	) AS URI,
	(
		SELECT JSON_GROUP_ARRAY(URI) FROM (
			SELECT URI FROM DEFINIENDA
			WHERE ONTOLOGY_ID = IDS.ONTOLOGY_ID AND FRAGMENT IS NULL AND CANONICAL = 0
			ORDER BY SORT_KEY DESC, URI
		)
	) AS ALTERNATE_URIS,
	(
		SELECT COUNT(*) FROM DEFINIENDA
		WHERE ONTOLOGY_ID = IDS.ONTOLOGY_ID AND FRAGMENT IS NOT NULL
	) AS DEFINIENDA_COUNT,
	(
		SELECT JSON_GROUP_ARRAY(MIME_TYPE) FROM (
			SELECT MIME_TYPE FROM DATA
			WHERE ONTOLOGY_ID = IDS.ONTOLOGY_ID
			ORDER BY MIME_TYPE
		)
	) AS MIME_TYPES
FROM (SELECT DISTINCT ONTOLOGY_ID FROM DEFINIENDA) AS IDS;
`

// InitializeSchema creates the tables and indexes if needed and re-creates
// the view. Safe to call repeatedly.
func (i *Indexer) InitializeSchema(ctx context.Context) error {
	if _, err := i.conn.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Truncate removes all rows from both tables.
func (i *Indexer) Truncate(ctx context.Context) error {
	for _, stmt := range []string{"DELETE FROM DEFINIENDA", "DELETE FROM DATA"} {
		if _, err := i.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to truncate: %w", err)
		}
	}
	return nil
}

// Remove deletes all rows belonging to the given ontology identifier.
func (i *Indexer) Remove(ctx context.Context, id string) error {
	if _, err := i.conn.ExecContext(ctx, "DELETE FROM DEFINIENDA WHERE ONTOLOGY_ID = ?", id); err != nil {
		return fmt.Errorf("failed to remove definienda of %q: %w", id, err)
	}
	if _, err := i.conn.ExecContext(ctx, "DELETE FROM DATA WHERE ONTOLOGY_ID = ?", id); err != nil {
		return fmt.Errorf("failed to remove data of %q: %w", id, err)
	}
	return nil
}

// Upsert replaces all rows for the given identifier with the contents of
// the ontology. Definienda keep their document order through descending
// sort keys, so the first anchor of a term wins redirect tie-breaks.
func (i *Indexer) Upsert(ctx context.Context, id string, ont *ontologies.Ontology) error {
	if err := i.Remove(ctx, id); err != nil {
		return err
	}

	const insertDefiniendum = "INSERT INTO DEFINIENDA (URI, ONTOLOGY_ID, SORT_KEY, CANONICAL, FRAGMENT) VALUES (?, ?, ?, ?, ?)"

	for _, u := range ont.URIs() {
		if _, err := i.conn.ExecContext(ctx, insertDefiniendum, u.URI, id, 0, u.Canonical, nil); err != nil {
			return fmt.Errorf("failed to insert identity row for %q: %w", id, err)
		}
	}

	for _, mt := range ontologies.MediaTypes() {
		data, ok := ont.Encodings[mt.Type]
		if !ok {
			continue
		}
		if _, err := i.conn.ExecContext(ctx,
			"INSERT INTO DATA (ONTOLOGY_ID, MIME_TYPE, DATA) VALUES (?, ?, ?)",
			id, mt.Type, data,
		); err != nil {
			return fmt.Errorf("failed to insert %s data for %q: %w", mt.Type, id, err)
		}
	}
	if html, ok := ont.Encodings["text/html"]; ok {
		if _, err := i.conn.ExecContext(ctx,
			"INSERT INTO DATA (ONTOLOGY_ID, MIME_TYPE, DATA) VALUES (?, ?, ?)",
			id, "text/html", html,
		); err != nil {
			return fmt.Errorf("failed to insert text/html data for %q: %w", id, err)
		}
	}

	for pos, d := range ont.AllDefinienda() {
		if _, err := i.conn.ExecContext(ctx, insertDefiniendum,
			d.URI, id, -pos, d.Canonical, d.Fragment,
		); err != nil {
			return fmt.Errorf("failed to insert definiendum %q for %q: %w", d.URI, id, err)
		}
	}

	i.logger.Debug("upserted ontology",
		zap.String("id", id),
		zap.String("uri", ont.URI),
		zap.Int("definienda", len(ont.Definienda)),
	)
	return nil
}
