package index

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tkw1536/lontod/pkg/ontologies"
)

// testDB opens a fresh file-backed database for a single test.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	connector := Connector{
		Filename: filepath.Join(t.TempDir(), "test.db"),
		Mode:     ReadWriteCreate,
	}
	db, err := connector.Connect()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// testOntology builds a small ontology without going through the parsers.
func testOntology() *ontologies.Ontology {
	return &ontologies.Ontology{
		URI:           "http://example.org/o",
		AlternateURIs: []string{"http://example.org/o/1.0"},
		Encodings: map[string][]byte{
			"text/turtle": []byte("<http://example.org/o> a <http://www.w3.org/2002/07/owl#Ontology> ."),
			"text/plain":  []byte("<http://example.org/o> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Ontology> .\n"),
			"text/html":   []byte("<!DOCTYPE html><html></html>"),
		},
		Definienda: []ontologies.Definiendum{
			{URI: "http://example.org/o#Thing", Fragment: "Thing"},
			{URI: "http://example.org/o#partOf", Fragment: "partOf"},
		},
	}
}

func TestInitializeSchema(t *testing.T) {
	db := testDB(t)
	indexer := NewIndexer(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, indexer.InitializeSchema(ctx))

	// repeated initialization keeps existing data
	require.NoError(t, indexer.Upsert(ctx, "o", testOntology()))
	require.NoError(t, indexer.InitializeSchema(ctx))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM DEFINIENDA").Scan(&count))
	assert.NotZero(t, count)
}

func TestUpsert(t *testing.T) {
	db := testDB(t)
	indexer := NewIndexer(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, indexer.InitializeSchema(ctx))
	require.NoError(t, indexer.Upsert(ctx, "o", testOntology()))

	// one identity row per URI
	var identities int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM DEFINIENDA WHERE ONTOLOGY_ID = ? AND FRAGMENT IS NULL", "o",
	).Scan(&identities))
	assert.Equal(t, 2, identities)

	// definienda expand over the canonical and alternate prefixes
	var definienda int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM DEFINIENDA WHERE ONTOLOGY_ID = ? AND FRAGMENT IS NOT NULL", "o",
	).Scan(&definienda))
	assert.Equal(t, 4, definienda)

	var blobs int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM DATA WHERE ONTOLOGY_ID = ?", "o").Scan(&blobs))
	assert.Equal(t, 3, blobs)
}

func TestUpsertReplaces(t *testing.T) {
	db := testDB(t)
	indexer := NewIndexer(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, indexer.InitializeSchema(ctx))
	require.NoError(t, indexer.Upsert(ctx, "o", testOntology()))

	updated := testOntology()
	updated.Definienda = updated.Definienda[:1]
	updated.Encodings["text/turtle"] = []byte("# updated")
	require.NoError(t, indexer.Upsert(ctx, "o", updated))

	var definienda int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM DEFINIENDA WHERE ONTOLOGY_ID = ? AND FRAGMENT IS NOT NULL", "o",
	).Scan(&definienda))
	assert.Equal(t, 2, definienda)

	var turtle []byte
	require.NoError(t, db.QueryRow(
		"SELECT DATA FROM DATA WHERE ONTOLOGY_ID = ? AND MIME_TYPE = ?", "o", "text/turtle",
	).Scan(&turtle))
	assert.Equal(t, []byte("# updated"), turtle)
}

func TestRemove(t *testing.T) {
	db := testDB(t)
	indexer := NewIndexer(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, indexer.InitializeSchema(ctx))
	require.NoError(t, indexer.Upsert(ctx, "a", testOntology()))

	other := testOntology()
	other.URI = "http://example.org/b"
	other.AlternateURIs = nil
	require.NoError(t, indexer.Upsert(ctx, "b", other))

	require.NoError(t, indexer.Remove(ctx, "a"))

	var remaining int
	require.NoError(t, db.QueryRow("SELECT COUNT(DISTINCT ONTOLOGY_ID) FROM DEFINIENDA").Scan(&remaining))
	assert.Equal(t, 1, remaining)
}

func TestTruncate(t *testing.T) {
	db := testDB(t)
	indexer := NewIndexer(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, indexer.InitializeSchema(ctx))
	require.NoError(t, indexer.Upsert(ctx, "o", testOntology()))
	require.NoError(t, indexer.Truncate(ctx))

	for _, table := range []string{"DEFINIENDA", "DATA"} {
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count, table)
	}
}
