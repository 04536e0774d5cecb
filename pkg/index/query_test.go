package index

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// populatedDB returns a database with one indexed ontology.
func populatedDB(t *testing.T) *sql.DB {
	t.Helper()

	db := testDB(t)
	indexer := NewIndexer(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, indexer.InitializeSchema(ctx))
	require.NoError(t, indexer.Upsert(ctx, "o", testOntology()))
	return db
}

func TestListOntologies(t *testing.T) {
	q := NewQuery(populatedDB(t), zap.NewNop())

	infos, err := q.ListOntologies(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)

	info := infos[0]
	assert.Equal(t, "o", info.ID)
	assert.Equal(t, "http://example.org/o", info.URI)
	assert.Equal(t, []string{"http://example.org/o/1.0"}, info.AlternateURIs)
	assert.Equal(t, []string{"text/html", "text/plain", "text/turtle"}, info.MimeTypes)
	assert.Equal(t, 4, info.DefiniendaCount)
}

func TestListOntologiesEmpty(t *testing.T) {
	db := testDB(t)
	require.NoError(t, NewIndexer(db, zap.NewNop()).InitializeSchema(context.Background()))

	infos, err := NewQuery(db, zap.NewNop()).ListOntologies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestGetData(t *testing.T) {
	q := NewQuery(populatedDB(t), zap.NewNop())
	ctx := context.Background()

	data, err := q.GetData(ctx, "http://example.org/o", "text/html")
	require.NoError(t, err)
	assert.Equal(t, []byte("<!DOCTYPE html><html></html>"), data)

	// alternate URIs resolve to the same ontology
	data, err = q.GetData(ctx, "http://example.org/o/1.0", "text/html")
	require.NoError(t, err)
	assert.NotNil(t, data)

	// missing encodings and unknown identifiers yield nil
	data, err = q.GetData(ctx, "http://example.org/o", "application/trig")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = q.GetData(ctx, "http://example.org/unknown", "text/html")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestHasMimeType(t *testing.T) {
	q := NewQuery(populatedDB(t), zap.NewNop())
	ctx := context.Background()

	ok, err := q.HasMimeType(ctx, "http://example.org/o", "text/turtle")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.HasMimeType(ctx, "http://example.org/o", "application/ld+json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMimeTypes(t *testing.T) {
	q := NewQuery(populatedDB(t), zap.NewNop())

	types, err := q.GetMimeTypes(context.Background(), "http://example.org/o")
	require.NoError(t, err)
	assert.Equal(t, []string{"text/html", "text/plain", "text/turtle"}, types)

	types, err = q.GetMimeTypes(context.Background(), "http://example.org/unknown")
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestGetDefinienda(t *testing.T) {
	q := NewQuery(populatedDB(t), zap.NewNop())
	ctx := context.Background()

	rows, err := q.GetDefinienda(ctx, "http://example.org/o#Thing")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, DefiniendumRow{
		URI:        "http://example.org/o#Thing",
		OntologyID: "o",
		Canonical:  true,
		Fragment:   "Thing",
	}, rows[0])

	// canonical matches sort before alternate ones
	rows, err = q.GetDefinienda(ctx,
		"http://example.org/o/1.0#Thing",
		"http://example.org/o#partOf",
	)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Canonical)
	assert.Equal(t, "partOf", rows[0].Fragment)
	assert.False(t, rows[1].Canonical)

	rows, err = q.GetDefinienda(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPrimaryURI(t *testing.T) {
	q := NewQuery(populatedDB(t), zap.NewNop())

	uri, err := q.PrimaryURI(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/o", uri)

	uri, err = q.PrimaryURI(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, uri)
}
