package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ingestTurtle = `
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix dcterms: <http://purl.org/dc/terms/> .

<http://example.org/pizza> a owl:Ontology ;
    dcterms:title "Pizza"@en .

<http://example.org/pizza#Margherita> a owl:Class .
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pizza.ttl"), ingestTurtle)
	writeFile(t, filepath.Join(dir, "broken.ttl"), "@prefix broken")
	writeFile(t, filepath.Join(dir, ".hidden.ttl"), ingestTurtle)

	db := testDB(t)
	ingester := NewIngester(NewIndexer(db, zap.NewNop()), nil, zap.NewNop())

	indexed, failed, err := ingester.Ingest(context.Background(), Options{Initialize: true}, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"pizza"}, indexed)
	assert.Equal(t, []string{filepath.Join(dir, "broken.ttl")}, failed)

	q := NewQuery(db, zap.NewNop())
	infos, err := q.ListOntologies(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "pizza", infos[0].ID)
	assert.Equal(t, "http://example.org/pizza", infos[0].URI)
}

func TestIngestSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pizza.ttl")
	writeFile(t, path, ingestTurtle)

	db := testDB(t)
	ingester := NewIngester(NewIndexer(db, zap.NewNop()), nil, zap.NewNop())

	indexed, failed, err := ingester.Ingest(context.Background(), Options{Initialize: true}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pizza"}, indexed)
	assert.Empty(t, failed)
}

func TestIngestMissingPath(t *testing.T) {
	db := testDB(t)
	ingester := NewIngester(NewIndexer(db, zap.NewNop()), nil, zap.NewNop())

	missing := filepath.Join(t.TempDir(), "nope")
	indexed, failed, err := ingester.Ingest(context.Background(), Options{Initialize: true}, missing)
	require.NoError(t, err)
	assert.Empty(t, indexed)
	assert.Equal(t, []string{missing}, failed)
}

func TestIngestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pizza.ttl")
	writeFile(t, path, ingestTurtle)

	db := testDB(t)
	ingester := NewIngester(NewIndexer(db, zap.NewNop()), nil, zap.NewNop())
	ctx := context.Background()

	_, _, err := ingester.Ingest(ctx, Options{Initialize: true}, path)
	require.NoError(t, err)

	_, _, err = ingester.Ingest(ctx, Options{Remove: true}, "pizza")
	require.NoError(t, err)

	infos, err := NewQuery(db, zap.NewNop()).ListOntologies(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestIngestTruncate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pizza.ttl"), ingestTurtle)

	db := testDB(t)
	ingester := NewIngester(NewIndexer(db, zap.NewNop()), nil, zap.NewNop())
	ctx := context.Background()

	_, _, err := ingester.Ingest(ctx, Options{Initialize: true}, dir)
	require.NoError(t, err)

	// truncating without paths leaves an empty store
	_, _, err = ingester.Ingest(ctx, Options{Truncate: true})
	require.NoError(t, err)

	infos, err := NewQuery(db, zap.NewNop()).ListOntologies(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}
