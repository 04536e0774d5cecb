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

func TestIndexAndCommit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pizza.ttl"), ingestTurtle)
	writeFile(t, filepath.Join(dir, "broken.ttl"), "not turtle at all {{{")

	db := testDB(t)
	controller := NewController(db, []string{dir}, nil, zap.NewNop())
	ctx := context.Background()

	// per-file failures do not prevent the commit
	require.NoError(t, controller.IndexAndCommit(ctx))

	infos, err := NewQuery(db, zap.NewNop()).ListOntologies(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "pizza", infos[0].ID)
}

func TestReindexRollsBackOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pizza.ttl")
	writeFile(t, path, ingestTurtle)

	db := testDB(t)
	controller := NewController(db, []string{dir}, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, controller.IndexAndCommit(ctx))

	// breaking the file rolls the re-index back and keeps the old data
	writeFile(t, path, "@prefix broken")
	controller.reindex(ctx)

	q := NewQuery(db, zap.NewNop())
	infos, err := q.ListOntologies(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	data, err := q.GetData(ctx, "http://example.org/pizza", "text/turtle")
	require.NoError(t, err)
	assert.NotNil(t, data)
}

func TestReindexPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pizza.ttl"), ingestTurtle)

	db := testDB(t)
	controller := NewController(db, []string{dir}, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, controller.IndexAndCommit(ctx))

	require.NoError(t, os.Remove(filepath.Join(dir, "pizza.ttl")))
	writeFile(t, filepath.Join(dir, "pasta.ttl"), `
@prefix owl: <http://www.w3.org/2002/07/owl#> .
<http://example.org/pasta> a owl:Ontology .
`)
	controller.reindex(ctx)

	infos, err := NewQuery(db, zap.NewNop()).ListOntologies(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "pasta", infos[0].ID)
	assert.Equal(t, "http://example.org/pasta", infos[0].URI)
}

func TestControllerClose(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pizza.ttl"), ingestTurtle)

	db := testDB(t)
	controller := NewController(db, []string{dir}, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, controller.IndexAndCommit(ctx))
	require.NoError(t, controller.StartWatching(ctx))

	// a second watch on the same controller is refused
	assert.Error(t, controller.StartWatching(ctx))

	require.NoError(t, controller.Close())
}

func TestScheduleCronInvalid(t *testing.T) {
	db := testDB(t)
	controller := NewController(db, nil, nil, zap.NewNop())

	assert.Error(t, controller.ScheduleCron(context.Background(), "not a cron spec"))
}
