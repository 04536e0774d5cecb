package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// poolConnector prepares a file database with one indexed ontology and
// returns a read-only connector for it.
func poolConnector(t *testing.T) Connector {
	t.Helper()

	writer := Connector{
		Filename: filepath.Join(t.TempDir(), "test.db"),
		Mode:     ReadWriteCreate,
	}
	db, err := writer.Connect()
	require.NoError(t, err)
	defer db.Close()

	indexer := NewIndexer(db, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, indexer.InitializeSchema(ctx))
	require.NoError(t, indexer.Upsert(ctx, "o", testOntology()))

	return Connector{Filename: writer.Filename, Mode: ReadOnly}
}

func TestPoolUse(t *testing.T) {
	pool := NewPool(2, poolConnector(t), zap.NewNop())
	defer pool.Teardown()

	err := pool.Use(func(q *Query) error {
		infos, err := q.ListOntologies(context.Background())
		require.NoError(t, err)
		assert.Len(t, infos, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestPoolReuse(t *testing.T) {
	pool := NewPool(2, poolConnector(t), zap.NewNop())
	defer pool.Teardown()

	first, err := pool.Acquire()
	require.NoError(t, err)
	pool.Release(first)

	second, err := pool.Acquire()
	require.NoError(t, err)
	assert.Same(t, first, second)
	pool.Release(second)
}

func TestPoolBounded(t *testing.T) {
	pool := NewPool(1, poolConnector(t), zap.NewNop())
	defer pool.Teardown()

	a, err := pool.Acquire()
	require.NoError(t, err)
	b, err := pool.Acquire()
	require.NoError(t, err)

	pool.Release(a)
	// the pool is full, so this connection closes instead of idling
	pool.Release(b)

	c, err := pool.Acquire()
	require.NoError(t, err)
	assert.Same(t, a, c)
	pool.Release(c)
}

func TestPoolTeardown(t *testing.T) {
	pool := NewPool(2, poolConnector(t), zap.NewNop())

	q, err := pool.Acquire()
	require.NoError(t, err)
	pool.Release(q)

	pool.Teardown()

	_, err = pool.Acquire()
	assert.Error(t, err)

	// releasing after teardown closes the connection instead of panicking
	late, err := pool.connector.Connect()
	require.NoError(t, err)
	pool.Release(NewQuery(late, zap.NewNop()))
}
