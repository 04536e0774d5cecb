package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectorDSN(t *testing.T) {
	file := Connector{Filename: "/data/my index.db", Mode: ReadWriteCreate}
	assert.Equal(t,
		"file:%2Fdata%2Fmy%20index.db?mode=rwc&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		file.DSN(),
	)

	mem := Connector{Filename: "lontod", Mode: InMemory}
	assert.Contains(t, mem.DSN(), "mode=memory&cache=shared")
}

func TestConnectorConnect(t *testing.T) {
	connector := Connector{
		Filename: filepath.Join(t.TempDir(), "test.db"),
		Mode:     ReadWriteCreate,
	}

	db, err := connector.Connect()
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// read-only connections see the created file
	ro := Connector{Filename: connector.Filename, Mode: ReadOnly}
	db, err = ro.Connect()
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestConnectorConnectMissing(t *testing.T) {
	connector := Connector{
		Filename: filepath.Join(t.TempDir(), "does-not-exist.db"),
		Mode:     ReadOnly,
	}

	_, err := connector.Connect()
	assert.Error(t, err)
}
