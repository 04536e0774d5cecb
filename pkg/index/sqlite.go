// Package index persists processed ontologies in a SQLite database and
// answers the queries the HTTP layer needs: writer-side schema management
// and upserts, reader-side lookups through a connection pool, and a
// controller that keeps the database synchronized with watched paths.
package index

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// Mode selects how a database connection opens its target.
type Mode string

const (
	// ReadOnly opens an existing database for reading.
	ReadOnly Mode = "ro"
	// ReadWrite opens an existing database for reading and writing.
	ReadWrite Mode = "rw"
	// ReadWriteCreate opens a database for reading and writing, creating
	// it when missing.
	ReadWriteCreate Mode = "rwc"
	// InMemory opens a shared in-memory database. All connectors using the
	// same filename see the same data.
	InMemory Mode = "memory"
)

// Connector builds database handles for one target database. Every handle
// is limited to a single underlying connection so that callers control
// connection ownership explicitly.
type Connector struct {
	Filename string
	Mode     Mode
}

// DSN returns the data source name for this connector.
func (c Connector) DSN() string {
	dsn := fmt.Sprintf("file:%s?mode=%s", url.PathEscape(c.Filename), c.Mode)
	if c.Mode == InMemory {
		dsn += "&cache=shared"
	}
	return dsn + "&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// Connect opens a new single-connection handle to the database.
func (c Connector) Connect() (*sql.DB, error) {
	db, err := sql.Open("sqlite", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
