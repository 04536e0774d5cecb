package index

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Pool is a bounded FIFO of read-side Query instances. Connections are
// created on demand; at most size of them are kept idle, surplus
// connections are closed on release.
type Pool struct {
	connector Connector
	logger    *zap.Logger
	size      int

	mu     sync.Mutex
	idle   []*Query
	closed bool
}

// NewPool creates a pool keeping up to size idle connections.
func NewPool(size int, connector Connector, logger *zap.Logger) *Pool {
	return &Pool{connector: connector, logger: logger, size: size}
}

// Acquire returns an idle Query or establishes a new connection.
func (p *Pool) Acquire() (*Query, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("pool is closed")
	}
	if n := len(p.idle); n > 0 {
		q := p.idle[0]
		p.idle = p.idle[1:]
		p.mu.Unlock()
		return q, nil
	}
	p.mu.Unlock()

	p.logger.Debug("establishing new database connection")
	db, err := p.connector.Connect()
	if err != nil {
		return nil, err
	}
	return NewQuery(db, p.logger), nil
}

// Release returns a Query to the pool, closing it when the pool is full or
// already torn down.
func (p *Pool) Release(q *Query) {
	p.mu.Lock()
	if !p.closed && len(p.idle) < p.size {
		p.idle = append(p.idle, q)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.logger.Debug("closing database connection")
	if err := q.Close(); err != nil {
		p.logger.Warn("failed to close connection", zap.Error(err))
	}
}

// Use runs fn with a pooled Query.
func (p *Pool) Use(fn func(*Query) error) error {
	q, err := p.Acquire()
	if err != nil {
		return err
	}
	defer p.Release(q)
	return fn(q)
}

// Teardown drains and closes all idle connections. Queries currently in
// use are closed when released.
func (p *Pool) Teardown() {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.closed = true
	p.mu.Unlock()

	for _, q := range idle {
		if err := q.Close(); err != nil {
			p.logger.Warn("failed to close connection", zap.Error(err))
		}
	}
}
