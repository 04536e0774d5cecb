package index

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// debounceWindow is how long the watcher waits for filesystem quiescence
// before re-indexing.
const debounceWindow = time.Second

// Controller owns the writer connection and keeps the store synchronized
// with the configured paths. All writes go through a single transaction at
// a time, guarded by the writer lock; readers are never blocked.
type Controller struct {
	db            *sql.DB
	paths         []string
	htmlLanguages []string
	logger        *zap.Logger

	// serializes writer transactions
	mu sync.Mutex

	watcher *fsnotify.Watcher
	done    chan struct{}

	debounceMu sync.Mutex
	debounce   *time.Timer

	cron *cron.Cron
}

// NewController creates a controller writing through the given handle.
func NewController(db *sql.DB, paths, htmlLanguages []string, logger *zap.Logger) *Controller {
	return &Controller{
		db:            db,
		paths:         paths,
		htmlLanguages: htmlLanguages,
		logger:        logger,
	}
}

// IndexAndCommit runs an initial indexing pass. Per-file failures are
// logged but whatever succeeded is committed.
func (c *Controller) IndexAndCommit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Info("ingesting paths", zap.Strings("paths", c.paths))

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	ingester := NewIngester(NewIndexer(tx, c.logger), c.htmlLanguages, c.logger)
	_, failed, err := ingester.Ingest(ctx, Options{Initialize: true}, c.paths...)
	if err != nil {
		tx.Rollback()
		return err
	}
	if len(failed) > 0 {
		c.logger.Warn("some paths failed to index", zap.Strings("failed", failed))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}
	return nil
}

// reindex wipes and rebuilds the store in one transaction. If any file
// fails, the transaction rolls back and the previous index stays intact.
func (c *Controller) reindex(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	run := uuid.NewString()
	logger := c.logger.With(zap.String("run", run))
	logger.Info("re-indexing paths", zap.Strings("paths", c.paths))

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", zap.Error(err))
		return
	}

	ingester := NewIngester(NewIndexer(tx, logger), c.htmlLanguages, logger)
	_, failed, err := ingester.Ingest(ctx, Options{Truncate: true}, c.paths...)
	switch {
	case err != nil:
		logger.Error("failed to ingest, rolling back", zap.Error(err))
		tx.Rollback()
	case len(failed) > 0:
		logger.Error("failed to ingest some paths, rolling back", zap.Strings("failed", failed))
		tx.Rollback()
	default:
		logger.Info("committing indexed ontologies")
		if err := tx.Commit(); err != nil {
			logger.Error("failed to commit", zap.Error(err))
		}
	}
}

// StartWatching installs a recursive filesystem watcher on each path. Any
// event schedules a debounced re-index; a new event cancels the pending
// one.
func (c *Controller) StartWatching(ctx context.Context) error {
	if c.watcher != nil {
		return fmt.Errorf("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	for _, path := range c.paths {
		c.logger.Info("starting to watch", zap.String("path", path))
		if err := watchRecursive(watcher, path); err != nil {
			watcher.Close()
			return err
		}
	}

	c.watcher = watcher
	c.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				c.logger.Debug("filesystem event", zap.String("op", event.Op.String()), zap.String("name", event.Name))
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watchRecursive(watcher, event.Name)
					}
				}
				c.scheduleReindex(ctx)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("watcher error", zap.Error(err))
			case <-c.done:
				return
			}
		}
	}()

	return nil
}

func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
		return nil
	})
}

func (c *Controller) scheduleReindex(ctx context.Context) {
	c.debounceMu.Lock()
	defer c.debounceMu.Unlock()

	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(debounceWindow, func() {
		c.reindex(ctx)
	})
}

// ScheduleCron additionally re-indexes on a fixed cron schedule.
func (c *Controller) ScheduleCron(ctx context.Context, spec string) error {
	if c.cron == nil {
		c.cron = cron.New()
	}
	if _, err := c.cron.AddFunc(spec, func() { c.reindex(ctx) }); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	c.cron.Start()
	return nil
}

// Close stops watching and closes the writer connection. A re-index in
// flight finishes or rolls back before the connection closes.
func (c *Controller) Close() error {
	if c.watcher != nil {
		c.logger.Info("stopping watch", zap.Strings("paths", c.paths))
		close(c.done)
		c.watcher.Close()
		c.watcher = nil
	}

	c.debounceMu.Lock()
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.debounceMu.Unlock()

	if c.cron != nil {
		c.cron.Stop()
		c.cron = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}
