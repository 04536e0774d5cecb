package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tkw1536/lontod/pkg/ontologies"
	"github.com/tkw1536/lontod/pkg/rdf"
)

// Ingester reads ontology files from disk and hands them to an Indexer.
// It performs no transaction logic; the caller owns the transaction the
// indexer writes into.
type Ingester struct {
	indexer       *Indexer
	htmlLanguages []string
	logger        *zap.Logger
}

// NewIngester creates an ingester writing through the given indexer.
func NewIngester(indexer *Indexer, htmlLanguages []string, logger *zap.Logger) *Ingester {
	return &Ingester{indexer: indexer, htmlLanguages: htmlLanguages, logger: logger}
}

// Options control a single ingestion run.
type Options struct {
	// Initialize runs the schema DDL before ingesting.
	Initialize bool
	// Truncate deletes all existing rows before ingesting.
	Truncate bool
	// Remove treats the paths as ontology identifiers to delete instead of
	// files to ingest.
	Remove bool
}

// Ingest processes the given paths and returns the identifiers that were
// indexed and the paths that failed. Per-file failures are recovered;
// only store-level errors abort the run.
func (in *Ingester) Ingest(ctx context.Context, opts Options, paths ...string) (indexed, failed []string, err error) {
	if opts.Initialize {
		in.logger.Info("initializing schema")
		if err := in.indexer.InitializeSchema(ctx); err != nil {
			return nil, nil, err
		}
	}

	if opts.Truncate {
		in.logger.Info("truncating database")
		if err := in.indexer.Truncate(ctx); err != nil {
			return nil, nil, err
		}
	}

	if opts.Remove {
		for _, id := range paths {
			if err := in.indexer.Remove(ctx, id); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}

	for _, path := range paths {
		ok, fail, err := in.ingestPath(ctx, path)
		if err != nil {
			return indexed, failed, err
		}
		indexed = append(indexed, ok...)
		failed = append(failed, fail...)
	}
	return indexed, failed, nil
}

func (in *Ingester) ingestPath(ctx context.Context, path string) (indexed, failed []string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		in.logger.Error("unable to ingest path", zap.String("path", path), zap.Error(err))
		return nil, []string{path}, nil
	}

	if !info.IsDir() {
		return in.ingestOne(ctx, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		in.logger.Error("unable to read directory", zap.String("path", path), zap.Error(err))
		return nil, []string{path}, nil
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || entry.IsDir() {
			continue
		}
		ok, fail, err := in.ingestOne(ctx, filepath.Join(path, entry.Name()))
		if err != nil {
			return indexed, failed, err
		}
		indexed = append(indexed, ok...)
		failed = append(failed, fail...)
	}
	return indexed, failed, nil
}

// ingestOne indexes a single file. Parse and extraction failures are
// recovered and reported through the failed list; indexing failures are
// fatal because the enclosing transaction can no longer commit cleanly.
func (in *Ingester) ingestOne(ctx context.Context, path string) (indexed, failed []string, err error) {
	in.logger.Debug("parsing graph data", zap.String("path", path))
	graph, err := rdf.ParseFile(path)
	if err != nil {
		in.logger.Error("unable to parse graph data", zap.String("path", path), zap.Error(err))
		return nil, []string{path}, nil
	}

	in.logger.Debug("reading OWL ontology", zap.String("path", path))
	owl, err := ontologies.FromGraph(in.logger, graph, in.htmlLanguages)
	if err != nil {
		in.logger.Error("unable to read OWL ontology", zap.String("path", path), zap.Error(err))
		return nil, []string{path}, nil
	}

	id := ontologies.SlugFromPath(path)
	if err := in.indexer.Upsert(ctx, id, owl); err != nil {
		return nil, []string{path}, fmt.Errorf("unable to index ontology %q from %q: %w", owl.URI, path, err)
	}

	in.logger.Info("indexed ontology",
		zap.String("uri", owl.URI),
		zap.String("path", path),
		zap.String("id", id),
	)
	return []string{id}, nil, nil
}
