// Entry point for the lontod daemon: indexes OWL ontologies and serves
// them over HTTP with content negotiation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tkw1536/lontod/pkg/config"
	"github.com/tkw1536/lontod/pkg/daemon"
	"github.com/tkw1536/lontod/pkg/index"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lontod: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	var configFile string
	flag.StringVar(&configFile, "c", "", "load configuration from a YAML file")
	flag.StringVar(&configFile, "config", "", "load configuration from a YAML file")

	var database, host, publicDomain, route, logLevel, reindexCron, languages string
	var port int
	var watch, insecureSkipRoutes, debug bool

	flag.StringVar(&database, "d", "", "path to the index database")
	flag.StringVar(&database, "database", "", "path to the index database")
	flag.BoolVar(&watch, "w", false, "watch paths and re-index on changes")
	flag.BoolVar(&watch, "watch", false, "watch paths and re-index on changes")
	flag.StringVar(&host, "H", "", "host to bind the server to")
	flag.StringVar(&host, "host", "", "host to bind the server to")
	flag.IntVar(&port, "p", 0, "port to bind the server to")
	flag.IntVar(&port, "port", 0, "port to bind the server to")
	flag.StringVar(&publicDomain, "D", "", "domain to resolve ontology IRIs against")
	flag.StringVar(&publicDomain, "public-domain", "", "domain to resolve ontology IRIs against")
	flag.StringVar(&route, "r", "", "route to serve ontologies under")
	flag.StringVar(&route, "ontology-route", "", "route to serve ontologies under")
	flag.BoolVar(&insecureSkipRoutes, "insecure-skip-routes", false, "do not reserve well-known routes")
	flag.StringVar(&logLevel, "l", "", "log level")
	flag.StringVar(&logLevel, "log", "", "log level")
	flag.StringVar(&reindexCron, "reindex-cron", "", "additionally re-index on a cron schedule")
	flag.StringVar(&languages, "lang", "", "comma separated language tags to restrict HTML output to")
	flag.BoolVar(&debug, "debug", false, "include stack traces in error responses")
	flag.Parse()

	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return err
		}
	}

	// flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d", "database":
			cfg.Database = database
		case "w", "watch":
			cfg.Watch = watch
		case "H", "host":
			cfg.Host = host
		case "p", "port":
			cfg.Port = port
		case "D", "public-domain":
			cfg.PublicDomain = publicDomain
		case "r", "ontology-route":
			cfg.OntologyRoute = route
		case "l", "log":
			cfg.LogLevel = logLevel
		case "reindex-cron":
			cfg.ReindexCron = reindexCron
		case "lang":
			cfg.Languages = splitList(languages)
		case "insecure-skip-routes":
			cfg.InsecureSkipRoutes = insecureSkipRoutes
		}
	})

	if args := flag.Args(); len(args) > 0 {
		cfg.Paths = args
	}

	// without paths there is nothing to index, so serve an existing
	// database file
	if cfg.Database == "" && len(cfg.Paths) == 0 {
		cfg.Database = "./lontod.index"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, debug, logger)
}

func serve(ctx context.Context, cfg *config.Config, debug bool, logger *zap.Logger) error {
	connector := index.Connector{Filename: cfg.Database, Mode: index.ReadWriteCreate}
	if cfg.InMemory() {
		connector = index.Connector{Filename: "lontod", Mode: index.InMemory}
		logger.Info("using in-memory database")
	} else {
		logger.Info("using database", zap.String("path", cfg.Database))
	}

	db, err := connector.Connect()
	if err != nil {
		return err
	}

	controller := index.NewController(db, cfg.Paths, cfg.Languages, logger)
	defer controller.Close()

	if len(cfg.Paths) > 0 {
		if err := controller.IndexAndCommit(ctx); err != nil {
			return err
		}
	} else if err := index.NewIndexer(db, logger).InitializeSchema(ctx); err != nil {
		return err
	}

	if cfg.Watch {
		if err := controller.StartWatching(ctx); err != nil {
			return err
		}
	}
	if cfg.ReindexCron != "" {
		if err := controller.ScheduleCron(ctx, cfg.ReindexCron); err != nil {
			return err
		}
	}

	readConnector := connector
	if !cfg.InMemory() {
		readConnector.Mode = index.ReadOnly
	}
	pool := index.NewPool(16, readConnector, logger)
	defer pool.Teardown()

	handler := daemon.NewHandler(pool, logger)
	handler.OntologyRoute = cfg.OntologyRoute
	handler.PublicDomain = cfg.PublicDomain
	handler.InsecureSkipRoutes = cfg.InsecureSkipRoutes
	handler.Debug = debug
	if cfg.IndexHTMLHeader != "" {
		handler.IndexHTMLHeader = cfg.IndexHTMLHeader
	}
	if cfg.IndexHTMLFooter != "" {
		handler.IndexHTMLFooter = cfg.IndexHTMLFooter
	}
	if cfg.IndexTXTHeader != "" {
		handler.IndexTXTHeader = cfg.IndexTXTHeader
	}
	if cfg.IndexTXTFooter != "" {
		handler.IndexTXTFooter = cfg.IndexTXTFooter
	}

	server := daemon.NewServer(cfg.Addr(), handler, logger)
	return server.ListenAndServe(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
