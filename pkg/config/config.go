// Package config resolves the daemon configuration from the environment
// and an optional YAML file. Command line flags are applied on top by the
// caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon configuration.
type Config struct {
	// Database is the path of the index database. Empty selects an
	// in-memory database when Paths is also set.
	Database string `yaml:"database"`
	// Paths are the files and directories to index.
	Paths []string `yaml:"paths"`
	// Watch re-indexes whenever a watched path changes.
	Watch bool `yaml:"watch"`

	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// PublicDomain is the domain ontology IRIs are resolved against in
	// place of the request host.
	PublicDomain string `yaml:"public_domain"`
	// OntologyRoute is the route ontologies are served under.
	OntologyRoute string `yaml:"ontology_route"`
	// InsecureSkipRoutes disables the reserved routes normally answered
	// with 404.
	InsecureSkipRoutes bool `yaml:"insecure_skip_routes"`

	LogLevel string `yaml:"log_level"`

	// Languages restricts literals on the rendered HTML to the given
	// language tags. Empty keeps all languages.
	Languages []string `yaml:"languages"`
	// ReindexCron re-indexes on a cron schedule in addition to watching.
	ReindexCron string `yaml:"reindex_cron"`

	// Index page template overrides, loaded from the files named by the
	// LONTOD_INDEX_* variables.
	IndexHTMLHeader string `yaml:"-"`
	IndexHTMLFooter string `yaml:"-"`
	IndexTXTHeader  string `yaml:"-"`
	IndexTXTFooter  string `yaml:"-"`
}

// FromEnv loads configuration from LONTOD_* environment variables,
// falling back to defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Database:      getEnv("LONTOD_DB", ""),
		Paths:         getEnvAsList("LONTOD_PATHS", ";"),
		Host:          getEnv("LONTOD_HOST", "localhost"),
		Port:          getEnvAsInt("LONTOD_PORT", 8080),
		PublicDomain:  getEnv("LONTOD_DOMAIN", ""),
		OntologyRoute: getEnv("LONTOD_ROUTE", "/"),
		LogLevel:      getEnv("LONTOD_LOG", "info"),
		Languages:     getEnvAsList("LONTOD_LANG", ","),
		ReindexCron:   getEnv("LONTOD_REINDEX_CRON", ""),
	}

	var err error
	if cfg.IndexHTMLHeader, err = getEnvAsFile("LONTOD_INDEX_HTML_HEADER"); err != nil {
		return nil, err
	}
	if cfg.IndexHTMLFooter, err = getEnvAsFile("LONTOD_INDEX_HTML_FOOTER"); err != nil {
		return nil, err
	}
	if cfg.IndexTXTHeader, err = getEnvAsFile("LONTOD_INDEX_TXT_HEADER"); err != nil {
		return nil, err
	}
	if cfg.IndexTXTFooter, err = getEnvAsFile("LONTOD_INDEX_TXT_FOOTER"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile overlays configuration from a YAML file. Values present in the
// file replace the current ones.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Watch && len(c.Paths) == 0 {
		return fmt.Errorf("watch requires at least one path")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if !strings.HasPrefix(c.OntologyRoute, "/") {
		return fmt.Errorf("ontology route %q must start with /", c.OntologyRoute)
	}
	return nil
}

// Addr is the host:port pair to bind the server to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InMemory reports whether the index lives in memory only. This is the
// case when no database path is configured.
func (c *Config) InMemory() bool {
	return c.Database == ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits an environment variable on the given separator,
// dropping empty entries.
func getEnvAsList(key, sep string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAsFile reads the contents of the file named by an environment
// variable. An unset variable yields "".
func getEnvAsFile(key string) (string, error) {
	path := os.Getenv(key)
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s file %q: %w", key, path, err)
	}
	return string(data), nil
}
