package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Database)
	assert.Empty(t, cfg.Paths)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/", cfg.OntologyRoute)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.InMemory())
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LONTOD_DB", "/tmp/lontod.index")
	t.Setenv("LONTOD_PATHS", "/data/a;/data/b; ")
	t.Setenv("LONTOD_HOST", "0.0.0.0")
	t.Setenv("LONTOD_PORT", "9090")
	t.Setenv("LONTOD_ROUTE", "/ontologies/")
	t.Setenv("LONTOD_LANG", "en,de")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/lontod.index", cfg.Database)
	assert.Equal(t, []string{"/data/a", "/data/b"}, cfg.Paths)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "/ontologies/", cfg.OntologyRoute)
	assert.Equal(t, []string{"en", "de"}, cfg.Languages)
	assert.False(t, cfg.InMemory())
}

func TestFromEnvTemplateFiles(t *testing.T) {
	header := filepath.Join(t.TempDir(), "header.html")
	require.NoError(t, os.WriteFile(header, []byte("<h1>Custom</h1>"), 0o644))

	t.Setenv("LONTOD_INDEX_HTML_HEADER", header)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "<h1>Custom</h1>", cfg.IndexHTMLHeader)
	assert.Empty(t, cfg.IndexHTMLFooter)
}

func TestFromEnvTemplateFileMissing(t *testing.T) {
	t.Setenv("LONTOD_INDEX_TXT_HEADER", filepath.Join(t.TempDir(), "missing.txt"))

	_, err := FromEnv()
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lontod.yml")
	require.NoError(t, os.WriteFile(path, []byte("host: example.com\nport: 1234\nwatch: true\npaths:\n  - /data\n"), 0o644))

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "example.com:1234", cfg.Addr())
	assert.True(t, cfg.Watch)
	assert.Equal(t, []string{"/data"}, cfg.Paths)
}

func TestValidate(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.Watch = true
	assert.Error(t, cfg.Validate(), "watching without paths")

	cfg.Watch = false
	cfg.OntologyRoute = "ontologies"
	assert.Error(t, cfg.Validate())

	cfg.OntologyRoute = "/"
	cfg.Port = 0
	assert.Error(t, cfg.Validate())
}
