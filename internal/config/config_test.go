package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingRequired(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
manifest: specs
output: build/demo.sql
archive: .extsql/archive.db
header:
  - generated by extsql
  - do not edit
format: json
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Manifest: "specs",
		Output:   "build/demo.sql",
		Archive:  ".extsql/archive.db",
		Header:   []string{"generated by extsql", "do not edit"},
		Format:   "json",
	}, cfg)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "manifests: specs\n"), true)
	require.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "manifest: specs\narchive: a.db\n")
	t.Setenv("EXTSQL_MANIFEST", "other")
	t.Setenv("EXTSQL_HEADER", "from env")
	t.Setenv("EXTSQL_ARCHIVE", "  ")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.Manifest)
	assert.Equal(t, "a.db", cfg.Archive, "blank env values are ignored")
	assert.Equal(t, []string{"from env"}, cfg.Header)
}

func TestLoadInvalidFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "format: xml\n"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
