package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/extsql/internal/compiler"
	"github.com/roach88/extsql/internal/entity"
)

func TestValidateValidManifest(t *testing.T) {
	manifest := writeFile(t, t.TempDir(), "manifest.yaml", pointManifest)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Manifest valid (2 descriptor(s))")
}

func TestValidateValidManifestJSON(t *testing.T) {
	manifest := writeFile(t, t.TempDir(), "manifest.yaml", pointManifest)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), manifest)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateCUEDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sql.cue", `package demo

extension: {name: "demo", version: "0.1.0"}

sql: point: {
	file: "src/lib.rs"
	line: 10
	sql:  "CREATE TYPE point;"
	creates: [{type: "Point"}]
}
`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Manifest valid (1 descriptor(s))")
}

func TestValidateNonExistentPath(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	manifest := writeFile(t, t.TempDir(), "manifest.yaml", `
extension: {name: demo}
sql:
  - name: a
    file: a.rs
    line: 1
    bootstrap: true
    sql: SELECT 1;
  - name: b
    file: a.rs
    line: 2
    bootstrap: true
    sql: SELECT 2;
  - name: c
    file: a.rs
    line: 3
`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), manifest)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrMultipleBootstrap)
	assert.Contains(t, out, compiler.ErrNoContent)
	assert.Contains(t, err.Error(), "2 error(s)")
}

func TestValidateCycles(t *testing.T) {
	manifest := writeFile(t, t.TempDir(), "manifest.yaml", cycleManifest)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), manifest)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  CLIError         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Cycles, 1)
	assert.Equal(t, []string{"a", "b", "a"}, resp.Data.Cycles[0].Path)
	assert.Equal(t, string(entity.ErrCodeCyclicDependency), resp.Error.Code)
}

func TestValidateGraphErrors(t *testing.T) {
	manifest := writeFile(t, t.TempDir(), "manifest.yaml", `
extension: {name: demo}
sql:
  - name: a
    file: a.rs
    line: 1
    sql: SELECT 1;
    requires: [Option<Missing>]
`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), manifest)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "UNRESOLVED_REFERENCE: sql.a.requires")
}

func TestValidateManifest(t *testing.T) {
	m := &compiler.Manifest{
		Extension: compiler.Extension{Name: "demo"},
		Descriptors: []entity.Descriptor{
			{Name: "a", File: "a.rs", Line: 1, SQL: "SELECT 1;", Requires: []entity.PositioningRef{entity.After("Thing")}},
			{Name: "b", File: "a.rs", Line: 2, SQL: "SELECT 2;", Creates: []entity.Declared{entity.Type("Thing")}},
		},
	}

	result := ValidateManifest(m)
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.Descriptors)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Cycles)
}
