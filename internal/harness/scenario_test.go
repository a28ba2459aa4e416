package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeManifest creates a minimal YAML manifest for testing.
func writeManifest(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "manifest.yaml")
	content := `
extension: {name: demo, version: "0.1.0"}
sql:
  - name: a
    file: a.rs
    line: 1
    sql: SELECT 1;
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)

	path := writeScenario(t, dir, `
name: test_scenario
description: "Test scenario for validation"
manifest: manifest.yaml
header: [generated]
expect:
  order: [a]
assertions:
  - type: node_count
    count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, filepath.Join(dir, "manifest.yaml"), scenario.Manifest)
	assert.Equal(t, []string{"generated"}, scenario.Header)
	assert.Equal(t, []string{"a"}, scenario.Expect.Order)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertNodeCount, scenario.Assertions[0].Type)
	assert.Equal(t, 1, scenario.Assertions[0].Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "name: [unclosed\n")

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)
	path := writeScenario(t, dir, `
name: typo
description: "Misspelled key"
manifest: manifest.yaml
assertion:
  - type: node_count
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertion")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nmanifest: manifest.yaml\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nmanifest: manifest.yaml\n",
			wantErr: "description is required",
		},
		{
			name:    "missing manifest",
			content: "name: n\ndescription: d\n",
			wantErr: "manifest is required",
		},
		{
			name:    "manifest not found",
			content: "name: n\ndescription: d\nmanifest: nope.yaml\n",
			wantErr: "manifest not found",
		},
		{
			name:    "unknown error code",
			content: "name: n\ndescription: d\nmanifest: manifest.yaml\nexpect: {error: BOOM}\n",
			wantErr: `unknown error code "BOOM"`,
		},
		{
			name:    "error with order",
			content: "name: n\ndescription: d\nmanifest: manifest.yaml\nexpect: {error: CYCLIC_DEPENDENCY, order: [a]}\n",
			wantErr: "cannot be combined",
		},
		{
			name:    "cycle without cycle error",
			content: "name: n\ndescription: d\nmanifest: manifest.yaml\nexpect: {cycle: [a, a]}\n",
			wantErr: "expect.cycle requires",
		},
		{
			name:    "assertion without type",
			content: "name: n\ndescription: d\nmanifest: manifest.yaml\nassertions: [{first: a}]\n",
			wantErr: "assertions[0]: type is required",
		},
		{
			name:    "unknown assertion type",
			content: "name: n\ndescription: d\nmanifest: manifest.yaml\nassertions: [{type: trace_contains}]\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "order_before missing then",
			content: "name: n\ndescription: d\nmanifest: manifest.yaml\nassertions: [{type: order_before, first: a}]\n",
			wantErr: "first and then are required",
		},
		{
			name:    "script_contains missing text",
			content: "name: n\ndescription: d\nmanifest: manifest.yaml\nassertions: [{type: script_contains}]\n",
			wantErr: "text is required",
		},
		{
			name:    "resolves_to missing target",
			content: "name: n\ndescription: d\nmanifest: manifest.yaml\nassertions: [{type: resolves_to, entity: a, ref: b}]\n",
			wantErr: "entity, ref and target are required",
		},
		{
			name:    "negative node_count",
			content: "name: n\ndescription: d\nmanifest: manifest.yaml\nassertions: [{type: node_count, count: -1}]\n",
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir)
			path := writeScenario(t, dir, tt.content)

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	manifestDir := t.TempDir()
	writeManifest(t, manifestDir)

	scenarioDir := t.TempDir()
	path := writeScenario(t, scenarioDir, "name: n\ndescription: d\nmanifest: manifest.yaml\n")

	_, err := LoadScenario(path)
	require.Error(t, err)

	scenario, err := LoadScenarioWithBasePath(path, manifestDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(manifestDir, "manifest.yaml"), scenario.Manifest)
}

func TestLoadScenario_AbsoluteManifest(t *testing.T) {
	manifestDir := t.TempDir()
	manifest := writeManifest(t, manifestDir)

	path := writeScenario(t, t.TempDir(), "name: n\ndescription: d\nmanifest: "+manifest+"\n")

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, manifest, scenario.Manifest)
}
