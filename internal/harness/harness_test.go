package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioFor writes manifest to a temp file and returns a scenario for it.
func scenarioFor(t *testing.T, manifest string) *Scenario {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0644))
	return &Scenario{
		Name:        "inline",
		Description: "inline scenario",
		Manifest:    path,
	}
}

const chainManifest = `
extension: {name: chain, version: "1.0.0"}
sql:
  - name: c
    file: chain.rs
    line: 30
    sql: SELECT 3;
    requires: [b]
  - name: b
    file: chain.rs
    line: 20
    sql: SELECT 2;
    requires: [a]
  - name: a
    file: chain.rs
    line: 10
    sql: SELECT 1;
`

func TestRun_MinimalScenario(t *testing.T) {
	scenario := scenarioFor(t, chainManifest)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"a", "b", "c"}, result.Order)
	assert.Len(t, result.Fingerprint, 64)
	assert.Empty(t, result.ErrorCode)
	assert.Contains(t, result.Script, "-- chain.rs:20\n-- requires:\n--   a\nSELECT 2;\n")
	require.NotNil(t, result.Plan())
}

func TestRun_Header(t *testing.T) {
	scenario := scenarioFor(t, chainManifest)
	scenario.Header = []string{"chain 1.0.0"}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Contains(t, result.Script, "-- chain 1.0.0\n\n-- chain.rs:10\n")
}

func TestRun_ExpectOrder(t *testing.T) {
	scenario := scenarioFor(t, chainManifest)
	scenario.Expect.Order = []string{"a", "b", "c"}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExpectOrderMismatch(t *testing.T) {
	scenario := scenarioFor(t, chainManifest)
	scenario.Expect.Order = []string{"c", "b", "a"}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "order mismatch")
}

func TestRun_ExpectedErrorMatches(t *testing.T) {
	scenario := scenarioFor(t, `
extension: {name: broken}
sql:
  - name: a
    file: a.rs
    line: 1
    sql: SELECT 1;
    requires: [nowhere]
`)
	scenario.Expect.Error = "UNRESOLVED_REFERENCE"

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "UNRESOLVED_REFERENCE", result.ErrorCode)
	assert.Contains(t, result.ErrorMessage, "ref=nowhere")
	assert.Empty(t, result.Order)
	assert.Empty(t, result.Script)
	assert.Nil(t, result.Plan())
}

func TestRun_ExpectedErrorCodeMismatch(t *testing.T) {
	scenario := scenarioFor(t, `
extension: {name: dup}
sql:
  - name: a
    file: a.rs
    line: 1
    sql: SELECT 1;
  - name: a
    file: a.rs
    line: 2
    sql: SELECT 2;
`)
	scenario.Expect.Error = "CYCLIC_DEPENDENCY"

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, "DUPLICATE_ENTITY", result.ErrorCode)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "error code mismatch")
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario := scenarioFor(t, `
extension: {name: broken}
sql:
  - name: a
    file: a.rs
    line: 1
    sql: SELECT 1;
    requires: [nowhere]
`)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
}

func TestRun_ExpectedErrorButSucceeded(t *testing.T) {
	scenario := scenarioFor(t, chainManifest)
	scenario.Expect.Error = "CYCLIC_DEPENDENCY"

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected error CYCLIC_DEPENDENCY")
}

func TestRun_CyclePath(t *testing.T) {
	manifest := `
extension: {name: loop}
sql:
  - name: a
    file: x.rs
    line: 1
    sql: SELECT 1;
    requires: [b]
  - name: b
    file: x.rs
    line: 2
    sql: SELECT 2;
    requires: [a]
`
	t.Run("match", func(t *testing.T) {
		scenario := scenarioFor(t, manifest)
		scenario.Expect = Expect{Error: "CYCLIC_DEPENDENCY", Cycle: []string{"a", "b", "a"}}

		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
	})

	t.Run("mismatch", func(t *testing.T) {
		scenario := scenarioFor(t, manifest)
		scenario.Expect = Expect{Error: "CYCLIC_DEPENDENCY", Cycle: []string{"b", "a", "b"}}

		result, err := Run(scenario)
		require.NoError(t, err)
		assert.False(t, result.Pass)
		assert.Contains(t, result.Errors[0], "cycle mismatch")
	})
}

func TestRun_CompileErrorWithCode(t *testing.T) {
	scenario := scenarioFor(t, `
extension: {name: demo}
sql:
  - name: a
    file: a.rs
    line: 1
    sql: SELECT 1;
    requires:
      - sideways: b
`)
	scenario.Expect.Error = "MALFORMED_DECLARATION"

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "MALFORMED_DECLARATION", result.ErrorCode)
}

func TestRun_LoadFailure(t *testing.T) {
	scenario := scenarioFor(t, "sql: [\n")

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load manifest")
}

func TestRun_Deterministic(t *testing.T) {
	scenario := scenarioFor(t, chainManifest)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Script, second.Script)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Order, second.Order)
}

func TestRun_AssertionsEvaluated(t *testing.T) {
	scenario := scenarioFor(t, chainManifest)
	scenario.Assertions = []Assertion{
		{Type: AssertOrderBefore, First: "a", Then: "c"},
		{Type: AssertNodeCount, Count: 2},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "assertion 1")
	assert.Contains(t, result.Errors[0], "node_count")
}

func TestResult_AddError(t *testing.T) {
	result := NewResult()
	assert.True(t, result.Pass)

	result.AddError("boom")

	assert.False(t, result.Pass)
	assert.Equal(t, []string{"boom"}, result.Errors)
}
