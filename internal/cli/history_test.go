package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// archiveVersions renders pointManifest into a fresh archive once per
// version and returns the archive path.
func archiveVersions(t *testing.T, versions ...string) string {
	t.Helper()
	dir := t.TempDir()
	manifest := writeFile(t, dir, "manifest.yaml", pointManifest)
	archive := filepath.Join(dir, "scripts.db")

	for _, v := range versions {
		_, _, err := execute(NewSchemaCommand(&RootOptions{Format: "json"}), manifest, "--archive", archive, "--version", v)
		require.NoError(t, err)
	}
	return archive
}

func TestHistoryList(t *testing.T) {
	archive := archiveVersions(t, "0.1.0", "0.2.0")

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "demo", "--archive", archive)
	require.NoError(t, err)
	assert.Contains(t, out, "   1  0.1.0")
	assert.Contains(t, out, "   2  0.2.0")
	assert.Contains(t, out, "2 descriptor(s)")
}

func TestHistoryListJSON(t *testing.T) {
	archive := archiveVersions(t, "0.1.0", "0.2.0")

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "json"}), "demo", "--archive", archive)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "0.1.0", resp.Data[0].Version)
	assert.Equal(t, "0.2.0", resp.Data[1].Version)
	assert.Equal(t, resp.Data[0].Fingerprint, resp.Data[1].Fingerprint)
	assert.Equal(t, int64(1), resp.Data[0].Seq)
}

func TestHistoryEmpty(t *testing.T) {
	archive := archiveVersions(t)

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "other", "--archive", archive)
	require.NoError(t, err)
	assert.Contains(t, out, "No archived scripts for other.")
}

func TestHistoryShow(t *testing.T) {
	archive := archiveVersions(t, "0.1.0")

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "demo", "--archive", archive, "--show", "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, pointScript, out)
}

func TestHistoryShowMissingVersion(t *testing.T) {
	archive := archiveVersions(t, "0.1.0")

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "demo", "--archive", archive, "--show", "9.9.9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "demo 9.9.9 is not archived")
}

func TestHistoryRequiresArchive(t *testing.T) {
	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "demo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no archive given")
}
