package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const pointManifest = `
extension:
  name: demo
  version: "0.1.0"
sql:
  - name: add
    file: src/lib.rs
    line: 20
    sql: CREATE FUNCTION add(a point, b point) RETURNS point;
    requires: [Point]
  - name: point
    file: src/lib.rs
    line: 10
    sql: CREATE TYPE point;
    creates:
      - type: Point
`

const pointScript = `-- src/lib.rs:10
-- creates:
--   Type(Point)
CREATE TYPE point;

-- src/lib.rs:20
-- requires:
--   point
CREATE FUNCTION add(a point, b point) RETURNS point;

`

const cycleManifest = `
extension: {name: loop, version: "0.0.1"}
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

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
