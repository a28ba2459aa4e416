package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/extsql/internal/entity"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestArtifact creates an artifact with minimal required fields.
func createTestArtifact(extension, version, fingerprint string) Artifact {
	return Artifact{
		Extension:   extension,
		Version:     version,
		Fingerprint: fingerprint,
		Script:      "-- " + extension + " " + version + "\n",
		Descriptors: []entity.Descriptor{
			{Name: "init", File: "src/lib.rs", Line: 1, SQL: "CREATE SCHEMA demo;", Bootstrap: true},
			{Name: "types", File: "src/lib.rs", Line: 5, Creates: []entity.Declared{entity.Type("Complex")}},
		},
		NodeCount: 2,
	}
}
