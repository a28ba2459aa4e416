package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/extsql/internal/entity"
)

// Artifact is one archived script.
type Artifact struct {
	ID          string              `json:"id"`
	Extension   string              `json:"extension"`
	Version     string              `json:"version"`
	Fingerprint string              `json:"fingerprint"`
	Script      string              `json:"script"`
	Descriptors []entity.Descriptor `json:"descriptors,omitempty"`
	NodeCount   int                 `json:"node_count"`
	Seq         int64               `json:"seq"`
}

// ConflictError is returned when a version is saved again with different
// content.
type ConflictError struct {
	Extension string
	Version   string
	Existing  string // fingerprint already archived
	Got       string // fingerprint being saved
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s is already archived with fingerprint %s (got %s)",
		e.Extension, e.Version, short(e.Existing), short(e.Got))
}

// IsConflictError reports whether err is a ConflictError.
func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

// Save archives a script. It returns the stored artifact and whether a new
// row was written.
//
// Saving an identical (extension, version, fingerprint) again returns the
// existing row with created=false. Saving the same version with a different
// fingerprint fails with ConflictError. ID and Seq are assigned by the
// store: ID is a UUIDv7, Seq is one more than the largest seq in the
// archive.
func (s *Store) Save(ctx context.Context, a Artifact) (Artifact, bool, error) {
	if a.Extension == "" || a.Version == "" {
		return Artifact{}, false, fmt.Errorf("save script: extension and version are required")
	}
	if a.Fingerprint == "" {
		return Artifact{}, false, fmt.Errorf("save script: fingerprint is required")
	}

	descJSON, err := marshalDescriptors(a.Descriptors)
	if err != nil {
		return Artifact{}, false, fmt.Errorf("save script: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Artifact{}, false, fmt.Errorf("save script: begin: %w", err)
	}
	defer tx.Rollback()

	existing, err := getArtifact(ctx, tx, a.Extension, a.Version)
	switch {
	case err == nil:
		if existing.Fingerprint != a.Fingerprint {
			return Artifact{}, false, &ConflictError{
				Extension: a.Extension,
				Version:   a.Version,
				Existing:  existing.Fingerprint,
				Got:       a.Fingerprint,
			}
		}
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return Artifact{}, false, fmt.Errorf("save script: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Artifact{}, false, fmt.Errorf("save script: generate id: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM scripts`).Scan(&seq); err != nil {
		return Artifact{}, false, fmt.Errorf("save script: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scripts
		(id, extension, version, fingerprint, script, descriptors, node_count, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id.String(),
		a.Extension,
		a.Version,
		a.Fingerprint,
		a.Script,
		descJSON,
		a.NodeCount,
		seq,
	)
	if err != nil {
		return Artifact{}, false, fmt.Errorf("save script: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Artifact{}, false, fmt.Errorf("save script: commit: %w", err)
	}

	stored := a
	stored.ID = id.String()
	stored.Seq = seq
	return stored, true, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
