package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no archived script matches a lookup.
var ErrNotFound = errors.New("script not found")

const artifactColumns = `id, extension, version, fingerprint, script, descriptors, node_count, seq`

// Get returns the script archived for extension at version.
func (s *Store) Get(ctx context.Context, extension, version string) (Artifact, error) {
	return getArtifact(ctx, s.db, extension, version)
}

func getArtifact(ctx context.Context, q queryer, extension, version string) (Artifact, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+artifactColumns+`
		FROM scripts
		WHERE extension = ? AND version = ?
	`, extension, version)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, fmt.Errorf("%s %s: %w", extension, version, ErrNotFound)
	}
	if err != nil {
		return Artifact{}, err
	}
	return a, nil
}

// Latest returns the most recently archived script for extension.
func (s *Store) Latest(ctx context.Context, extension string) (Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+artifactColumns+`
		FROM scripts
		WHERE extension = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, extension)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, fmt.Errorf("%s: %w", extension, ErrNotFound)
	}
	if err != nil {
		return Artifact{}, err
	}
	return a, nil
}

// List returns every archived script for extension, oldest first.
//
// Returns an empty slice (not nil) if nothing is archived.
func (s *Store) List(ctx context.Context, extension string) ([]Artifact, error) {
	return s.queryArtifacts(ctx, `
		SELECT `+artifactColumns+`
		FROM scripts
		WHERE extension = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, extension)
}

// FindByFingerprint returns every archived script rendered from the same
// descriptor set, oldest first.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) ([]Artifact, error) {
	return s.queryArtifacts(ctx, `
		SELECT `+artifactColumns+`
		FROM scripts
		WHERE fingerprint = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, fingerprint)
}

func (s *Store) queryArtifacts(ctx context.Context, query string, args ...any) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scripts: %w", err)
	}
	defer rows.Close()

	artifacts := []Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scripts: %w", err)
	}
	return artifacts, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (Artifact, error) {
	var (
		a        Artifact
		descJSON string
	)
	err := row.Scan(
		&a.ID,
		&a.Extension,
		&a.Version,
		&a.Fingerprint,
		&a.Script,
		&descJSON,
		&a.NodeCount,
		&a.Seq,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, err
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("scan script: %w", err)
	}

	a.Descriptors, err = unmarshalDescriptors(descJSON)
	if err != nil {
		return Artifact{}, err
	}
	return a, nil
}
