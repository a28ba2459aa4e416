// Package store provides a SQLite archive of rendered installation scripts.
//
// Each saved script is keyed by (extension, version) and content-addressed
// by the fingerprint of the descriptor set it was rendered from.
//
// # Critical Patterns
//
// Idempotent saves
//   - Saving the same (extension, version, fingerprint) again is a no-op
//   - Saving a version again with a different fingerprint is an error;
//     published scripts are never rewritten
//
// Logical ordering
//   - All ordering uses seq INTEGER (logical clock), never timestamps
//   - Queries include ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Schema version
//
// Open records the schema version in PRAGMA user_version and refuses an
// archive carrying a higher one (ErrSchemaTooNew).
//
// Fingerprints and the stored descriptor JSON come from
// entity.Fingerprint and entity.CanonicalDescriptors (RFC 8785 canonical
// JSON, SHA-256 with domain separation).
package store
