// Package entity defines the descriptor records the graph builder consumes.
//
// A Descriptor is one declared SQL-affecting unit emitted by the front-end.
// Descriptors are registered once into a Registry, which is then passed by
// value-of-pointer into the graph builder and never mutated again.
//
// Key constraints:
//   - Descriptor names are unique across the registry
//   - At most one bootstrap and one finalize descriptor
//   - Declared entity spellings are derived by package canon and are pure
//   - Fingerprints use RFC 8785 canonical JSON, never encoding/json output
package entity
