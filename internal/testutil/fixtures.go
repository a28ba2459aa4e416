// Package testutil holds descriptor fixtures shared by package tests.
package testutil

import (
	"slices"
	"testing"

	"github.com/roach88/extsql/internal/entity"
)

// Desc builds a SQL descriptor declared at file:line. Its SQL is a comment
// naming it, so rendered output shows which descriptor produced a block.
func Desc(name, file string, line int, refs ...entity.PositioningRef) entity.Descriptor {
	return entity.Descriptor{
		Name:     name,
		File:     file,
		Line:     line,
		SQL:      "-- " + name,
		Requires: refs,
	}
}

// MustRegistry registers descs in order and fails the test on error.
func MustRegistry(t testing.TB, descs ...entity.Descriptor) *entity.Registry {
	t.Helper()
	reg, err := entity.NewRegistryFrom(descs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

// Orderings returns registration orders of descs for determinism tests:
// every rotation of descs followed by every rotation of the reversed
// slice. The result is the same on every call.
func Orderings(descs []entity.Descriptor) [][]entity.Descriptor {
	if len(descs) == 0 {
		return [][]entity.Descriptor{{}}
	}

	reversed := slices.Clone(descs)
	slices.Reverse(reversed)

	out := make([][]entity.Descriptor, 0, 2*len(descs))
	for _, base := range [][]entity.Descriptor{descs, reversed} {
		for i := range base {
			rotated := make([]entity.Descriptor, 0, len(base))
			rotated = append(rotated, base[i:]...)
			rotated = append(rotated, base[:i]...)
			out = append(out, rotated)
		}
	}
	return out
}
