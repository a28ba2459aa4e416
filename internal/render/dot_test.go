package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/extsql/internal/entity"
)

func TestDOT(t *testing.T) {
	plan := buildPlan(t,
		entity.Descriptor{Name: "a", File: "a.rs", Line: 1, SQL: "SELECT 1;"},
		entity.Descriptor{
			Name:     "b",
			File:     "a.rs",
			Line:     2,
			SQL:      "SELECT 2;",
			Requires: []entity.PositioningRef{entity.Requires("a")},
		},
	)

	assert.Equal(t, `digraph extsql {
  "bootstrap" [shape=diamond];
  "sql a";
  "sql b";
  "finalize" [shape=diamond];
  "bootstrap" -> "sql a";
  "bootstrap" -> "sql b";
  "sql a" -> "finalize";
  "sql a" -> "sql b";
  "sql b" -> "finalize";
}
`, DOT(plan))
}

func TestDOTStable(t *testing.T) {
	assert.Equal(t, DOT(buildPlan(t, complexExtension()...)), DOT(buildPlan(t, complexExtension()...)))
}
