package render

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/extsql/internal/entity"
	"github.com/roach88/extsql/internal/graph"
	"github.com/roach88/extsql/internal/testutil"
)

func buildPlan(t *testing.T, descs ...entity.Descriptor) *graph.Plan {
	t.Helper()
	plan, err := graph.Build(testutil.MustRegistry(t, descs...))
	require.NoError(t, err)
	return plan
}

func complexExtension() []entity.Descriptor {
	return []entity.Descriptor{
		{
			Name:     "complex_add",
			File:     "src/complex.rs",
			Line:     40,
			SQL:      "CREATE FUNCTION demo.complex_add(a demo.complex, b demo.complex) RETURNS demo.complex\nLANGUAGE c AS 'MODULE_PATHNAME', 'complex_add';",
			Requires: []entity.PositioningRef{entity.Requires("Option<Complex>")},
		},
		{
			Name:     "extension_finalize",
			File:     "src/lib.rs",
			Line:     90,
			SQL:      "GRANT USAGE ON SCHEMA demo TO PUBLIC;\n",
			Finalize: true,
		},
		{
			Name:     "complex_type",
			File:     "src/complex.rs",
			Line:     12,
			SQL:      "CREATE TYPE demo.complex;",
			Requires: []entity.PositioningRef{entity.Requires("extension_bootstrap")},
			Creates:  []entity.Declared{entity.Type("Complex")},
		},
		{
			Name:      "extension_bootstrap",
			File:      "src/lib.rs",
			Line:      10,
			SQL:       "CREATE SCHEMA demo;",
			Bootstrap: true,
		},
	}
}

func TestSQLGolden(t *testing.T) {
	plan := buildPlan(t, complexExtension()...)
	out := SQL(plan, Options{Header: []string{"generated by extsql", "extension: demo 0.1.0"}})

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "complex_extension", []byte(out))
}

func TestSQLIdempotent(t *testing.T) {
	first := SQL(buildPlan(t, complexExtension()...), Options{})
	for _, order := range testutil.Orderings(complexExtension()) {
		assert.Equal(t, first, SQL(buildPlan(t, order...), Options{}))
	}
}

func TestSQLNodeLayout(t *testing.T) {
	plan := buildPlan(t,
		entity.Descriptor{Name: "a", File: "a.rs", Line: 1, SQL: "SELECT 1;"},
		entity.Descriptor{
			Name:     "b",
			File:     "a.rs",
			Line:     2,
			SQL:      "SELECT 2;",
			Requires: []entity.PositioningRef{entity.After("a")},
		},
	)

	assert.Equal(t,
		"-- a.rs:1\n"+
			"SELECT 1;\n"+
			"\n"+
			"-- a.rs:2\n"+
			"-- requires:\n"+
			"--   after a\n"+
			"SELECT 2;\n"+
			"\n",
		SQL(plan, Options{}))
}

func TestSQLMetadataOnlyDescriptor(t *testing.T) {
	plan := buildPlan(t, entity.Descriptor{
		Name:    "decl",
		File:    "types.rs",
		Line:    3,
		Creates: []entity.Declared{entity.Enum("Color"), entity.Function("paint")},
	})

	assert.Equal(t,
		"-- types.rs:3\n"+
			"-- creates:\n"+
			"--   Enum(Color)\n"+
			"--   Function(paint)\n"+
			"\n",
		SQL(plan, Options{}))
}

func TestSQLEmptyHeaderLine(t *testing.T) {
	plan := buildPlan(t)
	assert.Equal(t, "-- title\n--\n\n", SQL(plan, Options{Header: []string{"title", ""}}))
	assert.Equal(t, "", SQL(plan, Options{}))
}

func TestWriteSQL(t *testing.T) {
	plan := buildPlan(t, complexExtension()...)

	var buf bytes.Buffer
	require.NoError(t, WriteSQL(&buf, plan, Options{}))
	assert.Equal(t, SQL(plan, Options{}), buf.String())
}
