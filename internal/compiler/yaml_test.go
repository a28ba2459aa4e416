package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/extsql/internal/entity"
)

func TestParseYAMLRefForms(t *testing.T) {
	m, err := ParseYAML("m.yaml", []byte(`
extension: {name: demo}
sql:
  - name: f
    sql: SELECT 1;
    requires:
      - a
      - requires: b
      - before: c
      - after: d
`))
	require.NoError(t, err)
	require.Len(t, m.Descriptors, 1)
	assert.Equal(t, []entity.PositioningRef{
		entity.Requires("a"),
		entity.Requires("b"),
		entity.Before("c"),
		entity.After("d"),
	}, m.Descriptors[0].Requires)
}

func TestParseYAMLUnknownRefKind(t *testing.T) {
	_, err := ParseYAML("m.yaml", []byte(`
extension: {name: demo}
sql:
  - name: f
    sql: SELECT 1;
    requires:
      - around: c
`))
	require.Error(t, err)
	assert.True(t, entity.IsMalformedError(err))

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "m.yaml", ce.Filename)
	assert.Equal(t, 7, ce.Line)
}

func TestParseYAMLUnknownDeclarationKind(t *testing.T) {
	_, err := ParseYAML("m.yaml", []byte(`
extension: {name: demo}
sql:
  - name: f
    creates:
      - aggregate: Sum
`))
	require.Error(t, err)
	assert.True(t, entity.IsMalformedError(err))
}

func TestParseYAMLBadEntryShape(t *testing.T) {
	_, err := ParseYAML("m.yaml", []byte(`
extension: {name: demo}
sql:
  - name: f
    sql: SELECT 1;
    requires:
      - {before: a, after: b}
`))
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "requires", ce.Field)
	assert.Equal(t, "m.yaml", ce.Filename)
	assert.Contains(t, err.Error(), "single-key mapping")
}

func TestParseYAMLMissingName(t *testing.T) {
	_, err := ParseYAML("m.yaml", []byte(`
extension: {name: demo}
sql:
  - sql: SELECT 1;
`))
	require.Error(t, err)
	assert.True(t, entity.IsEmptyIdentifierError(err))
	assert.Contains(t, err.Error(), "m.yaml:4:")
}

func TestParseYAMLMissingExtension(t *testing.T) {
	_, err := ParseYAML("m.yaml", []byte(`sql: []`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension name is required")
}

func TestParseYAMLUnknownTopLevelField(t *testing.T) {
	_, err := ParseYAML("m.yaml", []byte("extension: {name: demo}\nbogus: 1\n"))
	require.Error(t, err)
}

func TestParseYAMLEmpty(t *testing.T) {
	_, err := ParseYAML("m.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest is empty")
}

func TestParseYAMLUnknownDescriptorField(t *testing.T) {
	_, err := ParseYAML("m.yaml", []byte(`
extension: {name: demo}
sql:
  - name: a
    sql: SELECT 1;
    requirez: [b]
  - name: b
    sql: SELECT 2;
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown descriptor field "requirez"`)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "m.yaml", ce.Filename)
	assert.Equal(t, "requirez", ce.Field)
	assert.Equal(t, 6, ce.Line)
}
