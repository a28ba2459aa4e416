package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/extsql/internal/entity"
)

// Extension identifies the extension a manifest belongs to.
type Extension struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// Manifest is the compiled output of the front-end: one extension and its
// descriptors in declaration order.
type Manifest struct {
	Extension   Extension
	Descriptors []entity.Descriptor
}

// Registry registers every descriptor in declaration order.
func (m *Manifest) Registry() (*entity.Registry, error) {
	return entity.NewRegistryFrom(m.Descriptors...)
}

// CompileManifest parses the top-level manifest value. The sql field is
// either a struct keyed by descriptor name or a list of descriptors that
// each carry a name field.
func CompileManifest(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{}

	extVal := v.LookupPath(cue.ParsePath("extension"))
	if !extVal.Exists() {
		return nil, &CompileError{
			Field:   "extension",
			Message: "extension is required",
			Pos:     v.Pos(),
		}
	}
	var err error
	if m.Extension.Name, _, err = optionalString(extVal, "name"); err != nil {
		return nil, err
	}
	if m.Extension.Name == "" {
		return nil, &CompileError{
			Field:   "extension.name",
			Message: "extension name is required",
			Pos:     extVal.Pos(),
		}
	}
	if m.Extension.Version, _, err = optionalString(extVal, "version"); err != nil {
		return nil, err
	}

	sqlVal := v.LookupPath(cue.ParsePath("sql"))
	if !sqlVal.Exists() {
		return m, nil
	}

	switch sqlVal.IncompleteKind() {
	case cue.StructKind:
		iter, err := sqlVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			d, err := CompileDescriptor(iter.Value())
			if err != nil {
				return nil, err
			}
			m.Descriptors = append(m.Descriptors, *d)
		}
	case cue.ListKind:
		iter, err := sqlVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			d, err := CompileDescriptor(iter.Value())
			if err != nil {
				return nil, err
			}
			m.Descriptors = append(m.Descriptors, *d)
		}
	default:
		return nil, &CompileError{
			Field:   "sql",
			Message: "sql must be a struct or a list of descriptors",
			Pos:     sqlVal.Pos(),
		}
	}

	return m, nil
}
