package entity

import (
	"slices"

	"github.com/roach88/extsql/internal/canon"
)

// Handle is the position of a descriptor in Registry.Descriptors.
type Handle int

// Registry owns every descriptor for one build. It is populated once and
// read thereafter; nothing in it is global.
type Registry struct {
	descriptors []*Descriptor
	byName      map[string]Handle
	bootstrap   *Descriptor
	finalize    *Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Handle)}
}

// NewRegistryFrom registers every descriptor in order and stops at the
// first error.
func NewRegistryFrom(descs ...Descriptor) (*Registry, error) {
	r := NewRegistry()
	for _, d := range descs {
		if _, err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a descriptor. The registry keeps its own copy, so later
// changes to d are not observed.
//
// Register checks uniqueness and shape only; references are resolved by the
// graph builder so diagnostics can see the whole registry.
func (r *Registry) Register(d Descriptor) (Handle, error) {
	if d.Name == "" {
		return -1, NewEmptyIdentifierError("descriptor")
	}
	if _, exists := r.byName[d.Name]; exists {
		return -1, NewDuplicateError(d.Name)
	}
	if d.SQL == "" && len(d.Creates) == 0 {
		return -1, &Error{
			Code:    ErrCodeMalformedDeclaration,
			Message: "descriptor has no SQL and creates no entities",
			Entity:  d.Name,
		}
	}
	for _, c := range d.Creates {
		if _, err := ParseKind(string(c.Kind)); err != nil {
			return -1, err
		}
		if c.Name() == "" {
			return -1, NewEmptyIdentifierError("declared entity")
		}
	}
	if d.Bootstrap && r.bootstrap != nil {
		return -1, &Error{
			Code:    ErrCodeDuplicateEntity,
			Message: "bootstrap is already declared by " + r.bootstrap.Name,
			Entity:  d.Name,
		}
	}
	if d.Finalize && r.finalize != nil {
		return -1, &Error{
			Code:    ErrCodeDuplicateEntity,
			Message: "finalize is already declared by " + r.finalize.Name,
			Entity:  d.Name,
		}
	}

	stored := d
	stored.Requires = slices.Clone(d.Requires)
	stored.Creates = slices.Clone(d.Creates)

	h := Handle(len(r.descriptors))
	r.descriptors = append(r.descriptors, &stored)
	r.byName[d.Name] = h
	if d.Bootstrap {
		r.bootstrap = &stored
	}
	if d.Finalize {
		r.finalize = &stored
	}
	return h, nil
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Lookup finds a descriptor by name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	h, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.descriptors[h], true
}

// Descriptors returns all descriptors in registration order. Callers must
// not modify them.
func (r *Registry) Descriptors() []*Descriptor {
	return slices.Clone(r.descriptors)
}

// Bootstrap returns the bootstrap descriptor, or nil.
func (r *Registry) Bootstrap() *Descriptor { return r.bootstrap }

// Finalize returns the finalize descriptor, or nil.
func (r *Registry) Finalize() *Descriptor { return r.finalize }

// Index builds the canonicalizer index over every created entity, in
// registration order.
func (r *Registry) Index() *canon.Index {
	x := canon.NewIndex()
	for _, d := range r.descriptors {
		for _, c := range d.Creates {
			x.Add(canon.Entry{Owner: d.Name, Kind: string(c.Kind), Forms: c.Forms})
		}
	}
	return x
}
