package graph

import (
	"fmt"
	"strings"

	"github.com/roach88/extsql/internal/canon"
	"github.com/roach88/extsql/internal/entity"
)

// Resolver maps positioning references to target names.
//
// Lookup order, first hit wins:
//  1. another descriptor's name
//  2. a declared entity created by another descriptor (via canon.Index)
//  3. the anchor tokens "bootstrap" and "finalize"
type Resolver struct {
	reg   *entity.Registry
	index *canon.Index
}

// NewResolver creates a resolver over reg.
func NewResolver(reg *entity.Registry) *Resolver {
	return &Resolver{reg: reg, index: reg.Index()}
}

// Resolve resolves one reference of from.
func (r *Resolver) Resolve(from *entity.Descriptor, ref entity.PositioningRef) (ResolvedRef, error) {
	if ref.Kind == "" {
		ref.Kind = entity.RefRequires
	}
	if !entity.ValidRefKinds[ref.Kind] {
		return ResolvedRef{}, &entity.Error{
			Code:    entity.ErrCodeMalformedDeclaration,
			Message: fmt.Sprintf("unknown reference kind %q: must be requires, before or after", ref.Kind),
			Entity:  from.Name,
			Ref:     ref.Target,
		}
	}

	if d, ok := r.reg.Lookup(ref.Target); ok && d.Name != from.Name {
		return ResolvedRef{Ref: ref, Target: d.Name, Via: ByName}, nil
	}

	var owners []string
	for _, owner := range r.index.Owners(ref.Target) {
		if owner != from.Name {
			owners = append(owners, owner)
		}
	}
	switch len(owners) {
	case 0:
	case 1:
		return ResolvedRef{Ref: ref, Target: owners[0], Via: ByEntity}, nil
	default:
		err := entity.NewUnresolvedError(from.Name, ref.Target)
		err.Message = "positioning reference is ambiguous, declared by " + strings.Join(owners, ", ")
		return ResolvedRef{}, err
	}

	switch ref.Target {
	case entity.BootstrapToken, entity.FinalizeToken:
		return ResolvedRef{Ref: ref, Target: ref.Target, Via: ByAnchor}, nil
	}

	return ResolvedRef{}, entity.NewUnresolvedError(from.Name, ref.Target)
}
