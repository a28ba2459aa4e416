package entity

import "fmt"

// Anchor tokens usable as a positioning reference target.
const (
	BootstrapToken = "bootstrap"
	FinalizeToken  = "finalize"
)

// Descriptor describes one declared SQL-visible unit and where it came from.
type Descriptor struct {
	ModulePath string           `json:"module_path"`
	FullPath   string           `json:"full_path"`
	SQL        string           `json:"sql"`
	File       string           `json:"file"`
	Line       int              `json:"line"`
	Name       string           `json:"name"`
	Bootstrap  bool             `json:"bootstrap"`
	Finalize   bool             `json:"finalize"`
	Requires   []PositioningRef `json:"requires"`
	Creates    []Declared       `json:"creates"`
}

// Less orders descriptors by (file, line, name). The scheduler uses this as
// its tie-break so rendered scripts are byte-identical across runs.
func (d *Descriptor) Less(o *Descriptor) bool {
	if d.File != o.File {
		return d.File < o.File
	}
	if d.Line != o.Line {
		return d.Line < o.Line
	}
	return d.Name < o.Name
}

// RefKind is the direction of a positioning reference.
type RefKind string

const (
	// RefRequires orders the target before the referencing descriptor.
	RefRequires RefKind = "requires"
	// RefBefore orders the referencing descriptor before the target.
	RefBefore RefKind = "before"
	// RefAfter orders the referencing descriptor after the target.
	RefAfter RefKind = "after"
)

// ValidRefKinds defines allowed reference kinds.
var ValidRefKinds = map[RefKind]bool{
	RefRequires: true,
	RefBefore:   true,
	RefAfter:    true,
}

// PositioningRef orders one descriptor relative to another descriptor, a
// declared entity, or an anchor.
type PositioningRef struct {
	Kind   RefKind `json:"kind"`
	Target string  `json:"target"`
}

// Requires is shorthand for a requires reference.
func Requires(target string) PositioningRef {
	return PositioningRef{Kind: RefRequires, Target: target}
}

// Before is shorthand for a before reference.
func Before(target string) PositioningRef {
	return PositioningRef{Kind: RefBefore, Target: target}
}

// After is shorthand for an after reference.
func After(target string) PositioningRef {
	return PositioningRef{Kind: RefAfter, Target: target}
}

// String renders the reference the way it appears in script comments.
func (r PositioningRef) String() string {
	if r.Kind == RefRequires || r.Kind == "" {
		return r.Target
	}
	return fmt.Sprintf("%s %s", r.Kind, r.Target)
}
