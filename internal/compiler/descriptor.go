package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/extsql/internal/entity"
)

// CompileDescriptor parses a CUE value into an entity descriptor.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the descriptor struct itself; its label is the descriptor
// name unless the struct carries an explicit name field:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`sql: complex_type: { ... }`)
//	d, err := CompileDescriptor(v.LookupPath(cue.ParsePath("sql.complex_type")))
func CompileDescriptor(v cue.Value) (*entity.Descriptor, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "sql",
			Message: "descriptor must be a struct",
			Pos:     v.Pos(),
		}
	}

	if err := checkFields(v); err != nil {
		return nil, err
	}

	d := &entity.Descriptor{}

	labels := v.Path().Selectors()
	if len(labels) > 0 && labels[len(labels)-1].IsString() {
		d.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	if name, ok, err := optionalString(v, "name"); err != nil {
		return nil, err
	} else if ok {
		d.Name = name
	}
	if d.Name == "" {
		return nil, &CompileError{
			Field:   "name",
			Message: "descriptor name is required",
			Pos:     v.Pos(),
			Err:     entity.NewEmptyIdentifierError("descriptor"),
		}
	}

	if d.File, _, err = optionalString(v, "file"); err != nil {
		return nil, err
	}
	if d.ModulePath, _, err = optionalString(v, "module_path"); err != nil {
		return nil, err
	}
	if d.FullPath, _, err = optionalString(v, "full_path"); err != nil {
		return nil, err
	}
	if d.SQL, _, err = optionalString(v, "sql"); err != nil {
		return nil, err
	}

	if lineVal := v.LookupPath(cue.ParsePath("line")); lineVal.Exists() {
		line, err := lineVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if line < 0 {
			return nil, &CompileError{
				Field:   "line",
				Message: fmt.Sprintf("line must be non-negative, got %d", line),
				Pos:     lineVal.Pos(),
			}
		}
		d.Line = int(line)
	}

	if d.Bootstrap, err = optionalBool(v, "bootstrap"); err != nil {
		return nil, err
	}
	if d.Finalize, err = optionalBool(v, "finalize"); err != nil {
		return nil, err
	}

	if d.Requires, err = parseRequires(v, d.Name); err != nil {
		return nil, err
	}
	if d.Creates, err = parseCreates(v); err != nil {
		return nil, err
	}

	return d, nil
}

// descriptorFields are the fields a descriptor may carry in CUE and YAML
// manifests. Anything else is rejected so a misspelt requires never drops
// an ordering constraint.
var descriptorFields = map[string]bool{
	"name":        true,
	"module_path": true,
	"full_path":   true,
	"file":        true,
	"line":        true,
	"bootstrap":   true,
	"finalize":    true,
	"sql":         true,
	"requires":    true,
	"creates":     true,
}

func checkFields(v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Label()
		if !descriptorFields[label] {
			return &CompileError{
				Field:   label,
				Message: fmt.Sprintf("unknown descriptor field %q", label),
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// parseRequires reads the requires list. Each element is either a bare
// target string or a single-field struct {before: X} / {after: X} /
// {requires: X}.
func parseRequires(v cue.Value, owner string) ([]entity.PositioningRef, error) {
	reqVal := v.LookupPath(cue.ParsePath("requires"))
	if !reqVal.Exists() {
		return nil, nil
	}

	iter, err := reqVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var refs []entity.PositioningRef
	for iter.Next() {
		elem := iter.Value()

		if target, err := elem.String(); err == nil {
			ref, err := newRef(string(entity.RefRequires), target, owner)
			if err != nil {
				return nil, positioned(err, "requires", elem.Pos())
			}
			refs = append(refs, ref)
			continue
		}

		kind, target, err := singleField(elem, "requires")
		if err != nil {
			return nil, err
		}
		ref, err := newRef(kind, target, owner)
		if err != nil {
			return nil, positioned(err, "requires", elem.Pos())
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// parseCreates reads the creates list of {type: X} / {enum: X} /
// {function: X} structs.
func parseCreates(v cue.Value) ([]entity.Declared, error) {
	createsVal := v.LookupPath(cue.ParsePath("creates"))
	if !createsVal.Exists() {
		return nil, nil
	}

	iter, err := createsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var creates []entity.Declared
	for iter.Next() {
		elem := iter.Value()
		tag, name, err := singleField(elem, "creates")
		if err != nil {
			return nil, err
		}
		decl, err := entity.NewDeclared(declarationKind(tag), name)
		if err != nil {
			return nil, positioned(err, "creates", elem.Pos())
		}
		creates = append(creates, decl)
	}
	return creates, nil
}

// singleField extracts the only label and string value of a one-field
// struct such as {before: "x"}.
func singleField(v cue.Value, field string) (string, string, error) {
	iter, err := v.Fields()
	if err != nil {
		return "", "", &CompileError{
			Field:   field,
			Message: "entry must be a string or a single-field struct",
			Pos:     v.Pos(),
		}
	}

	var label, value string
	count := 0
	for iter.Next() {
		count++
		label = iter.Label()
		value, err = iter.Value().String()
		if err != nil {
			return "", "", formatCUEError(err)
		}
	}
	if count != 1 {
		return "", "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("entry must have exactly one field, got %d", count),
			Pos:     v.Pos(),
		}
	}
	return label, value, nil
}

// newRef validates a reference kind and target.
func newRef(kind, target, owner string) (entity.PositioningRef, error) {
	k := entity.RefKind(kind)
	if !entity.ValidRefKinds[k] {
		return entity.PositioningRef{}, &entity.Error{
			Code:    entity.ErrCodeMalformedDeclaration,
			Message: fmt.Sprintf("unknown reference kind %q: must be requires, before or after", kind),
			Entity:  owner,
		}
	}
	if target == "" {
		return entity.PositioningRef{}, entity.NewEmptyIdentifierError("reference target")
	}
	return entity.PositioningRef{Kind: k, Target: target}, nil
}

// declarationKind maps the lower-case manifest tags onto entity kinds.
// Unknown tags pass through so entity.NewDeclared can reject them.
func declarationKind(tag string) string {
	switch tag {
	case "type":
		return string(entity.KindType)
	case "enum":
		return string(entity.KindEnum)
	case "function":
		return string(entity.KindFunction)
	}
	return tag
}

// CompileError represents a compilation error with source position.
// Err holds the underlying entity error when the manifest content itself is
// invalid, so callers can test it with entity.IsMalformedError and friends.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos

	// Filename, Line and Column locate errors in sources that have no CUE
	// position (YAML manifests).
	Filename string
	Line     int
	Column   int

	Err error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Filename, e.Line, e.Column, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

func positioned(err error, field string, pos token.Pos) error {
	return &CompileError{
		Field:   field,
		Message: err.Error(),
		Pos:     pos,
		Err:     err,
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
