package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/extsql/internal/entity"
)

// Validation error codes (E100-E199)
const (
	ErrExtensionNameEmpty  = "E101" // extension name is required
	ErrDescriptorNameEmpty = "E102" // descriptor name is required
	ErrDuplicateName       = "E103" // duplicate descriptor name
	ErrNoContent           = "E104" // neither sql nor creates
	ErrEmptyRefTarget      = "E105" // reference target is empty
	ErrSelfReference       = "E106" // descriptor references itself
	ErrMultipleBootstrap   = "E107" // more than one bootstrap descriptor
	ErrMultipleFinalize    = "E108" // more than one finalize descriptor
	ErrBootstrapFinalize   = "E109" // descriptor is both bootstrap and finalize
	ErrDuplicateDeclared   = "E110" // same declared entity created twice
)

// ValidationError represents a manifest validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled manifest and returns every problem found
// (does not fail-fast). The graph builder stops at the first error; this
// pass is for reporting.
func Validate(m *Manifest) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(m.Extension.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "extension.name",
			Message: "extension name is required",
			Code:    ErrExtensionNameEmpty,
		})
	}

	names := make(map[string]bool)
	declared := make(map[string]string)
	var bootstrap, finalize string

	for i, d := range m.Descriptors {
		field := fmt.Sprintf("sql[%d]", i)

		if d.Name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "descriptor name is required",
				Code:    ErrDescriptorNameEmpty,
				Line:    d.Line,
			})
		} else {
			field = "sql." + d.Name
		}

		if d.Name != "" && names[d.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate descriptor name: %q", d.Name),
				Code:    ErrDuplicateName,
				Line:    d.Line,
			})
		}
		names[d.Name] = true

		if d.SQL == "" && len(d.Creates) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".sql",
				Message: "descriptor has no sql and creates no entities",
				Code:    ErrNoContent,
				Line:    d.Line,
			})
		}

		if d.Bootstrap && d.Finalize {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "descriptor cannot be both bootstrap and finalize",
				Code:    ErrBootstrapFinalize,
				Line:    d.Line,
			})
		}
		if d.Bootstrap {
			if bootstrap != "" {
				errs = append(errs, ValidationError{
					Field:   field + ".bootstrap",
					Message: fmt.Sprintf("bootstrap is already declared by %q", bootstrap),
					Code:    ErrMultipleBootstrap,
					Line:    d.Line,
				})
			} else {
				bootstrap = d.Name
			}
		}
		if d.Finalize {
			if finalize != "" {
				errs = append(errs, ValidationError{
					Field:   field + ".finalize",
					Message: fmt.Sprintf("finalize is already declared by %q", finalize),
					Code:    ErrMultipleFinalize,
					Line:    d.Line,
				})
			} else {
				finalize = d.Name
			}
		}

		for j, ref := range d.Requires {
			refField := fmt.Sprintf("%s.requires[%d]", field, j)
			if strings.TrimSpace(ref.Target) == "" {
				errs = append(errs, ValidationError{
					Field:   refField,
					Message: "reference target is empty",
					Code:    ErrEmptyRefTarget,
					Line:    d.Line,
				})
				continue
			}
			if d.Name != "" && ref.Target == d.Name {
				errs = append(errs, ValidationError{
					Field:   refField,
					Message: fmt.Sprintf("%s references itself", d.Name),
					Code:    ErrSelfReference,
					Line:    d.Line,
				})
			}
		}

		for j, c := range d.Creates {
			key := declaredKey(c)
			if owner, ok := declared[key]; ok {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.creates[%d]", field, j),
					Message: fmt.Sprintf("%s is already created by %q", c, owner),
					Code:    ErrDuplicateDeclared,
					Line:    d.Line,
				})
				continue
			}
			declared[key] = d.Name
		}
	}

	return errs
}

func declaredKey(c entity.Declared) string {
	return string(c.Kind) + ":" + c.Name()
}
