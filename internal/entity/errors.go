package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes graph build errors. Every code is fatal: no script
// is produced once one is returned.
type ErrorCode string

const (
	// ErrCodeDuplicateEntity indicates two descriptors share a name, or a
	// second bootstrap/finalize descriptor was registered.
	ErrCodeDuplicateEntity ErrorCode = "DUPLICATE_ENTITY"

	// ErrCodeUnresolvedReference indicates a positioning reference matched
	// no descriptor, declared entity or anchor.
	ErrCodeUnresolvedReference ErrorCode = "UNRESOLVED_REFERENCE"

	// ErrCodeCyclicDependency indicates the ordering graph has a cycle.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"

	// ErrCodeMalformedDeclaration indicates an unknown declared-entity tag
	// or a descriptor with neither SQL nor created entities.
	ErrCodeMalformedDeclaration ErrorCode = "MALFORMED_DECLARATION"

	// ErrCodeEmptyIdentifier indicates an empty descriptor or entity name.
	ErrCodeEmptyIdentifier ErrorCode = "EMPTY_IDENTIFIER"
)

// Error is a graph build error with structured context for diagnostics.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Entity is the descriptor the error was raised for, if any.
	Entity string

	// Ref is the raw positioning reference (unresolved references only).
	Ref string

	// Cycle lists node names in traversal order, first name repeated last.
	Cycle []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case len(e.Cycle) > 0:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, strings.Join(e.Cycle, " -> "))
	case e.Entity != "" && e.Ref != "":
		return fmt.Sprintf("%s: %s (entity=%s, ref=%s)", e.Code, e.Message, e.Entity, e.Ref)
	case e.Entity != "":
		return fmt.Sprintf("%s: %s (entity=%s)", e.Code, e.Message, e.Entity)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDuplicateError creates an Error for a name collision.
func NewDuplicateError(name string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateEntity,
		Message: "entity name is declared more than once",
		Entity:  name,
	}
}

// NewUnresolvedError creates an Error for a reference that resolved to
// nothing.
func NewUnresolvedError(from, ref string) *Error {
	return &Error{
		Code:    ErrCodeUnresolvedReference,
		Message: "positioning reference does not resolve",
		Entity:  from,
		Ref:     ref,
	}
}

// NewCycleError creates an Error for a dependency cycle.
func NewCycleError(cycle []string) *Error {
	return &Error{
		Code:    ErrCodeCyclicDependency,
		Message: "dependency cycle",
		Cycle:   cycle,
	}
}

// NewMalformedError creates an Error for an unrecognized declaration tag.
func NewMalformedError(kind string) *Error {
	return &Error{
		Code:    ErrCodeMalformedDeclaration,
		Message: fmt.Sprintf("unknown declaration kind %q: must be Type, Enum or Function", kind),
	}
}

// NewEmptyIdentifierError creates an Error for an empty name.
func NewEmptyIdentifierError(what string) *Error {
	return &Error{
		Code:    ErrCodeEmptyIdentifier,
		Message: what + " name is empty",
	}
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsDuplicateError reports whether err is a DUPLICATE_ENTITY error.
func IsDuplicateError(err error) bool { return hasCode(err, ErrCodeDuplicateEntity) }

// IsUnresolvedError reports whether err is an UNRESOLVED_REFERENCE error.
func IsUnresolvedError(err error) bool { return hasCode(err, ErrCodeUnresolvedReference) }

// IsCycleError reports whether err is a CYCLIC_DEPENDENCY error.
func IsCycleError(err error) bool { return hasCode(err, ErrCodeCyclicDependency) }

// IsMalformedError reports whether err is a MALFORMED_DECLARATION error.
func IsMalformedError(err error) bool { return hasCode(err, ErrCodeMalformedDeclaration) }

// IsEmptyIdentifierError reports whether err is an EMPTY_IDENTIFIER error.
func IsEmptyIdentifierError(err error) bool { return hasCode(err, ErrCodeEmptyIdentifier) }

// CodeOf returns the code of err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
