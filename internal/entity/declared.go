package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/extsql/internal/canon"
)

// Kind tags a declared entity.
type Kind string

const (
	KindType     Kind = "Type"
	KindEnum     Kind = "Enum"
	KindFunction Kind = "Function"
)

// ParseKind maps a declaration tag to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindType, KindEnum, KindFunction:
		return Kind(s), nil
	}
	return "", NewMalformedError(s)
}

// Declared is a type, enum or function made visible to the database by a
// descriptor. All three kinds share one spelling block; the kind only
// decides which queries it answers.
type Declared struct {
	Kind  Kind
	Forms canon.Forms
}

// NewDeclared builds a declared entity from its tag and bare name.
func NewDeclared(kind, name string) (Declared, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Declared{}, err
	}
	forms, err := canon.Derive(name)
	if errors.Is(err, canon.ErrEmptyName) {
		return Declared{}, NewEmptyIdentifierError(fmt.Sprintf("%s declaration", k))
	}
	if err != nil {
		return Declared{}, err
	}
	return Declared{Kind: k, Forms: forms}, nil
}

// MustDeclared is like NewDeclared but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDeclared(kind, name string) Declared {
	d, err := NewDeclared(kind, name)
	if err != nil {
		panic(err)
	}
	return d
}

// Type declares a custom type. It panics on an empty name.
func Type(name string) Declared { return MustDeclared(string(KindType), name) }

// Enum declares an enumeration. It panics on an empty name.
func Enum(name string) Declared { return MustDeclared(string(KindEnum), name) }

// Function declares a function. It panics on an empty name.
func Function(name string) Declared { return MustDeclared(string(KindFunction), name) }

// Name returns the bare declared name.
func (d Declared) Name() string { return d.Forms.Name() }

// Matches reports whether candidate is one of this entity's spellings.
func (d Declared) Matches(candidate string) bool { return d.Forms.Match(candidate) }

// String renders "Type(Foo)", "Enum(Foo)" or "Function(Foo)".
func (d Declared) String() string {
	return fmt.Sprintf("%s(%s)", d.Kind, d.Name())
}

type declaredJSON struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// MarshalJSON encodes the tag and bare name; spellings are derived on
// decode.
func (d Declared) MarshalJSON() ([]byte, error) {
	return json.Marshal(declaredJSON{Kind: string(d.Kind), Name: d.Name()})
}

// UnmarshalJSON decodes {"kind": ..., "name": ...}.
func (d *Declared) UnmarshalJSON(data []byte) error {
	var raw declaredJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := NewDeclared(raw.Kind, raw.Name)
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}
