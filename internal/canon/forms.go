package canon

import (
	"errors"
	"strings"
)

// Wrapper spellings emitted by the front-end. These are part of the
// descriptor wire format and must not change without regenerating every
// manifest.
const (
	nullableWrapper = "Option"
	sequenceWrapper = "Vec"
	arrayWrapper    = "Array"
	varlenaWrapper  = "Varlena"
	boxWrapper      = "pgx::pgbox::PgBox"

	ownedByCaller = "pgx::pgbox::AllocatedByRust"
	ownedByHost   = "pgx::pgbox::AllocatedByPostgres"

	// ScopeSeparator separates path segments in qualified spellings.
	ScopeSeparator = "::"

	// GenericOpen opens a generic parameter list.
	GenericOpen = "<"
)

// ErrEmptyName is returned by Derive when the bare name (or its final path
// segment) is empty.
var ErrEmptyName = errors.New("declared entity name is empty")

// Forms is the closed set of spellings that denote one declared entity.
// Every field is a pure function of the bare name.
type Forms struct {
	name            string
	sql             string
	option          string
	vec             string
	vecOption       string
	optionVec       string
	optionVecOption string
	array           string
	optionArray     string
	varlena         string
	box             [3]string
}

// Derive computes every spelling of name.
func Derive(name string) (Forms, error) {
	if name == "" {
		return Forms{}, ErrEmptyName
	}
	sql := name
	if i := strings.LastIndex(name, ScopeSeparator); i >= 0 {
		sql = name[i+len(ScopeSeparator):]
	}
	if sql == "" {
		return Forms{}, ErrEmptyName
	}

	return Forms{
		name:            name,
		sql:             sql,
		option:          wrap(nullableWrapper, name),
		vec:             wrap(sequenceWrapper, name),
		vecOption:       wrap(sequenceWrapper, wrap(nullableWrapper, name)),
		optionVec:       wrap(nullableWrapper, wrap(sequenceWrapper, name)),
		optionVecOption: wrap(nullableWrapper, wrap(sequenceWrapper, wrap(nullableWrapper, name))),
		array:           wrap(arrayWrapper, name),
		optionArray:     wrap(nullableWrapper, wrap(arrayWrapper, name)),
		varlena:         wrap(varlenaWrapper, name),
		box: [3]string{
			wrap(boxWrapper, name),
			wrap(boxWrapper, name+", "+ownedByCaller),
			wrap(boxWrapper, name+", "+ownedByHost),
		},
	}, nil
}

// MustDerive is like Derive but panics on error.
// Use only in tests or when the name is known to be valid.
func MustDerive(name string) Forms {
	f, err := Derive(name)
	if err != nil {
		panic(err)
	}
	return f
}

func wrap(wrapper, inner string) string {
	return wrapper + "<" + inner + ">"
}

// Name returns the bare name the forms were derived from.
func (f Forms) Name() string { return f.name }

// SQL returns the unqualified name as it appears in SQL.
func (f Forms) SQL() string { return f.sql }

// All returns every spelling in a fixed order: bare, the wrapped forms,
// then the three pointer forms.
func (f Forms) All() []string {
	out := f.wrapped()
	return append(out, f.box[:]...)
}

// wrapped returns the spellings eligible for the qualified retry. The
// pointer forms are excluded: they are already fully qualified.
func (f Forms) wrapped() []string {
	return []string{
		f.name,
		f.option,
		f.vec,
		f.vecOption,
		f.optionVec,
		f.optionVecOption,
		f.array,
		f.optionArray,
		f.varlena,
	}
}

// Match reports whether candidate is a spelling of this entity.
//
// Matching is exact and case-sensitive. When that fails and candidate has a
// generic parameter list, the scope qualification before the last "::"
// preceding the first "<" is dropped and the unqualified remainder is tried
// again, so "core::option::Option<Foo>" matches Option<Foo>.
//
// A candidate without "<" is never unqualified: "demo::Foo" does not match
// Foo. Existing generated scripts depend on this, so it stays.
func (f Forms) Match(candidate string) bool {
	if f.name == "" {
		return false
	}
	if f.matchWrapped(candidate) {
		return true
	}
	for _, b := range f.box {
		if b == candidate {
			return true
		}
	}

	generics := strings.Index(candidate, GenericOpen)
	if generics < 0 {
		return false
	}
	qualification := strings.LastIndex(candidate[:generics], ScopeSeparator)
	if qualification < 0 {
		return false
	}
	return f.matchWrapped(candidate[qualification+len(ScopeSeparator):])
}

func (f Forms) matchWrapped(candidate string) bool {
	for _, s := range f.wrapped() {
		if s == candidate {
			return true
		}
	}
	return false
}
