package canon

// Entry is one declared entity registered with an Index.
type Entry struct {
	Owner string // name of the descriptor that creates the entity
	Kind  string // "Type", "Enum" or "Function"
	Forms Forms
}

// Index answers "does this spelling refer to a declared entity" for the
// whole registry. Entries keep insertion order so every query result is
// deterministic.
//
// An Index is built once and then only read.
type Index struct {
	entries []Entry
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add appends an entry.
func (x *Index) Add(e Entry) {
	x.entries = append(x.entries, e)
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// HasMatch reports whether candidate is a spelling of any declared entity.
func (x *Index) HasMatch(candidate string) bool {
	for _, e := range x.entries {
		if e.Forms.Match(candidate) {
			return true
		}
	}
	return false
}

// HasKindMatch is HasMatch restricted to entities of one kind, for callers
// that know they are looking for a type rather than a function.
func (x *Index) HasKindMatch(kind, candidate string) bool {
	for _, e := range x.entries {
		if e.Kind == kind && e.Forms.Match(candidate) {
			return true
		}
	}
	return false
}

// Owners returns the distinct owners whose entities match candidate, in
// insertion order.
func (x *Index) Owners(candidate string) []string {
	var owners []string
	seen := make(map[string]bool)
	for _, e := range x.entries {
		if seen[e.Owner] || !e.Forms.Match(candidate) {
			continue
		}
		seen[e.Owner] = true
		owners = append(owners, e.Owner)
	}
	return owners
}
