// Package roster compares member rosters scraped from different sources.
package roster

import "sort"

// Roster maps a member name to a free-form attribute such as a shift label
type Roster map[string]string

// Set is a set of member names
type Set map[string]struct{}

// NewSet builds a Set from names
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the roster's names in ascending order
func (r Roster) Names() []string {
	return sortedKeys(r)
}

// Keys returns the roster's names as a Set
func (r Roster) Keys() Set {
	s := make(Set, len(r))
	for name := range r {
		s[name] = struct{}{}
	}
	return s
}

// Discrepancy holds the names of one roster missing from another, keeping
// the attribute from the first roster
type Discrepancy map[string]string

// Names returns the discrepant names in ascending order
func (d Discrepancy) Names() []string {
	return sortedKeys(d)
}

// Reconcile returns every entry of a whose name is not in b.
// The result is never nil and is always a subset of a.
func Reconcile(a Roster, b Set) Discrepancy {
	out := make(Discrepancy)
	for name, attr := range a {
		if !b.Has(name) {
			out[name] = attr
		}
	}
	return out
}

func sortedKeys[M ~map[string]string](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
