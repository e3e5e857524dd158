package auth

import "sort"

// PermissionSet is a flat set of granted permission names.
// There is no wildcard, hierarchy or negation.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from names.
func NewPermissionSet(names ...string) PermissionSet {
	set := make(PermissionSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	return set
}

// Has reports whether name is in the set. A nil set holds nothing.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the sorted permission names.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of permissions in the set.
func (s PermissionSet) Len() int {
	return len(s)
}
