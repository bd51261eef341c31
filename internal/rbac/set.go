package rbac

import "sort"

// PermissionSet is an unordered set of permission strings.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from names, normalizing and deduplicating.
func NewPermissionSet(names ...string) PermissionSet {
	set := make(PermissionSet, len(names))
	for _, n := range names {
		if n = NormalizeName(n); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Add inserts names into the set.
func (s PermissionSet) Add(names ...string) {
	for _, n := range names {
		if n = NormalizeName(n); n != "" {
			s[n] = struct{}{}
		}
	}
}

// Has reports whether name is in the set.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[NormalizeName(name)]
	return ok
}

// HasAny reports whether any of names is in the set. It is false for no names.
func (s PermissionSet) HasAny(names ...string) bool {
	for _, n := range names {
		if s.Has(n) {
			return true
		}
	}
	return false
}

// HasAll reports whether every name is in the set. It is true for no names.
func (s PermissionSet) HasAll(names ...string) bool {
	for _, n := range names {
		if !s.Has(n) {
			return false
		}
	}
	return true
}

// Len returns the number of permissions.
func (s PermissionSet) Len() int { return len(s) }

// Names returns the permissions sorted, for display and serialization.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func keyNames(keys []PermissionKey) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return names
}
