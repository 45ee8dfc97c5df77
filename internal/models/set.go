package models

import (
	"sort"

	"github.com/samber/lo"
)

// StringSet is an unordered set of strings
type StringSet map[string]struct{}

// NewStringSet creates a set holding the given values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v into the set.
func (s StringSet) Add(v string) {
	s[v] = struct{}{}
}

// Has reports whether v is a member of the set. A nil set has no members.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of members.
func (s StringSet) Len() int {
	return len(s)
}

// Union adds every member of other to s.
func (s StringSet) Union(other StringSet) {
	for v := range other {
		s.Add(v)
	}
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	values := lo.Keys(s)
	sort.Strings(values)
	return values
}
