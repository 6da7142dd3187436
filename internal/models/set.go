// internal/models/set.go
package models

import (
	"cmp"
	"encoding/json"
	"maps"
	"slices"
)

// Set is an explicit preference collection. An empty Set means "no stated
// preference" and Accepts everything; use Contains for strict membership.
type Set[T cmp.Ordered] map[T]struct{}

func NewSet[T cmp.Ordered](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

func (s Set[T]) Empty() bool {
	return len(s) == 0
}

// Accepts reports whether v satisfies the preference: true when the set is
// empty or v is a member.
func (s Set[T]) Accepts(v T) bool {
	return s.Empty() || s.Contains(v)
}

// Intersects reports whether the two sets share at least one member.
func (s Set[T]) Intersects(other Set[T]) bool {
	for v := range s {
		if other.Contains(v) {
			return true
		}
	}
	return false
}

// Values returns the members in ascending order.
func (s Set[T]) Values() []T {
	return slices.Sorted(maps.Keys(s))
}

func (s Set[T]) MarshalJSON() ([]byte, error) {
	values := s.Values()
	if values == nil {
		values = []T{}
	}
	return json.Marshal(values)
}

func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var values []T
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}
