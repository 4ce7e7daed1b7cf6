// Package selection holds selection sets and the shared selection store that
// every selector and the filter composer read from.
package selection

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Set is a copy-on-write set of keys. The zero value is an empty set. Methods
// never mutate the receiver; they return a new set when membership changes.
type Set[K cmp.Ordered] struct {
	m map[K]struct{}
}

// NewSet returns a set holding keys.
func NewSet[K cmp.Ordered](keys ...K) Set[K] {
	if len(keys) == 0 {
		return Set[K]{}
	}
	m := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return Set[K]{m: m}
}

// Has reports membership.
func (s Set[K]) Has(k K) bool {
	_, ok := s.m[k]
	return ok
}

// Len returns the number of keys.
func (s Set[K]) Len() int { return len(s.m) }

// IsEmpty reports whether the set has no keys.
func (s Set[K]) IsEmpty() bool { return len(s.m) == 0 }

func (s Set[K]) clone(extra int) map[K]struct{} {
	m := make(map[K]struct{}, len(s.m)+extra)
	for k := range s.m {
		m[k] = struct{}{}
	}
	return m
}

// With returns a set that also holds keys. The receiver is returned unchanged
// when nothing is added.
func (s Set[K]) With(keys ...K) Set[K] {
	missing := false
	for _, k := range keys {
		if !s.Has(k) {
			missing = true
			break
		}
	}
	if !missing {
		return s
	}
	m := s.clone(len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return Set[K]{m: m}
}

// Without returns a set without keys.
func (s Set[K]) Without(keys ...K) Set[K] {
	present := false
	for _, k := range keys {
		if s.Has(k) {
			present = true
			break
		}
	}
	if !present {
		return s
	}
	m := s.clone(0)
	for _, k := range keys {
		delete(m, k)
	}
	return Set[K]{m: m}
}

// Keys returns the members in ascending order.
func (s Set[K]) Keys() []K {
	out := make([]K, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether both sets hold the same keys.
func (s Set[K]) Equal(o Set[K]) bool {
	if s.Len() != o.Len() {
		return false
	}
	for k := range s.m {
		if !o.Has(k) {
			return false
		}
	}
	return true
}

// ContainsAll reports whether every key of o is in s. An empty o is always
// contained.
func (s Set[K]) ContainsAll(o Set[K]) bool {
	if o.Len() > s.Len() {
		return false
	}
	for k := range o.m {
		if !s.Has(k) {
			return false
		}
	}
	return true
}

// Intersects reports whether the sets share at least one key.
func (s Set[K]) Intersects(o Set[K]) bool {
	small, big := s, o
	if small.Len() > big.Len() {
		small, big = big, small
	}
	for k := range small.m {
		if big.Has(k) {
			return true
		}
	}
	return false
}

// Union returns the keys present in either set.
func (s Set[K]) Union(o Set[K]) Set[K] {
	if o.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return o
	}
	m := s.clone(o.Len())
	for k := range o.m {
		m[k] = struct{}{}
	}
	return Set[K]{m: m}
}

// Filter returns the keys for which keep returns true.
func (s Set[K]) Filter(keep func(K) bool) Set[K] {
	m := make(map[K]struct{})
	for k := range s.m {
		if keep(k) {
			m[k] = struct{}{}
		}
	}
	return Set[K]{m: m}
}

func (s Set[K]) String() string {
	keys := s.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprint(k)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
