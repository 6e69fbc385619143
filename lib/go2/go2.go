// Package go2 contains general utility helpers that should've been in Go. Maybe they'll be in Go 2.0.
package go2

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func Pointer[T any](v T) *T {
	return &v
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Contains[T comparable](els []T, el T) bool {
	for _, el2 := range els {
		if el2 == el {
			return true
		}
	}
	return false
}

func Filter[T any](els []T, fn func(T) bool) []T {
	out := []T{}
	for _, el := range els {
		if fn(el) {
			out = append(out, el)
		}
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Set is an unordered collection of comparable values.
type Set[T comparable] map[T]struct{}

func NewSet[T comparable](els ...T) Set[T] {
	s := make(Set[T], len(els))
	for _, el := range els {
		s[el] = struct{}{}
	}
	return s
}

func (s Set[T]) Add(el T) { s[el] = struct{}{} }
func (s Set[T]) Delete(el T) { delete(s, el) }
func (s Set[T]) Has(el T) bool {
	_, ok := s[el]
	return ok
}
func (s Set[T]) Len() int { return len(s) }
func (s Set[T]) Clone() Set[T] { return maps.Clone(s) }
func (s Set[T]) Equal(o Set[T]) bool { return maps.Equal(s, o) }

// Minus returns the elements of s that are not in o.
func (s Set[T]) Minus(o Set[T]) Set[T] {
	out := Set[T]{}
	for el := range s {
		if !o.Has(el) {
			out.Add(el)
		}
	}
	return out
}
