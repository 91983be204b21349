// Package cmp compares slices and maps, mainly for tests.
package cmp

// a == b as BiPredicator function
func EqEq[T comparable](a, b T) bool {
	return a == b
}

// check a and b have same elements in same order.
func SliceEq[T comparable](a []T, b []T) bool {
	return SliceEqWith(a, b, EqEq[T])
}

// check a and b have equivalent elements in same order, in context of pred.
func SliceEqWith[T any, U any](a []T, b []U, pred func(a T, b U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for nth := range a {
		if !pred(a[nth], b[nth]) {
			return false
		}
	}
	return true
}

// check a and b have same elements, ignoring order but honouring multiplicity.
func SliceContentEq[T comparable](a []T, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	count := map[T]int{}
	for _, v := range a {
		count[v] += 1
	}
	for _, v := range b {
		if count[v] == 0 {
			return false
		}
		count[v] -= 1
	}
	return true
}

// check a == b
func MapEq[K comparable, V comparable](a map[K]V, b map[K]V) bool {
	return MapEqWith(a, b, EqEq[V])
}

// check a == b, in context of comparator
func MapEqWith[K comparable, V any, U any](a map[K]V, b map[K]U, comparator func(V, U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for ka, va := range a {
		vb, ok := b[ka]
		if !ok || !comparator(va, vb) {
			return false
		}
	}
	return true
}
