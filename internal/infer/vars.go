package infer

import "cmp"

// OrderedPair orders a symmetric relation between two variables by
// (min, max), recording whether the original (a, b) order had to flip
// to reach canonical form so the relation's direction can be recovered.
// Callers that use an OrderedPair as a map key over the unordered pair
// itself must zero DidFlip first; it is derived per-constraint, not a
// property of the pair.
type OrderedPair[V cmp.Ordered] struct {
	Lo      V
	Hi      V
	DidFlip bool
}

// Canonicalize orders a and b so Lo <= Hi, reporting whether it flipped.
func Canonicalize[V cmp.Ordered](a, b V) OrderedPair[V] {
	if cmp.Compare(a, b) <= 0 {
		return OrderedPair[V]{Lo: a, Hi: b, DidFlip: false}
	}
	return OrderedPair[V]{Lo: b, Hi: a, DidFlip: true}
}
