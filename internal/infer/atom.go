package infer

// AtomUnifier is the external collaborator that knows how to unify the
// caller's leaf (atomic) type domain, e.g. primitives. It must be
// reflexive and symmetric where implied, and monotone under refinement.
type AtomUnifier[A any] interface {
	// UnifyEQ computes a common bound for two atoms of the same domain.
	UnifyEQ(a, b A) (A, error)

	// UnifyAsym refines one side of dir(lower, upper) knowing the other.
	// dir=LTE means lower<=upper and the result is the new upper;
	// dir=GTE is the mirror and the result is the new lower.
	UnifyAsym(dir RelationKind, x, y A) (A, error)

	// UnifyLTE returns both refined sides of lower<=upper.
	UnifyLTE(lower, upper A) (A, A, error)
}
