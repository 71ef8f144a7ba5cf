package infer

import "cmp"

// Reseed turns a solution back into a constraint list by re-asserting
// every variable's derived type as a Bound constraint, over the given
// set of variables of interest. Feeding Reseed's output back into Solve
// must reproduce the same solution (idempotence); this engine has no
// notion of type schemes to re-instantiate, so it reuses the solution's
// own variable identities rather than generating fresh ones.
func Reseed[A any, I comparable, V cmp.Ordered](solution Solution[A, I, V], vars []V) []Constraint[A, I, V] {
	out := make([]Constraint[A, I, V], 0, len(vars))
	for _, v := range vars {
		if t := solution(v); t != nil {
			out = append(out, BoundConstraint(v, t))
		}
	}
	return out
}
