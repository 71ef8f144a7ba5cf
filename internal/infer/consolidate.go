package infer

import "cmp"

// Consolidated is the normalized, deduplicated form of a raw constraint
// list: one bound per variable, one relation per unordered pair, and the
// structural constraint families bucketed separately.
type Consolidated[A any, I comparable, V cmp.Ordered] struct {
	Bounds map[V]Type[A, I, V]
	// Relations is keyed by (Lo, Hi) only; DidFlip is never set on a
	// stored key, so every constraint over the same unordered pair lands
	// on the same entry regardless of which side it named first.
	Relations map[OrderedPair[V]]RelationKind

	Formulations          []Constraint[A, I, V]
	Funcs                 []Constraint[A, I, V]
	Interactions          []Constraint[A, I, V]
	InteractionDifference []Constraint[A, I, V]
}

// Structural returns every structural constraint, the only kind that
// contributes edges to the recursion checker.
func (c *Consolidated[A, I, V]) Structural() []Constraint[A, I, V] {
	all := make([]Constraint[A, I, V], 0, len(c.Formulations)+len(c.Funcs)+len(c.Interactions)+len(c.InteractionDifference))
	all = append(all, c.Formulations...)
	all = append(all, c.Funcs...)
	all = append(all, c.Interactions...)
	all = append(all, c.InteractionDifference...)
	return all
}

// consolidate normalizes a raw constraint list per §4.1: Bound constraints
// unify into a single per-variable entry (failing fast on conflict),
// Relation constraints canonicalize their pair and conjoin with any
// existing relation on it, and the four structural kinds are bucketed
// without deduplication (the enforcers are idempotent over repeats).
func consolidate[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], cs []Constraint[A, I, V]) (*Consolidated[A, I, V], error) {
	out := &Consolidated[A, I, V]{
		Bounds:    make(map[V]Type[A, I, V]),
		Relations: make(map[OrderedPair[V]]RelationKind),
	}

	for _, c := range cs {
		switch c.Kind {
		case KindBound:
			merged, err := unifyEQ(atoms, out.Bounds[c.BoundVar], c.BoundType)
			if err != nil {
				return nil, &InferenceError[A, I, V]{Constraint: c, Cause: err}
			}
			out.Bounds[c.BoundVar] = merged

		case KindRelation:
			pair := Canonicalize(c.RelLeft, c.RelRight)
			rel := c.RelKind
			if pair.DidFlip {
				rel = rel.Flip()
			}
			// DidFlip is per-constraint, not per-pair: two constraints on the
			// same unordered pair can canonicalize with opposite DidFlip
			// depending on which variable the caller named first. Key the
			// map by (Lo, Hi) alone so both land on the same entry and
			// actually conjoin.
			key := OrderedPair[V]{Lo: pair.Lo, Hi: pair.Hi}
			if existing, ok := out.Relations[key]; ok {
				out.Relations[key] = conjoinRelations(existing, rel)
			} else {
				out.Relations[key] = rel
			}

		case KindFormulation:
			out.Formulations = append(out.Formulations, c)
		case KindFunc:
			out.Funcs = append(out.Funcs, c)
		case KindInteraction:
			out.Interactions = append(out.Interactions, c)
		case KindInteractionDifference:
			out.InteractionDifference = append(out.InteractionDifference, c)
		}
	}

	return out, nil
}

// conjoinRelations combines two relations known to hold between the same
// ordered pair: identical relations collapse to themselves, anything
// differing upgrades to Equality (the only relation both could imply).
func conjoinRelations(a, b RelationKind) RelationKind {
	if a == b {
		return a
	}
	return Equality
}
