package infer

import (
	"cmp"
	"reflect"

	"github.com/latus-lang/latus/internal/worklist"
)

// Problem bundles a raw constraint list with the atomic unifier needed
// to interpret its Bound and Atom-level operations.
type Problem[A any, I comparable, V cmp.Ordered] struct {
	Constraints []Constraint[A, I, V]
	Atoms       AtomUnifier[A]
}

// NewProblem returns an empty Problem for the given atomic unifier.
func NewProblem[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A]) *Problem[A, I, V] {
	return &Problem[A, I, V]{Atoms: atoms}
}

// With appends constraints and returns the receiver, for fluent
// construction: infer.NewProblem[...](atoms).With(infer.BoundConstraint(...), ...).
func (p *Problem[A, I, V]) With(cs ...Constraint[A, I, V]) *Problem[A, I, V] {
	p.Constraints = append(p.Constraints, cs...)
	return p
}

// Solution is the total function from variable to best-known type a
// successful Solve produces. A variable with no derivable bound maps to
// nil.
type Solution[A any, I comparable, V cmp.Ordered] func(V) Type[A, I, V]

// Solve consolidates constraints, rejects recursive ones, then runs the
// enforcer set to a fixed point and projects the result.
func Solve[A any, I comparable, V cmp.Ordered](p Problem[A, I, V]) (Solution[A, I, V], error) {
	consolidated, err := consolidate(p.Atoms, p.Constraints)
	if err != nil {
		return nil, err
	}

	if err := checkRecursion(consolidated.Structural()); err != nil {
		return nil, err
	}

	enforcers := buildEnforcers(p.Atoms, consolidated)

	initial := make([]worklist.Update[V, Type[A, I, V]], 0, len(consolidated.Bounds))
	for v, t := range consolidated.Bounds {
		initial = append(initial, worklist.Update[V, Type[A, I, V]]{Key: v, Value: t})
	}

	wp := worklist.Problem[V, Type[A, I, V]]{
		Initial:     initial,
		Default:     nil,
		Constraints: enforcers,
		Merge: func(key V, a, b Type[A, I, V]) (Type[A, I, V], error) {
			merged, err := unifyEQ(p.Atoms, a, b)
			if err != nil {
				return nil, &InferenceError[A, I, V]{Constraint: RelationConstraint(key, Equality, key), Cause: err}
			}
			return merged, nil
		},
		Equal: typesEqual[A, I, V],
	}

	bounds, err := worklist.Solve(wp)
	if err != nil {
		return nil, err
	}

	return func(v V) Type[A, I, V] {
		t, ok := bounds[v]
		if !ok {
			return nil
		}
		return t
	}, nil
}

func buildEnforcers[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], c *Consolidated[A, I, V]) []enforcer[A, I, V] {
	var out []enforcer[A, I, V]
	for pair, kind := range c.Relations {
		out = append(out, relationEnforcer(atoms, pair, kind))
	}
	for _, fc := range c.Formulations {
		out = append(out, formulationEnforcer(atoms, fc))
	}
	for _, fc := range c.Funcs {
		out = append(out, funcEnforcer(atoms, fc))
	}
	for _, ic := range c.Interactions {
		out = append(out, interactionEnforcer(atoms, ic))
	}
	for _, dc := range c.InteractionDifference {
		out = append(out, interactionDifferenceEnforcer(atoms, dc))
	}
	return out
}

// typesEqual is structural equality over Type values, used by the
// propagation driver to decide whether a round made progress. Type
// trees are plain data (no funcs or channels), so a deep comparison is
// safe and cheap enough at the sizes this engine deals with.
func typesEqual[A any, I comparable, V cmp.Ordered](a, b Type[A, I, V]) bool {
	return reflect.DeepEqual(a, b)
}
