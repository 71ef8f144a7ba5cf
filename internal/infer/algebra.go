package infer

import (
	"cmp"

	"github.com/latus-lang/latus/internal/cset"
)

// splitFormulation splits a whole type into the two components a
// Formulation(whole, form, a, b) constraint relates it to.
//
//   - AppOf / App(h, p)     -> (h, p)
//   - AppOf / Never          -> (Never, nil)
//   - TupleOf / Tuple(_,x,y) -> (x, y)
//   - TupleOf / Never        -> (nil, nil)
//   - nil whole              -> (nil, nil)
//   - anything else          -> FormMismatchError
func splitFormulation[A any, I comparable, V cmp.Ordered](v V, form FormKind, whole Type[A, I, V]) (Type[A, I, V], Type[A, I, V], error) {
	if whole == nil {
		return nil, nil, nil
	}

	switch form {
	case AppOf:
		switch w := whole.(type) {
		case App[A, I, V]:
			return w.Head, w.Param, nil
		case Never[A, I, V]:
			return Never[A, I, V]{}, nil, nil
		default:
			return nil, nil, &FormMismatchError[A, I, V]{Var: v, Form: form, Bound: whole}
		}
	case TupleOf:
		switch w := whole.(type) {
		case Tuple[A, I, V]:
			return w.Fst, w.Snd, nil
		case Never[A, I, V]:
			return nil, nil, nil
		default:
			return nil, nil, &FormMismatchError[A, I, V]{Var: v, Form: form, Bound: whole}
		}
	default:
		return nil, nil, &FormMismatchError[A, I, V]{Var: v, Form: form, Bound: whole}
	}
}

// joinFormulation rebuilds a whole type from its two components.
func joinFormulation[A any, I comparable, V cmp.Ordered](form FormKind, a, b Type[A, I, V]) Type[A, I, V] {
	switch form {
	case AppOf:
		return App[A, I, V]{Head: a, Param: b}
	default:
		return Tuple[A, I, V]{Bounds: NeutralBounds(), Fst: a, Snd: b}
	}
}

// funcComponents splits a whole function type into (arg, inter, ret). An
// unknown f yields unknown components; any non-Func, non-nil shape is a
// NotFunctionError.
func funcComponents[A any, I comparable, V cmp.Ordered](v V, whole Type[A, I, V]) (Type[A, I, V], Type[A, I, V], Type[A, I, V], error) {
	if whole == nil {
		return nil, nil, nil, nil
	}
	f, ok := whole.(Func[A, I, V])
	if !ok {
		return nil, nil, nil, &NotFunctionError[A, I, V]{Var: v, Bound: whole}
	}
	return f.Arg, f.Inter, f.Ret, nil
}

// interactionComponents splits an interaction row into its lower and
// upper bound, or reports NotInteractionError for a non-interaction,
// non-nil shape.
func interactionComponents[A any, I comparable, V cmp.Ordered](v V, whole Type[A, I, V]) (InteractionLo[I, V], CSet[I], bool, error) {
	if whole == nil {
		return nil, CSet[I]{}, false, nil
	}
	in, ok := whole.(Interaction[A, I, V])
	if !ok {
		return nil, CSet[I]{}, false, &NotInteractionError[A, I, V]{Var: v, Bound: whole}
	}
	return in.Lo, in.Hi, true, nil
}

// interactionSubtract removes every interaction in inters from (lo, hi):
// lo loses those keys, hi is narrowed by intersecting with Excluded(inters).
func interactionSubtract[I comparable, V cmp.Ordered](inters []I, lo InteractionLo[I, V], hi CSet[I]) (InteractionLo[I, V], CSet[I]) {
	newLo := make(InteractionLo[I, V], len(lo))
	excluded := make(map[I]bool, len(inters))
	for _, i := range inters {
		excluded[i] = true
	}
	for k, v := range lo {
		if !excluded[k] {
			newLo[k] = v
		}
	}
	newHi := cset.Intersection(hi, cset.Excluded(inters...))
	return newLo, newHi
}

// transferValues copies entries from src into dst for every key that
// already exists in dst. No enforcer in this package calls it; the
// InteractionDifference enforcer widens a whole row with
// mergeLoPreferLeft instead.
func transferValues[I comparable, V cmp.Ordered](src, dst InteractionLo[I, V]) InteractionLo[I, V] {
	out := dst.Clone()
	for k := range out {
		if v, ok := src[k]; ok {
			out[k] = v
		}
	}
	return out
}

// mergeLoPreferLeft merges two lower-bound rows, keeping a's value for
// any key present in both.
func mergeLoPreferLeft[I comparable, V cmp.Ordered](a, b InteractionLo[I, V]) InteractionLo[I, V] {
	out := make(InteractionLo[I, V], len(a)+len(b))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range a {
		out[k] = v
	}
	return out
}
