package infer

import (
	"cmp"
	"fmt"

	"github.com/latus-lang/latus/internal/cset"
)

// unifyEQ computes a common bound for x and y, recursing structurally
// through matching shapes. A nil operand is the identity (unknown
// combined with anything yields that thing unchanged). Mismatched
// concrete shapes fail.
func unifyEQ[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], x, y Type[A, I, V]) (Type[A, I, V], error) {
	if x == nil {
		return y, nil
	}
	if y == nil {
		return x, nil
	}

	switch xv := x.(type) {
	case Atom[A, I, V]:
		yv, ok := y.(Atom[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify atom with %T", y)
		}
		merged, err := atoms.UnifyEQ(xv.Value, yv.Value)
		if err != nil {
			return nil, err
		}
		return Atom[A, I, V]{Value: merged}, nil

	case Never[A, I, V]:
		if _, ok := y.(Never[A, I, V]); !ok {
			return nil, fmt.Errorf("cannot unify Never with %T", y)
		}
		return Never[A, I, V]{}, nil

	case App[A, I, V]:
		yv, ok := y.(App[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify App with %T", y)
		}
		head, err := unifyEQ(atoms, xv.Head, yv.Head)
		if err != nil {
			return nil, err
		}
		param, err := unifyEQ(atoms, xv.Param, yv.Param)
		if err != nil {
			return nil, err
		}
		return App[A, I, V]{Head: head, Param: param}, nil

	case Tuple[A, I, V]:
		yv, ok := y.(Tuple[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify Tuple with %T", y)
		}
		fst, err := unifyEQ(atoms, xv.Fst, yv.Fst)
		if err != nil {
			return nil, err
		}
		snd, err := unifyEQ(atoms, xv.Snd, yv.Snd)
		if err != nil {
			return nil, err
		}
		return Tuple[A, I, V]{Bounds: andBounds(xv.Bounds, yv.Bounds), Fst: fst, Snd: snd}, nil

	case Func[A, I, V]:
		yv, ok := y.(Func[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify Func with %T", y)
		}
		arg, err := unifyEQ(atoms, xv.Arg, yv.Arg)
		if err != nil {
			return nil, err
		}
		inter, err := unifyEQ(atoms, xv.Inter, yv.Inter)
		if err != nil {
			return nil, err
		}
		ret, err := unifyEQ(atoms, xv.Ret, yv.Ret)
		if err != nil {
			return nil, err
		}
		return Func[A, I, V]{Bounds: andBounds(xv.Bounds, yv.Bounds), Arg: arg, Inter: inter, Ret: ret}, nil

	case Interaction[A, I, V]:
		yv, ok := y.(Interaction[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify Interaction with %T", y)
		}
		lo, err := mergeInteractionLo(xv.Lo, yv.Lo)
		if err != nil {
			return nil, err
		}
		return Interaction[A, I, V]{Lo: lo, Hi: cset.Intersection(xv.Hi, yv.Hi)}, nil

	default:
		return nil, fmt.Errorf("unify: unhandled type shape %T", x)
	}
}

func andBounds(a, b SpecialBounds) SpecialBounds {
	return SpecialBounds{
		CanBeNever: a.CanBeNever && b.CanBeNever,
		CanBeTop:   a.CanBeTop && b.CanBeTop,
	}
}

// mergeInteractionLo combines two lower-bound rows describing the same
// variable: both pieces of evidence accumulate, and a shared key's
// parameter lists must agree in length (they are assumed to denote the
// same positions; this engine carries no facility to unify Vars
// themselves at the type-algebra level).
func mergeInteractionLo[I comparable, V cmp.Ordered](a, b InteractionLo[I, V]) (InteractionLo[I, V], error) {
	out := a.Clone()
	for k, bp := range b {
		ap, ok := out[k]
		if !ok {
			out[k] = bp
			continue
		}
		if len(ap) != len(bp) {
			return nil, fmt.Errorf("interaction %v: conflicting parameter arity %d vs %d", k, len(ap), len(bp))
		}
	}
	return out, nil
}

// unifyAsym refines one side of dir(x, y) given the other, for the
// relation "lower <= upper" used by Relation constraints. Interaction
// rows carry genuine row (Lo/Hi) variance; every other compound shape
// has no variance of its own and just refines its children the same
// way. The Atom leaf defers to AtomUnifier.UnifyAsym, so a domain with
// real subtyping (e.g. Int <: Num) is actually consulted instead of
// being silently collapsed to equality.
//
// dir == LTE: x is the lower bound, y is the upper bound, the new
// upper bound is returned. dir == GTE: x is the upper bound, y is the
// lower bound, the new lower bound is returned.
func unifyAsym[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], dir RelationKind, x, y Type[A, I, V]) (Type[A, I, V], error) {
	if dir == LTE {
		return refineUpper(atoms, x, y)
	}
	return refineLower(atoms, x, y)
}

// refineUpper computes the new upper bound given a fixed lower bound,
// recursing structurally through matching shapes the same way unifyEQ
// does. For Interaction rows, the upper's Lo absorbs anything the
// lower already demands (Lo grows toward the more general side); the
// upper's Hi is untouched, since a smaller lower bound never widens
// what the upper permits.
func refineUpper[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], lower, upper Type[A, I, V]) (Type[A, I, V], error) {
	if lower == nil {
		return upper, nil
	}
	if upper == nil {
		return lower, nil
	}

	switch lv := lower.(type) {
	case Atom[A, I, V]:
		uv, ok := upper.(Atom[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify atom with %T", upper)
		}
		merged, err := atoms.UnifyAsym(LTE, lv.Value, uv.Value)
		if err != nil {
			return nil, err
		}
		return Atom[A, I, V]{Value: merged}, nil

	case Never[A, I, V]:
		if _, ok := upper.(Never[A, I, V]); !ok {
			return nil, fmt.Errorf("cannot unify Never with %T", upper)
		}
		return Never[A, I, V]{}, nil

	case App[A, I, V]:
		uv, ok := upper.(App[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify App with %T", upper)
		}
		head, err := refineUpper(atoms, lv.Head, uv.Head)
		if err != nil {
			return nil, err
		}
		param, err := refineUpper(atoms, lv.Param, uv.Param)
		if err != nil {
			return nil, err
		}
		return App[A, I, V]{Head: head, Param: param}, nil

	case Tuple[A, I, V]:
		uv, ok := upper.(Tuple[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify Tuple with %T", upper)
		}
		fst, err := refineUpper(atoms, lv.Fst, uv.Fst)
		if err != nil {
			return nil, err
		}
		snd, err := refineUpper(atoms, lv.Snd, uv.Snd)
		if err != nil {
			return nil, err
		}
		return Tuple[A, I, V]{Bounds: andBounds(lv.Bounds, uv.Bounds), Fst: fst, Snd: snd}, nil

	case Func[A, I, V]:
		uv, ok := upper.(Func[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify Func with %T", upper)
		}
		arg, err := refineUpper(atoms, lv.Arg, uv.Arg)
		if err != nil {
			return nil, err
		}
		inter, err := refineUpper(atoms, lv.Inter, uv.Inter)
		if err != nil {
			return nil, err
		}
		ret, err := refineUpper(atoms, lv.Ret, uv.Ret)
		if err != nil {
			return nil, err
		}
		return Func[A, I, V]{Bounds: andBounds(lv.Bounds, uv.Bounds), Arg: arg, Inter: inter, Ret: ret}, nil

	case Interaction[A, I, V]:
		uv, ok := upper.(Interaction[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify Interaction with %T", upper)
		}
		return Interaction[A, I, V]{Lo: mergeLoPreferLeft(uv.Lo, lv.Lo), Hi: uv.Hi}, nil

	default:
		return nil, fmt.Errorf("unify: unhandled type shape %T", lower)
	}
}

// refineLower computes the new lower bound given a fixed upper bound,
// recursing structurally through matching shapes the same way unifyEQ
// does. For Interaction rows, the lower's Hi is capped by the upper's
// Hi (a smaller lower bound may permit no more than its upper bound
// does); its Lo is untouched, since a bigger upper bound never forces
// the lower to demand more.
func refineLower[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], upper, lower Type[A, I, V]) (Type[A, I, V], error) {
	if upper == nil {
		return lower, nil
	}
	if lower == nil {
		return upper, nil
	}

	switch uv := upper.(type) {
	case Atom[A, I, V]:
		lv, ok := lower.(Atom[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify atom with %T", lower)
		}
		merged, err := atoms.UnifyAsym(GTE, uv.Value, lv.Value)
		if err != nil {
			return nil, err
		}
		return Atom[A, I, V]{Value: merged}, nil

	case Never[A, I, V]:
		if _, ok := lower.(Never[A, I, V]); !ok {
			return nil, fmt.Errorf("cannot unify Never with %T", lower)
		}
		return Never[A, I, V]{}, nil

	case App[A, I, V]:
		lv, ok := lower.(App[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify App with %T", lower)
		}
		head, err := refineLower(atoms, uv.Head, lv.Head)
		if err != nil {
			return nil, err
		}
		param, err := refineLower(atoms, uv.Param, lv.Param)
		if err != nil {
			return nil, err
		}
		return App[A, I, V]{Head: head, Param: param}, nil

	case Tuple[A, I, V]:
		lv, ok := lower.(Tuple[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify Tuple with %T", lower)
		}
		fst, err := refineLower(atoms, uv.Fst, lv.Fst)
		if err != nil {
			return nil, err
		}
		snd, err := refineLower(atoms, uv.Snd, lv.Snd)
		if err != nil {
			return nil, err
		}
		return Tuple[A, I, V]{Bounds: andBounds(uv.Bounds, lv.Bounds), Fst: fst, Snd: snd}, nil

	case Func[A, I, V]:
		lv, ok := lower.(Func[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify Func with %T", lower)
		}
		arg, err := refineLower(atoms, uv.Arg, lv.Arg)
		if err != nil {
			return nil, err
		}
		inter, err := refineLower(atoms, uv.Inter, lv.Inter)
		if err != nil {
			return nil, err
		}
		ret, err := refineLower(atoms, uv.Ret, lv.Ret)
		if err != nil {
			return nil, err
		}
		return Func[A, I, V]{Bounds: andBounds(uv.Bounds, lv.Bounds), Arg: arg, Inter: inter, Ret: ret}, nil

	case Interaction[A, I, V]:
		lv, ok := lower.(Interaction[A, I, V])
		if !ok {
			return nil, fmt.Errorf("cannot unify Interaction with %T", lower)
		}
		return Interaction[A, I, V]{Lo: lv.Lo, Hi: cset.Intersection(lv.Hi, uv.Hi)}, nil

	default:
		return nil, fmt.Errorf("unify: unhandled type shape %T", upper)
	}
}

// enforceEQ combines two views of what should be the same value: if both
// changed since the last round, unify them; otherwise the side that
// changed wins (the other is stale by definition).
func enforceEQ[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], aVal Type[A, I, V], aChanged bool, bVal Type[A, I, V], bChanged bool) (Type[A, I, V], error) {
	switch {
	case aChanged && bChanged:
		return unifyEQ(atoms, aVal, bVal)
	case aChanged:
		return aVal, nil
	case bChanged:
		return bVal, nil
	default:
		return aVal, nil
	}
}

// unifyLTE returns both refined sides of x <= y, recursing structurally
// through matching shapes. At the Atom leaf it defers to
// AtomUnifier.UnifyLTE so a domain with genuine subtyping can refine
// both bounds jointly, rather than composing two independent UnifyAsym
// calls that a richer domain might answer inconsistently.
func unifyLTE[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], x, y Type[A, I, V]) (Type[A, I, V], Type[A, I, V], error) {
	if x == nil {
		return y, y, nil
	}
	if y == nil {
		return x, x, nil
	}

	switch xv := x.(type) {
	case Atom[A, I, V]:
		yv, ok := y.(Atom[A, I, V])
		if !ok {
			return nil, nil, fmt.Errorf("cannot unify atom with %T", y)
		}
		lo, hi, err := atoms.UnifyLTE(xv.Value, yv.Value)
		if err != nil {
			return nil, nil, err
		}
		return Atom[A, I, V]{Value: lo}, Atom[A, I, V]{Value: hi}, nil

	case Never[A, I, V]:
		if _, ok := y.(Never[A, I, V]); !ok {
			return nil, nil, fmt.Errorf("cannot unify Never with %T", y)
		}
		return Never[A, I, V]{}, Never[A, I, V]{}, nil

	case App[A, I, V]:
		yv, ok := y.(App[A, I, V])
		if !ok {
			return nil, nil, fmt.Errorf("cannot unify App with %T", y)
		}
		headLo, headHi, err := unifyLTE(atoms, xv.Head, yv.Head)
		if err != nil {
			return nil, nil, err
		}
		paramLo, paramHi, err := unifyLTE(atoms, xv.Param, yv.Param)
		if err != nil {
			return nil, nil, err
		}
		return App[A, I, V]{Head: headLo, Param: paramLo}, App[A, I, V]{Head: headHi, Param: paramHi}, nil

	case Tuple[A, I, V]:
		yv, ok := y.(Tuple[A, I, V])
		if !ok {
			return nil, nil, fmt.Errorf("cannot unify Tuple with %T", y)
		}
		fstLo, fstHi, err := unifyLTE(atoms, xv.Fst, yv.Fst)
		if err != nil {
			return nil, nil, err
		}
		sndLo, sndHi, err := unifyLTE(atoms, xv.Snd, yv.Snd)
		if err != nil {
			return nil, nil, err
		}
		bounds := andBounds(xv.Bounds, yv.Bounds)
		return Tuple[A, I, V]{Bounds: bounds, Fst: fstLo, Snd: sndLo}, Tuple[A, I, V]{Bounds: bounds, Fst: fstHi, Snd: sndHi}, nil

	case Func[A, I, V]:
		yv, ok := y.(Func[A, I, V])
		if !ok {
			return nil, nil, fmt.Errorf("cannot unify Func with %T", y)
		}
		argLo, argHi, err := unifyLTE(atoms, xv.Arg, yv.Arg)
		if err != nil {
			return nil, nil, err
		}
		interLo, interHi, err := unifyLTE(atoms, xv.Inter, yv.Inter)
		if err != nil {
			return nil, nil, err
		}
		retLo, retHi, err := unifyLTE(atoms, xv.Ret, yv.Ret)
		if err != nil {
			return nil, nil, err
		}
		bounds := andBounds(xv.Bounds, yv.Bounds)
		return Func[A, I, V]{Bounds: bounds, Arg: argLo, Inter: interLo, Ret: retLo},
			Func[A, I, V]{Bounds: bounds, Arg: argHi, Inter: interHi, Ret: retHi}, nil

	case Interaction[A, I, V]:
		yv, ok := y.(Interaction[A, I, V])
		if !ok {
			return nil, nil, fmt.Errorf("cannot unify Interaction with %T", y)
		}
		newUpper := Interaction[A, I, V]{Lo: mergeLoPreferLeft(yv.Lo, xv.Lo), Hi: yv.Hi}
		newLower := Interaction[A, I, V]{Lo: xv.Lo, Hi: cset.Intersection(xv.Hi, yv.Hi)}
		return newLower, newUpper, nil

	default:
		return nil, nil, fmt.Errorf("unify: unhandled type shape %T", x)
	}
}
