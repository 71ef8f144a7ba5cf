package infer

import (
	"cmp"

	"github.com/latus-lang/latus/internal/cset"
	"github.com/latus-lang/latus/internal/worklist"
)

type query[A any, I comparable, V cmp.Ordered] = worklist.Query[V, Type[A, I, V]]
type update[A any, I comparable, V cmp.Ordered] = worklist.Update[V, Type[A, I, V]]
type enforcer[A any, I comparable, V cmp.Ordered] = worklist.Enforcer[V, Type[A, I, V]]

func changed(status worklist.ChangeStatus) bool {
	return status == worklist.Changed
}

// paramsEqual reports whether two interaction parameter lists name the
// same variables in the same positions.
func paramsEqual[V comparable](a, b []V) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

// relationEnforcer builds the enforcer for one consolidated Relation
// constraint over the canonical pair (lo, hi), where kind names the
// relation "lo kind hi" holds under.
func relationEnforcer[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], pair OrderedPair[V], kind RelationKind) enforcer[A, I, V] {
	return func(q query[A, I, V]) ([]update[A, I, V], error) {
		loVal, loStatus := q.Get(pair.Lo)
		hiVal, hiStatus := q.Get(pair.Hi)
		loChanged, hiChanged := changed(loStatus), changed(hiStatus)
		if !loChanged && !hiChanged {
			return nil, nil
		}

		switch kind {
		case Equality:
			merged, err := enforceEQ(atoms, loVal, loChanged, hiVal, hiChanged)
			if err != nil {
				return nil, err
			}
			return []update[A, I, V]{{Key: pair.Lo, Value: merged}, {Key: pair.Hi, Value: merged}}, nil

		case LTE:
			return asymRelationUpdates(atoms, pair.Lo, loVal, loChanged, pair.Hi, hiVal, hiChanged)

		default: // GTE: lo >= hi, i.e. hi <= lo
			return asymRelationUpdates(atoms, pair.Hi, hiVal, hiChanged, pair.Lo, loVal, loChanged)
		}
	}
}

// asymRelationUpdates implements the LTE case of the Relation enforcer
// with lower named explicitly: if only the lower changed, refine the
// upper; if only the upper changed, refine the lower; if both changed,
// refine both via unifyLTE.
func asymRelationUpdates[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], lowerVar V, lowerVal Type[A, I, V], lowerChanged bool, upperVar V, upperVal Type[A, I, V], upperChanged bool) ([]update[A, I, V], error) {
	switch {
	case lowerChanged && upperChanged:
		newLower, newUpper, err := unifyLTE(atoms, lowerVal, upperVal)
		if err != nil {
			return nil, err
		}
		return []update[A, I, V]{{Key: lowerVar, Value: newLower}, {Key: upperVar, Value: newUpper}}, nil
	case lowerChanged:
		newUpper, err := unifyAsym(atoms, LTE, lowerVal, upperVal)
		if err != nil {
			return nil, err
		}
		return []update[A, I, V]{{Key: upperVar, Value: newUpper}}, nil
	case upperChanged:
		newLower, err := unifyAsym(atoms, GTE, upperVal, lowerVal)
		if err != nil {
			return nil, err
		}
		return []update[A, I, V]{{Key: lowerVar, Value: newLower}}, nil
	default:
		return nil, nil
	}
}

// formulationEnforcer builds the enforcer for a single Formulation
// constraint: whole = form(a, b).
func formulationEnforcer[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], c Constraint[A, I, V]) enforcer[A, I, V] {
	return func(q query[A, I, V]) ([]update[A, I, V], error) {
		wholeVal, wholeStatus := q.Get(c.FormWhole)
		aVal, aStatus := q.Get(c.FormA)
		bVal, bStatus := q.Get(c.FormB)
		wholeChanged, aChanged, bChanged := changed(wholeStatus), changed(aStatus), changed(bStatus)
		if !wholeChanged && !aChanged && !bChanged {
			return nil, nil
		}

		partA, partB, err := splitFormulation(c.FormWhole, c.FormKind, wholeVal)
		if err != nil {
			return nil, err
		}
		newA, err := enforceEQ(atoms, partA, wholeChanged, aVal, aChanged)
		if err != nil {
			return nil, err
		}
		newB, err := enforceEQ(atoms, partB, wholeChanged, bVal, bChanged)
		if err != nil {
			return nil, err
		}

		var updates []update[A, I, V]
		if aChanged || bChanged {
			updates = append(updates, update[A, I, V]{Key: c.FormWhole, Value: joinFormulation(c.FormKind, newA, newB)})
		}
		if wholeChanged {
			updates = append(updates, update[A, I, V]{Key: c.FormA, Value: newA}, update[A, I, V]{Key: c.FormB, Value: newB})
		}
		return updates, nil
	}
}

// funcEnforcer builds the enforcer for a single Func constraint:
// f = Func(_, arg, inter, ret).
func funcEnforcer[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], c Constraint[A, I, V]) enforcer[A, I, V] {
	return func(q query[A, I, V]) ([]update[A, I, V], error) {
		wholeVal, wholeStatus := q.Get(c.FuncWhole)
		argVal, argStatus := q.Get(c.FuncParts.Arg)
		interVal, interStatus := q.Get(c.FuncParts.Inter)
		retVal, retStatus := q.Get(c.FuncParts.Ret)
		wholeChanged := changed(wholeStatus)
		argChanged, interChanged, retChanged := changed(argStatus), changed(interStatus), changed(retStatus)
		if !wholeChanged && !argChanged && !interChanged && !retChanged {
			return nil, nil
		}

		partArg, partInter, partRet, err := funcComponents(c.FuncWhole, wholeVal)
		if err != nil {
			return nil, err
		}
		newArg, err := enforceEQ(atoms, partArg, wholeChanged, argVal, argChanged)
		if err != nil {
			return nil, err
		}
		newInter, err := enforceEQ(atoms, partInter, wholeChanged, interVal, interChanged)
		if err != nil {
			return nil, err
		}
		newRet, err := enforceEQ(atoms, partRet, wholeChanged, retVal, retChanged)
		if err != nil {
			return nil, err
		}

		var updates []update[A, I, V]
		if argChanged || interChanged || retChanged {
			updates = append(updates, update[A, I, V]{
				Key:   c.FuncWhole,
				Value: Func[A, I, V]{Bounds: NeutralBounds(), Arg: newArg, Inter: newInter, Ret: newRet},
			})
		}
		if wholeChanged {
			updates = append(updates,
				update[A, I, V]{Key: c.FuncParts.Arg, Value: newArg},
				update[A, I, V]{Key: c.FuncParts.Inter, Value: newInter},
				update[A, I, V]{Key: c.FuncParts.Ret, Value: newRet},
			)
		}
		return updates, nil
	}
}

// interactionEnforcer builds the enforcer for a single Interaction(v, i,
// params) constraint: the synthetic row {i: params} with an unrestricted
// upper bound must be <= v.
func interactionEnforcer[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], c Constraint[A, I, V]) enforcer[A, I, V] {
	return func(q query[A, I, V]) ([]update[A, I, V], error) {
		vVal, vStatus := q.Get(c.InterVar)

		lo, hi, present, err := interactionComponents(c.InterVar, vVal)
		if err != nil {
			return nil, err
		}
		if !present {
			lo = InteractionLo[I, V]{}
			hi = cset.Excluded[I]()
		}

		if !changed(vStatus) {
			if existing, ok := lo[c.InterName]; ok && paramsEqual(existing, c.InterParams) {
				return nil, nil
			}
			newLo := lo.Clone()
			newLo[c.InterName] = c.InterParams
			return []update[A, I, V]{{Key: c.InterVar, Value: Interaction[A, I, V]{Lo: newLo, Hi: hi}}}, nil
		}

		synthetic := Type[A, I, V](Interaction[A, I, V]{
			Lo: InteractionLo[I, V]{c.InterName: c.InterParams},
			Hi: cset.Excluded[I](),
		})
		current := Type[A, I, V](Interaction[A, I, V]{Lo: lo, Hi: hi})
		_, refined, err := unifyLTE(atoms, synthetic, current)
		if err != nil {
			return nil, err
		}
		refinedRow := refined.(Interaction[A, I, V])

		updates := []update[A, I, V]{{Key: c.InterVar, Value: refinedRow}}
		canonicalParams := refinedRow.Lo[c.InterName]
		for idx, p := range c.InterParams {
			if idx >= len(canonicalParams) {
				break
			}
			canonical := canonicalParams[idx]
			if canonical == p {
				continue
			}
			if bound, status := q.Get(canonical); changed(status) {
				updates = append(updates, update[A, I, V]{Key: p, Value: bound})
			}
		}
		return updates, nil
	}
}

// interactionDifferenceEnforcer builds the enforcer for a single
// InteractionDifference(whole, inters, rest) constraint.
func interactionDifferenceEnforcer[A any, I comparable, V cmp.Ordered](atoms AtomUnifier[A], c Constraint[A, I, V]) enforcer[A, I, V] {
	return func(q query[A, I, V]) ([]update[A, I, V], error) {
		wholeVal, wholeStatus := q.Get(c.DiffWhole)
		restVal, restStatus := q.Get(c.DiffRest)
		wholeChanged, restChanged := changed(wholeStatus), changed(restStatus)
		if !wholeChanged && !restChanged {
			return nil, nil
		}

		wholeLo, wholeHi, wholePresent, err := interactionComponents(c.DiffWhole, wholeVal)
		if err != nil {
			return nil, err
		}
		if !wholePresent {
			wholeLo, wholeHi = InteractionLo[I, V]{}, cset.Excluded[I]()
		}
		restLo, restHi, restPresent, err := interactionComponents(c.DiffRest, restVal)
		if err != nil {
			return nil, err
		}
		if !restPresent {
			restLo, restHi = InteractionLo[I, V]{}, cset.Excluded[I]()
		}

		switch {
		case wholeChanged && !restChanged:
			newLo, newHi := interactionSubtract(c.DiffInters, wholeLo, wholeHi)
			return []update[A, I, V]{{Key: c.DiffRest, Value: Interaction[A, I, V]{Lo: newLo, Hi: newHi}}}, nil

		case restChanged && !wholeChanged:
			if err := checkInteractionDisjoint[A, I, V](c.DiffRest, restLo, restHi, c.DiffInters); err != nil {
				return nil, err
			}
			newWholeLo := mergeLoPreferLeft(wholeLo, restLo)
			newWholeHi := cset.Union(wholeHi, restHi)
			return []update[A, I, V]{{Key: c.DiffWhole, Value: Interaction[A, I, V]{Lo: newWholeLo, Hi: newWholeHi}}}, nil

		default: // both changed
			wholeSubLo, wholeSubHi := interactionSubtract(c.DiffInters, wholeLo, wholeHi)
			wholeSub := Type[A, I, V](Interaction[A, I, V]{Lo: wholeSubLo, Hi: wholeSubHi})
			restT := Type[A, I, V](Interaction[A, I, V]{Lo: restLo, Hi: restHi})
			merged, err := unifyEQ(atoms, wholeSub, restT)
			if err != nil {
				return nil, err
			}
			restPrime := merged.(Interaction[A, I, V])
			if err := checkInteractionDisjoint[A, I, V](c.DiffRest, restPrime.Lo, restPrime.Hi, c.DiffInters); err != nil {
				return nil, err
			}

			newWholeLo := mergeLoPreferLeft(wholeLo, restPrime.Lo)
			newWholeHi := cset.Intersection(wholeHi, cset.Union(cset.Included(c.DiffInters...), restPrime.Hi))

			return []update[A, I, V]{
				{Key: c.DiffRest, Value: restPrime},
				{Key: c.DiffWhole, Value: Interaction[A, I, V]{Lo: newWholeLo, Hi: newWholeHi}},
			}, nil
		}
	}
}

// checkInteractionDisjoint verifies that none of inters appears in a
// rest row's lo, and that none is a positive member of its hi when hi
// is an Included set (an Excluded hi permits almost everything and is
// not itself a positive assertion of membership).
func checkInteractionDisjoint[A any, I comparable, V cmp.Ordered](v V, lo InteractionLo[I, V], hi CSet[I], inters []I) error {
	for _, i := range inters {
		if _, ok := lo[i]; ok {
			return &InteractionCantContainError[A, I, V]{Var: v, Inters: inters, Bound: Interaction[A, I, V]{Lo: lo, Hi: hi}, Offends: i}
		}
	}
	if !hi.IsExcluded() {
		for _, i := range inters {
			if cset.Member(i, hi) {
				return &InteractionCantContainError[A, I, V]{Var: v, Inters: inters, Bound: Interaction[A, I, V]{Lo: lo, Hi: hi}, Offends: i}
			}
		}
	}
	return nil
}
