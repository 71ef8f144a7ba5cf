package infer_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"github.com/latus-lang/latus/internal/atoms"
	"github.com/latus-lang/latus/internal/infer"
)

type V = string
type I = string
type A = atoms.Value
type T = infer.Type[A, I, V]

func solve(cs []infer.Constraint[A, I, V]) (infer.Solution[A, I, V], error) {
	return infer.Solve(infer.Problem[A, I, V]{Constraints: cs, Atoms: atoms.Unifier{}})
}

func atom(k atoms.Kind) T {
	return infer.Atom[A, I, V]{Value: atoms.Value{Kind: k}}
}

func TestBoundAppResolves(t *testing.T) {
	cs := []infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", infer.App[A, I, V]{Head: atom(atoms.Int), Param: atom(atoms.Bool)}),
	}
	sigma, err := solve(cs)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	got, ok := sigma("x").(infer.App[A, I, V])
	if !ok {
		t.Fatalf("x bound to %#v, want App", sigma("x"))
	}
	if got.Head != atom(atoms.Int) || got.Param != atom(atoms.Bool) {
		t.Errorf("x = App(%v, %v), want App(Int, Bool)", got.Head, got.Param)
	}
}

func TestEqualityRelationPropagates(t *testing.T) {
	cs := []infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", atom(atoms.Int)),
		infer.RelationConstraint[A, I, V]("x", infer.Equality, "y"),
	}
	sigma, err := solve(cs)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sigma("x") != atom(atoms.Int) || sigma("y") != atom(atoms.Int) {
		t.Errorf("x=%v y=%v, want both Int", sigma("x"), sigma("y"))
	}
}

func TestFormulationTupleJoins(t *testing.T) {
	cs := []infer.Constraint[A, I, V]{
		infer.FormulationConstraint[A, I, V]("w", infer.TupleOf, "a", "b"),
		infer.BoundConstraint[A, I, V]("a", atom(atoms.Int)),
		infer.BoundConstraint[A, I, V]("b", atom(atoms.Bool)),
	}
	sigma, err := solve(cs)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	got, ok := sigma("w").(infer.Tuple[A, I, V])
	if !ok {
		t.Fatalf("w bound to %#v, want Tuple", sigma("w"))
	}
	if got.Fst != atom(atoms.Int) || got.Snd != atom(atoms.Bool) {
		t.Errorf("w = Tuple(%v, %v), want (Int, Bool)", got.Fst, got.Snd)
	}
	if !got.Bounds.CanBeNever || !got.Bounds.CanBeTop {
		t.Errorf("w bounds = %+v, want neutral", got.Bounds)
	}
}

func TestFuncDecomposesAndLinksInteraction(t *testing.T) {
	cs := []infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("f", infer.Func[A, I, V]{Bounds: infer.NeutralBounds(), Arg: atom(atoms.Int), Ret: atom(atoms.Bool)}),
		infer.FuncConstraint[A, I, V]("f", infer.FuncParts[A, I, V]{Arg: "arg", Inter: "i", Ret: "ret"}),
		infer.InteractionConstraint[A, I, V]("i2", "Read", nil),
		infer.RelationConstraint[A, I, V]("i", infer.Equality, "i2"),
	}
	sigma, err := solve(cs)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sigma("arg") != atom(atoms.Int) {
		t.Errorf("arg = %v, want Int", sigma("arg"))
	}
	if sigma("ret") != atom(atoms.Bool) {
		t.Errorf("ret = %v, want Bool", sigma("ret"))
	}
	iRow, ok := sigma("i").(infer.Interaction[A, I, V])
	if !ok {
		t.Fatalf("i bound to %#v, want Interaction", sigma("i"))
	}
	i2Row, ok := sigma("i2").(infer.Interaction[A, I, V])
	if !ok {
		t.Fatalf("i2 bound to %#v, want Interaction", sigma("i2"))
	}
	if _, hasRead := iRow.Lo["Read"]; !hasRead {
		t.Errorf("i.lo = %v, want Read present (linked to i2 via equality)", iRow.Lo)
	}
	if _, hasRead := i2Row.Lo["Read"]; !hasRead {
		t.Errorf("i2.lo = %v, want Read present", i2Row.Lo)
	}
}

func TestInteractionRecordsLowerBound(t *testing.T) {
	cs := []infer.Constraint[A, I, V]{
		infer.InteractionConstraint[A, I, V]("v", "Read", []V{"p"}),
		infer.BoundConstraint[A, I, V]("p", atom(atoms.Int)),
	}
	sigma, err := solve(cs)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	row, ok := sigma("v").(infer.Interaction[A, I, V])
	if !ok {
		t.Fatalf("v bound to %#v, want Interaction", sigma("v"))
	}
	params, ok := row.Lo["Read"]
	if !ok || len(params) != 1 || params[0] != "p" {
		t.Fatalf("v.lo[Read] = %v, want [p]", row.Lo["Read"])
	}
	if sigma("p") != atom(atoms.Int) {
		t.Errorf("p = %v, want Int", sigma("p"))
	}
}

func TestInteractionDifferenceNarrowsRest(t *testing.T) {
	cs := []infer.Constraint[A, I, V]{
		infer.InteractionConstraint[A, I, V]("whole", "Read", nil),
		infer.InteractionConstraint[A, I, V]("whole", "Write", nil),
		infer.InteractionDifferenceConstraint[A, I, V]("whole", []I{"Write"}, "rest"),
	}
	sigma, err := solve(cs)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	rest, ok := sigma("rest").(infer.Interaction[A, I, V])
	if !ok {
		t.Fatalf("rest bound to %#v, want Interaction", sigma("rest"))
	}
	if _, has := rest.Lo["Write"]; has {
		t.Errorf("rest.lo = %v, must not contain Write", rest.Lo)
	}
	if _, has := rest.Lo["Read"]; !has {
		t.Errorf("rest.lo = %v, want Read", rest.Lo)
	}
}

func TestConflictingBoundIsInferenceError(t *testing.T) {
	cs := []infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", infer.App[A, I, V]{Head: atom(atoms.Int), Param: atom(atoms.Bool)}),
		infer.BoundConstraint[A, I, V]("x", infer.Tuple[A, I, V]{Bounds: infer.NeutralBounds(), Fst: atom(atoms.Int), Snd: atom(atoms.Bool)}),
	}
	_, err := solve(cs)
	var infErr *infer.InferenceError[A, I, V]
	if !errors.As(err, &infErr) {
		t.Fatalf("err = %v, want *InferenceError", err)
	}
	if infErr.Constraint.Kind != infer.KindBound || infErr.Constraint.BoundVar != "x" {
		t.Errorf("offending constraint = %# v, want the second Bound(x, ...)", pretty.Formatter(infErr.Constraint))
	}
}

func TestSelfReferentialFormulationIsRecursive(t *testing.T) {
	cs := []infer.Constraint[A, I, V]{
		infer.FormulationConstraint[A, I, V]("x", infer.AppOf, "x", "y"),
	}
	_, err := solve(cs)
	var recErr *infer.RecursiveTypeError
	if !errors.As(err, &recErr) {
		t.Fatalf("err = %v, want *RecursiveTypeError", err)
	}
}

func TestEqualityCollapseAcrossRelations(t *testing.T) {
	// Relation(x, LTE, y) and Relation(y, GTE, x) both assert x <= y,
	// just from the other variable's perspective: they canonicalize to
	// the same pair with the same effective kind and consolidate into a
	// single LTE, not Equality. This sample atom domain has no real
	// subtyping variance, so LTE still resolves y down to x's bound.
	restated := []infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", atom(atoms.Int)),
		infer.RelationConstraint[A, I, V]("x", infer.LTE, "y"),
		infer.RelationConstraint[A, I, V]("y", infer.GTE, "x"),
	}
	sigma, err := solve(restated)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sigma("y") != atom(atoms.Int) {
		t.Errorf("y = %v, want Int (LTE restated in the other order is the same relation, not a conflict)", sigma("y"))
	}

	// Relation(x, LTE, y) and Relation(x, GTE, y), same argument order,
	// are genuinely opposing: LTE says x <= y, GTE says x >= y. Neither
	// restates the other, so they must upgrade to Equality.
	sameOrderOpposing := []infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", atom(atoms.Int)),
		infer.RelationConstraint[A, I, V]("x", infer.LTE, "y"),
		infer.RelationConstraint[A, I, V]("x", infer.GTE, "y"),
	}
	sigma, err = solve(sameOrderOpposing)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sigma("y") != atom(atoms.Int) {
		t.Errorf("y = %v, want Int (LTE and GTE on the same pair genuinely conflict and collapse to Equality)", sigma("y"))
	}

	// Relation(x, LTE, y) and Relation(y, LTE, x) are the same genuine
	// conflict stated with flipped argument order in the second
	// constraint: canonicalizing "y <= x" against the pair (x, y) flips
	// its sense to GTE, which still opposes the first constraint's LTE.
	// This must land on the same map entry as sameOrderOpposing despite
	// the two constraints canonicalizing with different DidFlip.
	oppositeOrderOpposing := []infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", atom(atoms.Int)),
		infer.RelationConstraint[A, I, V]("x", infer.LTE, "y"),
		infer.RelationConstraint[A, I, V]("y", infer.LTE, "x"),
	}
	sigma, err = solve(oppositeOrderOpposing)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sigma("y") != atom(atoms.Int) {
		t.Errorf("y = %v, want Int (opposite-order conflict must still collapse to Equality)", sigma("y"))
	}
}

func TestMonotonicityAddingConstraintPreservesExistingBound(t *testing.T) {
	sigma1, err := solve([]infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", atom(atoms.Int)),
	})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	sigma2, err := solve([]infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", atom(atoms.Int)),
		infer.BoundConstraint[A, I, V]("y", atom(atoms.Bool)),
	})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	if sigma1("x") != sigma2("x") {
		t.Errorf("adding an unrelated satisfiable constraint changed x: %v -> %v", sigma1("x"), sigma2("x"))
	}
}

func TestIdempotentUnderReseed(t *testing.T) {
	cs := []infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", infer.App[A, I, V]{Head: atom(atoms.Int), Param: atom(atoms.Bool)}),
		infer.FormulationConstraint[A, I, V]("w", infer.TupleOf, "a", "b"),
		infer.BoundConstraint[A, I, V]("a", atom(atoms.Int)),
		infer.BoundConstraint[A, I, V]("b", atom(atoms.Bool)),
	}
	vars := []V{"x", "w", "a", "b"}

	sigma1, err := solve(cs)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	reseeded := infer.Reseed[A, I, V](sigma1, vars)
	sigma2, err := solve(reseeded)
	if err != nil {
		t.Fatalf("reseeded solve: %v", err)
	}
	for _, v := range vars {
		if sigma1(v) != sigma2(v) {
			t.Errorf("reseed changed %s: %v -> %v", v, sigma1(v), sigma2(v))
		}
	}
}

func TestDeterministicUnderConstraintOrder(t *testing.T) {
	forward := []infer.Constraint[A, I, V]{
		infer.BoundConstraint[A, I, V]("x", atom(atoms.Int)),
		infer.RelationConstraint[A, I, V]("x", infer.Equality, "y"),
		infer.FormulationConstraint[A, I, V]("w", infer.TupleOf, "x", "y"),
	}
	backward := []infer.Constraint[A, I, V]{
		infer.FormulationConstraint[A, I, V]("w", infer.TupleOf, "x", "y"),
		infer.RelationConstraint[A, I, V]("x", infer.Equality, "y"),
		infer.BoundConstraint[A, I, V]("x", atom(atoms.Int)),
	}

	sigma1, err := solve(forward)
	if err != nil {
		t.Fatalf("solve forward: %v", err)
	}
	sigma2, err := solve(backward)
	if err != nil {
		t.Fatalf("solve backward: %v", err)
	}
	for _, v := range []V{"x", "y", "w"} {
		if sigma1(v) != sigma2(v) {
			t.Errorf("%s differs by constraint order:\n%s", v, strings.Join(pretty.Diff(sigma1(v), sigma2(v)), "\n"))
		}
	}
}
