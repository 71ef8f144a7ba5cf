package problemio

import (
	"strings"
	"testing"

	"github.com/latus-lang/latus/internal/atoms"
	"github.com/latus-lang/latus/internal/cset"
	"github.com/latus-lang/latus/internal/infer"
)

func TestDecodeBoundAtom(t *testing.T) {
	doc := `
constraints:
  - kind: bound
    var: x
    type:
      atom: Int
`
	p, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	cs, err := p.ToConstraints()
	if err != nil {
		t.Fatalf("ToConstraints: %v", err)
	}
	if len(cs) != 1 || cs[0].Kind != infer.KindBound || cs[0].BoundVar != "x" {
		t.Fatalf("got %+v, want one Bound(x, ...)", cs)
	}
	got, ok := cs[0].BoundType.(infer.Atom[atoms.Value, string, string])
	if !ok || got.Value.Kind != atoms.Int {
		t.Fatalf("BoundType = %#v, want Atom(Int)", cs[0].BoundType)
	}
}

func TestDecodeAllConstraintKinds(t *testing.T) {
	doc := `
constraints:
  - kind: bound
    var: a
    type: { atom: Int }
  - kind: relation
    left: a
    rel: lte
    right: b
  - kind: formulation
    whole: w
    form: tuple
    a: a
    b: b
  - kind: func
    func: f
    arg: arg
    iter: i
    ret: ret
  - kind: interaction
    var: v
    name: Read
    params: [p]
  - kind: interaction_difference
    whole: v
    inters: [Read]
    rest: rest
`
	p, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	cs, err := p.ToConstraints()
	if err != nil {
		t.Fatalf("ToConstraints: %v", err)
	}
	if len(cs) != 6 {
		t.Fatalf("got %d constraints, want 6", len(cs))
	}
	if cs[1].RelKind != infer.LTE {
		t.Errorf("relation kind = %v, want LTE", cs[1].RelKind)
	}
	if cs[2].FormKind != infer.TupleOf {
		t.Errorf("form kind = %v, want TupleOf", cs[2].FormKind)
	}
	if cs[3].FuncParts.Arg != "arg" || cs[3].FuncParts.Inter != "i" || cs[3].FuncParts.Ret != "ret" {
		t.Errorf("func parts = %+v", cs[3].FuncParts)
	}
	if cs[4].InterName != "Read" || len(cs[4].InterParams) != 1 || cs[4].InterParams[0] != "p" {
		t.Errorf("interaction = %+v", cs[4])
	}
	if len(cs[5].DiffInters) != 1 || cs[5].DiffInters[0] != "Read" || cs[5].DiffRest != "rest" {
		t.Errorf("interaction_difference = %+v", cs[5])
	}
}

func TestDecodeInteractionRowType(t *testing.T) {
	doc := `
constraints:
  - kind: bound
    var: v
    type:
      lo:
        Read: [p]
      hi:
        excluded: true
        members: [Write]
`
	p, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	cs, err := p.ToConstraints()
	if err != nil {
		t.Fatalf("ToConstraints: %v", err)
	}
	row, ok := cs[0].BoundType.(infer.Interaction[atoms.Value, string, string])
	if !ok {
		t.Fatalf("BoundType = %#v, want Interaction", cs[0].BoundType)
	}
	if params, has := row.Lo["Read"]; !has || len(params) != 1 || params[0] != "p" {
		t.Errorf("Lo = %v, want Read -> [p]", row.Lo)
	}
	if !row.Hi.IsExcluded() || !cset.Member("Write", row.Hi) {
		t.Errorf("Hi = %v, want Excluded(Write)", row.Hi)
	}
}

func TestDecodeUnknownKindErrors(t *testing.T) {
	p, err := Decode([]byte("constraints:\n  - kind: nonsense\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := p.ToConstraints(); err == nil {
		t.Fatal("expected an error for an unknown constraint kind")
	}
}

func TestVarsCollectsEveryReference(t *testing.T) {
	cs := []infer.Constraint[atoms.Value, string, string]{
		infer.BoundConstraint[atoms.Value, string, string]("a", nil),
		infer.RelationConstraint[atoms.Value, string, string]("a", infer.Equality, "b"),
		infer.FormulationConstraint[atoms.Value, string, string]("w", infer.TupleOf, "a", "b"),
		infer.FuncConstraint[atoms.Value, string, string]("f", infer.FuncParts[atoms.Value, string, string]{Arg: "arg", Inter: "i", Ret: "ret"}),
		infer.InteractionConstraint[atoms.Value, string, string]("v", "Read", []string{"p"}),
		infer.InteractionDifferenceConstraint[atoms.Value, string, string]("v", []string{"Read"}, "rest"),
	}
	got := Vars(cs)
	want := []string{"a", "b", "w", "f", "arg", "i", "ret", "v", "p", "rest"}
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Vars(%v) missing %q", cs, w)
		}
	}
}

func TestEncodeSolutionRendersEachVar(t *testing.T) {
	sigma := func(v string) infer.Type[atoms.Value, string, string] {
		if v == "x" {
			return infer.Atom[atoms.Value, string, string]{Value: atoms.Value{Kind: atoms.Int}}
		}
		return nil
	}
	out, err := EncodeSolution([]string{"x", "y"}, sigma)
	if err != nil {
		t.Fatalf("EncodeSolution: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "x:") || !strings.Contains(text, "y:") {
		t.Errorf("solution YAML %q missing an entry for x or y", text)
	}
}
