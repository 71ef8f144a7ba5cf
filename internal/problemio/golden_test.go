package problemio

import (
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/latus-lang/latus/internal/atoms"
	"github.com/latus-lang/latus/internal/infer"
)

// golden bundles several named problem fixtures in one txtar archive,
// each file a standalone YAML document, so new cases are added without
// growing the Go source.
const golden = `
-- bound-atom.yaml --
constraints:
  - kind: bound
    var: x
    type: { atom: Bool }
-- chained-relation.yaml --
constraints:
  - kind: bound
    var: a
    type: { atom: String }
  - kind: relation
    left: a
    rel: eq
    right: b
  - kind: relation
    left: b
    rel: eq
    right: c
-- tuple-formulation.yaml --
constraints:
  - kind: formulation
    whole: pair
    form: tuple
    a: fst
    b: snd
  - kind: bound
    var: fst
    type: { atom: Int }
  - kind: bound
    var: snd
    type: { atom: Bool }
`

func TestGoldenFixturesDecodeAndSolve(t *testing.T) {
	archive := txtar.Parse([]byte(golden))
	if len(archive.Files) == 0 {
		t.Fatal("golden archive has no files")
	}
	for _, f := range archive.Files {
		f := f
		t.Run(strings.TrimSuffix(f.Name, ".yaml"), func(t *testing.T) {
			problem, err := Decode(f.Data)
			if err != nil {
				t.Fatalf("Decode(%s): %v", f.Name, err)
			}
			cs, err := problem.ToConstraints()
			if err != nil {
				t.Fatalf("ToConstraints(%s): %v", f.Name, err)
			}
			if len(cs) != len(problem.Constraints) {
				t.Fatalf("ToConstraints(%s) returned %d constraints, want %d", f.Name, len(cs), len(problem.Constraints))
			}
			vars := Vars(cs)
			if len(vars) == 0 {
				t.Fatalf("%s: no variables found in a non-empty constraint list", f.Name)
			}
			if _, err := infer.Solve(infer.Problem[atoms.Value, string, string]{Constraints: cs, Atoms: atoms.Unifier{}}); err != nil {
				t.Fatalf("Solve(%s): %v", f.Name, err)
			}
		})
	}
}

func TestGoldenChainedRelationCollapsesToOneAtom(t *testing.T) {
	archive := txtar.Parse([]byte(golden))
	var data []byte
	for _, f := range archive.Files {
		if f.Name == "chained-relation.yaml" {
			data = f.Data
		}
	}
	if data == nil {
		t.Fatal("chained-relation.yaml missing from golden archive")
	}

	problem, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	cs, err := problem.ToConstraints()
	if err != nil {
		t.Fatalf("ToConstraints: %v", err)
	}

	sigma, err := infer.Solve(infer.Problem[atoms.Value, string, string]{Constraints: cs, Atoms: atoms.Unifier{}})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for _, v := range []string{"a", "b", "c"} {
		if sigma(v) == nil {
			t.Errorf("%s unresolved, want String propagated through the relation chain", v)
		}
	}
}
