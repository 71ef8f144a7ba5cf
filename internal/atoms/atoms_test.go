package atoms

import (
	"testing"

	"github.com/latus-lang/latus/internal/infer"
)

func TestUnifyEQMatchingKinds(t *testing.T) {
	got, err := Unifier{}.UnifyEQ(Value{Kind: Int}, Value{Kind: Int})
	if err != nil {
		t.Fatalf("UnifyEQ: %v", err)
	}
	if got.Kind != Int {
		t.Errorf("got %s, want Int", got.Kind)
	}
}

func TestUnifyEQMismatchedKinds(t *testing.T) {
	if _, err := (Unifier{}).UnifyEQ(Value{Kind: Int}, Value{Kind: Bool}); err == nil {
		t.Fatal("expected an error unifying Int with Bool")
	}
}

func TestUnifyAsymDegeneratesToEQ(t *testing.T) {
	tests := []struct {
		name string
		dir  infer.RelationKind
	}{
		{"LTE", infer.LTE},
		{"GTE", infer.GTE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (Unifier{}).UnifyAsym(tt.dir, Value{Kind: String}, Value{Kind: String})
			if err != nil {
				t.Fatalf("UnifyAsym: %v", err)
			}
			if got.Kind != String {
				t.Errorf("got %s, want String", got.Kind)
			}
		})
	}
}

func TestUnifyLTEReturnsSameValueBothSides(t *testing.T) {
	lower, upper, err := (Unifier{}).UnifyLTE(Value{Kind: Bool}, Value{Kind: Bool})
	if err != nil {
		t.Fatalf("UnifyLTE: %v", err)
	}
	if lower.Kind != Bool || upper.Kind != Bool {
		t.Errorf("lower=%s upper=%s, want both Bool", lower.Kind, upper.Kind)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{Int, "Int"},
		{Bool, "Bool"},
		{String, "String"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("%d.String() = %s, want %s", tt.k, got, tt.want)
		}
	}
}
