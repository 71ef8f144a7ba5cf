// Package atoms is a sample leaf-type domain for the inference engine:
// a handful of primitive kinds unified by name, the same way the
// teacher's structural unifier treats a TCon pair with matching names
// as equal without recursing further.
package atoms

import (
	"fmt"

	"github.com/latus-lang/latus/internal/infer"
)

// Kind names one of the primitive atoms this domain supports.
type Kind int

const (
	Int Kind = iota
	Bool
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	case String:
		return "String"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is the atomic type value this domain hands to the engine: a
// bare primitive kind, with no further structure to unify.
type Value struct {
	Kind Kind
}

// Unifier implements infer.AtomUnifier[Value] by requiring exact name
// equality, mirroring how the teacher's TCon arm treats two named
// constants with the same name as already unified.
type Unifier struct{}

func (Unifier) UnifyEQ(a, b Value) (Value, error) {
	if a.Kind != b.Kind {
		return Value{}, fmt.Errorf("cannot unify %s with %s", a.Kind, b.Kind)
	}
	return a, nil
}

// UnifyAsym degenerates to UnifyEQ: primitives carry no internal
// substructure for a direction to refine.
func (u Unifier) UnifyAsym(_ infer.RelationKind, x, y Value) (Value, error) {
	return u.UnifyEQ(x, y)
}

func (u Unifier) UnifyLTE(lower, upper Value) (Value, Value, error) {
	v, err := u.UnifyEQ(lower, upper)
	if err != nil {
		return Value{}, Value{}, err
	}
	return v, v, nil
}
