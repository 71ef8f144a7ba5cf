// Package problemio converts between a YAML problem description and the
// constraint list the infer engine consumes, the same way the teacher
// lineage's YAML builtins convert a parsed document into its own value
// representation (see lib/yaml's decode path): parse to a generic tree,
// then walk it into domain values by hand.
package problemio

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/latus-lang/latus/internal/atoms"
	"github.com/latus-lang/latus/internal/cset"
	"github.com/latus-lang/latus/internal/infer"
)

// Problem is one YAML document: a flat list of constraints over the
// atoms.Value domain, string-named interactions, and string variables.
type Problem struct {
	Constraints []RawConstraint `yaml:"constraints"`
}

// RawConstraint is the YAML shape of one infer.Constraint. Exactly the
// fields relevant to Kind are populated.
type RawConstraint struct {
	Kind string `yaml:"kind"`

	Var  string   `yaml:"var,omitempty"`
	Type *RawType `yaml:"type,omitempty"`

	Left  string `yaml:"left,omitempty"`
	Rel   string `yaml:"rel,omitempty"`
	Right string `yaml:"right,omitempty"`

	Whole string `yaml:"whole,omitempty"`
	Form  string `yaml:"form,omitempty"`
	A     string `yaml:"a,omitempty"`
	B     string `yaml:"b,omitempty"`

	Func string `yaml:"func,omitempty"`
	Arg  string `yaml:"arg,omitempty"`
	Iter string `yaml:"iter,omitempty"`
	Ret  string `yaml:"ret,omitempty"`

	Name   string   `yaml:"name,omitempty"`
	Params []string `yaml:"params,omitempty"`

	Inters []string `yaml:"inters,omitempty"`
	Rest   string   `yaml:"rest,omitempty"`
}

// RawType is the YAML shape of one infer.Type. Exactly one shape field
// is populated.
type RawType struct {
	Atom  string   `yaml:"atom,omitempty"`
	Never bool     `yaml:"never,omitempty"`
	Head  *RawType `yaml:"head,omitempty"`
	Param *RawType `yaml:"param,omitempty"`
	Fst   *RawType `yaml:"fst,omitempty"`
	Snd   *RawType `yaml:"snd,omitempty"`
	Arg   *RawType `yaml:"arg,omitempty"`
	Inter *RawType `yaml:"inter,omitempty"`
	Ret   *RawType `yaml:"ret,omitempty"`

	Lo map[string][]string `yaml:"lo,omitempty"`
	Hi *RawCSet            `yaml:"hi,omitempty"`
}

// RawCSet is the YAML shape of a ComplementSet.
type RawCSet struct {
	Excluded bool     `yaml:"excluded,omitempty"`
	Members  []string `yaml:"members,omitempty"`
}

// Decode parses a YAML problem document.
func Decode(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("problemio: parse error: %w", err)
	}
	return &p, nil
}

// ToConstraints converts the raw document into the engine's constraint
// list.
func (p *Problem) ToConstraints() ([]infer.Constraint[atoms.Value, string, string], error) {
	out := make([]infer.Constraint[atoms.Value, string, string], 0, len(p.Constraints))
	for _, rc := range p.Constraints {
		c, err := rc.toConstraint()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (rc RawConstraint) toConstraint() (infer.Constraint[atoms.Value, string, string], error) {
	var zero infer.Constraint[atoms.Value, string, string]
	switch rc.Kind {
	case "bound":
		t, err := rc.Type.toType()
		if err != nil {
			return zero, err
		}
		return infer.BoundConstraint[atoms.Value, string, string](rc.Var, t), nil

	case "relation":
		rel, err := parseRelation(rc.Rel)
		if err != nil {
			return zero, err
		}
		return infer.RelationConstraint[atoms.Value, string, string](rc.Left, rel, rc.Right), nil

	case "formulation":
		form, err := parseForm(rc.Form)
		if err != nil {
			return zero, err
		}
		return infer.FormulationConstraint[atoms.Value, string, string](rc.Whole, form, rc.A, rc.B), nil

	case "func":
		return infer.FuncConstraint[atoms.Value, string, string](rc.Func, infer.FuncParts[atoms.Value, string, string]{
			Arg: rc.Arg, Inter: rc.Iter, Ret: rc.Ret,
		}), nil

	case "interaction":
		return infer.InteractionConstraint[atoms.Value, string, string](rc.Var, rc.Name, rc.Params), nil

	case "interaction_difference":
		return infer.InteractionDifferenceConstraint[atoms.Value, string, string](rc.Whole, rc.Inters, rc.Rest), nil

	default:
		return zero, fmt.Errorf("problemio: unknown constraint kind %q", rc.Kind)
	}
}

func (rt *RawType) toType() (infer.Type[atoms.Value, string, string], error) {
	if rt == nil {
		return nil, nil
	}
	switch {
	case rt.Never:
		return infer.Never[atoms.Value, string, string]{}, nil
	case rt.Atom != "":
		k, err := parseAtomKind(rt.Atom)
		if err != nil {
			return nil, err
		}
		return infer.Atom[atoms.Value, string, string]{Value: atoms.Value{Kind: k}}, nil
	case rt.Head != nil || rt.Param != nil:
		head, err := rt.Head.toType()
		if err != nil {
			return nil, err
		}
		param, err := rt.Param.toType()
		if err != nil {
			return nil, err
		}
		return infer.App[atoms.Value, string, string]{Head: head, Param: param}, nil
	case rt.Fst != nil || rt.Snd != nil:
		fst, err := rt.Fst.toType()
		if err != nil {
			return nil, err
		}
		snd, err := rt.Snd.toType()
		if err != nil {
			return nil, err
		}
		return infer.Tuple[atoms.Value, string, string]{Bounds: infer.NeutralBounds(), Fst: fst, Snd: snd}, nil
	case rt.Arg != nil || rt.Inter != nil || rt.Ret != nil:
		arg, err := rt.Arg.toType()
		if err != nil {
			return nil, err
		}
		inter, err := rt.Inter.toType()
		if err != nil {
			return nil, err
		}
		ret, err := rt.Ret.toType()
		if err != nil {
			return nil, err
		}
		return infer.Func[atoms.Value, string, string]{Bounds: infer.NeutralBounds(), Arg: arg, Inter: inter, Ret: ret}, nil
	case rt.Lo != nil || rt.Hi != nil:
		lo := make(infer.InteractionLo[string, string], len(rt.Lo))
		for k, v := range rt.Lo {
			lo[k] = v
		}
		hi := cset.Excluded[string]()
		if rt.Hi != nil {
			if rt.Hi.Excluded {
				hi = cset.Excluded(rt.Hi.Members...)
			} else {
				hi = cset.Included(rt.Hi.Members...)
			}
		}
		return infer.Interaction[atoms.Value, string, string]{Lo: lo, Hi: hi}, nil
	default:
		return nil, fmt.Errorf("problemio: empty type node")
	}
}

func parseAtomKind(name string) (atoms.Kind, error) {
	switch name {
	case "Int":
		return atoms.Int, nil
	case "Bool":
		return atoms.Bool, nil
	case "String":
		return atoms.String, nil
	default:
		return 0, fmt.Errorf("problemio: unknown atom %q", name)
	}
}

func parseRelation(name string) (infer.RelationKind, error) {
	switch name {
	case "eq", "equality":
		return infer.Equality, nil
	case "lte":
		return infer.LTE, nil
	case "gte":
		return infer.GTE, nil
	default:
		return 0, fmt.Errorf("problemio: unknown relation %q", name)
	}
}

func parseForm(name string) (infer.FormKind, error) {
	switch name {
	case "app":
		return infer.AppOf, nil
	case "tuple":
		return infer.TupleOf, nil
	default:
		return 0, fmt.Errorf("problemio: unknown form %q", name)
	}
}

// Vars returns every variable name mentioned anywhere in cs, in no
// particular order, for callers that want to report a solution over
// "every variable the problem talks about".
func Vars(cs []infer.Constraint[atoms.Value, string, string]) []string {
	seen := make(map[string]bool)
	add := func(v string) {
		if v != "" {
			seen[v] = true
		}
	}
	for _, c := range cs {
		switch c.Kind {
		case infer.KindBound:
			add(c.BoundVar)
		case infer.KindRelation:
			add(c.RelLeft)
			add(c.RelRight)
		case infer.KindFormulation:
			add(c.FormWhole)
			add(c.FormA)
			add(c.FormB)
		case infer.KindFunc:
			add(c.FuncWhole)
			add(c.FuncParts.Arg)
			add(c.FuncParts.Inter)
			add(c.FuncParts.Ret)
		case infer.KindInteraction:
			add(c.InterVar)
			for _, p := range c.InterParams {
				add(p)
			}
		case infer.KindInteractionDifference:
			add(c.DiffWhole)
			add(c.DiffRest)
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out
}

// EncodeSolution renders a solution over the given variables as YAML,
// one entry per variable, using the diagnostics pretty-printer for the
// type text (never consulted by the engine itself).
func EncodeSolution(vars []string, sigma infer.Solution[atoms.Value, string, string]) ([]byte, error) {
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		out[v] = infer.String[atoms.Value, string, string](sigma(v))
	}
	return yaml.Marshal(out)
}
