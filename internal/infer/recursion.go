package infer

import (
	"cmp"

	"github.com/latus-lang/latus/internal/graph"
)

// checkRecursion builds the structural-larger-than graph implied by the
// consolidated constraints and verifies it has a topological order. A
// cycle means the constraint set demands an infinite type.
func checkRecursion[A any, I comparable, V cmp.Ordered](cs []Constraint[A, I, V]) error {
	var edges []graph.Edge[V]
	for _, c := range cs {
		switch c.Kind {
		case KindFormulation:
			edges = append(edges,
				graph.Edge[V]{Src: c.FormWhole, Dst: c.FormA},
				graph.Edge[V]{Src: c.FormWhole, Dst: c.FormB},
			)
		case KindFunc:
			edges = append(edges,
				graph.Edge[V]{Src: c.FuncWhole, Dst: c.FuncParts.Arg},
				graph.Edge[V]{Src: c.FuncWhole, Dst: c.FuncParts.Inter},
				graph.Edge[V]{Src: c.FuncWhole, Dst: c.FuncParts.Ret},
			)
		case KindInteraction:
			for _, p := range c.InterParams {
				edges = append(edges, graph.Edge[V]{Src: c.InterVar, Dst: p})
			}
		case KindInteractionDifference:
			if len(c.DiffInters) > 0 {
				edges = append(edges, graph.Edge[V]{Src: c.DiffWhole, Dst: c.DiffRest})
			}
		}
	}

	if graph.HasCycle(edges) {
		return &RecursiveTypeError{}
	}
	return nil
}
