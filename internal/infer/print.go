package infer

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
)

// String renders a Type for diagnostics. It is never consulted by the
// engine itself; enforcers and the driver compare and combine Type
// values structurally, never by their printed form.
func String[A any, I comparable, V cmp.Ordered](t Type[A, I, V]) string {
	if t == nil {
		return "?"
	}
	switch v := t.(type) {
	case Atom[A, I, V]:
		return fmt.Sprintf("%v", v.Value)
	case Never[A, I, V]:
		return "Never"
	case App[A, I, V]:
		return fmt.Sprintf("%s %s", String[A, I, V](v.Head), String[A, I, V](v.Param))
	case Tuple[A, I, V]:
		return fmt.Sprintf("(%s, %s)", String[A, I, V](v.Fst), String[A, I, V](v.Snd))
	case Func[A, I, V]:
		return fmt.Sprintf("%s -[%s]-> %s", String[A, I, V](v.Arg), String[A, I, V](v.Inter), String[A, I, V](v.Ret))
	case Interaction[A, I, V]:
		return interactionString(v)
	default:
		return fmt.Sprintf("<%T>", t)
	}
}

func interactionString[A any, I comparable, V cmp.Ordered](in Interaction[A, I, V]) string {
	names := make([]string, 0, len(in.Lo))
	for name := range in.Lo {
		names = append(names, fmt.Sprintf("%v", name))
	}
	sort.Strings(names)

	hi := "*"
	if in.Hi.IsExcluded() {
		members := memberStrings(in.Hi.Members())
		if len(members) > 0 {
			hi = "* \\ {" + strings.Join(members, ", ") + "}"
		}
	} else {
		hi = "{" + strings.Join(memberStrings(in.Hi.Members()), ", ") + "}"
	}
	return fmt.Sprintf("{%s} <= %s", strings.Join(names, ", "), hi)
}

func memberStrings[I comparable](members []I) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, fmt.Sprintf("%v", m))
	}
	sort.Strings(out)
	return out
}
