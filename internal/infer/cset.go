package infer

import "github.com/latus-lang/latus/internal/cset"

// CSet is the ComplementSet used as an interaction row's upper bound.
type CSet[I comparable] = cset.Set[I]
