// Package worklist implements a generic fixed-point propagation driver.
//
// It is the collaborator described by the engine's external interface: a
// worklist of constraint-local enforcers is run to a fixed point over a
// key/value bound map, with conflicting updates to the same key resolved
// by a caller-supplied merge function.
package worklist

// ChangeStatus reports whether a key's bound moved since the enforcer
// that asked last had a chance to see it.
type ChangeStatus int

const (
	Unchanged ChangeStatus = iota
	Changed
)

// Query is the read-only view of the current bound map an Enforcer is
// given on each invocation.
type Query[K comparable, Val any] interface {
	Get(key K) (Val, ChangeStatus)
}

// Update is a single proposed change to a key's bound.
type Update[K comparable, Val any] struct {
	Key   K
	Value Val
}

// Enforcer is a pure function of the current bound map. It returns the
// updates it would like to make, or an error that aborts the whole solve.
type Enforcer[K comparable, Val any] func(q Query[K, Val]) ([]Update[K, Val], error)

// Problem bundles everything the driver needs to run to a fixed point.
type Problem[K comparable, Val any] struct {
	// Initial seeds the bound map and marks its keys Changed for the
	// first round. A key that does not appear here reads as Default
	// until an enforcer updates it.
	Initial []Update[K, Val]

	// Default is returned by Query.Get for a key with no recorded bound.
	Default Val

	// Constraints is the set of enforcers to run to a fixed point.
	Constraints []Enforcer[K, Val]

	// Merge resolves two updates proposed for the same key in the same
	// round (or an update proposed against the key's existing bound).
	Merge func(key K, a, b Val) (Val, error)

	// Equal reports whether two bounds are the same value, used to
	// decide whether a round actually made progress. Without it a
	// round that re-derives an already-known bound would be mistaken
	// for further progress and the driver would never reach a fixed
	// point.
	Equal func(a, b Val) bool
}

type query[K comparable, Val any] struct {
	bounds map[K]Val
	dirty  map[K]bool
	def    Val
}

func (q *query[K, Val]) Get(key K) (Val, ChangeStatus) {
	v, ok := q.bounds[key]
	if !ok {
		v = q.def
	}
	if q.dirty[key] {
		return v, Changed
	}
	return v, Unchanged
}

// Solve runs p's enforcers to a fixed point and returns the resulting
// map from key to bound; a key that was never seeded or updated is
// absent from it. An error from any enforcer or from Merge
// aborts immediately with no partial result.
func Solve[K comparable, Val any](p Problem[K, Val]) (map[K]Val, error) {
	bounds := make(map[K]Val, len(p.Initial))
	dirty := make(map[K]bool, len(p.Initial))
	for _, u := range p.Initial {
		bounds[u.Key] = u.Value
		dirty[u.Key] = true
	}

	for {
		q := &query[K, Val]{bounds: bounds, dirty: dirty, def: p.Default}
		pending := make(map[K]Val)
		progressed := false

		for _, enforcer := range p.Constraints {
			updates, err := enforcer(q)
			if err != nil {
				return nil, err
			}
			for _, u := range updates {
				merged := u.Value
				if existing, ok := pending[u.Key]; ok {
					m, err := p.Merge(u.Key, existing, merged)
					if err != nil {
						return nil, err
					}
					merged = m
				} else if existing, ok := bounds[u.Key]; ok {
					m, err := p.Merge(u.Key, existing, merged)
					if err != nil {
						return nil, err
					}
					merged = m
				}
				pending[u.Key] = merged
			}
		}

		nextDirty := make(map[K]bool)
		for k, v := range pending {
			prev, existed := bounds[k]
			if !existed || !p.Equal(prev, v) {
				progressed = true
				nextDirty[k] = true
			}
			bounds[k] = v
		}

		if !progressed {
			return bounds, nil
		}
		dirty = nextDirty
	}
}
