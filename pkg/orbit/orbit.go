// Package orbit implements lazy BFS enumeration of the darts reachable from
// a seed dart under a configurable subset of β-permutations (spec.md
// §4.6.3). Policies define the built-in i-cells; a Custom policy is any
// subset of generators the caller supplies.
package orbit

import (
	"github.com/orneryd/cmap2/pkg/beta"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/pool"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// Generator advances a dart by one step of a composed β-permutation, reading
// through reader (which may be transactional or atomic depending on caller).
type Generator func(read reader, d dart.ID) (dart.ID, error)

type reader func(kind beta.Kind, d dart.ID) (dart.ID, error)

// fromKinds builds a Generator that applies β-permutations in the given
// order (left to right), e.g. fromKinds(Beta2, Beta1) computes β1∘β2.
func fromKinds(kinds ...beta.Kind) Generator {
	return func(read reader, d dart.ID) (dart.ID, error) {
		cur := d
		for _, k := range kinds {
			next, err := read(k, cur)
			if err != nil {
				return dart.Null, err
			}
			cur = next
		}
		return cur, nil
	}
}

// Policy is a named set of generators whose BFS closure defines an i-cell
// (or a custom orbit).
type Policy struct {
	Name string
	Gens []Generator
}

// Built-in i-cell policies (spec.md §4.6.3 table).
var (
	VertexPolicy = Policy{Name: "vertex", Gens: []Generator{
		fromKinds(beta.Beta2, beta.Beta1), // beta1 o beta2
		fromKinds(beta.Beta0, beta.Beta2), // beta2 o beta0
	}}
	EdgePolicy = Policy{Name: "edge", Gens: []Generator{
		fromKinds(beta.Beta2),
	}}
	FacePolicy = Policy{Name: "face", Gens: []Generator{
		fromKinds(beta.Beta1), // beta1
		fromKinds(beta.Beta0), // beta0
	}}
)

// Custom builds a policy over an arbitrary subset of β-kinds, each used as
// its own single-step generator (spec.md "Custom: any subset").
func Custom(name string, kinds ...beta.Kind) Policy {
	gens := make([]Generator, len(kinds))
	for i, k := range kinds {
		gens[i] = fromKinds(k)
	}
	return Policy{Name: name, Gens: gens}
}

func walk(seed dart.ID, policy Policy, read reader) ([]dart.ID, error) {
	if seed == dart.Null {
		return nil, nil
	}
	visited := map[dart.ID]bool{seed: true}
	queue := pool.GetDartSlice()
	defer pool.PutDartSlice(queue)
	queue = append(queue, seed)
	order := []dart.ID{seed}

	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		for _, gen := range policy.Gens {
			next, err := gen(read, d)
			if err != nil {
				return nil, err
			}
			if next == dart.Null || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
			order = append(order, next)
		}
	}
	return order, nil
}

// Collect runs the BFS inside transaction t, registering every β-cell it
// reads in t's read-set. If the map is mutated concurrently such that the
// read-set becomes stale, the call returns txcell.ErrConflict and the
// enclosing AtomicallyWithErr retries the whole computation, so the darts
// ultimately returned are always consistent with a single commit.
func Collect(t *txcell.Transaction, s *beta.Storage, seed dart.ID, policy Policy) ([]dart.ID, error) {
	return walk(seed, policy, func(kind beta.Kind, d dart.ID) (dart.ID, error) {
		return beta.Read(s, t, kind, d)
	})
}

// CollectAtomic runs the BFS using lock-free atomic reads, for read-only
// traversals that don't need transactional consistency across the whole
// walk (spec.md §4.1 "atomic read ... used only for read-only traversals").
func CollectAtomic(s *beta.Storage, seed dart.ID, policy Policy) []dart.ID {
	order, _ := walk(seed, policy, func(kind beta.Kind, d dart.ID) (dart.ID, error) {
		return s.AtomicRead(kind, d), nil
	})
	return order
}

// Min returns the minimum dart id in ids, used to compute canonical i-cell
// identifiers (spec.md §3).
func Min(ids []dart.ID) dart.ID {
	if len(ids) == 0 {
		return dart.Null
	}
	m := ids[0]
	for _, id := range ids[1:] {
		if id < m {
			m = id
		}
	}
	return m
}
