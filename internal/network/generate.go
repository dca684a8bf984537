package network

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/talgya/funnelsim/internal/scenario"
)

// topologyStream is the PCG stream selector for graph generation, keeping the
// generator's draws separate from agent spawning and simulation streams that
// share the same base seed.
const topologyStream = 100

// Generate builds a topology from the scenario's network parameters and the
// given seed. Identical inputs produce identical edge sets. The degree bounds
// are checked here as well as in scenario validation because the generator is
// also called directly for previews and tests.
func Generate(cfg scenario.NetworkConfig, seed uint64) (*Topology, error) {
	if cfg.K < 2 {
		return nil, fmt.Errorf("network: degree k=%d below minimum 2: %w", cfg.K, scenario.ErrTopology)
	}
	if cfg.K >= cfg.N {
		return nil, fmt.Errorf("network: degree k=%d must be below node count n=%d: %w", cfg.K, cfg.N, scenario.ErrTopology)
	}

	rng := rand.New(rand.NewPCG(seed, topologyStream))
	b := newBuilder(cfg.N)

	switch cfg.Kind {
	case scenario.NetworkRandom:
		genRandom(b, rng, cfg.N, cfg.K)
	case scenario.NetworkSmallWorld:
		genSmallWorld(b, rng, cfg.N, cfg.K, cfg.Beta)
	case scenario.NetworkScaleFree:
		genScaleFree(b, rng, cfg.N, cfg.K)
	default:
		return nil, fmt.Errorf("network: unknown kind %q: %w", cfg.Kind, scenario.ErrTopology)
	}

	return b.finalize(), nil
}

// genRandom samples G(n, p) with p = k/(n-1), so the expected average degree
// is k. Uses Batagelj–Brandes geometric edge skipping, which draws the same
// distribution as testing every pair independently but runs in O(n+m)
// instead of O(n²).
func genRandom(b *builder, rng *rand.Rand, n, k int) {
	p := float64(k) / float64(n-1)
	if p >= 1 {
		for u := 0; u < n; u++ {
			for v := u + 1; v < n; v++ {
				b.add(u, v)
			}
		}
		return
	}
	if p <= 0 {
		return
	}

	lp := math.Log1p(-p)
	v, w := 1, -1
	for v < n {
		lr := math.Log1p(-rng.Float64())
		w += 1 + int(lr/lp)
		for w >= v && v < n {
			w -= v
			v++
		}
		if v < n {
			b.add(v, w)
		}
	}
}

// genSmallWorld builds a Watts–Strogatz graph: a ring lattice where every
// node connects to its k/2 nearest neighbors on each side, then each lattice
// edge is rewired with probability beta to a uniformly chosen target,
// skipping self loops and duplicates. A node already connected to everyone
// keeps its edge.
func genSmallWorld(b *builder, rng *rand.Rand, n, k int, beta float64) {
	half := k / 2

	for j := 1; j <= half; j++ {
		for u := 0; u < n; u++ {
			b.add(u, (u+j)%n)
		}
	}

	for j := 1; j <= half; j++ {
		for u := 0; u < n; u++ {
			if rng.Float64() >= beta {
				continue
			}
			v := (u + j) % n
			w := rng.IntN(n)
			ok := true
			for w == u || b.has(u, w) {
				if b.degree(u) >= n-1 {
					ok = false
					break
				}
				w = rng.IntN(n)
			}
			if ok {
				b.remove(u, v)
				b.add(u, w)
			}
		}
	}
}

// genScaleFree builds a Barabási–Albert graph with m = k/2 edges per new
// node. Attachment targets are sampled from a pool holding every node once
// per incident edge, which makes the pick probability proportional to
// current degree.
func genScaleFree(b *builder, rng *rand.Rand, n, k int) {
	m := k / 2

	targets := make([]int, m)
	for i := range targets {
		targets[i] = i
	}

	// Pool of attachment endpoints, one entry per edge end.
	repeated := make([]int, 0, 2*m*(n-m))

	for source := m; source < n; source++ {
		for _, t := range targets {
			b.add(source, t)
		}
		repeated = append(repeated, targets...)
		for i := 0; i < m; i++ {
			repeated = append(repeated, source)
		}
		targets = distinctSample(rng, repeated, m)
	}
}

// distinctSample draws m distinct values from the pool. Duplicate entries in
// the pool weight the draw; values are returned in draw order.
func distinctSample(rng *rand.Rand, pool []int, m int) []int {
	out := make([]int, 0, m)
	seen := make(map[int]bool, m)
	for len(out) < m {
		x := pool[rng.IntN(len(pool))]
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
