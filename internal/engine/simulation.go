// Simulation owns the state of one repetition: the shared topology, a fresh
// agent population, and the RNG stream every stochastic decision draws from.
package engine

import (
	"math/rand/v2"

	"github.com/talgya/funnelsim/internal/agents"
	"github.com/talgya/funnelsim/internal/network"
	"github.com/talgya/funnelsim/internal/scenario"
)

// simStream is the PCG stream selector for step dynamics, separating them
// from topology generation and agent spawning under the same base seed.
const simStream = 200

// Simulation holds everything one repetition needs. There is no global
// state: the RNG, topology, and population are owned here and passed down
// explicitly. The topology is shared across repetitions and never mutated;
// the population is private.
type Simulation struct {
	cfg   *scenario.Config
	topo  *network.Topology
	rng   *rand.Rand
	pop   []agents.Agent
	order []int // Activation order, reshuffled every step
	step  int
}

// New creates a repetition over the given topology, spawning a fresh
// population from the seed. The topology's node count dictates the
// population size.
func New(cfg *scenario.Config, topo *network.Topology, seed uint64) *Simulation {
	n := topo.NumNodes()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return &Simulation{
		cfg:   cfg,
		topo:  topo,
		rng:   rand.New(rand.NewPCG(seed, simStream)),
		pop:   agents.NewSpawner(seed, cfg.Influencers).SpawnPopulation(n),
		order: order,
	}
}

// Step advances the simulation by one day. Agents activate in a freshly
// shuffled order; each runs its full per-step algorithm before the next
// starts, so later agents observe earlier agents' same-step updates. The
// shuffle draws from the same stream as the agent dynamics, making
// activation order part of the reproducibility contract.
func (s *Simulation) Step() {
	s.step++
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	for _, id := range s.order {
		s.stepAgent(&s.pop[id])
	}
}

// CurrentStep returns the number of completed steps.
func (s *Simulation) CurrentStep() int { return s.step }

// Population exposes the agent slice for collection and tests. Agent i sits
// at index i.
func (s *Simulation) Population() []agents.Agent { return s.pop }

// CountAtOrAbove returns how many agents have reached the given funnel state.
func (s *Simulation) CountAtOrAbove(state agents.FunnelState) int {
	n := 0
	for i := range s.pop {
		if s.pop[i].State >= state {
			n++
		}
	}
	return n
}
