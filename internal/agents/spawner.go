// Agent spawning — draws a fresh population from the archetype trait tables
// and demographic distributions, one agent per topology node.
package agents

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/talgya/funnelsim/internal/scenario"
)

// spawnStream is the PCG stream selector for population draws, keeping them
// independent from topology generation and step dynamics under the same base
// seed.
const spawnStream = 300

// Spawner creates the agent population for one repetition. All of its draws
// come from a single seeded stream, so a seed fully determines the
// population.
type Spawner struct {
	rng *rand.Rand
	src rand.Source
	inf scenario.InfluencerConfig
}

// NewSpawner creates a spawner for the given seed and influencer settings.
func NewSpawner(seed uint64, inf scenario.InfluencerConfig) *Spawner {
	src := rand.NewPCG(seed, spawnStream)
	return &Spawner{
		rng: rand.New(src),
		src: src,
		inf: inf,
	}
}

// SpawnPopulation draws n agents. Agent i carries node id i in the topology.
func (s *Spawner) SpawnPopulation(n int) []Agent {
	pop := make([]Agent, n)
	for i := range pop {
		s.spawnOne(&pop[i], i)
	}
	return pop
}

func (s *Spawner) spawnOne(a *Agent, id int) {
	a.ID = id
	a.Archetype = s.drawArchetype()

	shapes := archetypeShapes[a.Archetype]
	a.Openness = s.beta(shapes.openness)
	a.SocialInfluence = s.beta(shapes.socialInfluence)
	a.RiskTolerance = s.beta(shapes.riskTolerance)
	a.MediaAffinity = s.beta(mediaAffinityShape)

	a.Demographics = Demographics{
		AgeGroup:       s.ageGroup(),
		IncomeLevel:    s.incomeLevel(),
		UrbanRural:     s.beta(urbanRuralShape),
		EducationLevel: s.educationLevel(),
	}

	a.IsInfluencer = s.drawInfluencer(a.Archetype)

	a.InterestLevel = interestLevel(a)
	a.Receptivity = receptivity(a)
	a.Influence = influence(a, s.inf.Multiplier)

	a.State = StateUnaware
	a.LastExposure = NeverExposed
	a.CurrentOpenness = a.Openness
	a.CurrentReceptivity = a.Receptivity
}

// beta draws from a Beta distribution on the spawner's stream.
func (s *Spawner) beta(shape betaShape) float64 {
	return distuv.Beta{Alpha: shape.alpha, Beta: shape.beta, Src: s.src}.Rand()
}

func (s *Spawner) drawArchetype() Archetype {
	r := s.rng.Float64()
	for i, cum := range archetypeCum {
		if r < cum {
			return Archetype(i)
		}
	}
	return Laggard
}

func (s *Spawner) ageGroup() int {
	r := s.rng.Float64()
	switch {
	case r < 0.15:
		return 1
	case r < 0.35:
		return 2
	case r < 0.60:
		return 3
	case r < 0.85:
		return 4
	default:
		return 5
	}
}

func (s *Spawner) incomeLevel() int {
	r := s.rng.Float64()
	switch {
	case r < 0.15:
		return 1
	case r < 0.35:
		return 2
	case r < 0.65:
		return 3
	case r < 0.90:
		return 4
	default:
		return 5
	}
}

func (s *Spawner) educationLevel() int {
	r := s.rng.Float64()
	switch {
	case r < 0.05:
		return 1
	case r < 0.20:
		return 2
	case r < 0.55:
		return 3
	case r < 0.85:
		return 4
	default:
		return 5
	}
}

func (s *Spawner) drawInfluencer(arch Archetype) bool {
	if !s.inf.Enabled || s.inf.Ratio <= 0 {
		return false
	}
	return s.rng.Float64() < s.inf.Ratio*arch.InfluencerBoost()
}

// interestLevel blends openness and risk tolerance with youth and education
// bonuses.
func interestLevel(a *Agent) float64 {
	base := a.Openness*0.6 + a.RiskTolerance*0.4
	ageBonus := float64(6-a.Demographics.AgeGroup) / 5 * 0.2
	eduBonus := float64(a.Demographics.EducationLevel) / 5 * 0.1
	return clamp01(base + ageBonus + eduBonus)
}

// receptivity is dominated by media affinity, with urban agents slightly
// easier to reach.
func receptivity(a *Agent) float64 {
	base := a.MediaAffinity*0.7 + a.Openness*0.3
	return clamp01(base + a.Demographics.UrbanRural*0.1)
}

// influence combines social pull with education and income standing.
// Influencers are amplified by the configured multiplier, which can push the
// value past 1; downstream probabilities scale it back down.
func influence(a *Agent, multiplier float64) float64 {
	base := a.SocialInfluence*0.4 +
		float64(a.Demographics.EducationLevel)/5*0.3 +
		float64(a.Demographics.IncomeLevel)/5*0.3
	if a.IsInfluencer {
		base *= multiplier
	}
	return base
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
