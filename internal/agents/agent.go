// Package agents provides the customer agent model: personality archetypes,
// trait and demographic draws, derived influence scalars, and the funnel
// state each agent carries through a simulation.
package agents

// FunnelState is the ordinal customer-journey stage. Transitions move one
// level at a time, never skipping.
type FunnelState uint8

const (
	StateUnaware FunnelState = iota
	StateAware
	StateInterested
	StateKnowledgeable
	StateLiking
	StateIntent
	StateAdopted
)

// NumStates is the number of funnel states.
const NumStates = 7

// String returns the state's wire name.
func (s FunnelState) String() string {
	switch s {
	case StateUnaware:
		return "unaware"
	case StateAware:
		return "aware"
	case StateInterested:
		return "interested"
	case StateKnowledgeable:
		return "knowledgeable"
	case StateLiking:
		return "liking"
	case StateIntent:
		return "intent"
	case StateAdopted:
		return "adopted"
	default:
		return "unknown"
	}
}

// Demographics are the fixed segment attributes of an agent.
type Demographics struct {
	AgeGroup       int     `json:"age_group"`       // 1=18-24 … 5=55+
	IncomeLevel    int     `json:"income_level"`    // 1=very low … 5=very high
	UrbanRural     float64 `json:"urban_rural"`     // 0=rural … 1=urban
	EducationLevel int     `json:"education_level"` // 1=elementary … 5=graduate
}

// Agent is one customer in the population. Its ID doubles as its node id in
// the network topology. Trait scalars are drawn once at spawn; the runtime
// block mutates every step.
type Agent struct {
	ID        int       `json:"id"`
	Archetype Archetype `json:"archetype"`

	// Personality traits, 0–1
	Openness        float64 `json:"openness"`
	SocialInfluence float64 `json:"social_influence"`
	MediaAffinity   float64 `json:"media_affinity"`
	RiskTolerance   float64 `json:"risk_tolerance"`

	Demographics Demographics `json:"demographics"`

	// Derived scalars
	InterestLevel float64 `json:"interest_level"` // 0–1
	Receptivity   float64 `json:"receptivity"`    // 0–1
	Influence     float64 `json:"influence"`      // Can exceed 1 for influencers
	IsInfluencer  bool    `json:"is_influencer"`

	// Runtime state
	State         FunnelState `json:"state"`
	DaysInState   int         `json:"days_in_state"`
	LastExposure  int         `json:"last_exposure"` // Steps since last media hit, -1 = never
	ExposureCount int         `json:"exposure_count"`
	WoMReceived   int         `json:"wom_received"`

	// Time-varying traits, recomputed each step
	CurrentOpenness    float64 `json:"-"`
	CurrentReceptivity float64 `json:"-"`
}

// NeverExposed marks an agent that has not yet seen any media.
const NeverExposed = -1

// AdvanceState moves the agent one funnel level up, capped at adopted. Any
// state change restarts the days-in-state clock.
func (a *Agent) AdvanceState() {
	if a.State < StateAdopted {
		a.State++
		a.DaysInState = 0
	}
}

// RegressState moves the agent one funnel level down, floored at unaware.
func (a *Agent) RegressState() {
	if a.State > StateUnaware {
		a.State--
		a.DaysInState = 0
	}
}

// AgeSimilarity returns how close two agents' age groups are, 1 = identical.
func (a *Agent) AgeSimilarity(b *Agent) float64 {
	diff := float64(a.Demographics.AgeGroup - b.Demographics.AgeGroup)
	if diff < 0 {
		diff = -diff
	}
	return max(0, 1-diff/4)
}

// IncomeSimilarity returns how close two agents' income levels are.
func (a *Agent) IncomeSimilarity(b *Agent) float64 {
	diff := float64(a.Demographics.IncomeLevel - b.Demographics.IncomeLevel)
	if diff < 0 {
		diff = -diff
	}
	return max(0, 1-diff/4)
}

// UrbanSimilarity returns how close two agents sit on the urban-rural axis.
func (a *Agent) UrbanSimilarity(b *Agent) float64 {
	diff := a.Demographics.UrbanRural - b.Demographics.UrbanRural
	if diff < 0 {
		diff = -diff
	}
	return max(0, 1-diff)
}
