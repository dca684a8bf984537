// Adopter archetypes per Rogers' diffusion curve. Each archetype pins the
// Beta shape parameters its members' traits are drawn from: innovators skew
// open and risk tolerant but resist peer pressure, laggards are the mirror
// image.
package agents

// Archetype is one of the five adopter categories.
type Archetype uint8

const (
	Innovator Archetype = iota
	EarlyAdopter
	EarlyMajority
	LateMajority
	Laggard
)

// NumArchetypes is the number of adopter categories.
const NumArchetypes = 5

// String returns the archetype's wire name.
func (a Archetype) String() string {
	switch a {
	case Innovator:
		return "innovator"
	case EarlyAdopter:
		return "early_adopter"
	case EarlyMajority:
		return "early_majority"
	case LateMajority:
		return "late_majority"
	case Laggard:
		return "laggard"
	default:
		return "unknown"
	}
}

// archetypeCum holds the cumulative population weights {2.5%, 13.5%, 34%,
// 34%, 16%}. A uniform draw below archetypeCum[i] that clears the previous
// threshold lands in archetype i.
var archetypeCum = [NumArchetypes]float64{0.025, 0.16, 0.50, 0.84, 1.0}

// betaShape is one pair of Beta distribution shape parameters.
type betaShape struct {
	alpha, beta float64
}

// traitShapes pins the trait distributions for one archetype.
type traitShapes struct {
	openness        betaShape
	socialInfluence betaShape
	riskTolerance   betaShape
}

// archetypeShapes is the static trait table, indexed by archetype.
var archetypeShapes = [NumArchetypes]traitShapes{
	Innovator: {
		openness:        betaShape{8, 2},
		socialInfluence: betaShape{2, 8},
		riskTolerance:   betaShape{7, 3},
	},
	EarlyAdopter: {
		openness:        betaShape{6, 4},
		socialInfluence: betaShape{3, 7},
		riskTolerance:   betaShape{6, 4},
	},
	EarlyMajority: {
		openness:        betaShape{4, 6},
		socialInfluence: betaShape{6, 4},
		riskTolerance:   betaShape{4, 6},
	},
	LateMajority: {
		openness:        betaShape{3, 7},
		socialInfluence: betaShape{7, 3},
		riskTolerance:   betaShape{3, 7},
	},
	Laggard: {
		openness:        betaShape{2, 8},
		socialInfluence: betaShape{8, 2},
		riskTolerance:   betaShape{2, 8},
	},
}

// mediaAffinityShape is archetype independent: a moderate bell around 0.5.
var mediaAffinityShape = betaShape{3, 3}

// urbanRuralShape skews the population urban.
var urbanRuralShape = betaShape{6, 4}

// InfluencerBoost reports the multiplier applied to the base influencer
// ratio for this archetype. Early archetypes are three times as likely to be
// flagged, the rest half as likely.
func (a Archetype) InfluencerBoost() float64 {
	if a == Innovator || a == EarlyAdopter {
		return 3.0
	}
	return 0.5
}
