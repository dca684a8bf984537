// The per-agent diffusion step: six sub-steps in a fixed order, every agent,
// every day. The ordering is load-bearing — each sub-step's probabilities see
// the trait and state values left behind by the previous one.
package engine

import (
	"github.com/talgya/funnelsim/internal/agents"
	"github.com/talgya/funnelsim/internal/scenario"
)

// Diffusion constants. Exposure and word-of-mouth each run as two chained
// Bernoulli trials: contact first, persuasion second.
const (
	exposureBase       = 0.1   // Scales channel share into a daily contact probability
	habituationRate    = 0.001 // Openness lost per lifetime exposure
	habituationFloor   = 0.5   // Openness never erodes below half its base
	recencyBoostMax    = 0.1   // Receptivity bonus right after an exposure
	recencyWindow      = 5     // Steps an exposure keeps boosting receptivity
	womContactBase     = 0.1   // Scales neighbor influence into a contact probability
	womEffectBase      = 0.05  // Base persuasion probability of a WoM contact
	womInfluencerBoost = 2.0   // Persuasion multiplier when the sender is an influencer
	similarityWeight   = 0.3   // Weight of demographic similarity in WoM contact
	forgettingBase     = 0.01  // Daily regression probability before staleness and decay
	stalenessRate      = 0.1   // Forgetting growth per day spent in the same state
	progressionRate    = 0.02  // Scales interest into spontaneous advancement
)

// stepAgent runs one agent's full daily algorithm.
func (s *Simulation) stepAgent(a *agents.Agent) {
	// 1. Clocks.
	a.DaysInState++
	if a.LastExposure != agents.NeverExposed {
		a.LastExposure++
	}

	// 2. Time-varying traits. Repeated exposure habituates openness down to
	// a floor; a recent exposure temporarily boosts receptivity.
	a.CurrentOpenness = a.Openness * max(habituationFloor, 1-float64(a.ExposureCount)*habituationRate)
	boost := 0.0
	if a.LastExposure != agents.NeverExposed && a.LastExposure < recencyWindow {
		boost = recencyBoostMax * float64(recencyWindow-a.LastExposure) / recencyWindow
	}
	a.CurrentReceptivity = min(1, a.Receptivity+boost)

	// 3. Media exposure, channel by channel in mix order.
	for i, ch := range s.cfg.Media.Channels() {
		p := ch.Share * exposureBase * channelModifier(scenario.ChannelKind(i), a)
		if s.rng.Float64() >= p {
			continue
		}
		a.ExposureCount++
		a.LastExposure = 0
		if s.rng.Float64() < ch.Alpha*a.CurrentReceptivity*a.CurrentOpenness {
			a.AdvanceState()
		}
	}

	// 4. Word of mouth from neighbors far enough down the funnel to talk.
	for _, nb := range s.topo.Neighbors(a.ID) {
		sender := &s.pop[nb]
		if sender.State < agents.StateLiking {
			continue
		}
		bonus := similarityWeight * (0.4*a.AgeSimilarity(sender) +
			0.3*a.IncomeSimilarity(sender) +
			0.3*a.UrbanSimilarity(sender))
		p := s.cfg.WoM.PGenerate * sender.Influence * womContactBase * (1 + bonus)
		if s.rng.Float64() >= p {
			continue
		}
		a.WoMReceived++
		effect := womEffectBase * a.CurrentReceptivity * a.SocialInfluence
		if sender.IsInfluencer {
			effect *= womInfluencerBoost
		}
		if s.rng.Float64() < effect {
			a.AdvanceState()
		}
	}

	// 5. Forgetting. The draw happens every step regardless of state; the
	// longer an agent has sat still, the likelier it slips back a level.
	pForget := forgettingBase * (1 + float64(a.DaysInState)*stalenessRate) * s.cfg.WoM.Decay
	if s.rng.Float64() < pForget && a.State > agents.StateUnaware {
		a.RegressState()
	}

	// 6. Natural progression out of the early funnel stages.
	if a.State == agents.StateAware || a.State == agents.StateInterested {
		if s.rng.Float64() < a.InterestLevel*progressionRate {
			a.AdvanceState()
		}
	}
}

// channelModifier returns the demographic reach multiplier for a channel.
// Social favors young, urban, educated agents; video reaches broadly with a
// mild age and income skew; search skews toward education and income.
func channelModifier(ch scenario.ChannelKind, a *agents.Agent) float64 {
	ageF := float64(6-a.Demographics.AgeGroup) / 5
	eduF := float64(a.Demographics.EducationLevel) / 5
	incF := float64(a.Demographics.IncomeLevel) / 5

	switch ch {
	case scenario.ChannelSNS:
		return 0.5 + (ageF+a.Demographics.UrbanRural+eduF)*0.3
	case scenario.ChannelVideo:
		return 0.7 + ageF*0.3 + incF*0.2
	case scenario.ChannelSearch:
		return 0.6 + eduF*0.4 + incF*0.3
	default:
		return 1.0
	}
}
