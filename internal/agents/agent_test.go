package agents

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestDerivedScalars(t *testing.T) {
	a := &Agent{
		Openness:        0.5,
		SocialInfluence: 0.5,
		MediaAffinity:   1.0,
		RiskTolerance:   0.5,
		Demographics: Demographics{
			AgeGroup:       3,
			IncomeLevel:    5,
			UrbanRural:     0.5,
			EducationLevel: 5,
		},
	}

	// 0.6*0.5 + 0.4*0.5 + (6-3)/5*0.2 + 5/5*0.1
	if got := interestLevel(a); !almostEqual(got, 0.72) {
		t.Errorf("interestLevel = %g, want 0.72", got)
	}
	// 0.7*1.0 + 0.3*0.5 + 0.5*0.1, clamped to 1
	if got := receptivity(a); !almostEqual(got, 0.9) {
		t.Errorf("receptivity = %g, want 0.9", got)
	}
	// 0.4*0.5 + 0.3*1 + 0.3*1
	if got := influence(a, 3.0); !almostEqual(got, 0.8) {
		t.Errorf("influence = %g, want 0.8", got)
	}

	a.IsInfluencer = true
	if got := influence(a, 3.0); !almostEqual(got, 2.4) {
		t.Errorf("influencer influence = %g, want 2.4 (not clamped)", got)
	}
}

func TestInterestLevelClamped(t *testing.T) {
	a := &Agent{
		Openness:      1.0,
		RiskTolerance: 1.0,
		Demographics:  Demographics{AgeGroup: 1, EducationLevel: 5},
	}
	if got := interestLevel(a); got != 1.0 {
		t.Errorf("interestLevel = %g, want clamp at 1", got)
	}
}

func TestStateTransitions(t *testing.T) {
	a := &Agent{State: StateUnaware, DaysInState: 9}

	a.RegressState()
	if a.State != StateUnaware || a.DaysInState != 9 {
		t.Errorf("regress below unaware must be a no-op, got %v days=%d", a.State, a.DaysInState)
	}

	a.AdvanceState()
	if a.State != StateAware || a.DaysInState != 0 {
		t.Errorf("advance = %v days=%d, want aware/0", a.State, a.DaysInState)
	}

	a.State = StateAdopted
	a.DaysInState = 4
	a.AdvanceState()
	if a.State != StateAdopted || a.DaysInState != 4 {
		t.Errorf("advance past adopted must be a no-op, got %v days=%d", a.State, a.DaysInState)
	}

	a.RegressState()
	if a.State != StateIntent || a.DaysInState != 0 {
		t.Errorf("regress = %v days=%d, want intent/0", a.State, a.DaysInState)
	}
}

func TestSimilarities(t *testing.T) {
	a := &Agent{Demographics: Demographics{AgeGroup: 1, IncomeLevel: 2, UrbanRural: 0.3}}
	b := &Agent{Demographics: Demographics{AgeGroup: 5, IncomeLevel: 4, UrbanRural: 0.8}}

	if got := a.AgeSimilarity(b); got != 0 {
		t.Errorf("age similarity across the full range = %g, want 0", got)
	}
	if got := a.IncomeSimilarity(b); !almostEqual(got, 0.5) {
		t.Errorf("income similarity = %g, want 0.5", got)
	}
	if got := a.UrbanSimilarity(b); !almostEqual(got, 0.5) {
		t.Errorf("urban similarity = %g, want 0.5", got)
	}

	if got := a.AgeSimilarity(a); got != 1 {
		t.Errorf("self age similarity = %g, want 1", got)
	}
	if a.AgeSimilarity(b) != b.AgeSimilarity(a) {
		t.Error("similarity must be symmetric")
	}
}

func TestFunnelStateStrings(t *testing.T) {
	want := map[FunnelState]string{
		StateUnaware:       "unaware",
		StateAware:         "aware",
		StateInterested:    "interested",
		StateKnowledgeable: "knowledgeable",
		StateLiking:        "liking",
		StateIntent:        "intent",
		StateAdopted:       "adopted",
	}
	for s, name := range want {
		if s.String() != name {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), name)
		}
	}
}
