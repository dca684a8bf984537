// Package engine runs the diffusion simulation: the per-step state machine
// over a spawned population, KPI collection, and multi-repetition runs with
// statistical reduction.
package engine

import (
	"github.com/talgya/funnelsim/internal/agents"
)

// KPI is a reported funnel metric. Each KPI counts agents at or above its
// funnel-state threshold.
type KPI uint8

const (
	KPIAwareness KPI = iota
	KPIInterest
	KPIKnowledge
	KPILiking
	KPIIntent
)

// NumKPIs is the number of reported KPI categories.
const NumKPIs = 5

// String returns the KPI's wire name.
func (k KPI) String() string {
	switch k {
	case KPIAwareness:
		return "awareness"
	case KPIInterest:
		return "interest"
	case KPIKnowledge:
		return "knowledge"
	case KPILiking:
		return "liking"
	case KPIIntent:
		return "intent"
	default:
		return "unknown"
	}
}

// kpiThreshold maps each KPI to the minimum funnel state it counts.
// Resolved at compile time; the inverse lives in stateKPI.
var kpiThreshold = [NumKPIs]agents.FunnelState{
	KPIAwareness: agents.StateAware,
	KPIInterest:  agents.StateInterested,
	KPIKnowledge: agents.StateKnowledgeable,
	KPILiking:    agents.StateLiking,
	KPIIntent:    agents.StateIntent,
}

// stateKPI is the inverse of kpiThreshold. Unaware and adopted map to no
// KPI of their own (adopted agents count toward every category).
var stateKPI = [agents.NumStates]int8{
	agents.StateUnaware:       -1,
	agents.StateAware:         int8(KPIAwareness),
	agents.StateInterested:    int8(KPIInterest),
	agents.StateKnowledgeable: int8(KPIKnowledge),
	agents.StateLiking:        int8(KPILiking),
	agents.StateIntent:        int8(KPIIntent),
	agents.StateAdopted:       -1,
}

// Threshold returns the funnel state this KPI counts from.
func (k KPI) Threshold() agents.FunnelState {
	return kpiThreshold[k]
}

// KPIForState returns the KPI whose threshold is exactly this state, if any.
func KPIForState(s agents.FunnelState) (KPI, bool) {
	idx := stateKPI[s]
	if idx < 0 {
		return 0, false
	}
	return KPI(idx), true
}
