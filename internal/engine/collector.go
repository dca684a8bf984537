package engine

import (
	"github.com/talgya/funnelsim/internal/agents"
)

// stepCounts holds one step's KPI counts, indexed by KPI.
type stepCounts [NumKPIs]int

// Collector snapshots funnel KPI counts after every step. Snapshot 0 is
// taken before any stepping, so a run of S steps yields S+1 rows.
type Collector struct {
	counts []stepCounts
}

// NewCollector allocates a collector sized for the given step count.
func NewCollector(steps int) *Collector {
	return &Collector{counts: make([]stepCounts, 0, steps+1)}
}

// Snapshot counts agents at or above each KPI's funnel threshold and appends
// one row. A single pass tallies agents at each exact state; counting "at or
// above" is then a suffix sum over the tally.
func (c *Collector) Snapshot(pop []agents.Agent) {
	var byState [agents.NumStates]int
	for i := range pop {
		byState[pop[i].State]++
	}

	var row stepCounts
	atOrAbove := 0
	for st := agents.StateAdopted; st >= agents.StateAware; st-- {
		atOrAbove += byState[st]
		if k, ok := KPIForState(st); ok {
			row[k] = atOrAbove
		}
	}
	c.counts = append(c.counts, row)
}

// Steps returns the number of snapshots taken so far.
func (c *Collector) Steps() int { return len(c.counts) }

// Count returns the recorded value for a KPI at a snapshot index.
func (c *Collector) Count(step int, k KPI) int { return c.counts[step][k] }

// series converts the collected counts into a float series, one row per
// snapshot, for policy reduction across repetitions.
func (c *Collector) series() repSeries {
	out := make(repSeries, len(c.counts))
	for i, row := range c.counts {
		for k, v := range row {
			out[i][k] = float64(v)
		}
	}
	return out
}
