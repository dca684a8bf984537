package engine

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// repSeries is one repetition's KPI counts, indexed by snapshot then KPI.
// All repetitions of a run have identical dimensions.
type repSeries [][NumKPIs]float64

// SeriesPoint is one (step, kpi, value) observation of the reported series.
type SeriesPoint struct {
	Step  int     `json:"step"`
	KPI   string  `json:"kpi"`
	Value float64 `json:"value"`
}

// KPISummary condenses one KPI's trajectory to its endpoints.
type KPISummary struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Delta float64 `json:"delta"`
}

// Result is what a run hands back: the reduced time series ordered by step
// then KPI, a per-KPI summary, and how the reduction was produced. Values
// are float64 because mean and median reduction yield non-integral counts;
// the first policy produces whole numbers.
type Result struct {
	Series  []SeriesPoint         `json:"series"`
	Summary map[string]KPISummary `json:"summary"`
	Reps    int                   `json:"reps"`
	Policy  string                `json:"policy"`
}

// Policy selects how multiple repetition series reduce to one.
type Policy string

const (
	PolicyFirst  Policy = "first"  // Repetition 0's series verbatim
	PolicyMean   Policy = "mean"   // Per-(step, kpi) mean across repetitions
	PolicyMedian Policy = "median" // Per-(step, kpi) median across repetitions
)

// DefaultPolicy is used when a caller does not choose.
const DefaultPolicy = PolicyMean

// ParsePolicy validates a policy name from config or flags.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyFirst, PolicyMean, PolicyMedian:
		return p, nil
	case "":
		return DefaultPolicy, nil
	}
	return "", fmt.Errorf("unknown aggregation policy %q (want first, mean or median)", s)
}

// reduce collapses completed repetition series into a result. For the first
// policy that is repetition 0 alone; mean and median reduce each (step, kpi)
// cell across every completed repetition.
func reduce(series []repSeries, policy Policy) (*Result, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no completed repetitions to reduce")
	}

	var reduced repSeries
	switch policy {
	case PolicyFirst:
		reduced = series[0]
	case PolicyMean, PolicyMedian:
		reduced = make(repSeries, len(series[0]))
		sample := make([]float64, len(series))
		for step := range reduced {
			for k := 0; k < NumKPIs; k++ {
				for rep, s := range series {
					sample[rep] = s[step][k]
				}
				v, err := reduceSample(sample, policy)
				if err != nil {
					return nil, fmt.Errorf("reduce step %d kpi %s: %w", step, KPI(k), err)
				}
				reduced[step][k] = v
			}
		}
	default:
		return nil, fmt.Errorf("unknown aggregation policy %q", policy)
	}

	res := &Result{
		Series:  make([]SeriesPoint, 0, len(reduced)*NumKPIs),
		Summary: make(map[string]KPISummary, NumKPIs),
		Reps:    len(series),
		Policy:  string(policy),
	}
	for step, row := range reduced {
		for k, v := range row {
			res.Series = append(res.Series, SeriesPoint{Step: step, KPI: KPI(k).String(), Value: v})
		}
	}

	last := len(reduced) - 1
	for k := 0; k < NumKPIs; k++ {
		start, end := reduced[0][k], reduced[last][k]
		res.Summary[KPI(k).String()] = KPISummary{Start: start, End: end, Delta: end - start}
	}
	return res, nil
}

func reduceSample(sample []float64, policy Policy) (float64, error) {
	if policy == PolicyMedian {
		return stats.Median(sample)
	}
	return stats.Mean(sample)
}
