package engine

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/talgya/funnelsim/internal/scenario"
)

func TestRunReproducible(t *testing.T) {
	cfg := scenario.SmallTest()
	r := &Runner{Policy: PolicyMean, Workers: 2}

	a, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical config and seed must produce identical results")
	}

	wantPoints := (cfg.Steps + 1) * NumKPIs
	if len(a.Series) != wantPoints {
		t.Fatalf("series has %d points, want %d", len(a.Series), wantPoints)
	}
	if a.Reps != cfg.Reps {
		t.Errorf("result reports %d reps, want %d", a.Reps, cfg.Reps)
	}
}

func TestRunRejectsBadMediaMix(t *testing.T) {
	cfg := scenario.SmallTest()
	cfg.Media.SNS.Share = 0.9 // Shares now sum to 1.4

	r := &Runner{}
	if _, err := r.Run(context.Background(), cfg); err == nil {
		t.Fatal("expected media mix validation error")
	}
}

func TestRunPolicies(t *testing.T) {
	cfg := scenario.SmallTest()
	cfg.Reps = 3

	results := map[Policy]*Result{}
	for _, p := range []Policy{PolicyFirst, PolicyMean, PolicyMedian} {
		r := &Runner{Policy: p}
		res, err := r.Run(context.Background(), cfg)
		if err != nil {
			t.Fatalf("policy %s: %v", p, err)
		}
		if res.Policy != string(p) {
			t.Errorf("result policy %q, want %q", res.Policy, p)
		}
		results[p] = res
	}

	// The first policy returns whole counts.
	for _, pt := range results[PolicyFirst].Series {
		if pt.Value != float64(int(pt.Value)) {
			t.Fatalf("first policy produced fractional count %g at step %d", pt.Value, pt.Step)
		}
	}
}

func TestRunProgressAdvisory(t *testing.T) {
	cfg := scenario.SmallTest()

	var fractions []float64
	r := &Runner{
		Workers: 1,
		Progress: func(f float64) {
			fractions = append(fractions, f)
		},
	}
	if _, err := r.Run(context.Background(), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(fractions) < 2 {
		t.Fatalf("expected progress reports, got %v", fractions)
	}
	if fractions[0] != 0.2 {
		t.Errorf("first report %g, want 0.2 after topology build", fractions[0])
	}
	if last := fractions[len(fractions)-1]; last != 1.0 {
		t.Errorf("final report %g, want 1.0", last)
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Fatalf("progress went backwards: %v", fractions)
		}
	}
}

func TestRunTimeoutIsolated(t *testing.T) {
	cfg := scenario.SmallTest()
	cfg.Reps = 2

	// A timeout that cannot fit even one step fails every repetition without
	// hanging the runner.
	r := &Runner{RepTimeout: time.Nanosecond}
	if _, err := r.Run(context.Background(), cfg); err == nil {
		t.Fatal("expected failure when every repetition times out")
	}
}

func TestSummaryMatchesSeries(t *testing.T) {
	cfg := scenario.SmallTest()
	r := &Runner{Policy: PolicyFirst}
	res, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for kpi, sum := range res.Summary {
		var first, last *SeriesPoint
		for i := range res.Series {
			pt := &res.Series[i]
			if pt.KPI != kpi {
				continue
			}
			if first == nil {
				first = pt
			}
			last = pt
		}
		if first == nil {
			t.Fatalf("summary kpi %s missing from series", kpi)
		}
		if sum.Start != first.Value || sum.End != last.Value {
			t.Errorf("%s summary {%g %g} disagrees with series endpoints {%g %g}",
				kpi, sum.Start, sum.End, first.Value, last.Value)
		}
		if sum.Delta != sum.End-sum.Start {
			t.Errorf("%s delta %g != end-start %g", kpi, sum.Delta, sum.End-sum.Start)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"first", PolicyFirst, false},
		{"mean", PolicyMean, false},
		{"median", PolicyMedian, false},
		{"", DefaultPolicy, false},
		{"mode", "", true},
	}
	for _, tc := range cases {
		got, err := ParsePolicy(tc.in)
		if tc.wantErr != (err != nil) {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
