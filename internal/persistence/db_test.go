package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/funnelsim/internal/engine"
	"github.com/talgya/funnelsim/internal/scenario"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"), dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScenarioRoundTrip(t *testing.T) {
	s := openTestStore(t)

	cfg := scenario.SmallTest()
	id, err := s.SaveScenario(cfg)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetScenario(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip changed config:\n got %+v\nwant %+v", got, cfg)
	}

	rows, err := s.ListScenarios()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != id || rows[0].Name != cfg.Name {
		t.Fatalf("unexpected listing %+v", rows)
	}

	if _, err := s.GetScenario("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)

	scenID, err := s.SaveScenario(scenario.SmallTest())
	if err != nil {
		t.Fatalf("save scenario: %v", err)
	}
	runID, err := s.CreateRun(scenID)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}

	row, err := s.GetRun(runID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if row.Status != StatusQueued || row.StartedAt != nil {
		t.Fatalf("fresh run row %+v", row)
	}

	if err := s.StartRun(runID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.SetRunProgress(runID, 0.5); err != nil {
		t.Fatalf("progress: %v", err)
	}
	row, _ = s.GetRun(runID)
	if row.Status != StatusRunning || row.Progress != 0.5 || row.StartedAt == nil {
		t.Fatalf("running row %+v", row)
	}

	if err := s.FailRun(runID, "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	row, _ = s.GetRun(runID)
	if row.Status != StatusError || row.Message != "boom" || row.CompletedAt == nil {
		t.Fatalf("failed row %+v", row)
	}
}

func runResult(t *testing.T) *engine.Result {
	t.Helper()
	cfg := scenario.SmallTest()
	cfg.Reps = 1
	cfg.Steps = 5
	r := &engine.Runner{Policy: engine.PolicyFirst}
	res, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("simulation run: %v", err)
	}
	return res
}

func TestResultsRoundTripAndCSV(t *testing.T) {
	s := openTestStore(t)
	res := runResult(t)

	scenID, _ := s.SaveScenario(scenario.SmallTest())
	runID, _ := s.CreateRun(scenID)

	path, err := s.WriteResults(runID, res)
	if err != nil {
		t.Fatalf("write results: %v", err)
	}
	if err := s.CompleteRun(runID, path); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := s.LoadResults(runID)
	if err != nil {
		t.Fatalf("load results: %v", err)
	}
	if len(got.Series) != len(res.Series) || got.Policy != res.Policy {
		t.Fatalf("results changed in round trip")
	}

	csvPath, err := s.ExportCSV(runID)
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "step,awareness,interest,knowledge,liking,intent" {
		t.Fatalf("csv header %q", lines[0])
	}
	// 5 steps plus the step-0 snapshot.
	if len(lines) != 7 {
		t.Fatalf("csv has %d lines, want 7", len(lines))
	}
}

func TestLoadResultsBeforeDone(t *testing.T) {
	s := openTestStore(t)

	scenID, _ := s.SaveScenario(scenario.SmallTest())
	runID, _ := s.CreateRun(scenID)

	if _, err := s.LoadResults(runID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("queued run results error = %v, want ErrNotFound", err)
	}
}
