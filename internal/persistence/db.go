// Package persistence provides SQLite-based scenario and run storage.
// Result payloads live as JSON files on disk; the database keeps the
// catalog: which scenarios exist, which runs were started, and where each
// run's results landed.
package persistence

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/funnelsim/internal/engine"
	"github.com/talgya/funnelsim/internal/scenario"
)

// ErrNotFound is returned for unknown scenario and run IDs.
var ErrNotFound = errors.New("not found")

// Run lifecycle states.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

// Store wraps a SQLite connection plus the data directory results files are
// written under.
type Store struct {
	conn    *sqlx.DB
	dataDir string
}

// Open opens or creates the database at path and ensures the results
// directory exists under dataDir.
func Open(path, dataDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, "results"), 0755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn, dataDir: dataDir}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario_id TEXT NOT NULL REFERENCES scenarios(id),
		status TEXT NOT NULL,
		progress REAL NOT NULL DEFAULT 0,
		message TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP,
		completed_at TIMESTAMP,
		results_path TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario_id);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// ScenarioRow is one saved scenario's catalog entry.
type ScenarioRow struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SaveScenario stores a scenario config and returns its generated ID.
func (s *Store) SaveScenario(cfg scenario.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal scenario: %w", err)
	}

	id := uuid.NewString()
	_, err = s.conn.Exec(
		`INSERT INTO scenarios (id, name, config, created_at) VALUES (?, ?, ?, ?)`,
		id, cfg.Name, string(data), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("save scenario: %w", err)
	}
	return id, nil
}

// GetScenario loads a saved scenario config by ID.
func (s *Store) GetScenario(id string) (scenario.Config, error) {
	var raw string
	err := s.conn.Get(&raw, `SELECT config FROM scenarios WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return scenario.Config{}, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return scenario.Config{}, fmt.Errorf("get scenario %s: %w", id, err)
	}
	return scenario.FromJSON([]byte(raw))
}

// ListScenarios returns all saved scenarios, newest first.
func (s *Store) ListScenarios() ([]ScenarioRow, error) {
	rows := []ScenarioRow{}
	err := s.conn.Select(&rows,
		`SELECT id, name, created_at FROM scenarios ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return rows, nil
}

// RunRow is one run's catalog entry.
type RunRow struct {
	ID          string     `db:"id" json:"id"`
	ScenarioID  string     `db:"scenario_id" json:"scenario_id"`
	Status      string     `db:"status" json:"status"`
	Progress    float64    `db:"progress" json:"progress"`
	Message     string     `db:"message" json:"message"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ResultsPath string     `db:"results_path" json:"-"`
}

// CreateRun registers a new queued run for a scenario.
func (s *Store) CreateRun(scenarioID string) (string, error) {
	id := uuid.NewString()
	_, err := s.conn.Exec(
		`INSERT INTO runs (id, scenario_id, status) VALUES (?, ?, ?)`,
		id, scenarioID, StatusQueued,
	)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// GetRun loads a run's catalog entry by ID.
func (s *Store) GetRun(id string) (RunRow, error) {
	var row RunRow
	err := s.conn.Get(&row, `SELECT * FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRow{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return RunRow{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return row, nil
}

// StartRun marks a run as running and stamps its start time.
func (s *Store) StartRun(id string) error {
	_, err := s.conn.Exec(
		`UPDATE runs SET status = ?, started_at = ? WHERE id = ?`,
		StatusRunning, time.Now().UTC(), id,
	)
	return err
}

// SetRunProgress updates a run's advisory progress fraction.
func (s *Store) SetRunProgress(id string, progress float64) error {
	_, err := s.conn.Exec(`UPDATE runs SET progress = ? WHERE id = ?`, progress, id)
	return err
}

// CompleteRun marks a run done and records where its results were written.
func (s *Store) CompleteRun(id, resultsPath string) error {
	_, err := s.conn.Exec(
		`UPDATE runs SET status = ?, progress = 1, completed_at = ?, results_path = ? WHERE id = ?`,
		StatusDone, time.Now().UTC(), resultsPath, id,
	)
	return err
}

// FailRun marks a run failed with a message for the status endpoint.
func (s *Store) FailRun(id, message string) error {
	_, err := s.conn.Exec(
		`UPDATE runs SET status = ?, message = ?, completed_at = ? WHERE id = ?`,
		StatusError, message, time.Now().UTC(), id,
	)
	return err
}

// WriteResults writes a run's result as an indented JSON file under the data
// directory and returns the path.
func (s *Store) WriteResults(runID string, res *engine.Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}

	path := filepath.Join(s.dataDir, "results", runID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}
	return path, nil
}

// LoadResults reads a completed run's result file back.
func (s *Store) LoadResults(runID string) (*engine.Result, error) {
	row, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}
	if row.Status != StatusDone || row.ResultsPath == "" {
		return nil, fmt.Errorf("run %s has no results (status %s): %w", runID, row.Status, ErrNotFound)
	}

	data, err := os.ReadFile(row.ResultsPath)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	var res engine.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse results %s: %w", row.ResultsPath, err)
	}
	return &res, nil
}

// ExportCSV pivots a run's series into a step-by-KPI table, writes it beside
// the JSON results, and returns the path. Column order follows KPI
// declaration order.
func (s *Store) ExportCSV(runID string) (string, error) {
	res, err := s.LoadResults(runID)
	if err != nil {
		return "", err
	}

	header := []string{"step"}
	for k := 0; k < engine.NumKPIs; k++ {
		header = append(header, engine.KPI(k).String())
	}

	// step → kpi name → value. The series arrives ordered, but keying by
	// step keeps the pivot independent of that ordering.
	bySteps := map[int]map[string]float64{}
	maxStep := 0
	for _, pt := range res.Series {
		row, ok := bySteps[pt.Step]
		if !ok {
			row = make(map[string]float64, engine.NumKPIs)
			bySteps[pt.Step] = row
		}
		row[pt.KPI] = pt.Value
		if pt.Step > maxStep {
			maxStep = pt.Step
		}
	}

	path := filepath.Join(s.dataDir, "results", runID+"_timeseries.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for step := 0; step <= maxStep; step++ {
		record := []string{strconv.Itoa(step)}
		for k := 0; k < engine.NumKPIs; k++ {
			record = append(record, strconv.FormatFloat(bySteps[step][engine.KPI(k).String()], 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write csv row %d: %w", step, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}
