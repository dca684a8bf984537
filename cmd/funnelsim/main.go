// Command funnelsim runs marketing-funnel diffusion simulations. With
// -scenario it runs one scenario file to completion and prints a report;
// without it, it serves the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/funnelsim/internal/api"
	"github.com/talgya/funnelsim/internal/engine"
	"github.com/talgya/funnelsim/internal/persistence"
	"github.com/talgya/funnelsim/internal/scenario"
)

type options struct {
	addr         string
	dbPath       string
	dataDir      string
	logLevel     string
	workers      int
	policy       string
	scenarioPath string
	save         bool
}

func parseFlags(args []string) (options, error) {
	opts := options{}
	fs := flag.NewFlagSet("funnelsim", flag.ContinueOnError)
	fs.StringVar(&opts.addr, "addr", envOrDefault("FUNNELSIM_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&opts.dbPath, "db", envOrDefault("FUNNELSIM_DB", "data/funnelsim.db"), "SQLite database path")
	fs.StringVar(&opts.dataDir, "data-dir", envOrDefault("FUNNELSIM_DATA_DIR", "data"), "directory for result files")
	fs.StringVar(&opts.logLevel, "log-level", envOrDefault("FUNNELSIM_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	fs.IntVar(&opts.workers, "workers", envIntOrDefault("FUNNELSIM_WORKERS", 0), "concurrent repetitions (0 = GOMAXPROCS)")
	fs.StringVar(&opts.policy, "policy", envOrDefault("FUNNELSIM_POLICY", "mean"), "repetition aggregation policy (first, mean, median)")
	fs.StringVar(&opts.scenarioPath, "scenario", "", "scenario file to run once (yaml or json); empty = serve API")
	fs.BoolVar(&opts.save, "save", false, "persist the one-shot run to the database")
	err := fs.Parse(args)
	return opts, err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(opts.logLevel),
	}))
	slog.SetDefault(logger)

	policy, err := engine.ParsePolicy(opts.policy)
	if err != nil {
		slog.Error("invalid policy flag", "error", err)
		os.Exit(2)
	}

	if opts.scenarioPath != "" {
		if err := runOnce(opts, policy); err != nil {
			slog.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(opts, policy); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// runOnce loads one scenario file, simulates it to completion, and prints a
// funnel report.
func runOnce(opts options, policy engine.Policy) error {
	cfg, err := scenario.LoadFile(opts.scenarioPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.Info("scenario loaded",
		"name", cfg.Name,
		"network", string(cfg.Network.Kind),
		"agents", humanize.Comma(int64(cfg.Network.N)),
		"steps", cfg.Steps,
		"reps", cfg.Reps,
		"seed", cfg.Seed,
	)

	runner := &engine.Runner{Workers: opts.workers, Policy: policy}
	start := time.Now()
	res, err := runner.Run(context.Background(), cfg)
	if res == nil {
		return err
	}
	if err != nil {
		slog.Warn("some repetitions failed", "error", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("\n%s — %s agents, %d steps, %d reps (%s policy), %s\n",
		cfg.Name, humanize.Comma(int64(cfg.Network.N)), cfg.Steps, res.Reps,
		res.Policy, elapsed.Round(time.Millisecond))
	fmt.Printf("%-12s %10s %10s %10s\n", "kpi", "start", "end", "delta")
	for k := 0; k < engine.NumKPIs; k++ {
		name := engine.KPI(k).String()
		sum := res.Summary[name]
		fmt.Printf("%-12s %10.1f %10.1f %+10.1f\n", name, sum.Start, sum.End, sum.Delta)
	}

	if !opts.save {
		return nil
	}

	store, err := persistence.Open(opts.dbPath, opts.dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	scenID, err := store.SaveScenario(cfg)
	if err != nil {
		return err
	}
	runID, err := store.CreateRun(scenID)
	if err != nil {
		return err
	}
	path, err := store.WriteResults(runID, res)
	if err != nil {
		return err
	}
	if err := store.CompleteRun(runID, path); err != nil {
		return err
	}
	slog.Info("run persisted", "scenario", scenID, "run", runID, "results", path)
	return nil
}

// serve opens the store and blocks on the HTTP API until interrupted.
func serve(opts options, policy engine.Policy) error {
	if dir := filepath.Dir(opts.dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}

	store, err := persistence.Open(opts.dbPath, opts.dataDir)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("database opened", "path", opts.dbPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &api.Server{
		Store:   store,
		Addr:    opts.addr,
		Workers: opts.workers,
		Policy:  policy,
	}
	err = srv.Start(ctx)
	slog.Info("server stopped")
	return err
}
