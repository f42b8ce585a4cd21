// Package core has the orchestration logic for benchmark runs and comparisons.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/internal/outwriter"
	"github.com/huangsam/benchtrack/internal/workload"
	"github.com/huangsam/benchtrack/schema"
)

// ExecutorFunc defines the function signature for the commands that need a history store.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error

// ExecuteRun runs the configured tests, records them in the store and prints the report.
// It serves as the main entry point for the 'run' command.
func ExecuteRun(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error {
	report, err := runConfiguredSuite(ctx, cfg, store)
	if err != nil {
		return err
	}
	return outwriter.PrintRunReport(report, cfg)
}

// runConfiguredSuite builds command workloads from the config and runs them.
func runConfiguredSuite(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) (schema.RunReport, error) {
	tests := workload.FromConfig(cfg)
	if len(tests) == 0 {
		return schema.RunReport{}, errors.New("no tests configured; add a 'tests' section to .benchtrack.yml")
	}

	contract.LogInfo("Starting benchmark run (PID: %d)", os.Getpid())
	return RunSuite(ctx, tests, RunOptions{
		Repetitions: cfg.Repetitions,
		Warmup:      cfg.Warmup,
		Clock:       workload.SystemClock{},
		Progress:    os.Stderr,
	}, store)
}

// ExecuteHistoryShow prints the entry at index compared with the entry before it.
// Negative indexes count from the end, so -1 is the most recent run.
func ExecuteHistoryShow(ctx context.Context, cfg *contract.Config, store contract.HistoryStore, index int) error {
	entries, err := store.Load(ctx)
	if err != nil {
		return err
	}
	i, err := resolveIndex(index, len(entries))
	if err != nil {
		return err
	}
	var base *schema.HistoryEntry
	if i > 0 {
		base = &entries[i-1]
	}
	return outwriter.PrintRunReport(CompareEntries(base, entries[i]), cfg)
}

// ExecuteHistoryCompare prints the comparison of two stored runs.
// Negative indexes count from the end.
func ExecuteHistoryCompare(ctx context.Context, cfg *contract.Config, store contract.HistoryStore, baseIdx, targetIdx int) error {
	report, err := CompareHistory(ctx, store, baseIdx, targetIdx)
	if err != nil {
		return err
	}
	return outwriter.PrintRunReport(report, cfg)
}

// CompareHistory loads the store and compares the two entries at the given indexes.
func CompareHistory(ctx context.Context, store contract.HistoryStore, baseIdx, targetIdx int) (schema.RunReport, error) {
	entries, err := store.Load(ctx)
	if err != nil {
		return schema.RunReport{}, err
	}
	b, err := resolveIndex(baseIdx, len(entries))
	if err != nil {
		return schema.RunReport{}, fmt.Errorf("base: %w", err)
	}
	t, err := resolveIndex(targetIdx, len(entries))
	if err != nil {
		return schema.RunReport{}, fmt.Errorf("target: %w", err)
	}
	return CompareEntries(&entries[b], entries[t]), nil
}

// ExecuteHistoryChart writes an HTML page charting the mean of every metric across runs.
func ExecuteHistoryChart(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error {
	entries, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("history is empty; nothing to chart")
	}

	file, err := contract.SelectOutputFile(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}
	if err := outwriter.WriteHistoryChart(file, entries); err != nil {
		return err
	}
	if file != os.Stdout {
		contract.LogInfo("Wrote chart of %d runs to %s", len(entries), cfg.OutputFile)
	}
	return nil
}

// resolveIndex maps a possibly negative index onto [0, n).
func resolveIndex(index, n int) (int, error) {
	if n == 0 {
		return 0, errors.New("history is empty")
	}
	i := index
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %d out of range for %d entries", index, n)
	}
	return i, nil
}
