package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/benchtrack/core/agg"
	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/internal/workload"
	"github.com/huangsam/benchtrack/schema"
)

// RunOptions controls how a suite is executed.
type RunOptions struct {
	Repetitions int
	Warmup      bool           // Run each workload once, untimed, before its timed block
	Clock       contract.Clock // Defaults to workload.SystemClock
	Progress    io.Writer      // Optional per-repetition timings
}

// RunSuite times every test for the configured number of repetitions, compares the
// result with the last run in the store and appends the new run.
//
// Tests run strictly in sequence. A failing workload aborts the run and nothing is
// written to the store.
func RunSuite(ctx context.Context, tests []contract.Test, opts RunOptions, store contract.HistoryStore) (schema.RunReport, error) {
	if len(tests) == 0 {
		return schema.RunReport{}, errors.New("no tests to run")
	}
	if opts.Repetitions < 1 {
		opts.Repetitions = schema.DefaultRepetitions
	}
	if opts.Clock == nil {
		opts.Clock = workload.SystemClock{}
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}

	started := opts.Clock.Now()
	results, err := collectSamples(ctx, tests, opts)
	if err != nil {
		return schema.RunReport{}, err
	}

	entry, err := buildEntry(started, results)
	if err != nil {
		return schema.RunReport{}, err
	}

	var warnings []string
	base, err := store.Last(ctx)
	if err != nil {
		var corrupt *schema.HistoryCorruptError
		if !errors.As(err, &corrupt) {
			return schema.RunReport{}, fmt.Errorf("failed to load baseline: %w", err)
		}
		contract.LogWarn("ignoring history baseline", err)
		warnings = append(warnings, err.Error())
		base = nil
	}

	order := make([]string, len(tests))
	for i, t := range tests {
		order[i] = t.Name
	}
	report := compareEntries(base, entry, order)
	report.Repetitions = opts.Repetitions
	for _, w := range report.Warnings {
		contract.LogWarn("comparison", errors.New(w))
	}
	report.Warnings = append(warnings, report.Warnings...)

	if err := store.Append(ctx, entry); err != nil {
		return report, fmt.Errorf("failed to append history entry: %w", err)
	}
	return report, nil
}

// collectSamples runs every repetition and groups the timings per test.
func collectSamples(ctx context.Context, tests []contract.Test, opts RunOptions) ([]schema.TestResult, error) {
	results := make([]schema.TestResult, len(tests))
	width := 0
	for i, t := range tests {
		results[i] = schema.NewTestResult(t.Name, opts.Repetitions)
		width = max(width, len(t.Name))
	}

	for rep := 1; rep <= opts.Repetitions; rep++ {
		_, _ = fmt.Fprintf(opts.Progress, "Repetition %d/%d\n", rep, opts.Repetitions)
		for i, t := range tests {
			if opts.Warmup {
				if err := t.Workload.Run(ctx); err != nil {
					return nil, &schema.WorkloadFailure{Test: t.Name, Repetition: rep, Err: err}
				}
			}
			timing, err := timeBlock(ctx, t, opts.Clock)
			if err != nil {
				return nil, &schema.WorkloadFailure{Test: t.Name, Repetition: rep, Err: err}
			}
			results[i].Add(timing)
			_, _ = fmt.Fprintf(opts.Progress, "  %-*s %10.6f (%10.6f)\n", width, t.Name, timing.Total, timing.Real)
		}
	}
	return results, nil
}

// timeBlock invokes the workload t.Times times and measures the whole block.
func timeBlock(ctx context.Context, t contract.Test, clock contract.Clock) (schema.Timing, error) {
	times := max(t.Times, 1)

	startCPU := clock.CPUTime()
	startWall := clock.Now()
	for range times {
		if err := t.Workload.Run(ctx); err != nil {
			return schema.Timing{}, err
		}
	}
	wall := clock.Now().Sub(startWall)
	total := clock.CPUTime() - startCPU

	return schema.Timing{Total: total.Seconds(), Real: wall.Seconds()}, nil
}

// buildEntry turns the raw results into a persisted history entry.
func buildEntry(at time.Time, results []schema.TestResult) (schema.HistoryEntry, error) {
	entry := schema.HistoryEntry{
		Version: schema.HistorySchemaVersion,
		Time:    at,
		Results: make(map[string]map[schema.MetricName]schema.MetricRecord, len(results)),
	}
	for _, tr := range results {
		stats, err := agg.AggregateTest(tr)
		if err != nil {
			return schema.HistoryEntry{}, err
		}
		metrics := make(map[schema.MetricName]schema.MetricRecord, len(stats))
		for metric, st := range stats {
			metrics[metric] = agg.NewRecord(tr.Samples[metric], st)
		}
		entry.Results[tr.Name] = metrics
	}
	return entry, nil
}
