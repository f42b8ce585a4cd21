// Package main measures how the benchtrack CLI scales with the size of its history.
// It seeds histories of increasing size for every file-based backend, times the
// history commands against them, treating the first successful run as cold and
// averaging the rest as warm, and writes the results to a CSV file.
//
// Prerequisites:
// - benchtrack binary installed and available in PATH
//
// Usage: go run ./benchmark [work-dir]
//
//	work-dir: Directory where seeded histories are written (default: a temp dir)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/huangsam/benchtrack/internal/iocache"
	"github.com/huangsam/benchtrack/schema"
)

// BenchmarkResult holds the result of one command against one seeded history.
type BenchmarkResult struct {
	Backend  string
	Entries  int
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir      string
	Timeout      time.Duration
	Runs         int
	Repetitions  int
	Tests        []string
	HistorySizes []int
	Backends     []schema.DatabaseBackend
	Commands     map[string][]string
}

func main() {
	workDir := ""
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "benchtrack-benchmark-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:      workDir,
		Timeout:      2 * time.Minute,
		Runs:         4,
		Repetitions:  10,
		Tests:        []string{"startup", "literal", "regex", "typing"},
		HistorySizes: []int{10, 100, 1000},
		Backends:     []schema.DatabaseBackend{schema.YAMLBackend, schema.SQLiteBackend},
		Commands: map[string][]string{
			"status":  {"history", "status"},
			"show":    {"history", "show"},
			"compare": {"history", "compare", "0", "9"}, // Every seeded history has at least 10 entries
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the benchtrack binary and the work dir exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("benchtrack"); err != nil {
		return fmt.Errorf("benchtrack binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("work dir %s is not usable: %w", config.WorkDir, err)
	}
	return nil
}

// runBenchmarks seeds every backend and size, then times each command against it
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d backends, %d history sizes, %v timeout, %d runs per command\n",
		len(config.Backends), len(config.HistorySizes), config.Timeout, config.Runs)

	for _, backend := range config.Backends {
		for _, size := range config.HistorySizes {
			location := filepath.Join(config.WorkDir, fmt.Sprintf("history-%d.%s", size, backend))
			fmt.Printf("Seeding %s history with %d entries\n", backend, size)
			if err := seedHistory(config, backend, location, size); err != nil {
				return nil, fmt.Errorf("seed %s (%d entries): %w", backend, size, err)
			}

			for _, name := range []string{"status", "show", "compare"} {
				result := runBenchmarkSuite(config, backend, location, size, name)
				results = append(results, result)
			}
		}
	}

	return results, nil
}

// seedHistory writes size synthetic runs, one hour apart, into a fresh store
func seedHistory(config BenchmarkConfig, backend schema.DatabaseBackend, location string, size int) error {
	ctx := context.Background()
	if err := iocache.ClearHistory(ctx, backend, location); err != nil {
		return err
	}

	store, err := iocache.NewHistoryStore(backend, location)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rng := rand.New(rand.NewPCG(uint64(size), 42))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range size {
		entry := schema.HistoryEntry{
			Version: schema.HistorySchemaVersion,
			Time:    start.Add(time.Duration(i) * time.Hour),
			Results: make(map[string]map[schema.MetricName]schema.MetricRecord, len(config.Tests)),
		}
		for _, test := range config.Tests {
			entry.Results[test] = map[schema.MetricName]schema.MetricRecord{
				schema.TotalMetric: {Samples: noisySamples(rng, config.Repetitions, 0.2)},
				schema.RealMetric:  {Samples: noisySamples(rng, config.Repetitions, 0.25)},
			}
		}
		if err := store.Append(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// noisySamples returns n samples spread up to 10% around mean
func noisySamples(rng *rand.Rand, n int, mean float64) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = mean * (0.95 + rng.Float64()/10)
	}
	return samples
}

// runBenchmarkSuite times one command against a seeded history
func runBenchmarkSuite(config BenchmarkConfig, backend schema.DatabaseBackend, location string, size int, command string) BenchmarkResult {
	fmt.Printf("  Running %s on %s (%d entries)\n", command, backend, size)

	args := append([]string{}, config.Commands[command]...)
	args = append(args, "--history-backend", string(backend), "--history-connect", location)
	cold, warm := runBenchmark(config, args)

	coldTime := "TIMEOUT"
	if cold > 0 {
		coldTime = fmt.Sprintf("%.3fs", cold)
	}
	warmTime := "TIMEOUT"
	if len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		warmTime = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	fmt.Printf("    Cold time: %s, Warm average: %s\n", coldTime, warmTime)

	return BenchmarkResult{
		Backend:  string(backend),
		Entries:  size,
		Command:  command,
		ColdTime: coldTime,
		WarmTime: warmTime,
	}
}

// runBenchmark executes a benchtrack command several times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, args []string) (coldTime float64, warmTimes []float64) {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("benchtrack", args...)
		cmd.Dir = config.WorkDir

		done := make(chan error, 1)
		go func() {
			_, err := cmd.CombinedOutput()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("benchtrack_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"backend", "entries", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Backend, fmt.Sprint(result.Entries), result.Command, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"status", "show", "compare"} {
		fmt.Printf("History %s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-7s %5d entries: Cold: %s, Warm: %s\n", result.Backend, result.Entries, result.ColdTime, result.WarmTime)
			}
		}
	}
}
