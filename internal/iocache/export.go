package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/internal/parquet"
)

// ExecuteHistoryExport exports the whole history to Parquet files named after outputPrefix.
func ExecuteHistoryExport(ctx context.Context, store contract.HistoryStore, outputPrefix string) error {
	if outputPrefix == "" {
		return errors.New("--output-file is required for export command")
	}

	entries, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		return errors.New("no history found to export")
	}

	status, err := store.Status()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", len(entries))

	runs, samples, stats, err := parquet.ConvertHistoryEntries(entries)
	if err != nil {
		return fmt.Errorf("failed to convert history: %w", err)
	}

	runsFile := outputPrefix + ".runs.parquet"
	if err := parquet.WriteRunsParquet(runs, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	samplesFile := outputPrefix + ".samples.parquet"
	if err := parquet.WriteSamplesParquet(samples, samplesFile); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	fmt.Printf("Exported %d samples to: %s\n", len(samples), samplesFile)

	statsFile := outputPrefix + ".statistics.parquet"
	if err := parquet.WriteStatisticsParquet(stats, statsFile); err != nil {
		return fmt.Errorf("failed to write statistics: %w", err)
	}
	fmt.Printf("Exported %d statistics to: %s\n", len(stats), statsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
