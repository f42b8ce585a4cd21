// Package parquet provides data structures and functions for exporting benchtrack
// history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/benchtrack/core/agg"
	"github.com/huangsam/benchtrack/schema"
	"github.com/parquet-go/parquet-go"
)

// HistoryRun represents a single benchmark run.
type HistoryRun struct {
	// RunIndex is the position of the run in the history, starting at 0
	RunIndex int64 `parquet:"run_index,snappy"`

	// RunTime is when the run started
	RunTime time.Time `parquet:"run_time,snappy"`

	// SchemaVersion is the version the run was recorded with
	SchemaVersion int32 `parquet:"schema_version,snappy"`

	// TestCount is the number of tests in the run
	TestCount int32 `parquet:"test_count,snappy"`
}

// HistorySample represents one timing sample of one metric.
type HistorySample struct {
	RunIndex    int64     `parquet:"run_index,snappy"`
	RunTime     time.Time `parquet:"run_time,snappy"`
	TestName    string    `parquet:"test_name,snappy,dict"`
	Metric      string    `parquet:"metric,snappy,dict"`
	SampleIndex int32     `parquet:"sample_index,snappy"`
	Value       float64   `parquet:"value,snappy"`
}

// HistoryStatistics represents the summary statistics of one metric of one test in one run.
type HistoryStatistics struct {
	RunIndex int64     `parquet:"run_index,snappy"`
	RunTime  time.Time `parquet:"run_time,snappy"`
	TestName string    `parquet:"test_name,snappy,dict"`
	Metric   string    `parquet:"metric,snappy,dict"`
	Samples  int32     `parquet:"samples,snappy"`
	Min      float64   `parquet:"min,snappy"`
	Mean     float64   `parquet:"mean,snappy"`
	Variance float64   `parquet:"variance,snappy"`
	StdDev   float64   `parquet:"std_dev,snappy"`
}

// ConvertHistoryEntries flattens history entries into Parquet rows.
// Tests are emitted in sorted order and metrics in display order.
func ConvertHistoryEntries(entries []schema.HistoryEntry) ([]HistoryRun, []HistorySample, []HistoryStatistics, error) {
	runs := make([]HistoryRun, 0, len(entries))
	var samples []HistorySample
	var stats []HistoryStatistics

	for i, e := range entries {
		runs = append(runs, HistoryRun{
			RunIndex:      int64(i),
			RunTime:       e.Time,
			SchemaVersion: int32(e.Version),
			TestCount:     int32(len(e.Results)),
		})
		for _, test := range e.TestNames() {
			for _, metric := range schema.AllMetrics {
				rec, ok := e.Results[test][metric]
				if !ok {
					continue
				}
				for j, v := range rec.Samples {
					samples = append(samples, HistorySample{
						RunIndex:    int64(i),
						RunTime:     e.Time,
						TestName:    test,
						Metric:      string(metric),
						SampleIndex: int32(j),
						Value:       v,
					})
				}
				st, err := agg.StatisticsFromRecord(rec)
				if err != nil {
					return nil, nil, nil, fmt.Errorf("run %d, %s (%s): %w", i, test, metric, err)
				}
				stats = append(stats, HistoryStatistics{
					RunIndex: int64(i),
					RunTime:  e.Time,
					TestName: test,
					Metric:   string(metric),
					Samples:  int32(len(rec.Samples)),
					Min:      st.Min,
					Mean:     st.Mean,
					Variance: st.Variance,
					StdDev:   st.StdDev,
				})
			}
		}
	}
	return runs, samples, stats, nil
}

// WriteRunsParquet writes history runs to a Parquet file.
func WriteRunsParquet(data []HistoryRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSamplesParquet writes history samples to a Parquet file.
func WriteSamplesParquet(data []HistorySample, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteStatisticsParquet writes history statistics to a Parquet file.
func WriteStatisticsParquet(data []HistoryStatistics, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows to a Parquet file whose schema is derived from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
