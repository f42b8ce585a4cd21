// Package schema has models, constants and errors shared by all parts of benchtrack.
package schema

import "time"

// Timing is one timed block of a test: CPU time and wall-clock time in seconds.
type Timing struct {
	Total float64 // CPU time (user + system, including reaped children)
	Real  float64 // Wall-clock time
}

// TestResult groups the raw samples of one test across all repetitions of a run.
type TestResult struct {
	Name    string
	Samples map[MetricName][]float64 // Ordered by repetition index
}

// NewTestResult creates an empty TestResult with room for every tracked metric.
func NewTestResult(name string, repetitions int) TestResult {
	samples := make(map[MetricName][]float64, len(AllMetrics))
	for _, m := range AllMetrics {
		samples[m] = make([]float64, 0, repetitions)
	}
	return TestResult{Name: name, Samples: samples}
}

// Add appends the metrics of a single timing to the result.
func (tr *TestResult) Add(t Timing) {
	tr.Samples[TotalMetric] = append(tr.Samples[TotalMetric], t.Total)
	tr.Samples[RealMetric] = append(tr.Samples[RealMetric], t.Real)
}

// MetricStatistics is the derived, read-only summary of a sample sequence.
type MetricStatistics struct {
	Min      float64 `json:"min"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"` // Population variance (divisor N)
	StdDev   float64 `json:"std_dev"`
}

// MetricComparison holds the current statistics of one metric and, when a baseline
// exists, how they compare with it.
type MetricComparison struct {
	Current       MetricStatistics  `json:"current"`
	Baseline      *MetricStatistics `json:"baseline,omitempty"`
	PercentChange *float64          `json:"percent_change,omitempty"` // Negative means faster
	Significant   *bool             `json:"significant,omitempty"`
	Alpha         float64           `json:"alpha,omitempty"` // Significance level crossed, 0 if none
	Unpaired      bool              `json:"unpaired,omitempty"`
}

// ComparisonResult is the comparison of a single test, per metric.
type ComparisonResult struct {
	Name    string                          `json:"name"`
	Metrics map[MetricName]MetricComparison `json:"metrics"`
}

// Metric returns the comparison for a metric, or a zero value if it is missing.
func (cr ComparisonResult) Metric(name MetricName) MetricComparison {
	return cr.Metrics[name]
}

// RunReport is the ordered outcome of one benchmark run.
type RunReport struct {
	Time         time.Time          `json:"time"`
	BaselineTime *time.Time         `json:"baseline_time,omitempty"`
	HasBaseline  bool               `json:"has_baseline"`
	Repetitions  int                `json:"repetitions"`
	Results      []ComparisonResult `json:"results"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// TestDefinition is how a test is described in configuration.
type TestDefinition struct {
	Name    string   `mapstructure:"name"`
	Command []string `mapstructure:"command"`
	Paths   []string `mapstructure:"paths"`
	Queries []string `mapstructure:"queries"`
	Times   int      `mapstructure:"times"`

	// Incremental runs every prefix of each query, the way a user types it.
	Incremental bool `mapstructure:"incremental"`
}
