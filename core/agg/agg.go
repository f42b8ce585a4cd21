// Package agg reduces raw timing samples to summary statistics.
package agg

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/huangsam/benchtrack/schema"
)

// Aggregate computes the minimum, mean, population variance and standard deviation
// of a sample sequence. It returns schema.ErrEmptyInput when there are no samples.
func Aggregate(samples []float64) (schema.MetricStatistics, error) {
	if len(samples) == 0 {
		return schema.MetricStatistics{}, schema.ErrEmptyInput
	}

	lo, _ := stats.Bounds(samples)

	n := float64(len(samples))
	var sum float64
	for _, x := range samples {
		sum += x
	}
	mean := sum / n

	var sq float64
	for _, x := range samples {
		d := mean - x
		sq += d * d
	}
	variance := sq / n

	return schema.MetricStatistics{
		Min:      lo,
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
	}, nil
}

// AggregateTest computes statistics for every metric of a test result.
func AggregateTest(tr schema.TestResult) (map[schema.MetricName]schema.MetricStatistics, error) {
	out := make(map[schema.MetricName]schema.MetricStatistics, len(tr.Samples))
	for metric, samples := range tr.Samples {
		st, err := Aggregate(samples)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s (%s): %w", tr.Name, metric, err)
		}
		out[metric] = st
	}
	return out, nil
}

// RecordFromSamples builds the persisted form of a metric: the raw samples plus statistics.
func RecordFromSamples(samples []float64) (schema.MetricRecord, error) {
	st, err := Aggregate(samples)
	if err != nil {
		return schema.MetricRecord{}, err
	}
	return NewRecord(samples, st), nil
}

// NewRecord pairs samples with statistics already computed from them.
func NewRecord(samples []float64, st schema.MetricStatistics) schema.MetricRecord {
	return schema.MetricRecord{
		Samples:  append([]float64(nil), samples...),
		Min:      schema.Float(st.Min),
		Mean:     schema.Float(st.Mean),
		Variance: schema.Float(st.Variance),
		StdDev:   schema.Float(st.StdDev),
	}
}

// StatisticsFromRecord returns the statistics of a persisted record. Stored values win;
// any that are missing are recomputed from the stored samples.
func StatisticsFromRecord(rec schema.MetricRecord) (schema.MetricStatistics, error) {
	if rec.Min != nil && rec.Mean != nil && rec.Variance != nil && rec.StdDev != nil {
		return schema.MetricStatistics{
			Min:      *rec.Min,
			Mean:     *rec.Mean,
			Variance: *rec.Variance,
			StdDev:   *rec.StdDev,
		}, nil
	}

	st, err := Aggregate(rec.Samples)
	if err != nil {
		return schema.MetricStatistics{}, err
	}
	if rec.Min != nil {
		st.Min = *rec.Min
	}
	if rec.Mean != nil {
		st.Mean = *rec.Mean
	}
	if rec.Variance != nil {
		st.Variance = *rec.Variance
	}
	if rec.StdDev != nil {
		st.StdDev = *rec.StdDev
	}
	return st, nil
}
