package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/benchtrack/core/agg"
	"github.com/huangsam/benchtrack/core/algo"
	"github.com/huangsam/benchtrack/schema"
)

// CompareEntries compares every test of current against base, in sorted test order.
// A nil base yields a report without any baseline values.
func CompareEntries(base *schema.HistoryEntry, current schema.HistoryEntry) schema.RunReport {
	return compareEntries(base, current, current.TestNames())
}

// compareEntries builds the report for the given test order. Names missing from
// current are skipped.
func compareEntries(base *schema.HistoryEntry, current schema.HistoryEntry, order []string) schema.RunReport {
	report := schema.RunReport{
		Time:        current.Time,
		HasBaseline: base != nil,
		Results:     make([]schema.ComparisonResult, 0, len(order)),
	}
	if base != nil {
		baseTime := base.Time
		report.BaselineTime = &baseTime
	}

	for _, name := range order {
		metrics, ok := current.Results[name]
		if !ok {
			continue
		}
		result := schema.ComparisonResult{
			Name:    name,
			Metrics: make(map[schema.MetricName]schema.MetricComparison, len(metrics)),
		}
		for _, metric := range schema.AllMetrics {
			rec, ok := metrics[metric]
			if !ok {
				continue
			}
			report.Repetitions = max(report.Repetitions, len(rec.Samples))

			mc, warning := compareMetric(base, name, metric, rec)
			if warning != "" {
				report.Warnings = append(report.Warnings, warning)
			}
			if mc != nil {
				result.Metrics[metric] = *mc
			}
		}
		report.Results = append(report.Results, result)
	}
	return report
}

// compareMetric compares one metric of one test. The returned warning is non-empty
// when the comparison could only be done partially.
func compareMetric(base *schema.HistoryEntry, test string, metric schema.MetricName, rec schema.MetricRecord) (*schema.MetricComparison, string) {
	current, err := agg.StatisticsFromRecord(rec)
	if err != nil {
		return nil, fmt.Sprintf("%s (%s): %v", test, metric, err)
	}
	mc := &schema.MetricComparison{Current: current}

	if base == nil {
		return mc, ""
	}
	baseRec, ok := base.Results[test][metric]
	if !ok {
		return mc, ""
	}
	baseline, err := agg.StatisticsFromRecord(baseRec)
	if err != nil {
		return mc, fmt.Sprintf("%s (%s): baseline unusable: %v", test, metric, err)
	}
	mc.Baseline = &baseline
	mc.PercentChange = PercentChange(baseline.Mean, current.Mean)

	sig, err := algo.SignedRankTest(baseRec.Samples, rec.Samples)
	if err != nil {
		var unpaired *schema.UnpairedSamplesError
		if errors.As(err, &unpaired) {
			unpaired.Test = test
			unpaired.Metric = metric
			mc.Unpaired = true
			return mc, unpaired.Error()
		}
		return mc, fmt.Sprintf("%s (%s): %v", test, metric, err)
	}
	mc.Significant = schema.Bool(sig.Significant())
	mc.Alpha = sig.Alpha
	return mc, ""
}

// PercentChange returns the difference between the means as a percentage of the
// current mean. Negative means faster. It is nil when the current mean is zero.
func PercentChange(baseline, current float64) *float64 {
	if current == 0 {
		return nil
	}
	return schema.Float((current - baseline) / current * 100)
}
