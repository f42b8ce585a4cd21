package core

import (
	"context"
	"os"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/internal/outwriter"
	"github.com/huangsam/benchtrack/schema"
)

// ExecuteCheck runs the suite like ExecuteRun and then gates on regressions.
// It returns schema.ErrRegression when any metric became significantly slower
// than cfg.MaxRegression percent.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error {
	report, err := runConfiguredSuite(ctx, cfg, store)
	if err != nil {
		return err
	}
	if err := outwriter.PrintRunReport(report, cfg); err != nil {
		return err
	}

	result := BuildCheckResult(report, cfg.MaxRegression)
	outwriter.WriteCheckResult(os.Stderr, result)
	if !result.Passed {
		return schema.ErrRegression
	}
	return nil
}

// BuildCheckResult collects the metrics that are significant and slower than maxRegression percent.
// A report without a baseline always passes.
func BuildCheckResult(report schema.RunReport, maxRegression float64) schema.CheckResult {
	result := schema.CheckResult{
		Passed:        true,
		HasBaseline:   report.HasBaseline,
		MaxRegression: maxRegression,
		TotalTests:    len(report.Results),
	}
	for _, cr := range report.Results {
		for _, metric := range schema.AllMetrics {
			mc, ok := cr.Metrics[metric]
			if !ok || mc.PercentChange == nil || mc.Significant == nil || !*mc.Significant {
				continue
			}
			if *mc.PercentChange > maxRegression {
				result.Regressions = append(result.Regressions, schema.CheckRegression{
					Test:          cr.Name,
					Metric:        metric,
					PercentChange: *mc.PercentChange,
					Alpha:         mc.Alpha,
				})
			}
		}
	}
	result.Passed = len(result.Regressions) == 0
	return result
}
