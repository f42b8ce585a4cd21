package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const (
	reportTitle  = "Summary of cpu time and (wall-clock time):"
	reportLegend = schema.SignificanceMarker + "Significant difference indicated with a star."
)

// reportHeader labels the five columns of each metric; wall-clock columns are parenthesized.
func reportHeader() []Cell {
	return []Cell{
		Plain(""),
		Center("avg"), Center("+/-"), Plain(""), Center("best"), Center("sd"),
		Center("(avg)"), Center("+/-"), Plain(""), Center("(best)"), Center("(sd)"),
	}
}

// formatPercent renders a percent change the way the summary grid shows it.
func formatPercent(v float64) string {
	return fmt.Sprintf("[%+0.1f%%]", v)
}

func isSignificant(mc schema.MetricComparison) bool {
	return mc.Significant != nil && *mc.Significant
}

// metricCells renders mean, change, marker, best and sd of one metric.
func metricCells(mc schema.MetricComparison, ok bool, fmtFloat func(float64) string, colors bool) []Cell {
	if !ok {
		return []Cell{
			Right(schema.Placeholder), Right(schema.Placeholder), Left(""),
			Right(schema.Placeholder), Right(schema.Placeholder),
		}
	}

	significant := isSignificant(mc)
	change := Right(formatOptional(mc.PercentChange, formatPercent, schema.Placeholder))
	if colors {
		change = change.Painted(func(s string) string {
			return contract.ColorDelta(s, mc.PercentChange, significant)
		})
	}
	marker := Left("")
	if significant {
		marker = Left(schema.SignificanceMarker)
	}
	return []Cell{
		Right(fmtFloat(mc.Current.Mean)),
		change,
		marker,
		Right(fmtFloat(mc.Current.Min)),
		Right(fmtFloat(mc.Current.StdDev)),
	}
}

// RenderReport formats a run report as the aligned summary grid.
// The legend is added only when the run had a baseline.
func RenderReport(report schema.RunReport, precision int, colors bool) string {
	if precision < 0 {
		precision = contract.DefaultPrecision
	}
	fmtFloat := createFormatter(precision)

	rows := [][]Cell{reportHeader()}
	for _, cr := range report.Results {
		row := []Cell{Left(cr.Name)}
		for _, metric := range schema.AllMetrics {
			mc, ok := cr.Metrics[metric]
			row = append(row, metricCells(mc, ok, fmtFloat, colors)...)
		}
		rows = append(rows, row)
	}

	var sb strings.Builder
	sb.WriteString(reportTitle + "\n")
	sb.WriteString(RenderGrid(rows))
	if report.HasBaseline {
		sb.WriteString("\n" + reportLegend + "\n")
	}
	return sb.String()
}

// writeReportTable prints one bordered row per test and metric.
func writeReportTable(w io.Writer, report schema.RunReport, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Test", "Metric", "Mean", "Change", "Sig", "Best", "Std Dev", "Baseline"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, cr := range report.Results {
		for _, metric := range schema.AllMetrics {
			mc, ok := cr.Metrics[metric]
			if !ok {
				continue
			}
			significant := isSignificant(mc)
			change := formatOptional(mc.PercentChange, formatPercent, schema.Placeholder)
			if cfg.UseColors {
				change = contract.ColorDelta(change, mc.PercentChange, significant)
			}
			marker := ""
			if significant {
				marker = schema.SignificanceMarker
			}
			baseline := schema.Placeholder
			if mc.Baseline != nil {
				baseline = fmtFloat(mc.Baseline.Mean)
			}
			data = append(data, []string{
				cr.Name,
				string(metric),
				fmtFloat(mc.Current.Mean),
				change,
				marker,
				fmtFloat(mc.Current.Min),
				fmtFloat(mc.Current.StdDev),
				baseline,
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if report.HasBaseline {
		if _, err := fmt.Fprintln(w, reportLegend); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVReport writes one record per test and metric. Missing values are empty.
func writeCSVReport(w io.Writer, report schema.RunReport, fmtFloat func(float64) string) error {
	header := []string{
		"test", "metric", "mean", "best", "variance", "sd",
		"baseline_mean", "percent_change", "significant", "alpha", "unpaired",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, cr := range report.Results {
			for _, metric := range schema.AllMetrics {
				mc, ok := cr.Metrics[metric]
				if !ok {
					continue
				}
				var baseline *float64
				if mc.Baseline != nil {
					baseline = &mc.Baseline.Mean
				}
				significant := ""
				if mc.Significant != nil {
					significant = strconv.FormatBool(*mc.Significant)
				}
				alpha := ""
				if mc.Alpha > 0 {
					alpha = strconv.FormatFloat(mc.Alpha, 'g', -1, 64)
				}
				row := []string{
					cr.Name,
					string(metric),
					fmtFloat(mc.Current.Mean),
					fmtFloat(mc.Current.Min),
					fmtFloat(mc.Current.Variance),
					fmtFloat(mc.Current.StdDev),
					formatOptional(baseline, fmtFloat, ""),
					formatOptional(mc.PercentChange, fmtFloat, ""),
					significant,
					alpha,
					strconv.FormatBool(mc.Unpaired),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
