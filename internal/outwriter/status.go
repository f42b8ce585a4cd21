package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/benchtrack/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// WriteHistoryStatus prints status information about the history store.
func WriteHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	if status.Location != "" {
		_, _ = fmt.Fprintf(w, "Location: %s\n", status.Location)
	}
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastEntry.Local().Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.FirstEntry.Local().Format(statusTimeFormat))
	}
	if len(status.TestNames) > 0 {
		_, _ = fmt.Fprintf(w, "Tests: %s\n", strings.Join(status.TestNames, ", "))
	}
}

// WriteCheckResult prints the outcome of the regression gate.
func WriteCheckResult(w io.Writer, result schema.CheckResult) {
	if !result.HasBaseline {
		_, _ = fmt.Fprintf(w, "✅ No baseline yet; recorded %d tests for the next check\n", result.TotalTests)
		return
	}
	if result.Passed {
		_, _ = fmt.Fprintf(w, "✅ No significant regression above %.1f%% across %d tests\n", result.MaxRegression, result.TotalTests)
		return
	}

	_, _ = fmt.Fprintf(w, "❌ Regression check failed: %d significant slowdown(s) above %.1f%%\n\n", len(result.Regressions), result.MaxRegression)
	width := 0
	for _, r := range result.Regressions {
		width = max(width, len(r.Test))
	}
	for _, r := range result.Regressions {
		_, _ = fmt.Fprintf(w, "  %-*s %-5s %s (alpha %g)\n", width, r.Test, r.Metric, formatPercent(r.PercentChange), r.Alpha)
	}
}
