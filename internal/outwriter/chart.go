package outwriter

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/benchtrack/core/agg"
	"github.com/huangsam/benchtrack/schema"
)

const chartTimeFormat = "2006-01-02 15:04"

// WriteHistoryChart renders an HTML page with one line chart per test.
// Every chart has a series per metric holding the mean of each run; runs
// without the test leave a gap.
func WriteHistoryChart(w io.Writer, entries []schema.HistoryEntry) error {
	labels := make([]string, len(entries))
	names := make(map[string]struct{})
	for i, e := range entries {
		labels[i] = e.Time.Local().Format(chartTimeFormat)
		for name := range e.Results {
			names[name] = struct{}{}
		}
	}

	page := components.NewPage()
	page.PageTitle = "benchtrack history"

	for _, test := range slices.Sorted(maps.Keys(names)) {
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: test, Subtitle: "mean seconds per run"}),
		)
		line.SetXAxis(labels)

		for _, metric := range schema.AllMetrics {
			data := make([]opts.LineData, len(entries))
			for i, e := range entries {
				rec, ok := e.Results[test][metric]
				if !ok {
					data[i] = opts.LineData{Value: "-"}
					continue
				}
				st, err := agg.StatisticsFromRecord(rec)
				if err != nil {
					return fmt.Errorf("chart %s (%s): %w", test, metric, err)
				}
				data[i] = opts.LineData{Value: st.Mean}
			}
			line.AddSeries(string(metric), data)
		}
		page.AddCharts(line)
	}

	return page.Render(w)
}
