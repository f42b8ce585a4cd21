package outwriter

import (
	"bytes"
	"testing"
	"time"

	"github.com/huangsam/benchtrack/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHistoryChart(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []schema.HistoryEntry{
		{Time: t0, Results: map[string]map[schema.MetricName]schema.MetricRecord{
			"regex": {
				schema.TotalMetric: {Samples: []float64{1, 3}},
				schema.RealMetric:  {Samples: []float64{2, 4}},
			},
		}},
		{Time: t0.Add(24 * time.Hour), Results: map[string]map[schema.MetricName]schema.MetricRecord{
			"regex":   {schema.TotalMetric: {Samples: []float64{5}}},
			"literal": {schema.RealMetric: {Mean: schema.Float(0.25), Samples: []float64{0.2, 0.3}}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistoryChart(&buf, entries))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "benchtrack history")
	assert.Contains(t, html, "regex")
	assert.Contains(t, html, "literal")
	assert.Contains(t, html, "mean seconds per run")
}

func TestWriteHistoryChartBadRecord(t *testing.T) {
	entries := []schema.HistoryEntry{{Results: map[string]map[schema.MetricName]schema.MetricRecord{
		"broken": {schema.TotalMetric: {}},
	}}}

	var buf bytes.Buffer
	assert.ErrorIs(t, WriteHistoryChart(&buf, entries), schema.ErrEmptyInput)
}
