package outwriter

import (
	"bytes"
	"testing"
	"time"

	"github.com/huangsam/benchtrack/schema"
	"github.com/stretchr/testify/assert"
)

func TestWriteHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	WriteHistoryStatus(&buf, schema.HistoryStatus{
		Backend:      "sqlite",
		Location:     "/tmp/h.db",
		Connected:    true,
		TotalEntries: 2,
		FirstEntry:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastEntry:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		TestNames:    []string{"literal", "regex"},
	})

	out := buf.String()
	assert.Contains(t, out, "History Backend: sqlite\n")
	assert.Contains(t, out, "Location: /tmp/h.db\n")
	assert.Contains(t, out, "Total Runs: 2\n")
	assert.Contains(t, out, "Last Run: ")
	assert.Contains(t, out, "Tests: literal, regex\n")
}

func TestWriteHistoryStatusDisconnected(t *testing.T) {
	var buf bytes.Buffer
	WriteHistoryStatus(&buf, schema.HistoryStatus{Backend: "none"})
	assert.Equal(t, "History Backend: none\nConnected: false\n", buf.String())
}

func TestWriteCheckResult(t *testing.T) {
	tests := []struct {
		name   string
		result schema.CheckResult
		want   []string
	}{
		{
			name:   "no baseline",
			result: schema.CheckResult{Passed: true, TotalTests: 3},
			want:   []string{"✅ No baseline yet", "3 tests"},
		},
		{
			name:   "passed",
			result: schema.CheckResult{Passed: true, HasBaseline: true, MaxRegression: 5, TotalTests: 2},
			want:   []string{"✅ No significant regression above 5.0% across 2 tests"},
		},
		{
			name: "failed",
			result: schema.CheckResult{
				HasBaseline:   true,
				MaxRegression: 0,
				TotalTests:    2,
				Regressions: []schema.CheckRegression{
					{Test: "regex", Metric: schema.RealMetric, PercentChange: 12.5, Alpha: 0.01},
				},
			},
			want: []string{"❌ Regression check failed: 1 significant slowdown(s)", "regex real  [+12.5%] (alpha 0.01)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WriteCheckResult(&buf, tt.result)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}
