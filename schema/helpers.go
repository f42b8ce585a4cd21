package schema

import (
	"maps"
	"slices"
)

// TestNames returns the test names of an entry in sorted order.
func (e HistoryEntry) TestNames() []string {
	return slices.Sorted(maps.Keys(e.Results))
}

// Samples returns the stored samples of a test metric and whether they exist.
func (e HistoryEntry) Samples(test string, metric MetricName) ([]float64, bool) {
	metrics, ok := e.Results[test]
	if !ok {
		return nil, false
	}
	rec, ok := metrics[metric]
	if !ok {
		return nil, false
	}
	return rec.Samples, true
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v, for optional fields.
func Bool(v bool) *bool {
	return &v
}
