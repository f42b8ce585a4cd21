package agg

import (
	"math"
	"testing"

	"github.com/huangsam/benchtrack/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    schema.MetricStatistics
	}{
		{
			name:    "three samples",
			samples: []float64{1.0, 2.0, 3.0},
			want:    schema.MetricStatistics{Min: 1.0, Mean: 2.0, Variance: 2.0 / 3.0, StdDev: math.Sqrt(2.0 / 3.0)},
		},
		{
			name:    "single sample",
			samples: []float64{5.0},
			want:    schema.MetricStatistics{Min: 5.0, Mean: 5.0, Variance: 0, StdDev: 0},
		},
		{
			name:    "constant samples",
			samples: []float64{0.25, 0.25, 0.25, 0.25},
			want:    schema.MetricStatistics{Min: 0.25, Mean: 0.25, Variance: 0, StdDev: 0},
		},
		{
			name:    "unordered samples",
			samples: []float64{4, 2, 8, 6},
			want:    schema.MetricStatistics{Min: 2, Mean: 5, Variance: 5, StdDev: math.Sqrt(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(tt.samples)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-12)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-12)
			assert.InDelta(t, tt.want.Variance, got.Variance, 1e-12)
			assert.InDelta(t, tt.want.StdDev, got.StdDev, 1e-12)
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, schema.ErrEmptyInput)

	_, err = Aggregate([]float64{})
	assert.ErrorIs(t, err, schema.ErrEmptyInput)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	samples := []float64{3, 1, 2}
	_, err := Aggregate(samples)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, samples)
}

func TestAggregateTest(t *testing.T) {
	tr := schema.NewTestResult("literal", 2)
	tr.Add(schema.Timing{Total: 1, Real: 2})
	tr.Add(schema.Timing{Total: 3, Real: 4})

	got, err := AggregateTest(tr)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got[schema.TotalMetric].Mean, 1e-12)
	assert.InDelta(t, 3.0, got[schema.RealMetric].Mean, 1e-12)
	assert.InDelta(t, 1.0, got[schema.TotalMetric].Variance, 1e-12)

	_, err = AggregateTest(schema.NewTestResult("empty", 0))
	assert.ErrorIs(t, err, schema.ErrEmptyInput)
}

func TestRecordFromSamples(t *testing.T) {
	samples := []float64{2, 4}
	rec, err := RecordFromSamples(samples)
	require.NoError(t, err)
	assert.Equal(t, samples, rec.Samples)
	require.NotNil(t, rec.Mean)
	assert.InDelta(t, 3.0, *rec.Mean, 1e-12)
	assert.InDelta(t, 2.0, *rec.Min, 1e-12)
	assert.InDelta(t, 1.0, *rec.Variance, 1e-12)
	assert.InDelta(t, 1.0, *rec.StdDev, 1e-12)

	samples[0] = 100
	assert.InDelta(t, 2.0, rec.Samples[0], 1e-12, "record must own its samples")

	_, err = RecordFromSamples(nil)
	assert.ErrorIs(t, err, schema.ErrEmptyInput)
}

func TestStatisticsFromRecord(t *testing.T) {
	t.Run("stored statistics win", func(t *testing.T) {
		rec := schema.MetricRecord{
			Samples:  []float64{1, 2, 3},
			Min:      schema.Float(0.5),
			Mean:     schema.Float(9),
			Variance: schema.Float(1),
			StdDev:   schema.Float(1),
		}
		st, err := StatisticsFromRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, schema.MetricStatistics{Min: 0.5, Mean: 9, Variance: 1, StdDev: 1}, st)
	})

	t.Run("older entry without statistics", func(t *testing.T) {
		st, err := StatisticsFromRecord(schema.MetricRecord{Samples: []float64{1, 2, 3}})
		require.NoError(t, err)
		assert.InDelta(t, 2.0, st.Mean, 1e-12)
		assert.InDelta(t, 1.0, st.Min, 1e-12)
	})

	t.Run("partial statistics", func(t *testing.T) {
		st, err := StatisticsFromRecord(schema.MetricRecord{Samples: []float64{1, 2, 3}, Mean: schema.Float(7)})
		require.NoError(t, err)
		assert.InDelta(t, 7.0, st.Mean, 1e-12)
		assert.InDelta(t, 2.0/3.0, st.Variance, 1e-12)
	})

	t.Run("nothing stored", func(t *testing.T) {
		_, err := StatisticsFromRecord(schema.MetricRecord{})
		assert.ErrorIs(t, err, schema.ErrEmptyInput)
	})
}

func TestAggregateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		samples := rapid.SliceOfN(rapid.Float64Range(0, 1000), 1, 50).Draw(t, "samples")

		st, err := Aggregate(samples)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Variance < 0 {
			t.Fatalf("variance %v is negative", st.Variance)
		}
		if math.Abs(st.StdDev*st.StdDev-st.Variance) > 1e-6 {
			t.Fatalf("sd^2 = %v, variance = %v", st.StdDev*st.StdDev, st.Variance)
		}
		if st.Min > st.Mean+1e-9 {
			t.Fatalf("min %v exceeds mean %v", st.Min, st.Mean)
		}
		for _, x := range samples {
			if x < st.Min {
				t.Fatalf("sample %v below min %v", x, st.Min)
			}
		}
	})
}
