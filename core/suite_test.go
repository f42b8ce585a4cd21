package core

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/internal/iocache"
	"github.com/huangsam/benchtrack/internal/workload"
	"github.com/huangsam/benchtrack/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeClock only moves when a workload advances it, so every timed block
// measures exactly what the workload claims to have spent.
type fakeClock struct {
	wall time.Time
	cpu  time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{wall: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time         { return c.wall }
func (c *fakeClock) CPUTime() time.Duration { return c.cpu }

func (c *fakeClock) advance(seconds float64) {
	d := time.Duration(seconds * float64(time.Second))
	c.wall = c.wall.Add(d)
	c.cpu += d
}

// scriptedTest returns a test whose n-th invocation costs durations[n] seconds.
func scriptedTest(clock *fakeClock, name string, durations ...float64) contract.Test {
	calls := 0
	return contract.Test{
		Name:  name,
		Times: 1,
		Workload: workload.Func(func(context.Context) error {
			clock.advance(durations[calls%len(durations)])
			calls++
			return nil
		}),
	}
}

func entryWith(at time.Time, test string, samples ...float64) *schema.HistoryEntry {
	return &schema.HistoryEntry{
		Version: schema.HistorySchemaVersion,
		Time:    at,
		Results: map[string]map[schema.MetricName]schema.MetricRecord{
			test: {
				schema.TotalMetric: {Samples: samples},
				schema.RealMetric:  {Samples: samples},
			},
		},
	}
}

func TestRunSuiteFirstRun(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	start := clock.Now()

	var appended schema.HistoryEntry
	store := &iocache.MockHistoryStore{}
	store.On("Last", mock.Anything).Return(nil, nil)
	store.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		appended = args.Get(1).(schema.HistoryEntry)
	}).Return(nil)

	var progress bytes.Buffer
	tests := []contract.Test{
		scriptedTest(clock, "zeta", 0.5, 0.25),
		scriptedTest(clock, "alpha", 1),
	}
	report, err := RunSuite(ctx, tests, RunOptions{Repetitions: 2, Clock: clock, Progress: &progress}, store)
	require.NoError(t, err)

	assert.False(t, report.HasBaseline)
	assert.Nil(t, report.BaselineTime)
	assert.Equal(t, 2, report.Repetitions)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "zeta", report.Results[0].Name)
	assert.Equal(t, "alpha", report.Results[1].Name)

	zeta := report.Results[0].Metric(schema.TotalMetric)
	assert.InDelta(t, 0.25, zeta.Current.Min, 1e-9)
	assert.InDelta(t, 0.375, zeta.Current.Mean, 1e-9)
	assert.Nil(t, zeta.Baseline)
	assert.Nil(t, zeta.PercentChange)
	assert.Nil(t, zeta.Significant)

	assert.True(t, start.Equal(appended.Time))
	assert.Equal(t, schema.HistorySchemaVersion, appended.Version)
	assert.InDeltaSlice(t, []float64{0.5, 0.25}, appended.Results["zeta"][schema.RealMetric].Samples, 1e-9)
	stored := appended.Results["zeta"][schema.RealMetric]
	require.NotNil(t, stored.Mean)
	assert.InDelta(t, 0.375, *stored.Mean, 1e-9)
	assert.InDelta(t, 0.25, *stored.Min, 1e-9)
	assert.InDelta(t, 0.015625, *stored.Variance, 1e-9)
	assert.InDelta(t, 0.125, *stored.StdDev, 1e-9)
	assert.InDeltaSlice(t, []float64{1, 1}, appended.Results["alpha"][schema.TotalMetric].Samples, 1e-9)

	assert.Contains(t, progress.String(), "Repetition 1/2")
	assert.Contains(t, progress.String(), "Repetition 2/2")
	assert.Contains(t, progress.String(), "  alpha")
	store.AssertExpectations(t)
}

func TestRunSuiteSignificantSlowdown(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()

	baseline := entryWith(clock.Now().Add(-time.Hour), "regex", 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9)
	store := &iocache.MockHistoryStore{}
	store.On("Last", mock.Anything).Return(baseline, nil)
	store.On("Append", mock.Anything, mock.Anything).Return(nil)

	test := scriptedTest(clock, "regex", 1.00, 1.01, 1.02, 1.03, 1.04, 1.05, 1.06, 1.07, 1.08)
	report, err := RunSuite(ctx, []contract.Test{test}, RunOptions{Repetitions: 9, Clock: clock}, store)
	require.NoError(t, err)

	assert.True(t, report.HasBaseline)
	require.NotNil(t, report.BaselineTime)
	assert.True(t, baseline.Time.Equal(*report.BaselineTime))
	assert.Empty(t, report.Warnings)

	for _, metric := range schema.AllMetrics {
		mc := report.Results[0].Metric(metric)
		require.NotNil(t, mc.Baseline, metric)
		assert.InDelta(t, 0.5, mc.Baseline.Mean, 1e-9)
		require.NotNil(t, mc.PercentChange)
		assert.InDelta(t, (1.04-0.5)/1.04*100, *mc.PercentChange, 1e-6)
		require.NotNil(t, mc.Significant)
		assert.True(t, *mc.Significant)
		assert.Equal(t, 0.005, mc.Alpha)
	}
}

func TestRunSuiteWorkloadFailure(t *testing.T) {
	ctx := context.Background()
	store := &iocache.MockHistoryStore{}
	boom := errors.New("exit status 2")

	calls := 0
	test := contract.Test{Name: "broken", Times: 1, Workload: workload.Func(func(context.Context) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})}

	_, err := RunSuite(ctx, []contract.Test{test}, RunOptions{Repetitions: 3, Clock: newFakeClock()}, store)
	var failure *schema.WorkloadFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "broken", failure.Test)
	assert.Equal(t, 2, failure.Repetition)
	assert.ErrorIs(t, err, boom)
	store.AssertNotCalled(t, "Last", mock.Anything)
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRunSuiteCorruptBaseline(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &iocache.MockHistoryStore{}
	store.On("Last", mock.Anything).Return(nil, &schema.HistoryCorruptError{Location: "h.yml", Err: errors.New("bad yaml")})
	store.On("Append", mock.Anything, mock.Anything).Return(nil)

	report, err := RunSuite(ctx, []contract.Test{scriptedTest(clock, "t", 1)}, RunOptions{Repetitions: 1, Clock: clock}, store)
	require.NoError(t, err)
	assert.False(t, report.HasBaseline)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "corrupt")
	store.AssertExpectations(t)
}

func TestRunSuiteBaselineError(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &iocache.MockHistoryStore{}
	store.On("Last", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := RunSuite(ctx, []contract.Test{scriptedTest(clock, "t", 1)}, RunOptions{Repetitions: 1, Clock: clock}, store)
	assert.ErrorContains(t, err, "failed to load baseline")
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRunSuiteUnpairedBaseline(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &iocache.MockHistoryStore{}
	store.On("Last", mock.Anything).Return(entryWith(clock.Now(), "t", 1, 1), nil)
	store.On("Append", mock.Anything, mock.Anything).Return(nil)

	report, err := RunSuite(ctx, []contract.Test{scriptedTest(clock, "t", 2)}, RunOptions{Repetitions: 3, Clock: clock}, store)
	require.NoError(t, err)

	require.Len(t, report.Warnings, 2)
	assert.Equal(t, "unpaired samples for t (total): baseline has 2, current has 3", report.Warnings[0])
	assert.Equal(t, "unpaired samples for t (real): baseline has 2, current has 3", report.Warnings[1])

	mc := report.Results[0].Metric(schema.TotalMetric)
	assert.True(t, mc.Unpaired)
	assert.Nil(t, mc.Significant)
	require.NotNil(t, mc.PercentChange)
	assert.InDelta(t, 50, *mc.PercentChange, 1e-9)
	store.AssertCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRunSuiteAppendError(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &iocache.MockHistoryStore{}
	store.On("Last", mock.Anything).Return(nil, nil)
	store.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	report, err := RunSuite(ctx, []contract.Test{scriptedTest(clock, "t", 1)}, RunOptions{Repetitions: 1, Clock: clock}, store)
	assert.ErrorContains(t, err, "failed to append history entry")
	assert.Len(t, report.Results, 1)
}

func TestRunSuiteWarmupAndTimes(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &iocache.MockHistoryStore{}
	store.On("Last", mock.Anything).Return(nil, nil)
	store.On("Append", mock.Anything, mock.Anything).Return(nil)

	calls := 0
	test := contract.Test{Name: "t", Times: 2, Workload: workload.Func(func(context.Context) error {
		calls++
		clock.advance(0.5)
		return nil
	})}

	report, err := RunSuite(ctx, []contract.Test{test}, RunOptions{Repetitions: 3, Warmup: true, Clock: clock}, store)
	require.NoError(t, err)
	assert.Equal(t, 9, calls)

	// The warm-up call is not part of the timed block.
	assert.InDelta(t, 1.0, report.Results[0].Metric(schema.RealMetric).Current.Mean, 1e-9)
}

func TestRunSuiteNoTests(t *testing.T) {
	_, err := RunSuite(context.Background(), nil, RunOptions{}, &iocache.MockHistoryStore{})
	assert.Error(t, err)
}
