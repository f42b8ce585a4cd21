package schema

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when statistics are requested for zero samples.
var ErrEmptyInput = errors.New("cannot aggregate an empty sample sequence")

// ErrRegression is returned by the check command when a significant slowdown is found.
var ErrRegression = errors.New("performance regression detected")

// UnpairedSamplesError reports baseline and current sample sequences of different lengths.
// It usually means the repetition count changed between two runs.
type UnpairedSamplesError struct {
	Test     string
	Metric   MetricName
	Baseline int
	Current  int
}

func (e *UnpairedSamplesError) Error() string {
	if e.Test == "" {
		return fmt.Sprintf("unpaired samples: baseline has %d, current has %d", e.Baseline, e.Current)
	}
	return fmt.Sprintf("unpaired samples for %s (%s): baseline has %d, current has %d", e.Test, e.Metric, e.Baseline, e.Current)
}

// HistoryCorruptError reports a history store that cannot be read or decoded.
type HistoryCorruptError struct {
	Location string
	Err      error
}

func (e *HistoryCorruptError) Error() string {
	return fmt.Sprintf("history at %s is corrupt: %v", e.Location, e.Err)
}

func (e *HistoryCorruptError) Unwrap() error {
	return e.Err
}

// WorkloadFailure reports an error raised by a workload while it was being timed.
type WorkloadFailure struct {
	Test       string
	Repetition int
	Err        error
}

func (e *WorkloadFailure) Error() string {
	return fmt.Sprintf("workload %s failed on repetition %d: %v", e.Test, e.Repetition, e.Err)
}

func (e *WorkloadFailure) Unwrap() error {
	return e.Err
}
