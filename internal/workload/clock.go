package workload

import (
	"time"

	"github.com/huangsam/benchtrack/internal/contract"
)

// SystemClock reads the real wall clock and the process resource usage.
type SystemClock struct{}

var _ contract.Clock = SystemClock{} // Compile-time check

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// CPUTime returns user+system time of this process and all of its reaped children.
func (SystemClock) CPUTime() time.Duration {
	return cpuTime()
}
