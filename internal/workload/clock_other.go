//go:build !unix

package workload

import "time"

var processStart = time.Now()

// cpuTime falls back to elapsed process time where rusage is unavailable.
func cpuTime() time.Duration {
	return time.Since(processStart)
}
