// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/benchtrack/schema"
)

// Workload is the unit of work a benchmark times. Run is called synchronously
// and must return an error if the work could not be completed.
type Workload interface {
	Run(ctx context.Context) error
}

// Test is a named workload that is invoked Times times inside one timed block.
type Test struct {
	Name     string
	Times    int
	Workload Workload
}

// Clock supplies the wall-clock and CPU time readings around a timed block.
// This allows the orchestrator to be tested without real timing noise.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// CPUTime returns the cumulative user+system CPU time of the process and its reaped children.
	CPUTime() time.Duration
}

// HistoryStore defines the append-only log of past benchmark runs.
//
// A store is read once and written once per run. It has no protection against
// concurrent writers, so callers must serialize runs that share a store.
type HistoryStore interface {
	// Load returns every entry in the order it was appended.
	Load(ctx context.Context) ([]schema.HistoryEntry, error)

	// Last returns the most recent entry, or nil when the store is empty.
	Last(ctx context.Context) (*schema.HistoryEntry, error)

	// Append adds a new entry after all existing ones.
	Append(ctx context.Context, entry schema.HistoryEntry) error

	// Status returns status information about the history store.
	Status() (schema.HistoryStatus, error)

	// Close closes the underlying connection.
	Close() error
}
