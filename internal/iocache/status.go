package iocache

import (
	"maps"
	"slices"

	"github.com/huangsam/benchtrack/schema"
)

// fillStatus derives the entry counts, time range and test names from loaded entries.
func fillStatus(status *schema.HistoryStatus, entries []schema.HistoryEntry) {
	status.TotalEntries = len(entries)
	if len(entries) == 0 {
		return
	}
	status.FirstEntry = entries[0].Time
	status.LastEntry = entries[len(entries)-1].Time

	names := make(map[string]struct{})
	for _, e := range entries {
		for name := range e.Results {
			names[name] = struct{}{}
		}
	}
	status.TestNames = slices.Sorted(maps.Keys(names))
}
