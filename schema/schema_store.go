package schema

import "time"

// MetricRecord is the persisted form of one metric of one test.
// Statistics are optional so that entries written before a field existed still decode.
type MetricRecord struct {
	Samples  []float64 `yaml:"samples" json:"samples"`
	Min      *float64  `yaml:"best,omitempty" json:"best,omitempty"`
	Mean     *float64  `yaml:"avg,omitempty" json:"avg,omitempty"`
	Variance *float64  `yaml:"variance,omitempty" json:"variance,omitempty"`
	StdDev   *float64  `yaml:"sd,omitempty" json:"sd,omitempty"`
}

// HistoryEntry is one persisted run: when it happened and what it measured.
type HistoryEntry struct {
	Version int                                    `yaml:"version" json:"version"`
	Time    time.Time                              `yaml:"time" json:"time"`
	Results map[string]map[MetricName]MetricRecord `yaml:"results" json:"results"`
}

// HistoryFile is the document written by the YAML history store.
type HistoryFile struct {
	Version int            `yaml:"version"`
	Entries []HistoryEntry `yaml:"entries"`
}

// HistoryStatus represents the status of the history store.
type HistoryStatus struct {
	Backend      string    `json:"backend"`
	Location     string    `json:"location"`
	Connected    bool      `json:"connected"`
	TotalEntries int       `json:"total_entries"`
	FirstEntry   time.Time `json:"first_entry"`
	LastEntry    time.Time `json:"last_entry"`
	TestNames    []string  `json:"test_names"`
}
