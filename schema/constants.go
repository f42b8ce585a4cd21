package schema

// Custom string types for type safety.
type (
	// MetricName represents a tracked timing metric.
	MetricName string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the backend of the history store.
	DatabaseBackend string
)

// All tracked metrics.
const (
	TotalMetric MetricName = "total" // CPU time
	RealMetric  MetricName = "real"  // Wall-clock time
)

// AllMetrics is the display order of the tracked metrics.
var AllMetrics = []MetricName{TotalMetric, RealMetric}

// All output modes supported.
const (
	TextOut  OutputMode = "text" // default
	TableOut OutputMode = "table"
	CSVOut   OutputMode = "csv"
	JSONOut  OutputMode = "json"
)

// All history backends supported.
const (
	YAMLBackend       DatabaseBackend = "yaml" // default
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// HistorySchemaVersion is the current version of a persisted HistoryEntry.
const HistorySchemaVersion = 1

// DefaultRepetitions is how many times a suite is repeated per run.
const DefaultRepetitions = 10

// Placeholder is rendered where a comparison value is absent.
const Placeholder = "[-----]"

// SignificanceMarker flags a significant difference in the report.
const SignificanceMarker = "*"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:  {},
	TableOut: {},
	CSVOut:   {},
	JSONOut:  {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	YAMLBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
