package contract

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/huangsam/benchtrack/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 5
	MaxPrecision     = 9
	DefaultTimes     = 1
)

// DefaultThreads is the default thread hint passed to workloads.
var DefaultThreads = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a benchmark run.
// This struct remains the "final, validated" config.
type Config struct {
	Repetitions int
	Warmup      bool
	Recurse     bool
	Threads     int
	Tests       []schema.TestDefinition

	HistoryBackend schema.DatabaseBackend
	HistoryConnect string // Please use env var for database credentials

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	UseColors  bool // Enable colored deltas in table output

	MaxRegression float64 // Percent slowdown tolerated by the check command
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	HistoryBackend string `mapstructure:"history-backend"`
	HistoryConnect string `mapstructure:"history-connect"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Color          string `mapstructure:"color"`

	// --- Fields from runCmd.Flags() and checkCmd.Flags() ---
	Repetitions   int     `mapstructure:"repetitions"`
	Warmup        bool    `mapstructure:"warmup"`
	Recurse       bool    `mapstructure:"recurse"`
	Threads       int     `mapstructure:"threads"`
	MaxRegression float64 `mapstructure:"max-regression"`

	// --- Test definitions from config file ---
	Tests []schema.TestDefinition `mapstructure:"tests"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Tests != nil {
		clone.Tests = make([]schema.TestDefinition, len(c.Tests))
		for i, def := range c.Tests {
			def.Command = append([]string(nil), def.Command...)
			def.Paths = append([]string(nil), def.Paths...)
			def.Queries = append([]string(nil), def.Queries...)
			clone.Tests[i] = def
		}
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processTestDefinitions(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.YAMLBackend, schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Warmup = input.Warmup
	cfg.Recurse = input.Recurse

	colors, err := ParseColorMode(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Repetitions < 1 {
		return fmt.Errorf("repetitions must be greater than 0 (received %d)", input.Repetitions)
	}
	cfg.Repetitions = input.Repetitions

	if input.Threads < 1 {
		return fmt.Errorf("threads must be greater than 0 (received %d)", input.Threads)
	}
	cfg.Threads = input.Threads

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, table, csv, json", input.Output)
	}

	if input.MaxRegression < 0 {
		return fmt.Errorf("max-regression cannot be negative (received %.2f)", input.MaxRegression)
	}
	cfg.MaxRegression = input.MaxRegression

	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.YAMLBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be yaml, sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryConnect = input.HistoryConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryConnect)
}

// processTestDefinitions validates the configured tests and fills in defaults.
// Having no tests is allowed here, since only the run and check commands need them.
func processTestDefinitions(cfg *Config, input *ConfigRawInput) error {
	seen := make(map[string]struct{}, len(input.Tests))
	cfg.Tests = make([]schema.TestDefinition, 0, len(input.Tests))
	for i, def := range input.Tests {
		def.Name = strings.TrimSpace(def.Name)
		if def.Name == "" {
			return fmt.Errorf("test #%d is missing a name", i+1)
		}
		if _, dup := seen[def.Name]; dup {
			return fmt.Errorf("duplicate test name '%s'", def.Name)
		}
		seen[def.Name] = struct{}{}

		if len(def.Command) == 0 || strings.TrimSpace(def.Command[0]) == "" {
			return fmt.Errorf("test '%s' must define a command", def.Name)
		}
		if def.Times == 0 {
			def.Times = DefaultTimes
		}
		if def.Times < 0 {
			return fmt.Errorf("test '%s' times must be greater than 0 (received %d)", def.Name, def.Times)
		}
		cfg.Tests = append(cfg.Tests, def)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
