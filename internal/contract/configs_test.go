package contract

import (
	"testing"

	"github.com/huangsam/benchtrack/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		HistoryBackend: "yaml",
		Output:         "text",
		Precision:      DefaultPrecision,
		Color:          "no",
		Repetitions:    schema.DefaultRepetitions,
		Warmup:         true,
		Recurse:        true,
		Threads:        4,
		Tests: []schema.TestDefinition{
			{Name: "literal", Command: []string{"grep", "-r"}, Paths: []string{"."}, Queries: []string{"foo"}, Times: 2},
		},
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid config", mutate: func(*ConfigRawInput) {}},
		{name: "no tests is allowed", mutate: func(in *ConfigRawInput) { in.Tests = nil }},
		{name: "zero repetitions", mutate: func(in *ConfigRawInput) { in.Repetitions = 0 }, expectError: "repetitions"},
		{name: "zero threads", mutate: func(in *ConfigRawInput) { in.Threads = 0 }, expectError: "threads"},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = 12 }, expectError: "precision"},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: "invalid output format"},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: "--color"},
		{name: "negative max regression", mutate: func(in *ConfigRawInput) { in.MaxRegression = -1 }, expectError: "max-regression"},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.HistoryBackend = "redis" }, expectError: "invalid history backend"},
		{name: "mysql without connection", mutate: func(in *ConfigRawInput) { in.HistoryBackend = "mysql" }, expectError: "history-connect is required"},
		{
			name: "test without name",
			mutate: func(in *ConfigRawInput) {
				in.Tests = append(in.Tests, schema.TestDefinition{Command: []string{"true"}})
			},
			expectError: "missing a name",
		},
		{
			name: "duplicate test",
			mutate: func(in *ConfigRawInput) {
				in.Tests = append(in.Tests, in.Tests[0])
			},
			expectError: "duplicate test name",
		},
		{
			name: "test without command",
			mutate: func(in *ConfigRawInput) {
				in.Tests[0].Command = nil
			},
			expectError: "must define a command",
		},
		{
			name: "negative times",
			mutate: func(in *ConfigRawInput) {
				in.Tests[0].Times = -3
			},
			expectError: "times must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := validInput()
	input.HistoryBackend = ""
	input.Output = "TABLE"
	input.Tests[0].Times = 0
	input.Tests[0].Name = "  literal  "

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.YAMLBackend, cfg.HistoryBackend)
	assert.Equal(t, schema.TableOut, cfg.Output)
	assert.Equal(t, DefaultTimes, cfg.Tests[0].Times)
	assert.Equal(t, "literal", cfg.Tests[0].Name)
	assert.Equal(t, schema.DefaultRepetitions, cfg.Repetitions)
	assert.True(t, cfg.Warmup)
	assert.True(t, cfg.Recurse)
	assert.False(t, cfg.UseColors)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{schema.YAMLBackend, "", false},
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/bench", false},
		{schema.MySQLBackend, "user:pass@localhost/bench", true},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{schema.PostgreSQLBackend, "host=localhost dbname=bench", false},
		{schema.PostgreSQLBackend, "dbname=bench", true},
		{schema.PostgreSQLBackend, "host=localhost", true},
		{schema.PostgreSQLBackend, "", true},
	}
	for _, tt := range tests {
		err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
		if tt.wantErr {
			assert.Error(t, err, "%s %q", tt.backend, tt.conn)
		} else {
			assert.NoError(t, err, "%s %q", tt.backend, tt.conn)
		}
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Repetitions: 3,
		Tests: []schema.TestDefinition{
			{Name: "a", Command: []string{"echo"}, Queries: []string{"x"}},
		},
	}
	clone := cfg.Clone()
	clone.Tests[0].Queries[0] = "changed"
	clone.Repetitions = 7

	assert.Equal(t, "x", cfg.Tests[0].Queries[0])
	assert.Equal(t, 3, cfg.Repetitions)
}

func TestProcessProfilingConfig(t *testing.T) {
	var profile ProfileConfig
	require.NoError(t, ProcessProfilingConfig(&profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(&profile, "bench"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "bench", profile.Prefix)
}
