package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/huangsam/benchtrack/core/agg"
	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for history tracking.
const (
	runsTable    = "benchtrack_runs"
	samplesTable = "benchtrack_samples"
)

// SQLStore implements HistoryStore on top of a SQL database.
// Each run is a row in benchtrack_runs and every sample a row in benchtrack_samples.
type SQLStore struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	location string
	migrator *migrate.Migrate
}

var _ contract.HistoryStore = &SQLStore{} // Compile-time check

// openDB opens and pings the database for a SQL backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		dsn, dsnErr := mysqlDSN(connStr)
		if dsnErr != nil {
			return nil, fmt.Errorf("invalid MySQL connection string: %w. Expected user:password@tcp(host:port)/dbname", dsnErr)
		}
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=...", err)
		}

	default:
		return nil, fmt.Errorf("unsupported SQL backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// mysqlDSN makes sure DATETIME columns scan into time.Time in UTC.
func mysqlDSN(connStr string) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// NewSQLStore opens a SQL history store and brings its schema up to date.
func NewSQLStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	m, err := newMigrator(db, backend)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrateUp(m); err != nil {
		_, _ = m.Close()
		return nil, err
	}

	location := connStr
	if backend == schema.SQLiteBackend && location == "" {
		location = contract.GetHistoryDBFilePath()
	}
	return &SQLStore{db: db, backend: backend, location: redactConnString(backend, location), migrator: m}, nil
}

// rebind rewrites ? placeholders for the backend.
func (s *SQLStore) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// formatTime converts a time.Time to the appropriate format for the backend.
func (s *SQLStore) formatTime(t time.Time) any {
	switch s.backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t.UTC()
	}
}

// scanTime reads a run_time column written by formatTime.
func (s *SQLStore) scanTime(scan func(dest ...any) error, id *int64, version *int) (time.Time, error) {
	switch s.backend {
	case schema.SQLiteBackend:
		var raw string
		if err := scan(id, &raw, version); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, raw)
	default: // MySQL and PostgreSQL store as native datetime
		var t time.Time
		if err := scan(id, &t, version); err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
}

type runRow struct {
	id      int64
	time    time.Time
	version int
}

// Load returns every run ordered by insertion.
func (s *SQLStore) Load(ctx context.Context) ([]schema.HistoryEntry, error) {
	runs, err := s.queryRuns(ctx, fmt.Sprintf("SELECT run_id, run_time, schema_version FROM %s ORDER BY run_id", runsTable))
	if err != nil {
		return nil, err
	}
	samples, err := s.querySamples(ctx, fmt.Sprintf(
		"SELECT run_id, test_name, metric, sample_index, value FROM %s ORDER BY run_id, test_name, metric, sample_index", samplesTable))
	if err != nil {
		return nil, err
	}
	return s.assemble(runs, samples)
}

// Last returns the most recent run, or nil when there is none.
func (s *SQLStore) Last(ctx context.Context) (*schema.HistoryEntry, error) {
	runs, err := s.queryRuns(ctx, fmt.Sprintf("SELECT run_id, run_time, schema_version FROM %s ORDER BY run_id DESC LIMIT 1", runsTable))
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	samples, err := s.querySamples(ctx, s.rebind(fmt.Sprintf(
		"SELECT run_id, test_name, metric, sample_index, value FROM %s WHERE run_id = ? ORDER BY test_name, metric, sample_index", samplesTable)),
		runs[0].id)
	if err != nil {
		return nil, err
	}
	entries, err := s.assemble(runs, samples)
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

func (s *SQLStore) queryRuns(ctx context.Context, query string) ([]runRow, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query history runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []runRow
	for rows.Next() {
		var r runRow
		r.time, err = s.scanTime(rows.Scan, &r.id, &r.version)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history runs: %w", err)
	}
	return runs, nil
}

// sampleKey identifies the sample sequence of one metric of one test in one run.
type sampleKey struct {
	run    int64
	test   string
	metric schema.MetricName
}

func (s *SQLStore) querySamples(ctx context.Context, query string, args ...any) (map[sampleKey][]float64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	samples := make(map[sampleKey][]float64)
	for rows.Next() {
		var key sampleKey
		var metric string
		var index int
		var value float64
		if err := rows.Scan(&key.run, &key.test, &metric, &index, &value); err != nil {
			return nil, fmt.Errorf("failed to scan history sample: %w", err)
		}
		key.metric = schema.MetricName(metric)
		samples[key] = append(samples[key], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history samples: %w", err)
	}
	return samples, nil
}

// assemble joins runs and samples into entries, recomputing statistics from the samples.
func (s *SQLStore) assemble(runs []runRow, samples map[sampleKey][]float64) ([]schema.HistoryEntry, error) {
	entries := make([]schema.HistoryEntry, len(runs))
	index := make(map[int64]int, len(runs))
	for i, r := range runs {
		if r.version > schema.HistorySchemaVersion {
			return nil, &schema.HistoryCorruptError{
				Location: s.location,
				Err:      fmt.Errorf("run %d has unsupported schema version %d", r.id, r.version),
			}
		}
		entries[i] = schema.HistoryEntry{
			Version: r.version,
			Time:    r.time,
			Results: make(map[string]map[schema.MetricName]schema.MetricRecord),
		}
		index[r.id] = i
	}

	for key, values := range samples {
		i, ok := index[key.run]
		if !ok {
			continue
		}
		rec, err := agg.RecordFromSamples(values)
		if err != nil {
			return nil, err
		}
		results := entries[i].Results
		if results[key.test] == nil {
			results[key.test] = make(map[schema.MetricName]schema.MetricRecord)
		}
		results[key.test][key.metric] = rec
	}
	return entries, nil
}

// Append writes the run and all of its samples in one transaction.
func (s *SQLStore) Append(ctx context.Context, entry schema.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version := entry.Version
	if version == 0 {
		version = schema.HistorySchemaVersion
	}

	var runID int64
	switch s.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf("INSERT INTO %s (run_time, schema_version) VALUES ($1, $2) RETURNING run_id", runsTable)
		if err := tx.QueryRowContext(ctx, query, s.formatTime(entry.Time), version).Scan(&runID); err != nil {
			return fmt.Errorf("failed to insert history run: %w", err)
		}
	default: // SQLite and MySQL
		query := fmt.Sprintf("INSERT INTO %s (run_time, schema_version) VALUES (?, ?)", runsTable)
		result, err := tx.ExecContext(ctx, query, s.formatTime(entry.Time), version)
		if err != nil {
			return fmt.Errorf("failed to insert history run: %w", err)
		}
		if runID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read history run id: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(fmt.Sprintf(
		"INSERT INTO %s (run_id, test_name, metric, sample_index, value) VALUES (?, ?, ?, ?, ?)", samplesTable)))
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, test := range slices.Sorted(maps.Keys(entry.Results)) {
		for metric, rec := range entry.Results[test] {
			for i, v := range rec.Samples {
				if _, err := stmt.ExecContext(ctx, runID, test, string(metric), i, v); err != nil {
					return fmt.Errorf("failed to insert sample for %s (%s): %w", test, metric, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history run: %w", err)
	}
	return nil
}

// Clear removes every run and sample.
func (s *SQLStore) Clear(ctx context.Context) error {
	for _, table := range []string{samplesTable, runsTable} {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Status returns status information about the history store.
func (s *SQLStore) Status() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(s.backend),
		Location:  s.location,
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	ctx := context.Background()
	runs, err := s.queryRuns(ctx, fmt.Sprintf("SELECT run_id, run_time, schema_version FROM %s ORDER BY run_id", runsTable))
	if err != nil {
		return status, err
	}
	status.TotalEntries = len(runs)
	if len(runs) > 0 {
		status.FirstEntry = runs[0].time
		status.LastEntry = runs[len(runs)-1].time
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT test_name FROM %s ORDER BY test_name", samplesTable))
	if err != nil {
		return status, fmt.Errorf("failed to query test names: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return status, fmt.Errorf("failed to scan test name: %w", err)
		}
		status.TestNames = append(status.TestNames, name)
	}
	return status, rows.Err()
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if s.migrator != nil {
		_, _ = s.migrator.Close()
		s.migrator = nil
	}
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// redactConnString hides credentials in connection strings shown to users.
func redactConnString(backend schema.DatabaseBackend, connStr string) string {
	switch backend {
	case schema.MySQLBackend:
		if cfg, err := mysql.ParseDSN(connStr); err == nil {
			return fmt.Sprintf("%s@%s(%s)/%s", cfg.User, cfg.Net, cfg.Addr, cfg.DBName)
		}
		return "mysql"
	case schema.PostgreSQLBackend:
		fields := strings.Fields(connStr)
		kept := make([]string, 0, len(fields))
		for _, f := range fields {
			if strings.HasPrefix(f, "password=") {
				continue
			}
			kept = append(kept, f)
		}
		return strings.Join(kept, " ")
	default:
		return connStr
	}
}
