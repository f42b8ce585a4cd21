package iocache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
	"gopkg.in/yaml.v3"
)

// legacyTimeFormat is how the first generation of history logs wrote timestamps.
const legacyTimeFormat = "2006-01-02 15:04:05 -0700"

// YAMLStore implements HistoryStore on a single human-readable YAML file.
// Decoded entries are kept until the file changes on disk, so a run reads it once.
type YAMLStore struct {
	path string
	now  func() time.Time
	read func(string) ([]byte, error)

	mu     sync.Mutex
	cache  []schema.HistoryEntry
	cached os.FileInfo // file the cache was decoded from
}

var _ contract.HistoryStore = &YAMLStore{} // Compile-time check

// NewYAMLStore creates a store backed by the file at path. The file is created on first append.
func NewYAMLStore(path string) *YAMLStore {
	if path == "" {
		path = contract.GetHistoryFilePath()
	}
	return &YAMLStore{path: path, now: time.Now, read: os.ReadFile}
}

// Path returns the location of the history file.
func (s *YAMLStore) Path() string {
	return s.path
}

// Load reads every entry from the file. A missing or empty file has no entries.
// A file that cannot be read or decoded is reported as a HistoryCorruptError.
func (s *YAMLStore) Load(_ context.Context) ([]schema.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	var corrupt *schema.HistoryCorruptError
	if err != nil && !errors.As(err, &corrupt) {
		return nil, &schema.HistoryCorruptError{Location: s.path, Err: err}
	}
	return entries, err
}

// load returns I/O failures as plain errors and decode failures as HistoryCorruptError.
func (s *YAMLStore) load() ([]schema.HistoryEntry, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.cache, s.cached = nil, nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	if s.cached != nil && sameContent(s.cached, info) {
		return slices.Clone(s.cache), nil
	}

	data, err := s.read(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.cache, s.cached = nil, nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	entries, err := decodeHistory(data)
	if err != nil {
		s.cache, s.cached = nil, nil
		return nil, &schema.HistoryCorruptError{Location: s.path, Err: err}
	}
	s.cache, s.cached = entries, info
	return slices.Clone(entries), nil
}

// sameContent reports whether b is the same unmodified file as a. Writes go
// through a rename, so every write we make also changes the file identity.
func sameContent(a, b os.FileInfo) bool {
	return os.SameFile(a, b) && a.Size() == b.Size() && a.ModTime().Equal(b.ModTime())
}

// Last returns the most recent entry, or nil when there is none.
func (s *YAMLStore) Last(ctx context.Context) (*schema.HistoryEntry, error) {
	entries, err := s.Load(ctx)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[len(entries)-1], nil
}

// Append rewrites the file with entry added at the end. A file that cannot be decoded
// is moved aside first; one that cannot be read is left alone and the error returned.
func (s *YAMLStore) Append(_ context.Context, entry schema.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		var corrupt *schema.HistoryCorruptError
		if !errors.As(err, &corrupt) {
			return err
		}
		aside := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
		if renameErr := os.Rename(s.path, aside); renameErr != nil {
			return fmt.Errorf("failed to move corrupt history aside: %w", renameErr)
		}
		contract.LogWarn("history file was corrupt, moved to "+aside, corrupt.Err)
		entries = nil
	}

	if entry.Version == 0 {
		entry.Version = schema.HistorySchemaVersion
	}
	entries = append(entries, entry)
	if err := s.write(schema.HistoryFile{Version: schema.HistorySchemaVersion, Entries: entries}); err != nil {
		s.cache, s.cached = nil, nil
		return err
	}

	s.cache, s.cached = nil, nil
	if info, err := os.Stat(s.path); err == nil {
		s.cache, s.cached = entries, info
	}
	return nil
}

// write replaces the file atomically through a temporary file in the same directory.
func (s *YAMLStore) write(doc schema.HistoryFile) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary history file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// Clear removes the history file.
func (s *YAMLStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache, s.cached = nil, nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove history file: %w", err)
	}
	return nil
}

// Status returns status information about the history store.
func (s *YAMLStore) Status() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{Backend: string(schema.YAMLBackend), Location: s.path}
	entries, err := s.Load(context.Background())
	if err != nil {
		return status, err
	}
	status.Connected = true
	fillStatus(&status, entries)
	return status, nil
}

// Close is a no-op; the file is only open while it is read or written.
func (s *YAMLStore) Close() error {
	return nil
}

// decodeHistory parses either the versioned document or a legacy top-level list of runs.
func decodeHistory(data []byte) ([]schema.HistoryEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}

	switch node := root.Content[0]; node.Kind {
	case yaml.MappingNode:
		var doc schema.HistoryFile
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.Version < 1 || doc.Version > schema.HistorySchemaVersion {
			return nil, fmt.Errorf("unsupported history version %d", doc.Version)
		}
		for i := range doc.Entries {
			switch v := doc.Entries[i].Version; {
			case v == 0:
				doc.Entries[i].Version = doc.Version
			case v > schema.HistorySchemaVersion:
				return nil, fmt.Errorf("entry %d has unsupported version %d", i, v)
			}
		}
		return doc.Entries, nil
	case yaml.SequenceNode:
		return decodeLegacy(node)
	default:
		return nil, fmt.Errorf("unexpected YAML node at line %d", node.Line)
	}
}

// legacyEntry is one run of the unversioned log: a list of {time, results}
// where every test maps "real", "total", "real (avg)" and so on.
type legacyEntry struct {
	Time    string                    `yaml:"time"`
	Results map[string]map[string]any `yaml:"results"`
}

// legacyStats maps the suffix of a legacy statistics key to its record field.
var legacyStats = map[string]func(*schema.MetricRecord, float64){
	"best":     func(r *schema.MetricRecord, v float64) { r.Min = schema.Float(v) },
	"avg":      func(r *schema.MetricRecord, v float64) { r.Mean = schema.Float(v) },
	"variance": func(r *schema.MetricRecord, v float64) { r.Variance = schema.Float(v) },
	"sd":       func(r *schema.MetricRecord, v float64) { r.StdDev = schema.Float(v) },
}

func decodeLegacy(node *yaml.Node) ([]schema.HistoryEntry, error) {
	var runs []legacyEntry
	if err := node.Decode(&runs); err != nil {
		return nil, err
	}

	entries := make([]schema.HistoryEntry, 0, len(runs))
	for i, run := range runs {
		t, err := parseLegacyTime(run.Time)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entry := schema.HistoryEntry{
			Version: schema.HistorySchemaVersion,
			Time:    t,
			Results: make(map[string]map[schema.MetricName]schema.MetricRecord, len(run.Results)),
		}
		for test, fields := range run.Results {
			metrics := make(map[schema.MetricName]schema.MetricRecord)
			for _, key := range slices.Sorted(maps.Keys(fields)) {
				if err := applyLegacyField(metrics, key, fields[key]); err != nil {
					return nil, fmt.Errorf("entry %d, %s: %w", i, test, err)
				}
			}
			entry.Results[test] = metrics
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func applyLegacyField(metrics map[schema.MetricName]schema.MetricRecord, key string, value any) error {
	name, stat, hasStat := strings.Cut(key, " (")
	metric := schema.MetricName(name)
	if metric != schema.TotalMetric && metric != schema.RealMetric {
		return nil
	}
	rec := metrics[metric]
	if !hasStat {
		list, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%s samples are not a list", key)
		}
		rec.Samples = make([]float64, 0, len(list))
		for _, v := range list {
			f, ok := toFloat(v)
			if !ok {
				return fmt.Errorf("%s has a non-numeric sample %v", key, v)
			}
			rec.Samples = append(rec.Samples, f)
		}
		metrics[metric] = rec
		return nil
	}

	set, known := legacyStats[strings.TrimSuffix(stat, ")")]
	if !known {
		return nil // deltas and significance flags are derived, not stored
	}
	if f, ok := toFloat(value); ok {
		set(&rec, f)
		metrics[metric] = rec
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func parseLegacyTime(s string) (time.Time, error) {
	for _, layout := range []string{legacyTimeFormat, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
