package iocache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/benchtrack/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewHistoryStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		check   func(t *testing.T, store any)
	}{
		{"yaml", schema.YAMLBackend, filepath.Join(dir, "h.yml"), func(t *testing.T, store any) {
			assert.IsType(t, &YAMLStore{}, store)
		}},
		{"default", "", filepath.Join(dir, "d.yml"), func(t *testing.T, store any) {
			assert.IsType(t, &YAMLStore{}, store)
		}},
		{"sqlite", schema.SQLiteBackend, filepath.Join(dir, "h.db"), func(t *testing.T, store any) {
			assert.IsType(t, &SQLStore{}, store)
		}},
		{"none", schema.NoneBackend, "", func(t *testing.T, store any) {
			assert.IsType(t, NoneStore{}, store)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewHistoryStore(tt.backend, tt.connStr)
			require.NoError(t, err)
			defer func() { _ = store.Close() }()
			tt.check(t, store)
		})
	}

	_, err := NewHistoryStore("bogus", "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestNoneStore(t *testing.T) {
	ctx := context.Background()
	var store NoneStore

	require.NoError(t, store.Append(ctx, testEntry(time.Now(), 1)))
	last, err := store.Last(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	status, err := store.Status()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.yml")
	require.NoError(t, NewYAMLStore(path).Append(ctx, testEntry(time.Now().UTC(), 1)))

	require.NoError(t, ClearHistory(ctx, schema.YAMLBackend, path))
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, ClearHistory(ctx, schema.NoneBackend, ""))
}

func TestHistoryManager(t *testing.T) {
	store := &MockHistoryStore{}
	mgr := &HistoryManager{history: store}
	assert.Same(t, store, mgr.GetHistoryStore())
}

func TestExecuteHistoryExport(t *testing.T) {
	ctx := context.Background()
	prefix := filepath.Join(t.TempDir(), "bench")

	store := &MockHistoryStore{}
	store.On("Load", mock.Anything).Return([]schema.HistoryEntry{
		testEntry(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1, 2, 3),
		testEntry(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 4, 5, 6),
	}, nil)
	store.On("Status").Return(schema.HistoryStatus{Backend: "yaml"}, nil)

	require.NoError(t, ExecuteHistoryExport(ctx, store, prefix))
	for _, suffix := range []string{".runs.parquet", ".samples.parquet", ".statistics.parquet"} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err, suffix)
		assert.Positive(t, info.Size())
	}
	store.AssertExpectations(t)
}

func TestExecuteHistoryExportErrors(t *testing.T) {
	ctx := context.Background()

	assert.ErrorContains(t, ExecuteHistoryExport(ctx, NoneStore{}, ""), "--output-file is required")
	assert.ErrorContains(t, ExecuteHistoryExport(ctx, NoneStore{}, filepath.Join(t.TempDir(), "x")), "no history found")

	store := &MockHistoryStore{}
	store.On("Load", mock.Anything).Return(nil, errors.New("boom"))
	assert.ErrorContains(t, ExecuteHistoryExport(ctx, store, filepath.Join(t.TempDir(), "x")), "failed to load history")
}
