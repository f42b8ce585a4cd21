// Package iocache persists the history of benchmark runs.
package iocache

import (
	"context"
	"sync"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
)

// HistoryManager holds the history store shared by the CLI commands.
type HistoryManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

// GetHistoryStore returns the history store.
func (mgr *HistoryManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// NoneStore is a history store that remembers nothing.
type NoneStore struct{}

var _ contract.HistoryStore = NoneStore{} // Compile-time check

// Load implements the HistoryStore interface.
func (NoneStore) Load(context.Context) ([]schema.HistoryEntry, error) { return nil, nil }

// Last implements the HistoryStore interface.
func (NoneStore) Last(context.Context) (*schema.HistoryEntry, error) { return nil, nil }

// Append implements the HistoryStore interface.
func (NoneStore) Append(context.Context, schema.HistoryEntry) error { return nil }

// Status implements the HistoryStore interface.
func (NoneStore) Status() (schema.HistoryStatus, error) {
	return schema.HistoryStatus{Backend: string(schema.NoneBackend)}, nil
}

// Close implements the HistoryStore interface.
func (NoneStore) Close() error { return nil }
