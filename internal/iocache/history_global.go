package iocache

import (
	"context"
	"fmt"
	"sync"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
)

// Global Manager instance for the CLI.
var (
	Manager   = &HistoryManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// NewHistoryStore creates the history store for the backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	switch backend {
	case schema.YAMLBackend, "":
		return NewYAMLStore(connStr), nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLStore(backend, connStr)
	case schema.NoneBackend:
		return NoneStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// InitHistory initializes the global manager with the configured history store.
func InitHistory(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		store, err := NewHistoryStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize history store: %w", err)
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.history = store
	})

	return initErr
}

// CloseHistory should be called on application shutdown.
func CloseHistory() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.history != nil {
			if err := Manager.history.Close(); err != nil {
				contract.LogWarn("failed to close history store", err)
			}
			Manager.history = nil
		}
	})
}

// clearer is implemented by stores that can drop their contents.
type clearer interface {
	Clear(ctx context.Context) error
}

// ClearHistory deletes every entry of the configured history store.
func ClearHistory(ctx context.Context, backend schema.DatabaseBackend, connStr string) error {
	store, err := NewHistoryStore(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	c, ok := store.(clearer)
	if !ok {
		return nil
	}
	if err := c.Clear(ctx); err != nil {
		return err
	}
	fmt.Printf("History cleared for %s backend\n", backend)
	return nil
}
