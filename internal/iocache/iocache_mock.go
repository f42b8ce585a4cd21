package iocache

import (
	"context"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// Load implements the HistoryStore interface.
func (m *MockHistoryStore) Load(ctx context.Context) ([]schema.HistoryEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]schema.HistoryEntry)
	return entries, args.Error(1)
}

// Last implements the HistoryStore interface.
func (m *MockHistoryStore) Last(ctx context.Context) (*schema.HistoryEntry, error) {
	args := m.Called(ctx)
	entry, _ := args.Get(0).(*schema.HistoryEntry)
	return entry, args.Error(1)
}

// Append implements the HistoryStore interface.
func (m *MockHistoryStore) Append(ctx context.Context, entry schema.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// Status implements the HistoryStore interface.
func (m *MockHistoryStore) Status() (schema.HistoryStatus, error) {
	args := m.Called()
	status, _ := args.Get(0).(schema.HistoryStatus)
	return status, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
