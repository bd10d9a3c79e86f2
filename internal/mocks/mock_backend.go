package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of backend.Backend
type MockBackend struct {
	mock.Mock
}

// Fetch mocks the Fetch method of backend.Backend
func (m *MockBackend) Fetch(ctx context.Context, key string) (interface{}, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Bool(1), args.Error(2)
}

// Save mocks the Save method of backend.Backend
func (m *MockBackend) Save(ctx context.Context, key string, value interface{}, lifetime time.Duration) error {
	args := m.Called(ctx, key, value, lifetime)
	return args.Error(0)
}

// Delete mocks the Delete method of backend.Backend
func (m *MockBackend) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// Flush mocks the Flush method of backend.Backend
func (m *MockBackend) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Contains mocks the Contains method of backend.Backend
func (m *MockBackend) Contains(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
