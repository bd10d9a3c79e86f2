package mocks

import (
	"context"

	"kvcache/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockLogger is a testify double for logger.Service. Tests that only care
// about HTTP behavior register catch-all expectations; tests about logging
// assert on the exact operation and message.
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) LogInfo(ctx context.Context, operation, message string, metadata map[string]interface{}) {
	m.Called(ctx, operation, message, metadata)
}

func (m *MockLogger) LogSuccess(ctx context.Context, operation, targetName, message string, metadata map[string]interface{}) {
	m.Called(ctx, operation, targetName, message, metadata)
}

func (m *MockLogger) LogError(ctx context.Context, operation, targetName, message string, err error, severity models.LogSeverity, metadata map[string]interface{}) {
	m.Called(ctx, operation, targetName, message, err, severity, metadata)
}

func (m *MockLogger) Close() error {
	args := m.Called()
	return args.Error(0)
}
