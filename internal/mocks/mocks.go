// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/fospace/api/schemas"
	"github.com/xkilldash9x/fospace/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Database() config.DatabaseConfig {
	args := m.Called()
	return args.Get(0).(config.DatabaseConfig)
}

func (m *MockConfig) Engine() config.EngineConfig {
	args := m.Called()
	return args.Get(0).(config.EngineConfig)
}

func (m *MockConfig) Resolver() config.ResolverConfig {
	args := m.Called()
	return args.Get(0).(config.ResolverConfig)
}

func (m *MockConfig) Output() config.OutputConfig {
	args := m.Called()
	return args.Get(0).(config.OutputConfig)
}

// --- Setters ---

func (m *MockConfig) SetEngineWorkerConcurrency(w int) {
	m.Called(w)
}

func (m *MockConfig) SetOutputFormat(f string) {
	m.Called(f)
}

func (m *MockConfig) SetOutputPath(p string) {
	m.Called(p)
}

// -- Store Mock --

// MockStore mocks the result store.
type MockStore struct {
	mock.Mock
}

// PersistResult provides a mock function for persisting section results.
func (m *MockStore) PersistResult(ctx context.Context, res *schemas.SectionResult) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

// GetNotifications provides a mock function for retrieving stored notifications.
func (m *MockStore) GetNotifications(ctx context.Context, runID, sectionID string) ([]schemas.NotificationRecord, error) {
	args := m.Called(ctx, runID, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schemas.NotificationRecord), args.Error(1)
}

// -- Worker Mock --

// MockWorker mocks the engine's section worker.
type MockWorker struct {
	mock.Mock
}

// Resolve provides a mock function for resolving one section.
func (m *MockWorker) Resolve(ctx context.Context, runID string, section schemas.Section) (*schemas.SectionResult, error) {
	args := m.Called(ctx, runID, section)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.SectionResult), args.Error(1)
}
