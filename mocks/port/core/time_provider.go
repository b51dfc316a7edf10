package core

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
)

// MockTimeProvider is a testify mock for the TimeProvider port
type MockTimeProvider struct {
	mock.Mock
}

// Now mocks the Now method
func (m *MockTimeProvider) Now() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

// Since mocks the Since method
func (m *MockTimeProvider) Since(t time.Time) coreport.Duration {
	args := m.Called(t)
	return args.Get(0).(coreport.Duration)
}

// Sleep mocks the Sleep method
func (m *MockTimeProvider) Sleep(d coreport.Duration) {
	m.Called(d)
}

// WithTimeout mocks the WithTimeout method
func (m *MockTimeProvider) WithTimeout(ctx context.Context, timeout coreport.Duration) (context.Context, context.CancelFunc) {
	args := m.Called(ctx, timeout)
	return args.Get(0).(context.Context), args.Get(1).(context.CancelFunc)
}

// FixedTimeProvider is a deterministic TimeProvider for tests that don't
// care about expectation bookkeeping. Sleep returns immediately.
type FixedTimeProvider struct {
	Time time.Time
}

// NewFixedTimeProvider returns a provider pinned to t
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{Time: t}
}

// Now returns the pinned time
func (f *FixedTimeProvider) Now() time.Time {
	return f.Time
}

// Since measures against the pinned time
func (f *FixedTimeProvider) Since(t time.Time) coreport.Duration {
	return coreport.Duration(f.Time.Sub(t))
}

// Sleep does not sleep
func (f *FixedTimeProvider) Sleep(coreport.Duration) {}

// WithTimeout returns a real timeout context
func (f *FixedTimeProvider) WithTimeout(ctx context.Context, timeout coreport.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}
