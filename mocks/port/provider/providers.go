package provider

import (
	"context"

	"github.com/stretchr/testify/mock"

	providerport "github.com/littlehunt-studios/generation-processor/internal/domain/port/provider"
)

// MockVideoProvider is a testify mock for the VideoProvider port
type MockVideoProvider struct {
	mock.Mock
}

// Generate mocks the Generate method
func (m *MockVideoProvider) Generate(ctx context.Context, model string, input map[string]any) (*providerport.Prediction, error) {
	args := m.Called(ctx, model, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerport.Prediction), args.Error(1)
}

// CreateJob mocks the CreateJob method
func (m *MockVideoProvider) CreateJob(ctx context.Context, model string, input map[string]any) (*providerport.Prediction, error) {
	args := m.Called(ctx, model, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerport.Prediction), args.Error(1)
}

// GetJob mocks the GetJob method
func (m *MockVideoProvider) GetJob(ctx context.Context, id string) (*providerport.Prediction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerport.Prediction), args.Error(1)
}

// MockImageProvider is a testify mock for the ImageProvider port
type MockImageProvider struct {
	mock.Mock
}

// GenerateImage mocks the GenerateImage method
func (m *MockImageProvider) GenerateImage(ctx context.Context, prompt string, opts providerport.ImageOptions) (*providerport.Image, error) {
	args := m.Called(ctx, prompt, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerport.Image), args.Error(1)
}
