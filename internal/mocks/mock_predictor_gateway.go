package mocks

import (
	"context"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// MockPredictorGateway implements domain.PredictorGateway interface for testing
type MockPredictorGateway struct {
	PredictFunc       func(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResponse, error)
	FilterOptionsFunc func(ctx context.Context) (*domain.FilterOptions, error)
}

// NewMockPredictorGateway creates a new MockPredictorGateway with default behaviors
func NewMockPredictorGateway() *MockPredictorGateway {
	return &MockPredictorGateway{}
}

// Predict ranks colleges
func (m *MockPredictorGateway) Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResponse, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, req)
	}
	// Default behavior: no matches
	return &domain.PredictionResponse{Predictions: []domain.CollegePrediction{}}, nil
}

// FilterOptions returns filter values
func (m *MockPredictorGateway) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	if m.FilterOptionsFunc != nil {
		return m.FilterOptionsFunc(ctx)
	}
	return &domain.FilterOptions{}, nil
}

// Compile-time interface compliance verification
var _ domain.PredictorGateway = (*MockPredictorGateway)(nil)
