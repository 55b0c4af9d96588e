package predictor

import (
	"context"
	"net/http"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/apiclient"
)

// Prediction service operations, also used as metric labels
const (
	OpPredict       = "predictor.predict"
	OpFilterOptions = "predictor.filter_options"
)

// GatewayImpl implements domain.PredictorGateway. The prediction service answers with bare
// JSON documents rather than the success/data envelope.
type GatewayImpl struct {
	client *apiclient.Client
}

// NewGateway creates a predictor gateway
func NewGateway(client *apiclient.Client) domain.PredictorGateway {
	return &GatewayImpl{client: client}
}

// Predict ranks colleges for the given rank and filters
func (g *GatewayImpl) Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResponse, error) {
	if req.IncludeGovernment == nil {
		req.IncludeGovernment = boolPtr(true)
	}
	if req.IncludePrivate == nil {
		req.IncludePrivate = boolPtr(true)
	}

	var resp domain.PredictionResponse
	if err := g.client.Do(ctx, apiclient.Request{
		Operation: OpPredict,
		Method:    http.MethodPost,
		Path:      "/predict",
		Body:      req,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Predictions == nil {
		resp.Predictions = []domain.CollegePrediction{}
	}
	return &resp, nil
}

// FilterOptions returns the cascading filter values
func (g *GatewayImpl) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	var opts domain.FilterOptions
	if err := g.client.Do(ctx, apiclient.Request{
		Operation: OpFilterOptions,
		Method:    http.MethodGet,
		Path:      "/filter-options",
	}, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

func boolPtr(b bool) *bool { return &b }
