// Package predict wraps the two external inference collaborators: the ML
// disease-prediction HTTP service and the semantic-embedding search service.
// Both are consumed as black boxes; an unreachable upstream is surfaced as an
// upstream-unavailable error, never a crash.
package predict

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
)

// Client calls the external ML disease-prediction service.
type Client struct {
	http *resty.Client
}

// NewClient creates a prediction client for the given base URL.
func NewClient(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// PredictionRequest asks the ML service to predict a disease from symptoms.
type PredictionRequest struct {
	Symptoms []string `json:"symptoms"`
	Model    string   `json:"model,omitempty"`
}

// PredictionResult is a single model's prediction.
type PredictionResult struct {
	Prediction string             `json:"prediction"`
	Confidence float64            `json:"confidence"`
	Model      string             `json:"model,omitempty"`
	TopMatches []PredictionResult `json:"top_matches,omitempty"`
}

// Symptoms returns the list of symptoms the ML service understands.
func (c *Client) Symptoms(ctx context.Context) ([]string, error) {
	var out struct {
		Symptoms []string `json:"symptoms"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/symptoms")
	if err != nil {
		return nil, apperr.UpstreamUnavailable("prediction service unreachable", err)
	}
	if resp.IsError() {
		return nil, apperr.UpstreamUnavailable("prediction service returned "+resp.Status(), nil)
	}
	return out.Symptoms, nil
}

// Models returns the model identifiers the ML service can run.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var out struct {
		Models []string `json:"models"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/models")
	if err != nil {
		return nil, apperr.UpstreamUnavailable("prediction service unreachable", err)
	}
	if resp.IsError() {
		return nil, apperr.UpstreamUnavailable("prediction service returned "+resp.Status(), nil)
	}
	return out.Models, nil
}

// Predict asks the ML service for a disease prediction.
func (c *Client) Predict(ctx context.Context, req PredictionRequest) (*PredictionResult, error) {
	if len(req.Symptoms) == 0 {
		return nil, apperr.Validation("symptoms list must not be empty")
	}
	var out PredictionResult
	resp, err := c.http.R().SetContext(ctx).SetBody(req).SetResult(&out).Post("/predict")
	if err != nil {
		return nil, apperr.UpstreamUnavailable("prediction service unreachable", err)
	}
	if resp.IsError() {
		return nil, apperr.UpstreamUnavailable("prediction service returned "+resp.Status(), nil)
	}
	return &out, nil
}
