package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/config"
)

const (
	forecastPath    = "/api/v1/forecast"
	anomalyPath     = "/api/v1/anomalies"
	associationPath = "/api/v1/associations"

	defaultClientTimeout = 30 * time.Second
)

// HTTPClient implements prediction.InferenceClient against the inference
// service's JSON API. Every failure is wrapped in shared.ErrInference so the
// orchestrator can treat the whole boundary as a single fallible unit.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// HTTPClientOption is a functional option for configuring the client
type HTTPClientOption func(*HTTPClient)

// WithInferenceLogger sets the logger for the client
func WithInferenceLogger(logger *zap.Logger) HTTPClientOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying http.Client, for tests.
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates an inference client from configuration.
func NewHTTPClient(cfg config.InferenceConfig, opts ...HTTPClientOption) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	client := &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Forecast requests a forecast series from the inference service.
func (c *HTTPClient) Forecast(ctx context.Context, req prediction.ForecastRequest) (*prediction.InferenceForecastResponse, error) {
	var resp prediction.InferenceForecastResponse
	if err := c.post(ctx, forecastPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DetectAnomalies requests an anomaly scan from the inference service.
func (c *HTTPClient) DetectAnomalies(ctx context.Context, req prediction.AnomalyRequest) (*prediction.InferenceAnomalyResponse, error) {
	var resp prediction.InferenceAnomalyResponse
	if err := c.post(ctx, anomalyPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MineAssociations requests market-basket rules from the inference service.
func (c *HTTPClient) MineAssociations(ctx context.Context, req prediction.AssociationRequest) (*prediction.InferenceAssociationResponse, error) {
	var resp prediction.InferenceAssociationResponse
	if err := c.post(ctx, associationPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type inferenceErrorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", shared.ErrInference, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrInference, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInference, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrInference, err)
	}

	if resp.StatusCode >= 400 {
		var errResp inferenceErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%w: %s (status %d)", shared.ErrInference, errResp.Error, resp.StatusCode)
		}
		return fmt.Errorf("%w: unexpected status %d", shared.ErrInference, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		c.logger.Warn("Inference service returned malformed response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return fmt.Errorf("%w: failed to parse response: %v", shared.ErrInference, err)
	}
	return nil
}
