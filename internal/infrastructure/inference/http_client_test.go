package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/config"
)

func newTestClient(serverURL string) *HTTPClient {
	return NewHTTPClient(config.InferenceConfig{
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	})
}

func TestHTTPClientForecast(t *testing.T) {
	productID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/forecast", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req prediction.ForecastRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 7, req.ForecastDays)
		require.NotNil(t, req.ResourceFilter)
		assert.Equal(t, productID, *req.ResourceFilter)

		resp := prediction.InferenceForecastResponse{
			Series: []prediction.ForecastPoint{
				{Date: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), Prediction: 3100, LowerBound: 2635, UpperBound: 3565},
			},
			Accuracy: prediction.InferenceAccuracy{MAPE: 6.5, RMSE: 110, RSquared: 0.91},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Forecast(context.Background(), prediction.ForecastRequest{
		StartDate:      time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		ForecastDays:   7,
		ResourceFilter: &productID,
	})

	require.NoError(t, err)
	require.Len(t, resp.Series, 1)
	assert.Equal(t, 3100.0, resp.Series[0].Prediction)
	assert.Equal(t, 6.5, resp.Accuracy.MAPE)
}

func TestHTTPClientDetectAnomalies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/anomalies", r.URL.Path)

		var req prediction.AnomalyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 0.5, req.Sensitivity)

		resp := prediction.InferenceAnomalyResponse{
			Anomalies: []prediction.InferredAnomaly{
				{ResourceID: uuid.New(), Score: 0.92, Description: "demand spike"},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.DetectAnomalies(context.Background(), prediction.AnomalyRequest{
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Sensitivity: 0.5,
	})

	require.NoError(t, err)
	require.Len(t, resp.Anomalies, 1)
	assert.Equal(t, 0.92, resp.Anomalies[0].Score)
}

func TestHTTPClientMineAssociations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/associations", r.URL.Path)

		resp := prediction.InferenceAssociationResponse{
			Rules: []prediction.InferredRuleGroup{
				{
					SourceID: uuid.New(),
					Targets: []prediction.RuleTarget{
						{TargetID: uuid.New(), Support: 0.2, Confidence: 0.7, Lift: 1.4},
					},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.MineAssociations(context.Background(), prediction.AssociationRequest{
		MinSupport:    0.1,
		MinConfidence: 0.5,
	})

	require.NoError(t, err)
	require.Len(t, resp.Rules, 1)
	assert.Equal(t, 0.7, resp.Rules[0].Targets[0].Confidence)
}

func TestHTTPClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Forecast(context.Background(), prediction.ForecastRequest{ForecastDays: 7})

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInference))
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestHTTPClientMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.DetectAnomalies(context.Background(), prediction.AnomalyRequest{Sensitivity: 0.5})

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInference))
}

func TestHTTPClientUnreachableServer(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.Forecast(context.Background(), prediction.ForecastRequest{ForecastDays: 7})

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInference))
}

func TestHTTPClientHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and can
		// observe the client disconnect; otherwise the request context is
		// never cancelled and Close deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Forecast(ctx, prediction.ForecastRequest{ForecastDays: 7})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInference))
}
