package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/Alias1177/CardioPredictor/internal/endpoint"
	httpClient "github.com/Alias1177/CardioPredictor/internal/platform/http"
	"github.com/Alias1177/CardioPredictor/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client talks to the heart disease prediction service
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new prediction client
type ClientOptions struct {
	BaseURL            string // already resolved, see endpoint.Resolver
	RequestTimeout     time.Duration
	RequestsPerSec     int
	StatusRetryTimeout time.Duration
}

// ServiceConfig is the advisory part of GET /config
type ServiceConfig struct {
	ModelReady      bool
	ModelPathExists bool
	Raw             map[string]any
}

var _ models.Predictor = (*Client)(nil)

// NewClient creates a new prediction service client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetryTimeout: options.StatusRetryTimeout,
	}

	return &Client{
		baseURL:    options.BaseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "prediction_client").Logger(),
	}
}

// BaseURL returns the address the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Predict sends one request to POST /predict. It never retries.
func (c *Client) Predict(ctx context.Context, req models.NormalizedRequest) (models.PredictionResult, error) {
	const op = "predict"

	var body struct {
		Probability *float64 `json:"probability"`
		Label       *int     `json:"label"`
	}
	if err := c.do(ctx, op, http.MethodPost, "/predict", models.PredictRequest{Features: req}, &body, false); err != nil {
		return models.PredictionResult{}, err
	}

	if body.Probability == nil || body.Label == nil {
		return models.PredictionResult{}, protocolError(op, errors.New("response is missing probability or label"))
	}
	result := models.PredictionResult{Probability: *body.Probability, Label: *body.Label}
	if err := checkResult(result); err != nil {
		return models.PredictionResult{}, protocolError(op, err)
	}
	c.logger.Debug().Float64("probability", result.Probability).Int("label", result.Label).Msg("Prediction received")
	return result, nil
}

// BatchPredict sends several rows to POST /batch-predict
func (c *Client) BatchPredict(ctx context.Context, rows []models.NormalizedRequest) ([]models.PredictionResult, error) {
	const op = "batch-predict"

	var body models.BatchPredictResponse
	if err := c.do(ctx, op, http.MethodPost, "/batch-predict", models.BatchPredictRequest{Rows: rows}, &body, false); err != nil {
		return nil, err
	}
	if len(body.Probabilities) != len(rows) || len(body.Labels) != len(rows) {
		return nil, protocolError(op, fmt.Errorf("expected %d results, got %d probabilities and %d labels",
			len(rows), len(body.Probabilities), len(body.Labels)))
	}

	results := make([]models.PredictionResult, len(rows))
	for i := range rows {
		results[i] = models.PredictionResult{Probability: body.Probabilities[i], Label: body.Labels[i]}
		if err := checkResult(results[i]); err != nil {
			return nil, protocolError(op, fmt.Errorf("row %d: %w", i+1, err))
		}
	}
	return results, nil
}

// checkResult rejects a non-finite probability or a label other than 0 or 1
func checkResult(r models.PredictionResult) error {
	if math.IsNaN(r.Probability) || math.IsInf(r.Probability, 0) {
		return fmt.Errorf("probability is not finite: %v", r.Probability)
	}
	if r.Label != 0 && r.Label != 1 {
		return fmt.Errorf("label must be 0 or 1, got %d", r.Label)
	}
	return nil
}

// Health calls GET /health
func (c *Client) Health(ctx context.Context) (models.HealthResponse, error) {
	var body models.HealthResponse
	err := c.do(ctx, "health", http.MethodGet, "/health", nil, &body, true)
	return body, err
}

// ConfigInfo calls GET /config
func (c *Client) ConfigInfo(ctx context.Context) (ServiceConfig, error) {
	var raw map[string]any
	if err := c.do(ctx, "config", http.MethodGet, "/config", nil, &raw, true); err != nil {
		return ServiceConfig{}, err
	}

	cfg := ServiceConfig{Raw: raw}
	cfg.ModelReady, _ = raw["model_ready"].(bool)
	cfg.ModelPathExists, _ = raw["model_path_exists"].(bool)
	return cfg, nil
}

// ModelInfo calls GET /model-info
func (c *Client) ModelInfo(ctx context.Context) (models.ModelInfo, error) {
	var body models.ModelInfo
	err := c.do(ctx, "model-info", http.MethodGet, "/model-info", nil, &body, true)
	return body, err
}

// GetServiceStatus reports whether the model is loaded. Advisory only, it never fails.
func (c *Client) GetServiceStatus(ctx context.Context) models.ServiceStatus {
	cfg, err := c.ConfigInfo(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Prediction service status unavailable")
		return models.StatusUnreachable
	}
	if cfg.ModelReady {
		return models.StatusReady
	}
	return models.StatusNotReady
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any, retry bool) error {
	var payload io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return protocolError(op, fmt.Errorf("encoding request: %w", err))
		}
		payload = bytes.NewReader(data)
	}

	url := endpoint.Join(c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return networkError(op, fmt.Errorf("creating request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := c.logger.With().Str("op", op).Str("request_id", requestID).Logger()
	logger.Debug().Str("url", url).Msg("Calling prediction service")

	var resp *http.Response
	if retry {
		resp, err = c.httpClient.DoRequestWithRetry(ctx, req)
	} else {
		resp, err = c.httpClient.DoRequest(ctx, req)
	}
	if err != nil {
		var statusErr *httpClient.HTTPStatusError
		if errors.As(err, &statusErr) {
			logger.Error().Int("status", statusErr.StatusCode).Str("response", statusErr.Body).Msg("Prediction service returned an error status")
			return protocolError(op, err)
		}
		logger.Error().Err(err).Msg("HTTP request failed")
		return networkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(op, fmt.Errorf("reading response body: %w", err))
	}

	if err := json.Unmarshal(body, out); err != nil {
		logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return protocolError(op, fmt.Errorf("parsing JSON: %w", err))
	}
	return nil
}
