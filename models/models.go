package models

import (
	"sort"
	"strings"
)

// HistoryLimit is the number of predictions kept in the history log
const HistoryLimit = 3

// RawInputRecord holds unvalidated values keyed by feature name, as typed by a user
type RawInputRecord map[string]any

// NormalizedRequest holds one finite value per schema feature and nothing else
type NormalizedRequest map[string]float64

// ValidationError maps a feature name to a human-readable reason
type ValidationError map[string]string

// Error implements the error interface so a ValidationError can be logged or wrapped
func (v ValidationError) Error() string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+v[name])
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// PredictRequest is the body of POST /predict
type PredictRequest struct {
	Features NormalizedRequest `json:"features"`
}

// PredictionResult is the response of POST /predict.
// Probability is the model confidence that Label == 1.
type PredictionResult struct {
	Probability float64 `json:"probability"`
	Label       int     `json:"label"`
}

// PresentationResult is the read-only view handed to front ends.
// PositivePct and NegativePct are rounded independently and may not sum to exactly 100.
type PresentationResult struct {
	IsPositive     bool    `json:"is_positive"`
	PositivePct    float64 `json:"positive_pct"`
	NegativePct    float64 `json:"negative_pct"`
	Classification string  `json:"classification"`
}

// HistoryEntry is one recorded prediction. At is epoch milliseconds.
type HistoryEntry struct {
	At     int64            `json:"at"`
	Result PredictionResult `json:"result"`
}

// HistoryLog is ordered newest first and never longer than HistoryLimit
type HistoryLog []HistoryEntry

// ServiceStatus is an advisory description of the prediction service
type ServiceStatus string

const (
	StatusReady       ServiceStatus = "ready"
	StatusNotReady    ServiceStatus = "not-ready"
	StatusUnreachable ServiceStatus = "unreachable"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// ModelInfo is the body of GET /model-info
type ModelInfo struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
}

// BatchPredictRequest is the body of POST /batch-predict
type BatchPredictRequest struct {
	Rows []NormalizedRequest `json:"rows"`
}

// BatchPredictResponse is the response of POST /batch-predict
type BatchPredictResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Labels        []int     `json:"labels"`
}
