package models

import "context"

// Predictor is the remote prediction service as seen by the session controller
type Predictor interface {
	Predict(ctx context.Context, req NormalizedRequest) (PredictionResult, error)
	GetServiceStatus(ctx context.Context) ServiceStatus
}

// HistoryRecorder keeps the bounded history of past predictions
type HistoryRecorder interface {
	Load(ctx context.Context) HistoryLog
	Record(ctx context.Context, entry HistoryEntry) HistoryLog
	Clear(ctx context.Context) HistoryLog
}
