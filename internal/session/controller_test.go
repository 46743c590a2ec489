package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Alias1177/CardioPredictor/internal/api/prediction"
	"github.com/Alias1177/CardioPredictor/internal/features"
	"github.com/Alias1177/CardioPredictor/internal/history"
	"github.com/Alias1177/CardioPredictor/internal/validate"
	"github.com/Alias1177/CardioPredictor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	results chan models.PredictionResult
	errs    chan error
	started chan struct{}
	status  models.ServiceStatus
}

func newStub() *stubPredictor {
	return &stubPredictor{
		results: make(chan models.PredictionResult, 4),
		errs:    make(chan error, 4),
		started: make(chan struct{}, 4),
		status:  models.StatusReady,
	}
}

func (s *stubPredictor) Predict(ctx context.Context, _ models.NormalizedRequest) (models.PredictionResult, error) {
	s.started <- struct{}{}
	select {
	case r := <-s.results:
		return r, nil
	case err := <-s.errs:
		return models.PredictionResult{}, err
	case <-ctx.Done():
		return models.PredictionResult{}, ctx.Err()
	}
}

func (s *stubPredictor) GetServiceStatus(context.Context) models.ServiceStatus {
	return s.status
}

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newController(p models.Predictor, storage history.Storage) *Controller {
	return New(Options{
		Schema:    features.Heart(),
		Predictor: p,
		History:   history.NewStore(storage),
		Now:       func() time.Time { return fixedNow },
	})
}

func TestSubmitValidationFailure(t *testing.T) {
	stub := newStub()
	c := newController(stub, history.NewMemoryStorage())

	raw := features.Defaults()
	delete(raw, "chol")

	out := c.Submit(context.Background(), raw)
	failed, ok := out.(ValidationFailed)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, validate.MsgRequired, failed.Errors["chol"])
	assert.Empty(t, stub.started, "service must not be called")
	assert.Empty(t, c.History())
}

func TestSubmitPredictionFailure(t *testing.T) {
	stub := newStub()
	stub.errs <- errors.New("connection refused")
	c := newController(stub, history.NewMemoryStorage())

	out := c.Submit(context.Background(), features.Defaults())
	failed, ok := out.(PredictionFailed)
	require.True(t, ok, "got %T", out)
	assert.EqualError(t, failed.Err, "connection refused")
	assert.Empty(t, c.History())
	_, ok = c.LastResult()
	assert.False(t, ok)
	assert.Equal(t, Idle, c.State())
}

func TestSubmitSuccessRecordsHistory(t *testing.T) {
	stub := newStub()
	stub.results <- models.PredictionResult{Probability: 0.3, Label: 0}
	c := newController(stub, history.NewMemoryStorage())

	out := c.Submit(context.Background(), features.Defaults())
	done, ok := out.(Succeeded)
	require.True(t, ok, "got %T", out)

	assert.False(t, done.Stale)
	assert.Equal(t, fixedNow.UnixMilli(), done.Entry.At)
	assert.Equal(t, models.HistoryLog{done.Entry}, done.History)
	assert.Equal(t, done.History, c.History())

	last, found := c.LastResult()
	require.True(t, found)
	assert.Equal(t, done, last)
}

func TestStaleResolutionDoesNotTouchHistory(t *testing.T) {
	stub := newStub()
	c := newController(stub, history.NewMemoryStorage())
	ctx := context.Background()

	firstDone := make(chan Outcome)
	go func() { firstDone <- c.Submit(ctx, features.Defaults()) }()
	<-stub.started
	assert.Equal(t, Submitting, c.State())

	secondDone := make(chan Outcome)
	go func() { secondDone <- c.Submit(ctx, features.Defaults()) }()
	<-stub.started

	// Both calls are waiting on the stub; whichever receives first, the second
	// submission holds the newest generation.
	stub.results <- models.PredictionResult{Probability: 0.9, Label: 1}
	stub.results <- models.PredictionResult{Probability: 0.1, Label: 0}

	first := (<-firstDone).(Succeeded)
	second := (<-secondDone).(Succeeded)

	assert.True(t, first.Stale)
	assert.False(t, second.Stale)
	assert.Equal(t, Idle, c.State())

	hist := c.History()
	require.Len(t, hist, 1)
	assert.Equal(t, second.Result, hist[0].Result)
}

func TestRestoreAndClear(t *testing.T) {
	ctx := context.Background()
	storage := history.NewMemoryStorage()

	stub := newStub()
	stub.results <- models.PredictionResult{Probability: 0.7, Label: 1}
	c := newController(stub, storage)
	c.Submit(ctx, features.Defaults())

	reloaded := newController(newStub(), storage)
	assert.Len(t, reloaded.Restore(ctx), 1)

	assert.Empty(t, reloaded.ClearHistory(ctx))
	assert.Empty(t, newController(newStub(), storage).Restore(ctx))
}

func TestStatusIsAdvisory(t *testing.T) {
	stub := newStub()
	stub.status = models.StatusUnreachable
	stub.results <- models.PredictionResult{Probability: 0.2, Label: 0}
	c := newController(stub, history.NewMemoryStorage())

	assert.Equal(t, models.StatusUnreachable, c.Status(context.Background()))
	_, ok := c.Submit(context.Background(), features.Defaults()).(Succeeded)
	assert.True(t, ok)
}

func TestEndToEndScenario(t *testing.T) {
	var sent models.PredictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/predict", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		_, _ = w.Write([]byte(`{"probability":0.82,"label":1}`))
	}))
	defer srv.Close()

	client := prediction.NewClient(prediction.ClientOptions{BaseURL: srv.URL + "/api", RequestTimeout: 2 * time.Second})
	storage := history.NewMemoryStorage()
	c := newController(client, storage)
	ctx := context.Background()

	previous := models.HistoryEntry{At: 1, Result: models.PredictionResult{Probability: 0.1, Label: 0}}
	history.NewStore(storage).Record(ctx, previous)
	c.Restore(ctx)

	raw := models.RawInputRecord{
		"age": 57, "sex": 1, "cp": 3, "trestbps": 150, "chol": 276, "fbs": 0, "restecg": 2,
		"thalach": 112, "exang": 1, "oldpeak": 0.6, "slope": 1, "ca": 1, "thal": 1,
	}
	out, ok := c.Submit(ctx, raw).(Succeeded)
	require.True(t, ok)

	assert.Equal(t, models.PresentationResult{IsPositive: true, PositivePct: 82.0, NegativePct: 18.0, Classification: "Heart Patient"}, out.Presentation)
	assert.Len(t, sent.Features, features.Heart().Len())
	assert.Equal(t, 0.6, sent.Features["oldpeak"])

	hist := c.History()
	require.Len(t, hist, 2)
	assert.Equal(t, models.PredictionResult{Probability: 0.82, Label: 1}, hist[0].Result)
	assert.Equal(t, previous, hist[1])
}
