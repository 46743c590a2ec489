// Package session drives one client's prediction submissions from raw input to recorded history.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/Alias1177/CardioPredictor/internal/features"
	"github.com/Alias1177/CardioPredictor/internal/interpret"
	"github.com/Alias1177/CardioPredictor/internal/validate"
	"github.com/Alias1177/CardioPredictor/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options holds the collaborators of a Controller
type Options struct {
	Schema    features.Schema
	Predictor models.Predictor
	History   models.HistoryRecorder
	Now       func() time.Time
	Logger    *zerolog.Logger
}

// Controller runs validate, predict, present and record strictly in sequence for each submission.
// Each submission takes a generation token; only the newest generation may touch history.
type Controller struct {
	mu         sync.Mutex
	schema     features.Schema
	predictor  models.Predictor
	history    models.HistoryRecorder
	now        func() time.Time
	logger     zerolog.Logger
	generation uint64
	inFlight   int
	log        models.HistoryLog
	last       *Succeeded
}

// New creates a controller. The history log starts empty until Restore is called.
func New(opts Options) *Controller {
	c := &Controller{
		schema:    opts.Schema,
		predictor: opts.Predictor,
		history:   opts.History,
		now:       opts.Now,
		log:       models.HistoryLog{},
	}
	if c.schema.Len() == 0 {
		c.schema = features.Heart()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	} else {
		c.logger = log.With().Str("component", "session").Logger()
	}
	return c
}

// Restore loads the persisted history log
func (c *Controller) Restore(ctx context.Context) models.HistoryLog {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log = c.history.Load(ctx)
	return c.copyLog()
}

// Submit validates raw and, when valid, asks the service for a prediction
func (c *Controller) Submit(ctx context.Context, raw models.RawInputRecord) Outcome {
	req, errs := validate.Validate(raw, c.schema)
	if errs != nil {
		c.logger.Debug().Int("fields", len(errs)).Msg("Submission rejected by validation")
		return ValidationFailed{Errors: errs}
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.inFlight++
	c.mu.Unlock()

	result, err := c.predictor.Predict(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	stale := gen != c.generation

	if err != nil {
		c.logger.Error().Err(err).Uint64("generation", gen).Bool("stale", stale).Msg("Prediction failed")
		return PredictionFailed{Err: err}
	}

	out := Succeeded{
		Result:       result,
		Presentation: interpret.Present(result),
		Entry:        models.HistoryEntry{At: models.EpochMillis(c.now()), Result: result},
		Stale:        stale,
	}
	if stale {
		c.logger.Info().Uint64("generation", gen).Uint64("current", c.generation).Msg("Discarding stale prediction")
		out.History = c.copyLog()
		return out
	}

	c.log = c.history.Record(ctx, out.Entry)
	out.History = c.copyLog()
	c.last = &out
	c.logger.Info().
		Float64("probability", result.Probability).
		Int("label", result.Label).
		Msg("Prediction recorded")
	return out
}

// State reports Submitting while any submission awaits the service
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight > 0 {
		return Submitting
	}
	return Idle
}

// History returns the current log, newest first
func (c *Controller) History() models.HistoryLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLog()
}

// ClearHistory empties the persisted log
func (c *Controller) ClearHistory(ctx context.Context) models.HistoryLog {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log = c.history.Clear(ctx)
	return c.copyLog()
}

// LastResult returns the latest non-stale success, if any
func (c *Controller) LastResult() (Succeeded, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return Succeeded{}, false
	}
	return *c.last, true
}

// Status asks the service whether its model is loaded. Advisory only.
func (c *Controller) Status(ctx context.Context) models.ServiceStatus {
	return c.predictor.GetServiceStatus(ctx)
}

// Schema returns the schema submissions are validated against
func (c *Controller) Schema() features.Schema {
	return c.schema
}

func (c *Controller) copyLog() models.HistoryLog {
	out := make(models.HistoryLog, len(c.log))
	copy(out, c.log)
	return out
}
