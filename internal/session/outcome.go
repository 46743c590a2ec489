package session

import "github.com/Alias1177/CardioPredictor/models"

// State is the externally visible phase of a controller
type State int

const (
	Idle State = iota
	Submitting
)

func (s State) String() string {
	if s == Submitting {
		return "submitting"
	}
	return "idle"
}

// Outcome is the terminal result of one submission: ValidationFailed, PredictionFailed or Succeeded
type Outcome interface {
	outcome()
}

// ValidationFailed means the input never left the client
type ValidationFailed struct {
	Errors models.ValidationError
}

// PredictionFailed carries a network or protocol error. No partial result exists.
type PredictionFailed struct {
	Err error
}

// Succeeded carries the presented result. Stale is set when a newer submission
// started before this one resolved; stale results are not recorded in history.
type Succeeded struct {
	Result       models.PredictionResult
	Presentation models.PresentationResult
	Entry        models.HistoryEntry
	History      models.HistoryLog
	Stale        bool
}

func (ValidationFailed) outcome() {}
func (PredictionFailed) outcome() {}
func (Succeeded) outcome()        {}
