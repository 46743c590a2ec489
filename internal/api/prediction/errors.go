package prediction

import (
	"errors"
	"fmt"
)

// ErrorKind separates failures that never reached the service from bad responses
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindProtocol ErrorKind = "protocol"
)

// Sentinels for errors.Is; a *PredictionError matches the one for its kind.
var (
	ErrNetwork  = errors.New("prediction service unreachable")
	ErrProtocol = errors.New("unexpected response from prediction service")
)

// PredictionError is returned by every Client call that fails
type PredictionError struct {
	Kind  ErrorKind
	Op    string
	Cause error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Cause)
}

func (e *PredictionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's kind
func (e *PredictionError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrProtocol:
		return e.Kind == KindProtocol
	}
	return false
}

func networkError(op string, cause error) error {
	return &PredictionError{Kind: KindNetwork, Op: op, Cause: cause}
}

func protocolError(op string, cause error) error {
	return &PredictionError{Kind: KindProtocol, Op: op, Cause: cause}
}
