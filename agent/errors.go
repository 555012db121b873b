package agent

import (
	"errors"
	"fmt"
)

// ErrAgentNotFound indicates a lookup for an agent id the registry does not hold.
var ErrAgentNotFound = errors.New("agent not found")

// TrainingError represents a failed training round-trip. Creation aborts and no
// memory entry is appended when training fails.
type TrainingError struct {
	// Agent is the name of the agent being trained.
	Agent string
	// Err is the underlying cause, usually an oracle failure.
	Err error
}

// Error returns a formatted error message.
func (e *TrainingError) Error() string {
	return fmt.Sprintf("training agent %s failed: %v", e.Agent, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *TrainingError) Unwrap() error {
	return e.Err
}

// NewTrainingError creates a new TrainingError.
func NewTrainingError(agent string, err error) *TrainingError {
	return &TrainingError{Agent: agent, Err: err}
}

// IsTrainingError checks if an error is a TrainingError.
func IsTrainingError(err error) bool {
	var trainingErr *TrainingError
	return errors.As(err, &trainingErr)
}
