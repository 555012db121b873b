package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskNotFound indicates a lookup for a task id the queue does not hold.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoEligibleAgent indicates an assignment round where the eligible set
	// was empty after filtering against the registry.
	ErrNoEligibleAgent = errors.New("no eligible agent")
)

// DecompositionParseError represents an oracle decomposition reply that could
// not be turned into a valid subtask plan: malformed JSON, an empty plan,
// blank descriptions, unknown dependency ids, or dependency cycles. It is
// never retried.
type DecompositionParseError struct {
	// Raw is the oracle reply, truncated for logging.
	Raw string
	// Err is the underlying cause.
	Err error
}

const rawReplyLimit = 512

// Error returns a formatted error message.
func (e *DecompositionParseError) Error() string {
	return fmt.Sprintf("decomposition parse failed: %v", e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *DecompositionParseError) Unwrap() error {
	return e.Err
}

// NewDecompositionParseError creates a new DecompositionParseError, keeping a
// truncated copy of the offending reply.
func NewDecompositionParseError(raw string, err error) *DecompositionParseError {
	if len(raw) > rawReplyLimit {
		raw = raw[:rawReplyLimit]
	}
	return &DecompositionParseError{Raw: raw, Err: err}
}

// IsDecompositionParseError checks if an error is a DecompositionParseError.
func IsDecompositionParseError(err error) bool {
	var parseErr *DecompositionParseError
	return errors.As(err, &parseErr)
}
