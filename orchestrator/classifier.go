package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/covey-ai/covey/oracle"
)

// Complexity is the classified difficulty label of a task description.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Classifier labels task descriptions by complexity. Only ComplexityHigh
// routes into decomposition; every other label, including unexpected oracle
// output, takes the direct execution path.
type Classifier struct {
	oracle oracle.Service
}

// NewClassifier creates a new complexity classifier.
func NewClassifier(svc oracle.Service) *Classifier {
	return &Classifier{oracle: svc}
}

// Classify returns the oracle's label, trimmed and lowercased. Labels outside
// low/medium/high pass through unchanged for the caller to treat as non-high.
func (c *Classifier) Classify(ctx context.Context, description string) (Complexity, error) {
	reply, _, err := c.oracle.Complete(ctx, buildClassifyMessages(description), classifyOptions)
	if err != nil {
		return "", err
	}

	label := Complexity(strings.ToLower(strings.TrimSpace(reply)))
	slog.Debug("classifier: task classified",
		"label", string(label),
		"description_length", len(description),
	)
	return label, nil
}
