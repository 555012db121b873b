package orchestrator

import (
	"context"
	"log/slog"

	"github.com/covey-ai/covey/oracle"
)

// Synthesizer merges subtask results into one final answer.
type Synthesizer struct {
	oracle oracle.Service
}

// NewSynthesizer creates a new result synthesizer.
func NewSynthesizer(svc oracle.Service) *Synthesizer {
	return &Synthesizer{oracle: svc}
}

// Synthesize combines the subtask results into a single coherent answer to
// the original task. A failed oracle call fails the synthesis; there is no
// concatenation fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, description string, results []SubtaskResult) (string, error) {
	reply, _, err := s.oracle.Complete(ctx, buildSynthesizeMessages(description, results), synthesizeOptions)
	if err != nil {
		slog.Error("synthesizer: synthesis failed", "result_count", len(results), "error", err)
		return "", err
	}
	return reply, nil
}

// SynthesizeCollaborative combines results produced by multiple agents,
// attributing each contribution so the final answer can reference who did
// what.
func (s *Synthesizer) SynthesizeCollaborative(ctx context.Context, description string, assignments []TaskAssignment, results []SubtaskResult) (string, error) {
	reply, _, err := s.oracle.Complete(ctx, buildCollaborativeMessages(description, assignments, results), synthesizeOptions)
	if err != nil {
		slog.Error("synthesizer: collaborative synthesis failed", "result_count", len(results), "error", err)
		return "", err
	}
	return reply, nil
}
