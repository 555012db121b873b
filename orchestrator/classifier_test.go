package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/covey-ai/covey/oracle"
	"github.com/covey-ai/covey/oracle/mock"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Complexity
	}{
		{"plain low", "low", ComplexityLow},
		{"plain medium", "medium", ComplexityMedium},
		{"plain high", "high", ComplexityHigh},
		{"padded and capitalized", "  High\n", ComplexityHigh},
		{"all caps", "MEDIUM", ComplexityMedium},
		{"off-label reply passes through", "urgent", Complexity("urgent")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := mock.NewService().WithDefaultResponse(tc.reply)
			c := NewClassifier(svc)

			got, err := c.Classify(context.Background(), "organize the launch")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Classify = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyPromptAndOptions(t *testing.T) {
	svc := mock.NewService().WithDefaultResponse("low")
	c := NewClassifier(svc)

	if _, err := c.Classify(context.Background(), "organize the launch"); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	calls := svc.Calls()
	if len(calls) != 1 {
		t.Fatalf("oracle calls = %d, want 1", len(calls))
	}
	if calls[0].Options != classifyOptions {
		t.Fatalf("call options = %+v, want %+v", calls[0].Options, classifyOptions)
	}
	if !strings.Contains(calls[0].SystemContent(), "exactly one word") {
		t.Fatalf("system prompt does not pin the one-word reply: %q", calls[0].SystemContent())
	}
	if !strings.Contains(calls[0].LastUserContent(), "organize the launch") {
		t.Fatalf("user message does not carry the description: %q", calls[0].LastUserContent())
	}
}

func TestClassifyOracleError(t *testing.T) {
	svcErr := oracle.NewServiceError("openai", "gpt-x", errors.New("timeout"))
	svc := mock.NewService().WithError(svcErr)
	c := NewClassifier(svc)

	_, err := c.Classify(context.Background(), "anything")
	if !errors.Is(err, svcErr) {
		t.Fatalf("expected the oracle error unchanged, got %v", err)
	}
}
