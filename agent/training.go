package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/covey-ai/covey/oracle"
)

// Training favors determinism with a bounded acknowledgment budget.
var trainingOptions = oracle.Options{Temperature: 0.2, MaxOutputTokens: 200}

const trainingSystemTemplate = `You are %s, a specialist of type "%s".
Your capabilities: %s.

Incorporate the following training data into your expertise:

%s`

const trainingUserPrompt = `Acknowledge that you have incorporated this training data and summarize in one sentence what you learned.`

// train runs the oracle round-trip for one piece of training text and appends
// the resulting training entry. On oracle failure nothing is appended.
func (a *Agent) train(ctx context.Context, svc oracle.Service, trainingText string) error {
	messages := []oracle.Message{
		oracle.SystemPrompt(buildTrainingSystemPrompt(a, trainingText)),
		oracle.UserMessage(trainingUserPrompt),
	}

	acknowledgment, _, err := svc.Complete(ctx, messages, trainingOptions)
	if err != nil {
		return NewTrainingError(a.Name, err)
	}

	a.RecordTraining(trainingText, acknowledgment)
	return nil
}

func buildTrainingSystemPrompt(a *Agent, trainingText string) string {
	capabilities := strings.Join(a.Capabilities, ", ")
	if capabilities == "" {
		capabilities = "general"
	}
	return fmt.Sprintf(trainingSystemTemplate, a.Name, a.Type, capabilities, trainingText)
}
