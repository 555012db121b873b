package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/oracle"
)

// Per-phase generation settings. Classification wants a deterministic
// one-word label, decomposition a well-formed plan, execution creative
// completion, synthesis a long coherent merge.
var (
	classifyOptions   = oracle.Options{Temperature: 0.1, MaxOutputTokens: 8}
	decomposeOptions  = oracle.Options{Temperature: 0.5, MaxOutputTokens: 1024}
	executeOptions    = oracle.Options{Temperature: 0.8, MaxOutputTokens: 1500}
	synthesizeOptions = oracle.Options{Temperature: 0.6, MaxOutputTokens: 2000}
)

const classifySystemPrompt = `You are a task complexity classifier. Reply with exactly one word: low, medium, or high.

low: a single trivial step with an obvious answer.
medium: one coherent piece of work a single specialist completes directly.
high: needs to be broken down into multiple ordered subtasks.`

const classifyUserTemplate = `Classify the complexity of this task:

%s`

// The decomposition reply is parsed mechanically; the field list below is a
// wire contract, not guidance.
const decomposeSystemPrompt = `You are a task decomposition engine. Break the given task into an ordered list of subtasks.

Reply with a JSON array only, no prose and no markdown fences. Each element must be an object with exactly these fields:
- "id": short subtask identifier (string)
- "description": what the subtask does (string)
- "dependencies": ids of subtasks that must complete before this one (array of strings, [] when none)
- "estimated_duration": estimated minutes to complete (integer)`

const decomposeUserTemplate = `Decompose this task:

%s`

const executeSystemTemplate = `You are %s, a specialist of type "%s".
Your capabilities: %s.
%s
%s`

const executeUserTemplate = `Complete this task:

%s

Context:
%s`

const synthesizeSystemPrompt = `You are a result synthesizer. Combine the subtask results below into one comprehensive answer to the original task. Answer the original task directly; do not describe the subtasks or the process.`

const synthesizeUserTemplate = `Original task:
%s

Subtask results in execution order:
%s

Provide one comprehensive answer to the original task.`

const collaborativeSystemPrompt = `You are coordinating a team of specialist agents. Each contribution below came from a different agent working on one part of the original task. Merge the contributions into one unified answer to the original task, reconciling any overlap or disagreement.`

const collaborativeUserTemplate = `Original task:
%s

Team contributions in execution order:
%s

Provide one unified answer to the original task.`

func buildClassifyMessages(description string) []oracle.Message {
	return []oracle.Message{
		oracle.SystemPrompt(classifySystemPrompt),
		oracle.UserMessage(fmt.Sprintf(classifyUserTemplate, description)),
	}
}

func buildDecomposeMessages(description string) []oracle.Message {
	return []oracle.Message{
		oracle.SystemPrompt(decomposeSystemPrompt),
		oracle.UserMessage(fmt.Sprintf(decomposeUserTemplate, description)),
	}
}

func buildExecuteMessages(a *agent.Agent, description string, memory []agent.MemoryEntry, taskContext map[string]any) ([]oracle.Message, error) {
	capabilities := strings.Join(a.Capabilities, ", ")
	if capabilities == "" {
		capabilities = "general"
	}

	knowledge := ""
	if len(a.Knowledge) > 0 {
		var sb strings.Builder
		sb.WriteString("Background knowledge:\n")
		for _, k := range a.Knowledge {
			sb.WriteString("- ")
			sb.WriteString(k)
			sb.WriteString("\n")
		}
		knowledge = sb.String()
	}

	experience := "You have no prior task experience."
	if len(memory) > 0 {
		var sb strings.Builder
		sb.WriteString("Relevant experience from your memory, oldest first:\n")
		for _, e := range memory {
			sb.WriteString(e.Content)
			sb.WriteString("\n\n")
		}
		experience = strings.TrimRight(sb.String(), "\n")
	}

	serialized := []byte("{}")
	if len(taskContext) > 0 {
		var err error
		serialized, err = json.Marshal(taskContext)
		if err != nil {
			return nil, fmt.Errorf("serialize task context: %w", err)
		}
	}

	return []oracle.Message{
		oracle.SystemPrompt(fmt.Sprintf(executeSystemTemplate, a.Name, a.Type, capabilities, knowledge, experience)),
		oracle.UserMessage(fmt.Sprintf(executeUserTemplate, description, string(serialized))),
	}, nil
}

func buildSynthesizeMessages(originalDescription string, results []SubtaskResult) []oracle.Message {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("[%s] %s\n\n", r.SubtaskID, r.Result))
	}

	return []oracle.Message{
		oracle.SystemPrompt(synthesizeSystemPrompt),
		oracle.UserMessage(fmt.Sprintf(synthesizeUserTemplate, originalDescription, strings.TrimRight(sb.String(), "\n"))),
	}
}

func buildCollaborativeMessages(originalDescription string, assignments []TaskAssignment, results []SubtaskResult) []oracle.Message {
	resultByID := make(map[string]string, len(results))
	for _, r := range results {
		resultByID[r.SubtaskID] = r.Result
	}

	var sb strings.Builder
	for _, as := range assignments {
		sb.WriteString(fmt.Sprintf("### %s (%s)\n", as.AgentName, as.AgentType))
		sb.WriteString(fmt.Sprintf("Subtask: %s\n", as.Subtask.Description))
		sb.WriteString(fmt.Sprintf("Rationale: %s\n", as.Rationale))
		sb.WriteString(fmt.Sprintf("Result: %s\n\n", resultByID[as.Subtask.ID]))
	}

	return []oracle.Message{
		oracle.SystemPrompt(collaborativeSystemPrompt),
		oracle.UserMessage(fmt.Sprintf(collaborativeUserTemplate, originalDescription, strings.TrimRight(sb.String(), "\n"))),
	}
}
