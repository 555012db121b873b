package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/oracle"
)

// SubtaskResult is the outcome of running one subtask.
type SubtaskResult struct {
	SubtaskID string    `json:"subtask_id"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// Executor runs individual subtasks against an agent, grounding each call
// in the agent's identity, knowledge and a bounded window of its most
// recent memory.
type Executor struct {
	oracle       oracle.Service
	memoryWindow int
}

// NewExecutor creates an executor whose prompts include at most
// memoryWindow recent memory entries per call.
func NewExecutor(svc oracle.Service, memoryWindow int) *Executor {
	return &Executor{oracle: svc, memoryWindow: memoryWindow}
}

// Run executes a single subtask on the given agent and returns its result.
// The agent's memory is read here but never written; recording the outcome
// is the caller's decision.
func (e *Executor) Run(ctx context.Context, a *agent.Agent, sub Subtask, taskContext map[string]any) (*SubtaskResult, error) {
	startTime := time.Now()

	messages, err := buildExecuteMessages(a, sub.Description, a.Recent(e.memoryWindow), taskContext)
	if err != nil {
		return nil, err
	}

	reply, _, err := e.oracle.Complete(ctx, messages, executeOptions)
	if err != nil {
		slog.Error("executor: subtask failed",
			"subtask_id", sub.ID,
			"agent_id", a.ID,
			"error", err,
		)
		return nil, err
	}

	slog.Debug("executor: subtask complete",
		"subtask_id", sub.ID,
		"agent_id", a.ID,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return &SubtaskResult{
		SubtaskID: sub.ID,
		Result:    reply,
		Timestamp: time.Now().UTC(),
	}, nil
}
