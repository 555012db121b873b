package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/covey-ai/covey/agent"
)

// CollaborationResult is the outcome of a multi-agent collaboration: the
// unified answer plus the assignments and per-subtask results that
// produced it, in execution order.
type CollaborationResult struct {
	Result      string           `json:"result"`
	Assignments []TaskAssignment `json:"assignments"`
	Results     []SubtaskResult  `json:"results"`
}

// Collaborate decomposes the description once and spreads the subtasks
// across the eligible agents, one assignment per subtask, executing them
// sequentially in plan order before a collaborative synthesis. Eligible
// agents are the registry members whose id is in the given set, kept in
// registration order so assignment stays deterministic. Collaborations do
// not touch agent memory and are not recorded in the task queue.
func (o *Orchestrator) Collaborate(ctx context.Context, description string, eligibleAgentIDs []string) (*CollaborationResult, error) {
	eligible := o.eligibleAgents(eligibleAgentIDs)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("collaborate: %w", ErrNoEligibleAgent)
	}

	traceID := shortuuid.New()
	startTime := time.Now()
	slog.Info("orchestrator: collaboration started",
		"trace_id", traceID,
		"eligible_agents", len(eligible),
	)

	subtasks, err := o.decomposer.Decompose(ctx, description)
	if err != nil {
		return nil, err
	}

	assignments := make([]TaskAssignment, 0, len(subtasks))
	results := make([]SubtaskResult, 0, len(subtasks))
	for _, sub := range subtasks {
		chosen, rationale, err := o.assigner.Assign(sub, eligible)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, TaskAssignment{
			Subtask:   sub,
			AgentID:   chosen.ID,
			AgentName: chosen.Name,
			AgentType: chosen.Type,
			Rationale: rationale,
		})
		slog.Debug("orchestrator: subtask assigned",
			"trace_id", traceID,
			"subtask_id", sub.ID,
			"agent_id", chosen.ID,
			"rationale", rationale,
		)

		res, err := o.executor.Run(ctx, chosen, sub, nil)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}

	final, err := o.synthesizer.SynthesizeCollaborative(ctx, description, assignments, results)
	if err != nil {
		return nil, err
	}

	slog.Info("orchestrator: collaboration complete",
		"trace_id", traceID,
		"subtask_count", len(subtasks),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return &CollaborationResult{
		Result:      final,
		Assignments: assignments,
		Results:     results,
	}, nil
}

// eligibleAgents resolves an id set against the registry, preserving
// registration order.
func (o *Orchestrator) eligibleAgents(ids []string) []*agent.Agent {
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}

	var eligible []*agent.Agent
	for _, a := range o.registry.List() {
		if allowed[a.ID] {
			eligible = append(eligible, a)
		}
	}
	return eligible
}
