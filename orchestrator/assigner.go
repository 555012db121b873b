package orchestrator

import (
	"fmt"
	"strings"

	"github.com/covey-ai/covey/agent"
)

// TaskAssignment records which agent a subtask was routed to and why.
type TaskAssignment struct {
	Subtask   Subtask `json:"subtask"`
	AgentID   string  `json:"agent_id"`
	AgentName string  `json:"agent_name"`
	AgentType string  `json:"agent_type"`
	Rationale string  `json:"rationale"`
}

// Assigner picks an agent for a subtask out of an eligible set and explains
// the choice. Implementations must be deterministic: the same subtask and
// the same set always yield the same agent. An empty set is
// ErrNoEligibleAgent.
type Assigner interface {
	Assign(sub Subtask, eligible []*agent.Agent) (*agent.Agent, string, error)
}

// FirstEligible routes every subtask to the first agent in the eligible
// set. It is the default strategy.
type FirstEligible struct{}

// Assign implements Assigner.
func (FirstEligible) Assign(sub Subtask, eligible []*agent.Agent) (*agent.Agent, string, error) {
	if len(eligible) == 0 {
		return nil, "", ErrNoEligibleAgent
	}
	chosen := eligible[0]
	return chosen, fmt.Sprintf("first eligible agent of type %s", chosen.Type), nil
}

// CapabilityScore routes each subtask to the eligible agent whose declared
// capabilities appear most often in the subtask description. Ties keep the
// earlier agent, and a zero score falls back to the first agent, so the
// choice is deterministic either way.
type CapabilityScore struct{}

// Assign implements Assigner.
func (CapabilityScore) Assign(sub Subtask, eligible []*agent.Agent) (*agent.Agent, string, error) {
	if len(eligible) == 0 {
		return nil, "", ErrNoEligibleAgent
	}

	description := strings.ToLower(sub.Description)
	best := eligible[0]
	bestMatched := matchedCapabilities(description, best)
	for _, candidate := range eligible[1:] {
		if matched := matchedCapabilities(description, candidate); len(matched) > len(bestMatched) {
			best = candidate
			bestMatched = matched
		}
	}

	if len(bestMatched) == 0 {
		return best, fmt.Sprintf("no capability matched, %s is first in line", best.Name), nil
	}
	return best, fmt.Sprintf("capabilities %s match the subtask", strings.Join(bestMatched, ", ")), nil
}

// matchedCapabilities returns the agent capabilities that occur in the
// lowercased subtask description.
func matchedCapabilities(description string, a *agent.Agent) []string {
	var matched []string
	for _, capability := range a.Capabilities {
		needle := strings.ToLower(strings.TrimSpace(capability))
		if needle != "" && strings.Contains(description, needle) {
			matched = append(matched, capability)
		}
	}
	return matched
}
