package orchestrator

import (
	"time"

	"github.com/covey-ai/covey/agent"
)

// recentActivityLimit caps how many memory entries a performance report
// includes.
const recentActivityLimit = 10

// AgentPerformance summarizes an agent's task history. Only terminal tasks
// count toward the totals; pending and processing tasks are still in
// flight.
type AgentPerformance struct {
	AgentID               string              `json:"agent_id"`
	TotalTasks            int                 `json:"total_tasks"`
	CompletedTasks        int                 `json:"completed_tasks"`
	FailedTasks           int                 `json:"failed_tasks"`
	SuccessRate           float64             `json:"success_rate"`
	AverageCompletionTime time.Duration       `json:"average_completion_time"`
	RecentActivity        []agent.MemoryEntry `json:"recent_activity"`
}

// Performance reports the agent's task statistics derived from this
// orchestrator's queue. The second return is false for unknown agent ids.
// SuccessRate and AverageCompletionTime are exactly zero when no terminal
// or no completed tasks exist, never NaN.
func (o *Orchestrator) Performance(agentID string) (*AgentPerformance, bool) {
	worker, ok := o.registry.Get(agentID)
	if !ok {
		return nil, false
	}

	var completed, failed int
	var totalCompletion time.Duration
	for _, task := range o.queue.ByAgent(agentID) {
		switch task.Status() {
		case TaskCompleted:
			completed++
			if done := task.CompletedAt(); !done.IsZero() {
				totalCompletion += done.Sub(task.CreatedAt)
			}
		case TaskFailed:
			failed++
		}
	}

	perf := &AgentPerformance{
		AgentID:        agentID,
		TotalTasks:     completed + failed,
		CompletedTasks: completed,
		FailedTasks:    failed,
		RecentActivity: worker.Recent(recentActivityLimit),
	}
	if perf.TotalTasks > 0 {
		perf.SuccessRate = float64(completed) / float64(perf.TotalTasks)
	}
	if completed > 0 {
		perf.AverageCompletionTime = totalCompletion / time.Duration(completed)
	}
	return perf, true
}
