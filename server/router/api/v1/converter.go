package v1

import (
	"time"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/orchestrator"
)

type AgentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Capabilities []string  `json:"capabilities"`
	Knowledge    []string  `json:"knowledge,omitempty"`
	Status       string    `json:"status"`
	MemorySize   int       `json:"memory_size"`
	CreatedAt    time.Time `json:"created_at"`
}

func convertAgent(a *agent.Agent) *AgentResponse {
	return &AgentResponse{
		ID:           a.ID,
		Name:         a.Name,
		Type:         a.Type,
		Capabilities: a.Capabilities,
		Knowledge:    a.Knowledge,
		Status:       string(a.Status()),
		MemorySize:   a.MemorySize(),
		CreatedAt:    a.CreatedAt,
	}
}

type MemoryEntryResponse struct {
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

func convertMemoryEntries(entries []agent.MemoryEntry) []*MemoryEntryResponse {
	converted := make([]*MemoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		converted = append(converted, &MemoryEntryResponse{
			Kind:      string(e.Kind),
			Content:   e.Content,
			Timestamp: e.Timestamp,
			Success:   e.Success,
		})
	}
	return converted
}

type TaskResponse struct {
	ID           string         `json:"id"`
	AgentID      string         `json:"agent_id"`
	Description  string         `json:"description"`
	Context      map[string]any `json:"context,omitempty"`
	Status       string         `json:"status"`
	Result       string         `json:"result,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

func convertTask(t *orchestrator.Task) *TaskResponse {
	resp := &TaskResponse{
		ID:           t.ID,
		AgentID:      t.AgentID,
		Description:  t.Description,
		Context:      t.Context,
		Status:       string(t.Status()),
		Result:       t.Result(),
		ErrorMessage: t.ErrorMessage(),
		CreatedAt:    t.CreatedAt,
	}
	if done := t.CompletedAt(); !done.IsZero() {
		resp.CompletedAt = &done
	}
	return resp
}

func convertTasks(tasks []*orchestrator.Task) []*TaskResponse {
	converted := make([]*TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		converted = append(converted, convertTask(t))
	}
	return converted
}

type PerformanceResponse struct {
	AgentID                 string                 `json:"agent_id"`
	TotalTasks              int                    `json:"total_tasks"`
	CompletedTasks          int                    `json:"completed_tasks"`
	FailedTasks             int                    `json:"failed_tasks"`
	SuccessRate             float64                `json:"success_rate"`
	AverageCompletionTimeMs int64                  `json:"average_completion_time_ms"`
	RecentActivity          []*MemoryEntryResponse `json:"recent_activity"`
}

func convertPerformance(p *orchestrator.AgentPerformance) *PerformanceResponse {
	return &PerformanceResponse{
		AgentID:                 p.AgentID,
		TotalTasks:              p.TotalTasks,
		CompletedTasks:          p.CompletedTasks,
		FailedTasks:             p.FailedTasks,
		SuccessRate:             p.SuccessRate,
		AverageCompletionTimeMs: p.AverageCompletionTime.Milliseconds(),
		RecentActivity:          convertMemoryEntries(p.RecentActivity),
	}
}

type AssignmentResponse struct {
	SubtaskID          string `json:"subtask_id"`
	SubtaskDescription string `json:"subtask_description"`
	AgentID            string `json:"agent_id"`
	AgentName          string `json:"agent_name"`
	AgentType          string `json:"agent_type"`
	Rationale          string `json:"rationale"`
}

type SubtaskResultResponse struct {
	SubtaskID string    `json:"subtask_id"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

type CollaborationResponse struct {
	Result      string                   `json:"result"`
	Assignments []*AssignmentResponse    `json:"assignments"`
	Results     []*SubtaskResultResponse `json:"results"`
}

func convertCollaboration(out *orchestrator.CollaborationResult) *CollaborationResponse {
	resp := &CollaborationResponse{
		Result:      out.Result,
		Assignments: make([]*AssignmentResponse, 0, len(out.Assignments)),
		Results:     make([]*SubtaskResultResponse, 0, len(out.Results)),
	}
	for _, as := range out.Assignments {
		resp.Assignments = append(resp.Assignments, &AssignmentResponse{
			SubtaskID:          as.Subtask.ID,
			SubtaskDescription: as.Subtask.Description,
			AgentID:            as.AgentID,
			AgentName:          as.AgentName,
			AgentType:          as.AgentType,
			Rationale:          as.Rationale,
		})
	}
	for _, r := range out.Results {
		resp.Results = append(resp.Results, &SubtaskResultResponse{
			SubtaskID: r.SubtaskID,
			Result:    r.Result,
			Timestamp: r.Timestamp,
		})
	}
	return resp
}
