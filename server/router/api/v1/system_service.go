package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/covey-ai/covey/orchestrator"
)

type SystemOverviewResponse struct {
	Version    string         `json:"version"`
	Mode       string         `json:"mode"`
	AgentCount int            `json:"agent_count"`
	TaskCounts map[string]int `json:"task_counts"`
}

func (s *APIV1Service) GetSystemOverview(c echo.Context) error {
	// Every status appears in the response even when its count is zero.
	taskCounts := map[string]int{
		string(orchestrator.TaskPending):    0,
		string(orchestrator.TaskProcessing): 0,
		string(orchestrator.TaskCompleted):  0,
		string(orchestrator.TaskFailed):     0,
	}
	for status, count := range s.Orchestrator.TaskCounts() {
		taskCounts[string(status)] = count
	}

	return c.JSON(http.StatusOK, &SystemOverviewResponse{
		Version:    s.Profile.Version,
		Mode:       s.Profile.Mode,
		AgentCount: s.Registry.Count(),
		TaskCounts: taskCounts,
	})
}
