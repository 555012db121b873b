package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/orchestrator"
)

type CreateTaskRequest struct {
	AgentID     string         `json:"agent_id"`
	Description string         `json:"description"`
	Context     map[string]any `json:"context"`
}

type ListTasksResponse struct {
	Tasks []*TaskResponse `json:"tasks"`
}

// CreateTask submits a task and orchestrates it synchronously. The response
// carries the terminal task in every case; the status code reflects the
// outcome (200 completed, 422 unparseable plan, 502 oracle failure).
func (s *APIV1Service) CreateTask(c echo.Context) error {
	ctx := c.Request().Context()

	create := &CreateTaskRequest{}
	if err := json.NewDecoder(c.Request().Body).Decode(create); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed create task request").SetInternal(err)
	}
	if create.AgentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "agent id cannot be empty")
	}
	if create.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task description cannot be empty")
	}

	// Acquire before submitting so a rejected request leaves nothing queued.
	if !s.taskSemaphore.TryAcquire(1) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many concurrent tasks")
	}
	defer s.taskSemaphore.Release(1)

	task, err := s.Orchestrator.SubmitTask(create.AgentID, create.Description, create.Context)
	if err != nil {
		if errors.Is(err, agent.ErrAgentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "agent not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := s.Orchestrator.ProcessTask(ctx, task.ID); err != nil {
		status := http.StatusBadGateway
		if orchestrator.IsDecompositionParseError(err) {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, convertTask(task))
	}
	return c.JSON(http.StatusOK, convertTask(task))
}

func (s *APIV1Service) ListTasks(c echo.Context) error {
	tasks := s.Orchestrator.Tasks()

	if filterStr := c.QueryParam("filter"); filterStr != "" {
		taskFilter, err := parseTaskFilter(filterStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
		}
		filtered := make([]*orchestrator.Task, 0, len(tasks))
		for _, task := range tasks {
			if taskFilter.matches(task) {
				filtered = append(filtered, task)
			}
		}
		tasks = filtered
	}

	return c.JSON(http.StatusOK, &ListTasksResponse{Tasks: convertTasks(tasks)})
}

func (s *APIV1Service) GetTask(c echo.Context) error {
	task, ok := s.Orchestrator.Task(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	return c.JSON(http.StatusOK, convertTask(task))
}
