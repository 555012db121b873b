package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/covey-ai/covey/orchestrator"
)

type CreateCollaborationRequest struct {
	Description string   `json:"description"`
	AgentIDs    []string `json:"agent_ids"`
}

// CreateCollaboration decomposes a task across the eligible agents and runs
// it synchronously under the same concurrency cap as single-agent tasks.
func (s *APIV1Service) CreateCollaboration(c echo.Context) error {
	ctx := c.Request().Context()

	create := &CreateCollaborationRequest{}
	if err := json.NewDecoder(c.Request().Body).Decode(create); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed create collaboration request").SetInternal(err)
	}
	if create.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task description cannot be empty")
	}

	if !s.taskSemaphore.TryAcquire(1) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many concurrent tasks")
	}
	defer s.taskSemaphore.Release(1)

	result, err := s.Orchestrator.Collaborate(ctx, create.Description, create.AgentIDs)
	if err != nil {
		if errors.Is(err, orchestrator.ErrNoEligibleAgent) {
			return echo.NewHTTPError(http.StatusBadRequest, "no eligible agents for collaboration")
		}
		if orchestrator.IsDecompositionParseError(err) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "task plan could not be parsed").SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusBadGateway, "collaboration failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, convertCollaboration(result))
}
