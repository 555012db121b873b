package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/oracle"
)

type CreateAgentRequest struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Capabilities []string `json:"capabilities"`
	Knowledge    []string `json:"knowledge"`
	TrainingData string   `json:"training_data"`
}

type ListAgentsResponse struct {
	Agents []*AgentResponse `json:"agents"`
}

type TrainAgentRequest struct {
	TrainingData string `json:"training_data"`
}

type ListAgentMemoryResponse struct {
	Memory []*MemoryEntryResponse `json:"memory"`
	Total  int                    `json:"total"`
}

func (s *APIV1Service) CreateAgent(c echo.Context) error {
	ctx := c.Request().Context()

	create := &CreateAgentRequest{}
	if err := json.NewDecoder(c.Request().Body).Decode(create); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed create agent request").SetInternal(err)
	}

	a, err := s.Registry.Create(ctx, agent.Config{
		Name:         create.Name,
		Type:         create.Type,
		Capabilities: create.Capabilities,
		Knowledge:    create.Knowledge,
		TrainingData: create.TrainingData,
	})
	if err != nil {
		if agent.IsTrainingError(err) || oracle.IsServiceError(err) {
			return echo.NewHTTPError(http.StatusBadGateway, "agent training failed").SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, convertAgent(a))
}

func (s *APIV1Service) ListAgents(c echo.Context) error {
	agents := s.Registry.List()
	response := &ListAgentsResponse{
		Agents: make([]*AgentResponse, 0, len(agents)),
	}
	for _, a := range agents {
		response.Agents = append(response.Agents, convertAgent(a))
	}
	return c.JSON(http.StatusOK, response)
}

func (s *APIV1Service) GetAgent(c echo.Context) error {
	a, ok := s.Registry.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "agent not found")
	}
	return c.JSON(http.StatusOK, convertAgent(a))
}

func (s *APIV1Service) TrainAgent(c echo.Context) error {
	ctx := c.Request().Context()
	agentID := c.Param("id")

	train := &TrainAgentRequest{}
	if err := json.NewDecoder(c.Request().Body).Decode(train); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed train agent request").SetInternal(err)
	}
	if train.TrainingData == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "training data cannot be empty")
	}

	if err := s.Registry.Train(ctx, agentID, train.TrainingData); err != nil {
		if errors.Is(err, agent.ErrAgentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "agent not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "agent training failed").SetInternal(err)
	}

	a, _ := s.Registry.Get(agentID)
	return c.JSON(http.StatusOK, convertAgent(a))
}

func (s *APIV1Service) ListAgentMemory(c echo.Context) error {
	a, ok := s.Registry.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "agent not found")
	}

	entries := a.Memory()
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer").SetInternal(err)
		}
		if limit > 0 {
			entries = a.Recent(limit)
		}
	}

	return c.JSON(http.StatusOK, &ListAgentMemoryResponse{
		Memory: convertMemoryEntries(entries),
		Total:  a.MemorySize(),
	})
}

func (s *APIV1Service) GetAgentPerformance(c echo.Context) error {
	report, ok := s.Orchestrator.Performance(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "agent not found")
	}
	return c.JSON(http.StatusOK, convertPerformance(report))
}
