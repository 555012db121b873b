package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covey-ai/covey/oracle"
	"github.com/covey-ai/covey/oracle/mock"
)

func TestCreateAgentHandler(t *testing.T) {
	e, api := newTestService(t, mock.NewService())

	rec := doRequest(e, http.MethodPost, "/api/v1/agents",
		`{"name":"atlas","type":"researcher","capabilities":["research","analysis"],"knowledge":["prefers primary sources"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotEmpty(t, got.ID)
	require.Equal(t, "atlas", got.Name)
	require.Equal(t, "researcher", got.Type)
	require.Equal(t, []string{"research", "analysis"}, got.Capabilities)
	require.Equal(t, []string{"prefers primary sources"}, got.Knowledge)
	require.Equal(t, "active", got.Status)
	require.Zero(t, got.MemorySize)
	require.False(t, got.CreatedAt.IsZero())

	require.Equal(t, 1, api.Registry.Count())
}

func TestCreateAgentHandlerWithTraining(t *testing.T) {
	svc := mock.NewService().
		WithResponse("Acknowledge that you have incorporated", "Fraud patterns absorbed.")
	e, _ := newTestService(t, svc)

	rec := doRequest(e, http.MethodPost, "/api/v1/agents",
		`{"name":"hawk","type":"auditor","training_data":"Common invoice fraud patterns."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 1, got.MemorySize)
	require.Equal(t, 1, svc.CallCount())
}

func TestCreateAgentHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"type":"researcher"}`},
		{"missing type", `{"name":"atlas"}`},
		{"malformed json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, api := newTestService(t, mock.NewService())
			rec := doRequest(e, http.MethodPost, "/api/v1/agents", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Zero(t, api.Registry.Count())
		})
	}
}

func TestCreateAgentHandlerTrainingFailure(t *testing.T) {
	svc := mock.NewService().
		WithError(oracle.NewServiceError("openai", "gpt-4o-mini", errors.New("connection reset")))
	e, api := newTestService(t, svc)

	rec := doRequest(e, http.MethodPost, "/api/v1/agents",
		`{"name":"hawk","type":"auditor","training_data":"Common invoice fraud patterns."}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Zero(t, api.Registry.Count())
}

func TestGetAgentHandler(t *testing.T) {
	e, api := newTestService(t, mock.NewService())
	created := mustCreateAgent(t, api, "atlas", "researcher", []string{"research"})

	rec := doRequest(e, http.MethodGet, "/api/v1/agents/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "atlas", got.Name)

	rec = doRequest(e, http.MethodGet, "/api/v1/agents/ghost", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAgentsHandler(t *testing.T) {
	e, api := newTestService(t, mock.NewService())

	rec := doRequest(e, http.MethodGet, "/api/v1/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var empty ListAgentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	require.Empty(t, empty.Agents)

	first := mustCreateAgent(t, api, "atlas", "researcher", nil)
	second := mustCreateAgent(t, api, "quill", "writer", nil)

	rec = doRequest(e, http.MethodGet, "/api/v1/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got ListAgentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Agents, 2)
	require.Equal(t, first.ID, got.Agents[0].ID)
	require.Equal(t, second.ID, got.Agents[1].ID)
}

func TestTrainAgentHandler(t *testing.T) {
	svc := mock.NewService().
		WithResponse("Acknowledge that you have incorporated", "Noted the escalation matrix.")
	e, api := newTestService(t, svc)
	created := mustCreateAgent(t, api, "atlas", "support", nil)

	rec := doRequest(e, http.MethodPost, "/api/v1/agents/"+created.ID+"/train",
		`{"training_data":"Escalate severity-1 incidents within five minutes."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 1, got.MemorySize)

	t.Run("empty training data", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/agents/"+created.ID+"/train", `{"training_data":""}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown agent", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/agents/ghost/train", `{"training_data":"anything"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTrainAgentHandlerOracleFailure(t *testing.T) {
	svc := mock.NewService().
		WithError(oracle.NewServiceError("openai", "gpt-4o-mini", errors.New("rate limited")))
	e, api := newTestService(t, svc)
	created := mustCreateAgent(t, api, "atlas", "support", nil)

	rec := doRequest(e, http.MethodPost, "/api/v1/agents/"+created.ID+"/train",
		`{"training_data":"anything"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Zero(t, created.MemorySize())
}

func TestListAgentMemoryHandler(t *testing.T) {
	svc := mock.NewService().
		WithResponse("Acknowledge that you have incorporated", "Understood.")
	e, api := newTestService(t, svc)
	created := mustCreateAgent(t, api, "atlas", "support", nil)

	for i := 1; i <= 3; i++ {
		require.NoError(t, api.Registry.Train(context.Background(), created.ID, fmt.Sprintf("lesson %d", i)))
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/agents/"+created.ID+"/memory", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got ListAgentMemoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Memory, 3)
	require.Equal(t, 3, got.Total)
	require.Contains(t, got.Memory[0].Content, "lesson 1")
	require.Equal(t, "training", got.Memory[0].Kind)

	t.Run("limit", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/agents/"+created.ID+"/memory?limit=2", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var limited ListAgentMemoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limited))
		require.Len(t, limited.Memory, 2)
		require.Equal(t, 3, limited.Total)
		require.Contains(t, limited.Memory[0].Content, "lesson 2")
		require.Contains(t, limited.Memory[1].Content, "lesson 3")
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/agents/"+created.ID+"/memory?limit=many", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown agent", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/agents/ghost/memory", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetAgentPerformanceHandler(t *testing.T) {
	svc := mock.NewService().
		WithResponse("Classify the complexity of this task", "low").
		WithResponse("Complete this task", "Filed the report.")
	e, api := newTestService(t, svc)
	created := mustCreateAgent(t, api, "atlas", "clerk", nil)

	rec := doRequest(e, http.MethodGet, "/api/v1/agents/"+created.ID+"/performance", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh PerformanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))
	require.Equal(t, created.ID, fresh.AgentID)
	require.Zero(t, fresh.TotalTasks)
	require.Zero(t, fresh.SuccessRate)

	_, err := api.Orchestrator.Execute(context.Background(), created.ID, "File the quarterly report", nil)
	require.NoError(t, err)

	rec = doRequest(e, http.MethodGet, "/api/v1/agents/"+created.ID+"/performance", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got PerformanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 1, got.TotalTasks)
	require.Equal(t, 1, got.CompletedTasks)
	require.Equal(t, 1.0, got.SuccessRate)
	require.Len(t, got.RecentActivity, 1)

	t.Run("unknown agent", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/agents/ghost/performance", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
