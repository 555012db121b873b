package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covey-ai/covey/oracle"
	"github.com/covey-ai/covey/oracle/mock"
)

func TestCreateTaskHandler(t *testing.T) {
	svc := mock.NewService().
		WithResponse("Classify the complexity of this task", "low").
		WithResponse("Complete this task", "Sorted the backlog by priority.")
	e, api := newTestService(t, svc)
	worker := mustCreateAgent(t, api, "atlas", "organizer", nil)

	rec := doRequest(e, http.MethodPost, "/api/v1/tasks",
		fmt.Sprintf(`{"agent_id":%q,"description":"Sort the backlog","context":{"board":"infra"}}`, worker.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var got TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotEmpty(t, got.ID)
	require.Equal(t, worker.ID, got.AgentID)
	require.Equal(t, "Sort the backlog", got.Description)
	require.Equal(t, "completed", got.Status)
	require.Equal(t, "Sorted the backlog by priority.", got.Result)
	require.Empty(t, got.ErrorMessage)
	require.NotNil(t, got.CompletedAt)

	// The worker learned from the run.
	require.Equal(t, 1, worker.MemorySize())
}

func TestCreateTaskHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing agent id", `{"description":"Sort the backlog"}`},
		{"missing description", `{"agent_id":"a1"}`},
		{"malformed json", `{"agent_id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mock.NewService()
			e, api := newTestService(t, svc)
			mustCreateAgent(t, api, "atlas", "organizer", nil)

			rec := doRequest(e, http.MethodPost, "/api/v1/tasks", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Empty(t, api.Orchestrator.Tasks())
			require.Zero(t, svc.CallCount())
		})
	}
}

func TestCreateTaskHandlerUnknownAgent(t *testing.T) {
	e, api := newTestService(t, mock.NewService())

	rec := doRequest(e, http.MethodPost, "/api/v1/tasks",
		`{"agent_id":"ghost","description":"Sort the backlog"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, api.Orchestrator.Tasks())
}

func TestCreateTaskHandlerOracleFailure(t *testing.T) {
	svc := mock.NewService().
		WithError(oracle.NewServiceError("openai", "gpt-4o-mini", errors.New("connection reset")))
	e, api := newTestService(t, svc)
	worker := mustCreateAgent(t, api, "atlas", "organizer", nil)

	rec := doRequest(e, http.MethodPost, "/api/v1/tasks",
		fmt.Sprintf(`{"agent_id":%q,"description":"Sort the backlog"}`, worker.ID))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	// The terminal task still comes back in the body.
	var got TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "failed", got.Status)
	require.NotEmpty(t, got.ErrorMessage)
}

func TestCreateTaskHandlerDecompositionFailure(t *testing.T) {
	svc := mock.NewService().
		WithResponse("Classify the complexity of this task", "high").
		WithResponse("Decompose this task", "I would rather describe the plan in prose.")
	e, api := newTestService(t, svc)
	worker := mustCreateAgent(t, api, "atlas", "organizer", nil)

	rec := doRequest(e, http.MethodPost, "/api/v1/tasks",
		fmt.Sprintf(`{"agent_id":%q,"description":"Launch the new pricing page"}`, worker.ID))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var got TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "failed", got.Status)
	require.Contains(t, got.ErrorMessage, "decomposition parse failed")
}

func TestCreateTaskHandlerConcurrencyLimit(t *testing.T) {
	svc := mock.NewService().
		WithResponse("Classify the complexity of this task", "low").
		WithResponse("Complete this task", "Done.")
	e, api := newTestService(t, svc)
	worker := mustCreateAgent(t, api, "atlas", "organizer", nil)

	// Hold every permit so the next request finds the pool saturated.
	require.True(t, api.taskSemaphore.TryAcquire(2))

	body := fmt.Sprintf(`{"agent_id":%q,"description":"Sort the backlog"}`, worker.ID)
	rec := doRequest(e, http.MethodPost, "/api/v1/tasks", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	// A rejected request leaves nothing queued.
	require.Empty(t, api.Orchestrator.Tasks())

	api.taskSemaphore.Release(2)
	rec = doRequest(e, http.MethodPost, "/api/v1/tasks", body)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListTasksHandler(t *testing.T) {
	svc := mock.NewService().
		WithResponse("Classify the complexity of this task", "low").
		WithResponse("Complete this task", "Done.")
	e, api := newTestService(t, svc)
	first := mustCreateAgent(t, api, "atlas", "organizer", nil)
	second := mustCreateAgent(t, api, "quill", "writer", nil)

	for _, body := range []string{
		fmt.Sprintf(`{"agent_id":%q,"description":"Sort the backlog"}`, first.ID),
		fmt.Sprintf(`{"agent_id":%q,"description":"Draft the changelog"}`, second.ID),
	} {
		rec := doRequest(e, http.MethodPost, "/api/v1/tasks", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	_, err := api.Orchestrator.SubmitTask(first.ID, "Tidy the wiki", nil)
	require.NoError(t, err)

	listTasks := func(t *testing.T, filter string) []*TaskResponse {
		t.Helper()
		target := "/api/v1/tasks"
		if filter != "" {
			q := url.Values{}
			q.Set("filter", filter)
			target += "?" + q.Encode()
		}
		rec := doRequest(e, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got ListTasksResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		return got.Tasks
	}

	require.Len(t, listTasks(t, ""), 3)

	pending := listTasks(t, "status == 'pending'")
	require.Len(t, pending, 1)
	require.Equal(t, "Tidy the wiki", pending[0].Description)

	byAgent := listTasks(t, fmt.Sprintf("agent_id == %q", first.ID))
	require.Len(t, byAgent, 2)

	both := listTasks(t, fmt.Sprintf("status == 'completed' && agent_id == %q", first.ID))
	require.Len(t, both, 1)
	require.Equal(t, "Sort the backlog", both[0].Description)

	t.Run("invalid filter", func(t *testing.T) {
		q := url.Values{}
		q.Set("filter", "owner == 'atlas'")
		rec := doRequest(e, http.MethodGet, "/api/v1/tasks?"+q.Encode(), "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetTaskHandler(t *testing.T) {
	svc := mock.NewService().
		WithResponse("Classify the complexity of this task", "low").
		WithResponse("Complete this task", "Done.")
	e, api := newTestService(t, svc)
	worker := mustCreateAgent(t, api, "atlas", "organizer", nil)

	rec := doRequest(e, http.MethodPost, "/api/v1/tasks",
		fmt.Sprintf(`{"agent_id":%q,"description":"Sort the backlog"}`, worker.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	var created TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doRequest(e, http.MethodGet, "/api/v1/tasks/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "completed", got.Status)

	rec = doRequest(e, http.MethodGet, "/api/v1/tasks/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
