package v1

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/oracle/mock"
	"github.com/covey-ai/covey/orchestrator"
)

func TestParseTaskFilter(t *testing.T) {
	tests := []struct {
		name       string
		filter     string
		wantStatus string
		wantAgent  string
	}{
		{"empty matches everything", "", "", ""},
		{"status comparison", "status == 'completed'", "completed", ""},
		{"agent comparison", "agent_id == 'a1'", "", "a1"},
		{"double quoted constant", `status == "failed"`, "failed", ""},
		{"reversed operands", "'pending' == status", "pending", ""},
		{"conjunction", "status == 'completed' && agent_id == 'a1'", "completed", "a1"},
		{"nested conjunction", "status == 'completed' && agent_id == 'a1' && status == 'failed'", "failed", "a1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTaskFilter(tt.filter)
			require.NoError(t, err)

			if tt.wantStatus == "" {
				require.Nil(t, got.status)
			} else {
				require.NotNil(t, got.status)
				require.Equal(t, tt.wantStatus, *got.status)
			}
			if tt.wantAgent == "" {
				require.Nil(t, got.agentID)
			} else {
				require.NotNil(t, got.agentID)
				require.Equal(t, tt.wantAgent, *got.agentID)
			}
		})
	}
}

func TestParseTaskFilterRejectsInvalidExpressions(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		wantErr string
	}{
		{"unknown field", "owner == 'atlas'", "invalid filter expression"},
		{"syntax error", "status == ", "invalid filter expression"},
		{"unsupported operator", "status != 'completed'", "unsupported operator"},
		{"disjunction", "status == 'completed' || status == 'failed'", "unsupported operator"},
		{"bare identifier", "status", "must be a comparison expression"},
		{"two identifiers", "status == agent_id", "string constant"},
		{"empty constant", "status == ''", "string constant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTaskFilter(tt.filter)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTaskFilterMatches(t *testing.T) {
	svc := mock.NewService()
	registry := agent.NewRegistry(svc)
	orchestration := orchestrator.New(svc, registry)
	worker, err := registry.Create(context.Background(), agent.Config{Name: "atlas", Type: "organizer"})
	require.NoError(t, err)
	task, err := orchestration.SubmitTask(worker.ID, "Sort the backlog", nil)
	require.NoError(t, err)

	match, err := parseTaskFilter("status == 'pending'")
	require.NoError(t, err)
	require.True(t, match.matches(task))

	noMatch, err := parseTaskFilter("status == 'completed'")
	require.NoError(t, err)
	require.False(t, noMatch.matches(task))

	byAgent, err := parseTaskFilter("agent_id == '" + worker.ID + "'")
	require.NoError(t, err)
	require.True(t, byAgent.matches(task))

	otherAgent, err := parseTaskFilter("agent_id == 'someone-else'")
	require.NoError(t, err)
	require.False(t, otherAgent.matches(task))
}
