package orchestrator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/orchestrator"
)

func TestFirstEligible(t *testing.T) {
	eligible := []*agent.Agent{
		{ID: "a1", Name: "alpha", Type: "researcher"},
		{ID: "a2", Name: "beta", Type: "writer"},
	}

	chosen, rationale, err := orchestrator.FirstEligible{}.Assign(
		orchestrator.Subtask{ID: "s1", Description: "anything at all"}, eligible)
	require.NoError(t, err)
	assert.Equal(t, "a1", chosen.ID)
	assert.NotEmpty(t, rationale)
}

func TestFirstEligibleEmptySet(t *testing.T) {
	_, _, err := orchestrator.FirstEligible{}.Assign(orchestrator.Subtask{ID: "s1", Description: "x"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, orchestrator.ErrNoEligibleAgent))
}

func TestCapabilityScore(t *testing.T) {
	researcher := &agent.Agent{ID: "a1", Name: "alpha", Type: "researcher", Capabilities: []string{"research", "analysis"}}
	writer := &agent.Agent{ID: "a2", Name: "beta", Type: "writer", Capabilities: []string{"writing", "editing"}}
	eligible := []*agent.Agent{researcher, writer}

	tests := []struct {
		name        string
		description string
		wantID      string
	}{
		{"single capability match", "Do the market research for the launch", "a1"},
		{"match is case insensitive", "WRITING the landing page copy", "a2"},
		{"more matches win", "writing and editing the final draft", "a2"},
		{"no match falls back to the first agent", "water the office plants", "a1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub := orchestrator.Subtask{ID: "s1", Description: tc.description}
			chosen, rationale, err := orchestrator.CapabilityScore{}.Assign(sub, eligible)
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, chosen.ID)
			assert.NotEmpty(t, rationale)
		})
	}
}

func TestCapabilityScoreTieKeepsEarlierAgent(t *testing.T) {
	first := &agent.Agent{ID: "a1", Name: "alpha", Type: "analyst", Capabilities: []string{"analysis"}}
	second := &agent.Agent{ID: "a2", Name: "beta", Type: "analyst", Capabilities: []string{"analysis"}}

	sub := orchestrator.Subtask{ID: "s1", Description: "run the analysis"}
	for i := 0; i < 5; i++ {
		chosen, _, err := orchestrator.CapabilityScore{}.Assign(sub, []*agent.Agent{first, second})
		require.NoError(t, err)
		assert.Equal(t, "a1", chosen.ID, "ties must resolve to the earlier agent every time")
	}
}

func TestCapabilityScoreEmptySet(t *testing.T) {
	_, _, err := orchestrator.CapabilityScore{}.Assign(orchestrator.Subtask{ID: "s1", Description: "x"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, orchestrator.ErrNoEligibleAgent))
}
