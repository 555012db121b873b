package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/covey-ai/covey/oracle"
)

// Subtask is one decomposed unit of a complex task. The JSON tags are the
// wire contract the decomposition prompt requests from the oracle.
type Subtask struct {
	ID                string   `json:"id"`
	Description       string   `json:"description"`
	Dependencies      []string `json:"dependencies"`
	EstimatedDuration int      `json:"estimated_duration"`
}

// Decomposer turns a task description into an ordered subtask plan.
type Decomposer struct {
	oracle oracle.Service
}

// NewDecomposer creates a new task decomposer.
func NewDecomposer(svc oracle.Service) *Decomposer {
	return &Decomposer{oracle: svc}
}

// Decompose asks the oracle for a structured breakdown and returns the
// subtasks in execution order: topological by declared dependencies, ties
// broken by decomposition order, so dependency-free plans keep the oracle's
// ordering. Replies that cannot be turned into a valid plan yield a
// DecompositionParseError; nothing is retried.
func (d *Decomposer) Decompose(ctx context.Context, description string) ([]Subtask, error) {
	startTime := time.Now()

	reply, _, err := d.oracle.Complete(ctx, buildDecomposeMessages(description), decomposeOptions)
	if err != nil {
		slog.Error("decomposer: oracle call failed", "error", err)
		return nil, err
	}

	subtasks, err := parseSubtasks(reply)
	if err != nil {
		slog.Warn("decomposer: failed to parse plan",
			"error", err,
			"reply_length", len(reply),
		)
		return nil, NewDecompositionParseError(reply, err)
	}

	ordered, err := orderByDependencies(subtasks)
	if err != nil {
		slog.Warn("decomposer: invalid dependency graph", "error", err)
		return nil, NewDecompositionParseError(reply, err)
	}

	slog.Info("decomposer: decompose complete",
		"subtask_count", len(ordered),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return ordered, nil
}

// parseSubtasks parses the oracle reply into subtasks. Markdown code fences
// are stripped first since models wrap JSON in them despite instructions.
func parseSubtasks(reply string) ([]Subtask, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var subtasks []Subtask
	if err := json.Unmarshal([]byte(cleaned), &subtasks); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	if len(subtasks) == 0 {
		return nil, errors.New("no subtasks in plan")
	}

	seen := make(map[string]bool, len(subtasks))
	for i := range subtasks {
		if strings.TrimSpace(subtasks[i].Description) == "" {
			return nil, fmt.Errorf("subtask %d has an empty description", i+1)
		}
		// Generate an id if empty (the oracle does not always return one)
		if subtasks[i].ID == "" {
			subtasks[i].ID = fmt.Sprintf("s%d", i+1)
		}
		if seen[subtasks[i].ID] {
			return nil, fmt.Errorf("duplicate subtask id %q", subtasks[i].ID)
		}
		seen[subtasks[i].ID] = true
	}

	return subtasks, nil
}

// orderByDependencies returns the subtasks in a dependency-respecting order
// using Kahn's algorithm. Among ready subtasks the lowest decomposition
// index runs first, which keeps the order stable and deterministic.
func orderByDependencies(subtasks []Subtask) ([]Subtask, error) {
	index := make(map[string]int, len(subtasks))
	for i, s := range subtasks {
		index[s.ID] = i
	}

	inDegree := make([]int, len(subtasks))
	downstream := make(map[int][]int)
	for i, s := range subtasks {
		for _, dep := range s.Dependencies {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("subtask %s depends on unknown subtask %s", s.ID, dep)
			}
			downstream[j] = append(downstream[j], i)
			inDegree[i]++
		}
	}

	ordered := make([]Subtask, 0, len(subtasks))
	done := make([]bool, len(subtasks))
	for len(ordered) < len(subtasks) {
		next := -1
		for i := range subtasks {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, errors.New("dependency cycle detected")
		}
		done[next] = true
		ordered = append(ordered, subtasks[next])
		for _, down := range downstream[next] {
			inDegree[down]--
		}
	}

	return ordered, nil
}
