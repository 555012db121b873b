package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/covey-ai/covey/oracle"
)

// Config supplies the fields for creating an agent.
type Config struct {
	Name         string
	Type         string
	Capabilities []string
	Knowledge    []string
	// TrainingData, when non-empty, is applied through a training round-trip
	// before the agent becomes visible to other components.
	TrainingData string
}

// Recorder receives registry metrics. A nil Recorder disables recording.
type Recorder interface {
	SetRegisteredAgents(count int)
	RecordTraining(success bool)
}

// Registry creates, stores, and trains agents. Agents are never removed;
// List iterates in creation order.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*Agent
	order  []*Agent

	oracle  oracle.Service
	metrics Recorder
}

// Option customizes a Registry.
type Option func(*Registry)

// WithRecorder attaches a metrics recorder to the registry.
func WithRecorder(r Recorder) Option {
	return func(reg *Registry) {
		reg.metrics = r
	}
}

// NewRegistry creates an empty registry backed by the given oracle.
func NewRegistry(svc oracle.Service, opts ...Option) *Registry {
	r := &Registry{
		agents: make(map[string]*Agent),
		oracle: svc,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create builds a fresh agent from cfg. If training data is supplied the
// training round-trip runs first; on training failure no agent is registered.
func (r *Registry) Create(ctx context.Context, cfg Config) (*Agent, error) {
	if cfg.Name == "" {
		return nil, errors.New("agent name cannot be empty")
	}
	if cfg.Type == "" {
		return nil, errors.New("agent type cannot be empty")
	}

	a := &Agent{
		ID:           uuid.New().String(),
		Name:         cfg.Name,
		Type:         cfg.Type,
		Capabilities: append([]string(nil), cfg.Capabilities...),
		Knowledge:    append([]string(nil), cfg.Knowledge...),
		CreatedAt:    time.Now(),
		status:       StatusActive,
	}

	if cfg.TrainingData != "" {
		if err := a.train(ctx, r.oracle, cfg.TrainingData); err != nil {
			r.recordTraining(false)
			slog.Error("registry: agent creation aborted, training failed",
				"name", cfg.Name,
				"error", err,
			)
			return nil, err
		}
		r.recordTraining(true)
	}

	r.mu.Lock()
	r.agents[a.ID] = a
	r.order = append(r.order, a)
	count := len(r.order)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.SetRegisteredAgents(count)
	}

	slog.Info("registry: agent created",
		"agent_id", a.ID,
		"name", a.Name,
		"type", a.Type,
		"capabilities", len(a.Capabilities),
		"trained", cfg.TrainingData != "",
	)
	return a, nil
}

// Get returns the agent with the given id, or false if unknown.
func (r *Registry) Get(id string) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// List returns all agents in creation order.
func (r *Registry) List() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Agent, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Train runs a training round-trip for an existing agent.
func (r *Registry) Train(ctx context.Context, id, trainingText string) error {
	a, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("train agent %q: %w", id, ErrAgentNotFound)
	}

	if err := a.train(ctx, r.oracle, trainingText); err != nil {
		r.recordTraining(false)
		return err
	}
	r.recordTraining(true)

	slog.Info("registry: agent trained",
		"agent_id", a.ID,
		"name", a.Name,
		"memory_size", a.MemorySize(),
	)
	return nil
}

func (r *Registry) recordTraining(success bool) {
	if r.metrics != nil {
		r.metrics.RecordTraining(success)
	}
}
