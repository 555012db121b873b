// Package orchestrator coordinates task intake, complexity routing,
// decomposition, execution and synthesis over a pool of agents.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/oracle"
)

// defaultMemoryWindow bounds how many recent memory entries an execution
// prompt carries.
const defaultMemoryWindow = 20

// Recorder receives orchestration metrics. Implementations must be safe
// for concurrent use.
type Recorder interface {
	RecordTask(complexity, status string, duration time.Duration)
}

// Orchestrator owns the full lifecycle of tasks for one pool of agents:
// classify, optionally decompose, execute with memory feedback, synthesize.
// Each instance carries its own task queue; independent instances share
// nothing.
type Orchestrator struct {
	oracle       oracle.Service
	registry     *agent.Registry
	queue        *TaskQueue
	classifier   *Classifier
	decomposer   *Decomposer
	executor     *Executor
	synthesizer  *Synthesizer
	assigner     Assigner
	metrics      Recorder
	memoryWindow int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAssigner replaces the default FirstEligible assignment strategy.
func WithAssigner(a Assigner) Option {
	return func(o *Orchestrator) {
		if a != nil {
			o.assigner = a
		}
	}
}

// WithMemoryWindow sets how many recent memory entries execution prompts
// include. Values below 1 keep the default.
func WithMemoryWindow(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 {
			o.memoryWindow = n
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(o *Orchestrator) { o.metrics = r }
}

// New creates an Orchestrator over the given oracle service and agent
// registry.
func New(svc oracle.Service, registry *agent.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		oracle:       svc,
		registry:     registry,
		queue:        NewTaskQueue(),
		assigner:     FirstEligible{},
		memoryWindow: defaultMemoryWindow,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.classifier = NewClassifier(svc)
	o.decomposer = NewDecomposer(svc)
	o.executor = NewExecutor(svc, o.memoryWindow)
	o.synthesizer = NewSynthesizer(svc)
	return o
}

// SubmitTask queues a new pending task for the given agent. Unknown agent
// ids are rejected up front so the queue never holds orphan tasks.
func (o *Orchestrator) SubmitTask(agentID, description string, taskContext map[string]any) (*Task, error) {
	if _, ok := o.registry.Get(agentID); !ok {
		return nil, fmt.Errorf("submit task for agent %q: %w", agentID, agent.ErrAgentNotFound)
	}

	task := newTask(agentID, description, taskContext)
	o.queue.Append(task)
	slog.Info("orchestrator: task submitted",
		"task_id", task.ID,
		"agent_id", agentID,
	)
	return task, nil
}

// ProcessTask runs a queued task to a terminal state and returns its
// result. The task moves pending to processing first; every failure past
// that point is recorded on the task before the error is returned. Nothing
// is retried.
func (o *Orchestrator) ProcessTask(ctx context.Context, taskID string) (string, error) {
	task, ok := o.queue.Get(taskID)
	if !ok {
		return "", fmt.Errorf("process task %q: %w", taskID, ErrTaskNotFound)
	}
	worker, ok := o.registry.Get(task.AgentID)
	if !ok {
		return "", fmt.Errorf("process task %q: %w", taskID, agent.ErrAgentNotFound)
	}
	if err := task.markProcessing(); err != nil {
		return "", err
	}

	traceID := shortuuid.New()
	startTime := time.Now()
	slog.Info("orchestrator: processing task",
		"trace_id", traceID,
		"task_id", task.ID,
		"agent_id", worker.ID,
	)

	result, complexity, runErr := o.runPipeline(ctx, task, worker, traceID)
	duration := time.Since(startTime)
	if runErr != nil {
		if err := task.fail(runErr.Error()); err != nil {
			slog.Error("orchestrator: could not mark task failed", "task_id", task.ID, "error", err)
		}
		o.recordTask(complexityLabel(complexity), string(TaskFailed), duration)
		slog.Error("orchestrator: task failed",
			"trace_id", traceID,
			"task_id", task.ID,
			"error", runErr,
			"duration_ms", duration.Milliseconds(),
		)
		return "", runErr
	}

	if err := task.complete(result); err != nil {
		return "", err
	}
	o.recordTask(complexityLabel(complexity), string(TaskCompleted), duration)
	slog.Info("orchestrator: task complete",
		"trace_id", traceID,
		"task_id", task.ID,
		"complexity", complexityLabel(complexity),
		"duration_ms", duration.Milliseconds(),
	)
	return result, nil
}

// Execute submits a task for the agent and processes it in one call.
func (o *Orchestrator) Execute(ctx context.Context, agentID, description string, taskContext map[string]any) (string, error) {
	task, err := o.SubmitTask(agentID, description, taskContext)
	if err != nil {
		return "", err
	}
	return o.ProcessTask(ctx, task.ID)
}

// Task returns the queued task with the given id.
func (o *Orchestrator) Task(id string) (*Task, bool) {
	return o.queue.Get(id)
}

// Tasks returns every queued task in submission order.
func (o *Orchestrator) Tasks() []*Task {
	return o.queue.List()
}

// TaskCounts returns the number of queued tasks per status.
func (o *Orchestrator) TaskCounts() map[TaskStatus]int {
	return o.queue.CountByStatus()
}

// runPipeline routes the task by classified complexity and returns the
// final result text. The returned Complexity is empty when classification
// itself failed.
func (o *Orchestrator) runPipeline(ctx context.Context, task *Task, worker *agent.Agent, traceID string) (string, Complexity, error) {
	complexity, err := o.classifier.Classify(ctx, task.Description)
	if err != nil {
		return "", "", err
	}
	slog.Info("orchestrator: task classified",
		"trace_id", traceID,
		"task_id", task.ID,
		"complexity", string(complexity),
	)

	if complexity == ComplexityHigh {
		result, err := o.runDecomposed(ctx, task, worker, traceID)
		return result, complexity, err
	}
	result, err := o.runDirect(ctx, task, worker)
	return result, complexity, err
}

// runDirect executes the whole task as a single oracle call and records
// the outcome in the agent's memory.
func (o *Orchestrator) runDirect(ctx context.Context, task *Task, worker *agent.Agent) (string, error) {
	sub := Subtask{ID: task.ID, Description: task.Description}
	res, err := o.executor.Run(ctx, worker, sub, task.Context)
	if err != nil {
		return "", err
	}
	worker.RecordExecution(task.Description, res.Result)
	return res.Result, nil
}

// runDecomposed breaks the task into subtasks, executes them sequentially
// in dependency order with a memory append after each, then synthesizes one
// final answer.
func (o *Orchestrator) runDecomposed(ctx context.Context, task *Task, worker *agent.Agent, traceID string) (string, error) {
	subtasks, err := o.decomposer.Decompose(ctx, task.Description)
	if err != nil {
		return "", err
	}
	slog.Info("orchestrator: task decomposed",
		"trace_id", traceID,
		"task_id", task.ID,
		"subtask_count", len(subtasks),
	)

	results := make([]SubtaskResult, 0, len(subtasks))
	for _, sub := range subtasks {
		res, err := o.executor.Run(ctx, worker, sub, task.Context)
		if err != nil {
			return "", err
		}
		worker.RecordExecution(sub.Description, res.Result)
		results = append(results, *res)
	}

	return o.synthesizer.Synthesize(ctx, task.Description, results)
}

func (o *Orchestrator) recordTask(complexity, status string, duration time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordTask(complexity, status, duration)
}

// complexityLabel is the metrics/log label for a classification outcome,
// "unknown" when classification never produced one.
func complexityLabel(c Complexity) string {
	if c == "" {
		return "unknown"
	}
	return string(c)
}
