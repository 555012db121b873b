package orchestrator

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// IsTerminal returns true if the status is a final state.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task is a unit of work submitted against one agent. Status moves strictly
// forward through pending → processing → completed|failed; terminal states
// are final. Result is set only on completion, the error message only on
// failure.
type Task struct {
	ID          string
	AgentID     string
	Description string
	Context     map[string]any
	CreatedAt   time.Time

	mu          sync.RWMutex
	status      TaskStatus
	result      string
	errMsg      string
	completedAt time.Time
}

func newTask(agentID, description string, taskContext map[string]any) *Task {
	ctxCopy := make(map[string]any, len(taskContext))
	for k, v := range taskContext {
		ctxCopy[k] = v
	}
	return &Task{
		ID:          uuid.New().String(),
		AgentID:     agentID,
		Description: description,
		Context:     ctxCopy,
		CreatedAt:   time.Now(),
		status:      TaskPending,
	}
}

// Status returns the current status thread-safely.
func (t *Task) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Result returns the task result, set only once the task completed.
func (t *Task) Result() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result
}

// ErrorMessage returns the recorded failure message, set only on failure.
func (t *Task) ErrorMessage() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.errMsg
}

// CompletedAt returns the completion time, zero unless the task completed.
func (t *Task) CompletedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.completedAt
}

// markProcessing transitions pending → processing.
func (t *Task) markProcessing() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TaskPending {
		return errors.New("can only process a pending task")
	}
	t.status = TaskProcessing
	return nil
}

// complete transitions processing → completed with the final result.
func (t *Task) complete(result string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TaskProcessing {
		return errors.New("can only complete a processing task")
	}
	t.status = TaskCompleted
	t.result = result
	t.completedAt = time.Now()
	return nil
}

// fail transitions processing → failed with the failure message.
func (t *Task) fail(errMsg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TaskProcessing {
		return errors.New("can only fail a processing task")
	}
	t.status = TaskFailed
	t.errMsg = errMsg
	return nil
}

// TaskQueue holds every submitted task: history and active work co-mingled,
// never removed. Lookup is id-keyed; iteration preserves insertion order.
type TaskQueue struct {
	mu    sync.RWMutex
	order []*Task
	index map[string]*Task
}

// NewTaskQueue creates an empty queue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{index: make(map[string]*Task)}
}

// Append adds a task to the end of the queue.
func (q *TaskQueue) Append(t *Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.order = append(q.order, t)
	q.index[t.ID] = t
}

// Get returns the task with the given id, or false if unknown.
func (q *TaskQueue) Get(id string) (*Task, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	t, ok := q.index[id]
	return t, ok
}

// List returns all tasks in insertion order.
func (q *TaskQueue) List() []*Task {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*Task, len(q.order))
	copy(out, q.order)
	return out
}

// ByAgent returns the tasks owned by the given agent, in insertion order.
func (q *TaskQueue) ByAgent(agentID string) []*Task {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var out []*Task
	for _, t := range q.order {
		if t.AgentID == agentID {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.order)
}

// CountByStatus returns the number of tasks per status.
func (q *TaskQueue) CountByStatus() map[TaskStatus]int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	counts := make(map[TaskStatus]int)
	for _, t := range q.order {
		counts[t.Status()]++
	}
	return counts
}
