// Package agent provides the agent pool: capability-tagged execution personas
// with append-only memory logs, owned and trained by a Registry.
package agent

import (
	"fmt"
	"sync"
	"time"
)

// Status represents the availability of an agent.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// EntryKind distinguishes how a memory entry was produced.
type EntryKind string

const (
	// MemoryTraining marks entries appended by a training round-trip.
	MemoryTraining EntryKind = "training"
	// MemoryExecution marks entries appended after a task execution.
	MemoryExecution EntryKind = "execution"
)

// MemoryEntry is one retained event in an agent's memory log.
type MemoryEntry struct {
	Kind      EntryKind `json:"kind"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// Memory retention bounds. The trim fires only on execution appends: once the
// log exceeds memoryMaxEntries it is cut to exactly the memoryKeepRecent most
// recent entries. Training appends bypass the trim and may push the log past
// the bound until the next execution append.
const (
	memoryMaxEntries = 100
	memoryKeepRecent = 50
)

// Agent is a named, capability-tagged execution persona with its own memory
// log. Identity fields are immutable after creation; memory and status are
// guarded by a per-agent mutex so concurrent task flows touching the same
// agent interleave safely.
type Agent struct {
	ID           string
	Name         string
	Type         string
	Capabilities []string
	Knowledge    []string
	CreatedAt    time.Time

	mu     sync.RWMutex
	memory []MemoryEntry
	status Status
}

// Status returns the agent's availability thread-safely.
func (a *Agent) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// RecordTraining appends a training entry holding the training text and the
// oracle's acknowledgment. Training appends never trigger the retention trim.
func (a *Agent) RecordTraining(trainingText, acknowledgment string) {
	entry := MemoryEntry{
		Kind:      MemoryTraining,
		Content:   fmt.Sprintf("Training: %s\nAcknowledgment: %s", trainingText, acknowledgment),
		Timestamp: time.Now(),
		Success:   true,
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.memory = append(a.memory, entry)
}

// RecordExecution appends an execution entry for a completed task unit and
// then enforces the retention bound.
func (a *Agent) RecordExecution(taskDescription, result string) {
	entry := MemoryEntry{
		Kind:      MemoryExecution,
		Content:   fmt.Sprintf("Task: %s\nResult: %s", taskDescription, result),
		Timestamp: time.Now(),
		Success:   true,
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.memory = append(a.memory, entry)

	if len(a.memory) > memoryMaxEntries {
		trimmed := make([]MemoryEntry, memoryKeepRecent)
		copy(trimmed, a.memory[len(a.memory)-memoryKeepRecent:])
		a.memory = trimmed
	}
}

// MemorySize returns the current length of the memory log.
func (a *Agent) MemorySize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.memory)
}

// Memory returns a copy of the full memory log in insertion order.
func (a *Agent) Memory() []MemoryEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]MemoryEntry, len(a.memory))
	copy(out, a.memory)
	return out
}

// Recent returns up to n of the most recent memory entries, most-recent-last.
// n <= 0 yields an empty slice.
func (a *Agent) Recent(n int) []MemoryEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if n <= 0 {
		return []MemoryEntry{}
	}
	if n > len(a.memory) {
		n = len(a.memory)
	}
	out := make([]MemoryEntry, n)
	copy(out, a.memory[len(a.memory)-n:])
	return out
}
