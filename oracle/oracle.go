// Package oracle provides the text-completion service consumed by the agent
// pool. Every piece of natural-language reasoning in the system goes through
// the Service interface; the rest of the codebase only sequences and combines
// its answers.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Options are the per-call generation settings.
type Options struct {
	// Temperature controls output randomness. Low values favor determinism.
	Temperature float32

	// MaxOutputTokens bounds the length of the generated reply.
	MaxOutputTokens int
}

// CallStats represents token usage and timing for a single completion call.
type CallStats struct {
	// PromptTokens is the number of tokens in the input prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the generated reply.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the sum of prompt and completion tokens.
	TotalTokens int `json:"total_tokens"`

	// DurationMs is the wall-clock time for the request.
	DurationMs int64 `json:"duration_ms"`
}

// Service is the completion service interface.
type Service interface {
	// Complete sends the ordered messages and returns the generated text,
	// call statistics, and error. Implementations must not retry.
	Complete(ctx context.Context, messages []Message, opts Options) (string, *CallStats, error)
}

// ServiceError represents a failed completion call: transport faults, quota
// rejections, and malformed provider responses all surface as this type.
type ServiceError struct {
	// Provider identifies the backing provider.
	Provider string
	// Model is the model the call targeted.
	Model string
	// Err is the underlying cause.
	Err error
}

// Error returns a formatted error message.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("oracle %s/%s: completion failed", e.Provider, e.Model)
	}
	return fmt.Sprintf("oracle %s/%s: %v", e.Provider, e.Model, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(provider, model string, err error) *ServiceError {
	return &ServiceError{Provider: provider, Model: model, Err: err}
}

// IsServiceError checks if an error is a ServiceError.
func IsServiceError(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr)
}

// SystemPrompt creates a system-role message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user-role message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage creates an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}
