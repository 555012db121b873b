// Package mock provides a scripted oracle.Service for tests.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/covey-ai/covey/oracle"
)

// Call records a single Complete invocation.
type Call struct {
	Messages []oracle.Message
	Options  oracle.Options
}

// LastUserContent returns the content of the last user-role message.
func (c Call) LastUserContent() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == "user" {
			return c.Messages[i].Content
		}
	}
	return ""
}

// SystemContent returns the content of the first system-role message.
func (c Call) SystemContent() string {
	for _, m := range c.Messages {
		if m.Role == "system" {
			return m.Content
		}
	}
	return ""
}

// Service is a configurable mock oracle. Responses are keyed on the last
// user message: exact match first, then first substring match in the order
// the responses were registered.
type Service struct {
	mu              sync.Mutex
	keys            []string
	responses       map[string]string
	errKeys         []string
	errs            map[string]error
	defaultResponse string
	err             error
	callStats       *oracle.CallStats
	calls           []Call
}

// NewService creates a new mock oracle.
func NewService() *Service {
	return &Service{
		responses: make(map[string]string),
		errs:      make(map[string]error),
		callStats: &oracle.CallStats{
			PromptTokens:     100,
			CompletionTokens: 50,
			TotalTokens:      150,
			DurationMs:       5,
		},
		defaultResponse: "mock response",
	}
}

// WithResponse adds a preset response for a given input.
func (s *Service) WithResponse(input, output string) *Service {
	if _, ok := s.responses[input]; !ok {
		s.keys = append(s.keys, input)
	}
	s.responses[input] = output
	return s
}

// WithDefaultResponse sets the response when no preset matches.
func (s *Service) WithDefaultResponse(output string) *Service {
	s.defaultResponse = output
	return s
}

// WithError makes every call fail with err.
func (s *Service) WithError(err error) *Service {
	s.err = err
	return s
}

// WithErrorOn makes calls whose last user message contains input fail with err.
func (s *Service) WithErrorOn(input string, err error) *Service {
	if _, ok := s.errs[input]; !ok {
		s.errKeys = append(s.errKeys, input)
	}
	s.errs[input] = err
	return s
}

// WithCallStats sets custom call statistics.
func (s *Service) WithCallStats(stats *oracle.CallStats) *Service {
	s.callStats = stats
	return s
}

// Complete implements oracle.Service.
func (s *Service) Complete(_ context.Context, messages []oracle.Message, opts oracle.Options) (string, *oracle.CallStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Messages: messages, Options: opts}
	s.calls = append(s.calls, call)

	key := call.LastUserContent()

	if s.err != nil {
		return "", nil, s.err
	}
	for _, ek := range s.errKeys {
		if strings.Contains(key, ek) {
			return "", nil, s.errs[ek]
		}
	}

	if response, ok := s.responses[key]; ok {
		return response, s.callStats, nil
	}
	for _, k := range s.keys {
		if strings.Contains(key, k) {
			return s.responses[k], s.callStats, nil
		}
	}

	return s.defaultResponse, s.callStats, nil
}

// Calls returns a copy of all recorded invocations in order.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of Complete invocations so far.
func (s *Service) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

var _ oracle.Service = (*Service)(nil)
