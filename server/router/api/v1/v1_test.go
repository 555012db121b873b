package v1

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/internal/profile"
	"github.com/covey-ai/covey/oracle"
	"github.com/covey-ai/covey/orchestrator"
)

// newTestService wires a full API stack over the given oracle and returns
// the echo instance requests are served through.
func newTestService(t *testing.T, svc oracle.Service, opts ...orchestrator.Option) (*echo.Echo, *APIV1Service) {
	t.Helper()

	registry := agent.NewRegistry(svc)
	orchestration := orchestrator.New(svc, registry, opts...)
	apiService := NewAPIV1Service(&profile.Profile{
		Mode:               "dev",
		Version:            "0.0.0-test",
		MaxConcurrentTasks: 2,
	}, registry, orchestration)

	e := echo.New()
	apiService.Register(e)
	return e, apiService
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func mustCreateAgent(t *testing.T, s *APIV1Service, name, agentType string, capabilities []string) *agent.Agent {
	t.Helper()
	a, err := s.Registry.Create(context.Background(), agent.Config{
		Name:         name,
		Type:         agentType,
		Capabilities: capabilities,
	})
	require.NoError(t, err)
	return a
}
