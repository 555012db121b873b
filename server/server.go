// Package server hosts the HTTP surface of the agent pool: the JSON API,
// the health probe, and the Prometheus scrape endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/internal/profile"
	"github.com/covey-ai/covey/metrics"
	"github.com/covey-ai/covey/orchestrator"
	apiv1 "github.com/covey-ai/covey/server/router/api/v1"
)

type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
}

func NewServer(_ context.Context, instanceProfile *profile.Profile, registry *agent.Registry, orchestration *orchestrator.Orchestrator, exporter *metrics.Exporter) (*Server, error) {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())

	s := &Server{
		Profile:    instanceProfile,
		echoServer: echoServer,
	}

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	if exporter != nil {
		echoServer.GET("/metrics", echo.WrapHandler(exporter.GetHandler()))
	}

	apiV1Service := apiv1.NewAPIV1Service(instanceProfile, registry, orchestration)
	apiV1Service.Register(echoServer)

	return s, nil
}

// Start launches the HTTP listener without blocking; listen failures past
// this point are logged, not returned.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server: failed to start http server", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("server: failed to shutdown server gracefully", "error", err)
	}

	slog.Info("server: stopped properly")
}
