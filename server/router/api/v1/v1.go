// Package v1 exposes the agent pool over a JSON REST API.
package v1

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/internal/profile"
	"github.com/covey-ai/covey/orchestrator"
)

type APIV1Service struct {
	Profile      *profile.Profile
	Registry     *agent.Registry
	Orchestrator *orchestrator.Orchestrator

	// Orchestrations run synchronously against the oracle; the semaphore
	// bounds how many a single instance admits at once.
	taskSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, registry *agent.Registry, orch *orchestrator.Orchestrator) *APIV1Service {
	maxConcurrent := profile.MaxConcurrentTasks
	if maxConcurrent < 1 {
		maxConcurrent = 3
	}
	return &APIV1Service{
		Profile:       profile,
		Registry:      registry,
		Orchestrator:  orch,
		taskSemaphore: semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Register mounts all v1 routes on the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	apiGroup := echoServer.Group("/api/v1")
	apiGroup.Use(middleware.CORS())

	agentGroup := apiGroup.Group("/agents")
	agentGroup.POST("", s.CreateAgent)
	agentGroup.GET("", s.ListAgents)
	agentGroup.GET("/:id", s.GetAgent)
	agentGroup.POST("/:id/train", s.TrainAgent)
	agentGroup.GET("/:id/memory", s.ListAgentMemory)
	agentGroup.GET("/:id/performance", s.GetAgentPerformance)

	taskGroup := apiGroup.Group("/tasks")
	taskGroup.POST("", s.CreateTask)
	taskGroup.GET("", s.ListTasks)
	taskGroup.GET("/:id", s.GetTask)

	apiGroup.POST("/collaborations", s.CreateCollaboration)

	systemGroup := apiGroup.Group("/system")
	systemGroup.GET("/overview", s.GetSystemOverview)
}
