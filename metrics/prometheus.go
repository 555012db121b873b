// Package metrics provides Prometheus metrics export for the agent pool.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports orchestration metrics in Prometheus format. Its record
// methods satisfy the recorder interfaces of the oracle, agent and
// orchestrator packages so one instance serves the whole process.
type Exporter struct {
	registry *prometheus.Registry

	// Oracle metrics
	oracleLatency *prometheus.HistogramVec
	oracleCalls   *prometheus.CounterVec
	oracleTokens  *prometheus.CounterVec

	// Task metrics
	tasksTotal   *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec

	// Agent metrics
	agentsRegistered prometheus.Gauge
	trainingsTotal   *prometheus.CounterVec
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns the default exporter configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}
}

// NewExporter creates a new Prometheus metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	// Oracle metrics
	e.oracleLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "covey",
			Subsystem: "oracle",
			Name:      "latency_seconds",
			Help:      "Oracle completion latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"model", "provider"},
	)

	e.oracleCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "covey",
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Total number of oracle completion calls",
		},
		[]string{"model", "provider", "status"},
	)

	e.oracleTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "covey",
			Subsystem: "oracle",
			Name:      "tokens_total",
			Help:      "Total oracle tokens consumed",
		},
		[]string{"model", "token_type"},
	)

	// Task metrics
	e.tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "covey",
			Subsystem: "orchestrator",
			Name:      "tasks_total",
			Help:      "Total number of processed tasks",
		},
		[]string{"complexity", "status"},
	)

	e.taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "covey",
			Subsystem: "orchestrator",
			Name:      "task_duration_seconds",
			Help:      "End-to-end task processing duration in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"complexity", "status"},
	)

	// Agent metrics
	e.agentsRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "covey",
			Subsystem: "agent",
			Name:      "registered",
			Help:      "Number of registered agents",
		},
	)

	e.trainingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "covey",
			Subsystem: "agent",
			Name:      "trainings_total",
			Help:      "Total number of agent training rounds",
		},
		[]string{"status"},
	)

	// Register all metrics
	registry.MustRegister(
		e.oracleLatency,
		e.oracleCalls,
		e.oracleTokens,
		e.tasksTotal,
		e.taskDuration,
		e.agentsRegistered,
		e.trainingsTotal,
	)

	return e
}

// RecordOracleCall records one oracle completion attempt.
func (e *Exporter) RecordOracleCall(model, provider string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	e.oracleCalls.WithLabelValues(model, provider, status).Inc()
	e.oracleLatency.WithLabelValues(model, provider).Observe(latency.Seconds())
}

// RecordOracleTokens records token usage of one oracle completion.
func (e *Exporter) RecordOracleTokens(model string, promptTokens, completionTokens int) {
	e.oracleTokens.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	e.oracleTokens.WithLabelValues(model, "completion").Add(float64(completionTokens))
}

// RecordTask records a finished task with its classified complexity and
// terminal status.
func (e *Exporter) RecordTask(complexity, status string, duration time.Duration) {
	e.tasksTotal.WithLabelValues(complexity, status).Inc()
	e.taskDuration.WithLabelValues(complexity, status).Observe(duration.Seconds())
}

// SetRegisteredAgents sets the current agent count.
func (e *Exporter) SetRegisteredAgents(count int) {
	e.agentsRegistered.Set(float64(count))
}

// RecordTraining records one training round.
func (e *Exporter) RecordTraining(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.trainingsTotal.WithLabelValues(status).Inc()
}

// GetHandler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) GetHandler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the Prometheus registry.
func (e *Exporter) GetRegistry() *prometheus.Registry {
	return e.registry
}
